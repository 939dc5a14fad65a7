package domain

// SyncRequest describes one paginated GraphQL page fetch.
// Requests are immutable; a fresh one is built per page.
type SyncRequest struct {
	// Query is the GraphQL query document.
	Query string

	// Variables maps variable names to values (numbers, strings,
	// ordering specs, cursor strings).
	Variables map[string]any

	// Fragments holds GraphQL fragment documents referenced by Query.
	Fragments []string
}

// NewSyncRequest builds a request from a query and its variables.
func NewSyncRequest(query string, variables map[string]any, fragments ...string) SyncRequest {
	return SyncRequest{Query: query, Variables: variables, Fragments: fragments}
}

// PageInfo is the pagination marker returned with every page.
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// SyncResult is the terminal state of one participant's paging attempt
// within a pass.
type SyncResult int

const (
	// SyncResultNoData means pages decoded but nothing differed from the
	// stored state; no write happened.
	SyncResultNoData SyncResult = iota

	// SyncResultNewData means at least one page was merged into storage.
	SyncResultNewData

	// SyncResultFailed means a transport or decode error ended the
	// participant's pass. The cursor was not advanced.
	SyncResultFailed
)

// String returns a human-readable result name.
func (r SyncResult) String() string {
	switch r {
	case SyncResultNoData:
		return "no data"
	case SyncResultNewData:
		return "new data"
	case SyncResultFailed:
		return "failed"
	default:
		return "unknown"
	}
}
