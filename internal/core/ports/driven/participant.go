package driven

import (
	"context"
	"encoding/json"

	"github.com/lumen-labs/engagekit/internal/core/domain"
)

// SyncParticipant owns synchronisation of one remote collection type.
// It knows how to build its next paginated query and how to merge a
// decoded page into local storage. Participants never touch each
// other's stores or cursor keys.
type SyncParticipant interface {
	// Name identifies the participant in pass results and logs.
	Name() string

	// CursorKey is the durable-storage key for this participant's
	// resume cursor. Keys are unique per participant so concurrent
	// participants never collide.
	CursorKey() string

	// NextRequest builds the request for the next page. An empty cursor
	// means page one: the query runs without an after variable.
	NextRequest(cursor string) domain.SyncRequest

	// ProcessPage decodes one page from the data envelope and merges it
	// into the participant's store. It returns the page's pagination
	// state and whether anything differed from stored state. A decode
	// or merge error terminates the participant's pass and leaves the
	// cursor untouched.
	ProcessPage(ctx context.Context, data json.RawMessage) (PageResult, error)
}

// PageResult reports the outcome of merging one decoded page.
type PageResult struct {
	// PageInfo is the page's pagination marker. A structurally valid
	// page without one is malformed; ProcessPage must return an error
	// rather than a nil PageInfo.
	PageInfo *domain.PageInfo

	// Changed is false when the decoded nodes matched stored state
	// exactly and no write happened.
	Changed bool
}
