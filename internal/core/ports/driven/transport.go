package driven

import (
	"context"
	"encoding/json"

	"github.com/lumen-labs/engagekit/internal/core/domain"
)

// GraphQLClient executes GraphQL documents against the backend and
// returns the raw contents of the response's data envelope.
type GraphQLClient interface {
	// Query executes a read via GET with the query, variables and
	// fragments encoded as URL parameters.
	Query(ctx context.Context, req domain.SyncRequest) (json.RawMessage, error)

	// Mutate executes a write via POST with a gzip-compressed JSON body.
	Mutate(ctx context.Context, req domain.SyncRequest) (json.RawMessage, error)
}
