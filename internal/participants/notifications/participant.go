// Package notifications syncs the device's notification inbox from the
// backend into the local notification center.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
)

// CursorKey is the durable-storage key for the resume cursor.
const CursorKey = "sync.notificationsCursor"

// participantName identifies this participant in pass results and logs.
const participantName = "notifications"

const pageInfoFragment = `fragment pageInfoFields on PageInfo { endCursor hasNextPage }`

const notificationsQuery = `query Notifications($last:Int, $after:String, $orderBy:NotificationOrder) {
	notifications(last:$last, after:$after, orderBy:$orderBy) {
		nodes {
			id
			campaignID
			title
			body
			attachmentURL
			deliveredAt
			expiresAt
			isRead
			isDeleted
		}
		pageInfo { ...pageInfoFields }
	}
}`

// Store is the slice of the notification center this participant needs.
type Store interface {
	// Add merges a batch and reports whether anything changed.
	Add(batch []domain.Notification) (bool, error)
}

// Ensure Participant implements the interface.
var _ driven.SyncParticipant = (*Participant)(nil)

// Participant pages the notifications query newest-first and merges
// each page into the notification center.
type Participant struct {
	store    Store
	pageSize int
}

// New creates the notifications participant.
func New(store Store, pageSize int) *Participant {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	return &Participant{store: store, pageSize: pageSize}
}

// Name identifies the participant.
func (p *Participant) Name() string { return participantName }

// CursorKey returns the participant's durable cursor key.
func (p *Participant) CursorKey() string { return CursorKey }

// NextRequest builds the next page query. An empty cursor means page
// one and omits the after variable entirely.
func (p *Participant) NextRequest(cursor string) domain.SyncRequest {
	variables := map[string]any{
		"last": p.pageSize,
		"orderBy": map[string]any{
			"field":     "CREATED_AT",
			"direction": "DESC",
		},
	}
	if cursor != "" {
		variables["after"] = cursor
	}
	return domain.NewSyncRequest(notificationsQuery, variables, pageInfoFragment)
}

// ProcessPage decodes one page and merges its nodes into the center.
func (p *Participant) ProcessPage(_ context.Context, data json.RawMessage) (driven.PageResult, error) {
	var page struct {
		Notifications struct {
			Nodes    []domain.Notification `json:"nodes"`
			PageInfo *domain.PageInfo      `json:"pageInfo"`
		} `json:"notifications"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return driven.PageResult{}, fmt.Errorf("decode notifications page: %w", err)
	}
	if page.Notifications.PageInfo == nil {
		return driven.PageResult{}, domain.ErrMissingPageInfo
	}

	changed, err := p.store.Add(page.Notifications.Nodes)
	if err != nil {
		return driven.PageResult{}, fmt.Errorf("merge notifications: %w", err)
	}

	return driven.PageResult{
		PageInfo: page.Notifications.PageInfo,
		Changed:  changed,
	}, nil
}
