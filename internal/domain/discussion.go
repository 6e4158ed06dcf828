package domain

import "time"

// DiscussionType differentiates thread entries.
type DiscussionType string

const (
	DiscussionTypeText       DiscussionType = "text"
	DiscussionTypeSystem     DiscussionType = "system"
	DiscussionTypeResolution DiscussionType = "resolution"
	DiscussionTypeTransfer   DiscussionType = "transfer"
)

// TicketDiscussion is a threaded message on a ticket. Entries are
// append-only except for body edits; listing order is creation time
// ascending.
type TicketDiscussion struct {
	ID         string
	TicketID   string
	ParentID   *string
	Message    string
	Type       DiscussionType
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	IsInternal bool
}
