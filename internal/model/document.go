package model

import "time"

// Document is a single record in a named collection. Collections have no
// schema: client-supplied fields live in Fields as-is. OwnerID is assigned
// from the authenticated identity at creation and is never writable by
// clients afterwards.
type Document struct {
	ID         string         `json:"id"`
	Collection string         `json:"-"`
	OwnerID    string         `json:"ownerId"`
	Fields     map[string]any `json:"-"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Reserved document field names. Clients cannot set these; they are stripped
// from create and update payloads before anything reaches the store.
const (
	FieldID      = "id"
	FieldOwnerID = "ownerId"
)

// View returns the wire representation of the document: the client fields
// plus the server-assigned id and ownerId.
func (d *Document) View() map[string]any {
	view := make(map[string]any, len(d.Fields)+2)
	for k, v := range d.Fields {
		view[k] = v
	}
	view[FieldID] = d.ID
	view[FieldOwnerID] = d.OwnerID
	return view
}
