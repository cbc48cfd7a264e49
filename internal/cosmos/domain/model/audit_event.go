package model

import "time"

// Audit event types published after successful mutations.
const (
	EventDatabaseCreated   = "database.created"
	EventDatabaseDeleted   = "database.deleted"
	EventCollectionCreated = "collection.created"
	EventCollectionDeleted = "collection.deleted"
	EventOfferReplaced     = "offer.replaced"
	EventDocumentCreated   = "document.created"
)

// AuditEvent records one successful mutation.
type AuditEvent struct {
	Type         string                 `json:"type"`
	DatabaseID   string                 `json:"databaseId,omitempty"`
	CollectionID string                 `json:"collectionId,omitempty"`
	ResourceID   string                 `json:"resourceId,omitempty"`
	Subject      string                 `json:"subject,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
	OccurredAt   time.Time              `json:"occurredAt"`
}

// NewAuditEvent stamps an event with the current time.
func NewAuditEvent(eventType, databaseID, collectionID string) *AuditEvent {
	return &AuditEvent{
		Type:         eventType,
		DatabaseID:   databaseID,
		CollectionID: collectionID,
		Details:      map[string]interface{}{},
		OccurredAt:   time.Now().UTC(),
	}
}

// WithResource records the service-assigned resource id of the subject.
func (e *AuditEvent) WithResource(resourceID string) *AuditEvent {
	e.ResourceID = resourceID
	return e
}

// WithDetail adds a detail field
func (e *AuditEvent) WithDetail(key string, value interface{}) *AuditEvent {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}
