package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	CollectionProfile  = "profile"
	CollectionCourses  = "courses"
	CollectionPathways = "pathways"

	OpUpdate = "update"
	OpDelete = "delete"
)

// ReconcileEvent describes a remote write that failed after the local state
// already moved on. Fields holds the collection's patch as JSON. At is when
// the write failed; a row written after it is newer than the event.
type ReconcileEvent struct {
	Collection string          `json:"collection"`
	Op         string          `json:"op"`
	UserID     uuid.UUID       `json:"userId"`
	EntityID   string          `json:"entityId"`
	DBID       *uuid.UUID      `json:"dbId,omitempty"`
	Fields     json.RawMessage `json:"fields,omitempty"`
	Reason     string          `json:"reason"`
	At         time.Time       `json:"at"`
}

type EventPublisher interface {
	PublishReconcile(ctx context.Context, ev ReconcileEvent) error
}
