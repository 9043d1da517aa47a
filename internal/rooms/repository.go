package rooms

import (
	"context"
	"time"
)

// Repository persists room requests and their extensions.
//
// UpdateStatus and UpdateExtensionStatus are compare-and-set: they change
// the row only while it is still in `from` and report whether it changed.
type Repository interface {
	Insert(ctx context.Context, r RoomRequest) error
	Get(ctx context.Context, id string) (RoomRequest, error)
	List(ctx context.Context, f Filter) ([]RoomRequest, error)
	UpdateStatus(ctx context.Context, id string, from, to Status, now time.Time) (bool, error)

	InsertExtension(ctx context.Context, e ExtensionRequest) error
	GetExtension(ctx context.Context, id string) (ExtensionRequest, error)
	ListExtensions(ctx context.Context, roomRequestID string) ([]ExtensionRequest, error)
	UpdateExtensionStatus(ctx context.Context, id string, from, to Status, now time.Time) (bool, error)
}
