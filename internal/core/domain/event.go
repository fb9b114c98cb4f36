package domain

import "time"

// EventKind classifies a lifecycle notification.
type EventKind int

const (
	// EventUpdateCompleted is published when a requested update finished.
	EventUpdateCompleted EventKind = iota
	// EventUpdateFailed is published when an update failed for a reason other than a timeout.
	EventUpdateFailed
	// EventUpdateTimeout is published when an update failed because a transfer timed out.
	EventUpdateTimeout
	// EventUpdateCancelled is published when an update was cancelled.
	EventUpdateCancelled
	// EventLoadCompleted is published when an asset finished loading.
	EventLoadCompleted
	// EventLoadFailed is published when an asset could not be loaded for a
	// reason other than a timeout or cancellation.
	EventLoadFailed
	// EventLoadTimeout is published when a load failed because a transfer it
	// triggered timed out.
	EventLoadTimeout
	// EventLoadCancelled is published when a load was cancelled.
	EventLoadCancelled
	// EventCatalogRefreshed is published after a catalog became current.
	EventCatalogRefreshed
	// EventCacheReclaimed is published after cache files were deleted.
	EventCacheReclaimed
)

var eventKindNames = [...]string{
	EventUpdateCompleted:  "update.completed",
	EventUpdateFailed:     "update.failed",
	EventUpdateTimeout:    "update.timeout",
	EventUpdateCancelled:  "update.cancelled",
	EventLoadCompleted:    "load.completed",
	EventLoadFailed:       "load.failed",
	EventLoadTimeout:      "load.timeout",
	EventLoadCancelled:    "load.cancelled",
	EventCatalogRefreshed: "catalog.refreshed",
	EventCacheReclaimed:   "cache.reclaimed",
}

// String returns the dotted name of the kind.
func (k EventKind) String() string {
	if int(k) < 0 || int(k) >= len(eventKindNames) {
		return "unknown"
	}
	return eventKindNames[k]
}

// Event is a notification delivered to subscribers.
type Event struct {
	Kind EventKind
	// Path is the resource path the event is about, if any.
	Path string
	// Err holds the failure for failed, timed out and cancelled events.
	Err error
	// Count carries the number of affected files for reclaim events.
	Count int
	At    time.Time
}

// UpdateOutcome maps the result of an update to its event kind.
func UpdateOutcome(err error) EventKind {
	switch {
	case err == nil:
		return EventUpdateCompleted
	case IsCancelled(err):
		return EventUpdateCancelled
	case isTimeout(err):
		return EventUpdateTimeout
	default:
		return EventUpdateFailed
	}
}

// LoadOutcome maps the result of a load to its event kind.
func LoadOutcome(err error) EventKind {
	switch {
	case err == nil:
		return EventLoadCompleted
	case IsCancelled(err):
		return EventLoadCancelled
	case isTimeout(err):
		return EventLoadTimeout
	default:
		return EventLoadFailed
	}
}
