// Package membership holds the request and response bodies of the
// participation and group-membership endpoints.
package membership

// UserEvent links a user to an event
type UserEvent struct {
	UserID  int64 `json:"user_id"`
	EventID int64 `json:"event_id"`
}

// UserGroup links a user to a group
type UserGroup struct {
	UserID  int64 `json:"user_id"`
	GroupID int64 `json:"group_id"`
}

// EventRef identifies an event in a delete request
type EventRef struct {
	EventID int64 `json:"event_id"`
}

// GroupRef identifies a group in a delete request
type GroupRef struct {
	GroupID int64 `json:"group_id"`
}

// UserRef identifies a user in a delete request
type UserRef struct {
	UserID int64 `json:"user_id"`
}

// Ack is the acknowledgement every mutating endpoint answers with
type Ack struct {
	Message string `json:"message"`
}
