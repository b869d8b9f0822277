package presence

import "encoding/json"

type EventKind string

const (
	EventStatus  EventKind = "status"
	EventUpdate  EventKind = "update"
	EventEnter   EventKind = "enter"
	EventLeave   EventKind = "leave"
	EventMessage EventKind = "message"
)

type StatusType string

const (
	StatusConnect    StatusType = "connect"
	StatusUpdateName StatusType = "updateName"
)

const (
	connectedMessage = "connected successfully"
	renamedMessage   = "name updated successfully"
)

// Event is a fully formed outbound notification. Payload is one of the
// payload types below, or a []RosterEntry for update events.
type Event struct {
	Kind    EventKind
	Payload any
}

type StatusPayload struct {
	Type StatusType `json:"type"`
	Data StatusData `json:"data"`
}

type StatusData struct {
	UID     string `json:"uid"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

type PresencePayload struct {
	Name string `json:"name"`
}

// DirectMessagePayload carries the message body exactly as the sender wrote it.
type DirectMessagePayload struct {
	From    string          `json:"from"`
	Message json.RawMessage `json:"message,omitempty"`
}

// Sink delivers events to one connected session. Send must not block.
type Sink interface {
	Send(id string, evt Event)
}

func statusEvent(status StatusType, session Session, message string) Event {
	return Event{
		Kind: EventStatus,
		Payload: StatusPayload{
			Type: status,
			Data: StatusData{UID: session.ID, Name: session.DisplayName, Message: message},
		},
	}
}

func rosterEvent(roster []RosterEntry) Event {
	return Event{Kind: EventUpdate, Payload: roster}
}

func enterEvent(name string) Event {
	return Event{Kind: EventEnter, Payload: PresencePayload{Name: name}}
}

func leaveEvent(name string) Event {
	return Event{Kind: EventLeave, Payload: PresencePayload{Name: name}}
}

func messageEvent(from string, message json.RawMessage) Event {
	return Event{Kind: EventMessage, Payload: DirectMessagePayload{From: from, Message: message}}
}
