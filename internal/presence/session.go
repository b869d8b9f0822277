package presence

import "time"

// Session is the registry's record of one connected client. Values handed out
// by the registry are copies and never change afterwards.
type Session struct {
	ID          string    `json:"uid"`
	DisplayName string    `json:"name"`
	JoinedAt    time.Time `json:"joined_at"`

	seq uint64
}

// RosterEntry is the wire shape of one roster line.
type RosterEntry struct {
	ID   string `json:"uid"`
	Name string `json:"name"`
}

func (s Session) Entry() RosterEntry {
	return RosterEntry{ID: s.ID, Name: s.DisplayName}
}

// DefaultDisplayName is the name a session carries until it renames itself.
func DefaultDisplayName(id string) string {
	return "user-" + id
}
