package presence

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
)

type delivery struct {
	to  string
	evt Event
}

type recordingSink struct {
	mu         sync.Mutex
	deliveries []delivery
}

func (s *recordingSink) Send(id string, evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = append(s.deliveries, delivery{to: id, evt: evt})
}

func (s *recordingSink) to(id string) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var events []Event
	for _, d := range s.deliveries {
		if d.to == id {
			events = append(events, d.evt)
		}
	}
	return events
}

func (s *recordingSink) kinds(id string) []EventKind {
	var kinds []EventKind
	for _, evt := range s.to(id) {
		kinds = append(kinds, evt.Kind)
	}
	return kinds
}

func (s *recordingSink) ofKind(id string, kind EventKind) []Event {
	var events []Event
	for _, evt := range s.to(id) {
		if evt.Kind == kind {
			events = append(events, evt)
		}
	}
	return events
}

func (s *recordingSink) all() []delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]delivery(nil), s.deliveries...)
}

func (s *recordingSink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = nil
}

type recordingDirectory struct {
	mu      sync.Mutex
	put     []Session
	deleted []string
}

func (d *recordingDirectory) Put(session Session) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.put = append(d.put, session)
}

func (d *recordingDirectory) Delete(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deleted = append(d.deleted, id)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter() (*Router, *Registry, *recordingSink) {
	registry := NewRegistry()
	sink := &recordingSink{}
	return NewRouter(discardLogger(), registry, sink, nil), registry, sink
}

func lastRoster(sink *recordingSink, id string) []RosterEntry {
	updates := sink.ofKind(id, EventUpdate)
	if len(updates) == 0 {
		return nil
	}
	return updates[len(updates)-1].Payload.([]RosterEntry)
}

func text(s string) json.RawMessage {
	raw, _ := json.Marshal(s)
	return raw
}
