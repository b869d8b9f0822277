package presence

// Broadcaster emits roster and presence events to every registered session.
type Broadcaster struct {
	registry *Registry
	sink     Sink
}

func NewBroadcaster(registry *Registry, sink Sink) *Broadcaster {
	return &Broadcaster{registry: registry, sink: sink}
}

// NotifyJoin announces a new member to everyone, the member included.
func (b *Broadcaster) NotifyJoin(name string) {
	b.broadcast(enterEvent(name))
}

// NotifyLeave announces a departure. The departed session must already be
// out of the registry.
func (b *Broadcaster) NotifyLeave(name string) {
	b.broadcast(leaveEvent(name))
}

// BroadcastRoster sends a freshly derived roster to every session.
func (b *Broadcaster) BroadcastRoster() {
	roster := b.registry.Snapshot()
	b.fanout(roster, rosterEvent(roster))
}

func (b *Broadcaster) broadcast(evt Event) {
	b.fanout(b.registry.Snapshot(), evt)
}

func (b *Broadcaster) fanout(recipients []RosterEntry, evt Event) {
	for _, entry := range recipients {
		b.sink.Send(entry.ID, evt)
	}
}
