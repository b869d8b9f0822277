package presence

import (
	"context"
	"fmt"
	"github.com/looplab/fsm"
)

const (
	StateConnecting   = "connecting"
	StateConnected    = "connected"
	StateDisconnected = "disconnected"

	eventConnect    = "connect"
	eventDisconnect = "disconnect"
)

// Lifecycle tracks one connection through connecting -> connected -> disconnected.
// The disconnected state is terminal. onEnter runs after every transition,
// with the state just entered.
type Lifecycle struct {
	fsm *fsm.FSM
}

func NewLifecycle(onEnter func(ctx context.Context, state string)) *Lifecycle {
	return &Lifecycle{
		fsm: fsm.NewFSM(
			StateConnecting,
			fsm.Events{
				{Name: eventConnect, Src: []string{StateConnecting}, Dst: StateConnected},
				{Name: eventDisconnect, Src: []string{StateConnecting, StateConnected}, Dst: StateDisconnected},
			},
			fsm.Callbacks{
				"enter_state": func(ctx context.Context, e *fsm.Event) {
					if onEnter != nil {
						onEnter(ctx, e.Dst)
					}
				},
			},
		),
	}
}

func (l *Lifecycle) Connect(ctx context.Context) error {
	return l.transition(ctx, eventConnect)
}

func (l *Lifecycle) Disconnect(ctx context.Context) error {
	return l.transition(ctx, eventDisconnect)
}

func (l *Lifecycle) State() string {
	return l.fsm.Current()
}

func (l *Lifecycle) transition(ctx context.Context, event string) error {
	if err := l.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("lifecycle %s from %s: %w", event, l.fsm.Current(), err)
	}
	return nil
}
