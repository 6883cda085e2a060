package display

import (
	"context"

	"github.com/rs/zerolog"
)

// Publisher is implemented by anything refresh loops can hand updates to.
type Publisher interface {
	Publish(ctx context.Context, u Update) error
}

// Sink renders a section of the state. Render is only ever called through
// the Coordinator's Dispatcher.
type Sink interface {
	Render(section Section, state State)
}

// StateStore folds updates into the current state and returns a copy of it.
type StateStore interface {
	Apply(u Update) State
}

// Dispatcher runs fn on the thread that owns the sink (fyne.Do for the GUI).
type Dispatcher func(fn func())

// Direct runs fn on the calling goroutine.
func Direct(fn func()) { fn() }

// Coordinator is the single consumer of display updates. Workers publish into
// it from any goroutine; only Run touches the store and the sink.
type Coordinator struct {
	updates  chan Update
	store    StateStore
	sink     Sink
	dispatch Dispatcher
	log      zerolog.Logger
}

// NewCoordinator creates a Coordinator. A nil dispatch means Direct.
func NewCoordinator(store StateStore, sink Sink, dispatch Dispatcher, log zerolog.Logger) *Coordinator {
	if dispatch == nil {
		dispatch = Direct
	}
	return &Coordinator{
		updates:  make(chan Update, 64),
		store:    store,
		sink:     sink,
		dispatch: dispatch,
		log:      log.With().Str("component", "display").Logger(),
	}
}

// Publish queues u, blocking until there is room or ctx is done. A free
// slot is always taken, even if ctx is already done.
func (c *Coordinator) Publish(ctx context.Context, u Update) error {
	select {
	case c.updates <- u:
		return nil
	default:
	}

	select {
	case c.updates <- u:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run applies queued updates until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) {
	for {
		select {
		case u := <-c.updates:
			c.apply(u)
		case <-ctx.Done():
			return
		}
	}
}

func (c *Coordinator) apply(u Update) {
	state := c.store.Apply(u)
	if u.Section() != SectionClock {
		c.log.Debug().Stringer("section", u.Section()).Msg("display updated")
	}
	if c.sink == nil {
		return
	}
	section := u.Section()
	c.dispatch(func() {
		c.sink.Render(section, state)
	})
}
