package assistant

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnintelligible is returned by a Listener when speech was recorded but
// nothing could be transcribed from it.
var ErrUnintelligible = errors.New("unable to understand the audio")

// ErrAlreadyStarted is returned by Start on a running assistant.
var ErrAlreadyStarted = errors.New("assistant already started")

// Utterance is the outcome of one conversation turn.
type Utterance struct {
	// Transcript is what the service heard.
	Transcript string
	// Response is the supplemental display text of the reply, if any.
	Response string
	// FollowOn is set when the service expects the user to keep talking.
	FollowOn bool
}

// Text is the line shown on the mirror for u.
func (u Utterance) Text() string {
	if u.Response != "" {
		return u.Response
	}
	return u.Transcript
}

// Assistant is a voice assistant running alongside the mirror.
type Assistant interface {
	Start(ctx context.Context) error
	Stop()
	OnUtterance(fn func(Utterance))
}

// Conversation runs a single request/response turn with the remote service.
type Conversation interface {
	Converse(ctx context.Context) (Utterance, error)
}

// Listener records one local utterance and returns its transcript.
type Listener interface {
	Listen(ctx context.Context) (string, error)
}

// Chime plays the trigger confirmation sound.
type Chime interface {
	Play() error
}

// Loop is the Assistant implementation. With a nil Listener it converses
// continuously; otherwise every turn waits for a trigger phrase first.
type Loop struct {
	conv     Conversation
	listener Listener
	chime    Chime
	log      zerolog.Logger

	// retryDelay throttles the loop after a failed turn.
	retryDelay time.Duration

	mu       sync.Mutex
	handlers []func(Utterance)
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewLoop creates a Loop. listener and chime may be nil.
func NewLoop(conv Conversation, listener Listener, chime Chime, log zerolog.Logger) *Loop {
	return &Loop{
		conv:       conv,
		listener:   listener,
		chime:      chime,
		log:        log.With().Str("component", "assistant").Logger(),
		retryDelay: time.Second,
	}
}

// OnUtterance registers fn to be called after every completed turn.
func (l *Loop) OnUtterance(fn func(Utterance)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers = append(l.handlers, fn)
}

// Start runs the loop in the background until ctx is done or Stop is called.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})

	go func() {
		defer close(l.done)
		l.run(ctx)
	}()

	l.log.Info().Bool("trigger", l.listener != nil).Msg("assistant started")
	return nil
}

// Stop cancels the loop and waits for the current turn to return.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (l *Loop) run(ctx context.Context) {
	followOn := false
	for ctx.Err() == nil {
		var ok bool
		followOn, ok = l.turn(ctx, followOn)
		if !ok {
			l.pause(ctx)
		}
	}
}

// turn runs one listen/converse cycle. It reports whether the service asked
// for a follow-on turn, and false for ok when the cycle failed.
func (l *Loop) turn(ctx context.Context, followOn bool) (next bool, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error().Interface("panic", r).Msg("assistant turn panicked")
			next, ok = false, false
		}
	}()

	if l.listener != nil && !followOn {
		text, err := l.listener.Listen(ctx)
		switch {
		case errors.Is(err, ErrUnintelligible):
			l.log.Info().Msg("unable to understand the audio")
			return false, true
		case err != nil:
			if ctx.Err() == nil {
				l.log.Error().Err(err).Msg("speech recognition failed")
			}
			return false, false
		}
		if !Triggered(text) {
			l.log.Debug().Str("heard", text).Msg("no trigger phrase")
			return false, true
		}
		if l.chime != nil {
			if err := l.chime.Play(); err != nil {
				l.log.Warn().Err(err).Msg("trigger chime failed")
			}
		}
	}

	u, err := l.conv.Converse(ctx)
	if err != nil {
		if ctx.Err() == nil {
			l.log.Error().Err(err).Msg("conversation failed")
		}
		return false, false
	}

	l.log.Info().Str("transcript", u.Transcript).Str("response", u.Response).Bool("follow_on", u.FollowOn).Msg("conversation turn")
	l.notify(u)
	return u.FollowOn, true
}

func (l *Loop) notify(u Utterance) {
	l.mu.Lock()
	handlers := make([]func(Utterance), len(l.handlers))
	copy(handlers, l.handlers)
	l.mu.Unlock()

	for _, fn := range handlers {
		fn(u)
	}
}

func (l *Loop) pause(ctx context.Context) {
	if l.retryDelay <= 0 {
		return
	}
	t := time.NewTimer(l.retryDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
