package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/taokongu2015-sys/telegram-golike-bot/internal/domain"
	"github.com/taokongu2015-sys/telegram-golike-bot/internal/metrics"
)

// broadcaster pushes rendered status snapshots to the control channel. It
// wakes on an explicit signal from a worker or every statusInterval, edits the
// stored status message in place, and exits once the session stops. A stale
// message handle is cleared so the next push sends a fresh message instead of
// erroring repeatedly.
type broadcaster struct {
	session   *Session
	messenger domain.Messenger
	clock     clockwork.Clock

	quit chan struct{}
	done chan struct{}
}

func newBroadcaster(s *Session, messenger domain.Messenger, clock clockwork.Clock) *broadcaster {
	return &broadcaster{
		session:   s,
		messenger: messenger,
		clock:     clock,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// alive reports whether the broadcaster goroutine is still running.
func (b *broadcaster) alive() bool {
	select {
	case <-b.done:
		return false
	default:
		return true
	}
}

// kill forces the loop to exit regardless of the session state.
func (b *broadcaster) kill() {
	close(b.quit)
}

func (b *broadcaster) run() {
	defer close(b.done)

	for b.session.Running() {
		timer := b.clock.NewTimer(statusInterval)
		select {
		case <-b.session.wake:
		case <-timer.Chan():
		case <-b.quit:
			timer.Stop()
			return
		}
		timer.Stop()

		if !b.session.Running() {
			return
		}
		b.push()
	}
}

func (b *broadcaster) push() {
	ctx := context.Background()
	text := b.session.RenderStatus()
	chatID := b.session.chatID

	var err error
	if id := b.session.StatusMessageID(); id == 0 {
		var newID int
		newID, err = b.messenger.SendStatus(ctx, chatID, text, b.session.Running())
		if err == nil {
			b.session.SetStatusMessageID(newID)
		}
	} else {
		err = b.messenger.EditStatus(ctx, chatID, id, text, b.session.Running())
		if errors.Is(err, domain.ErrMessageNotFound) {
			// Next push creates a fresh message.
			b.session.SetStatusMessageID(0)
			err = nil
		}
	}

	if err != nil {
		metrics.StatusPushesTotal.WithLabelValues("error").Inc()
		slog.Warn("Status push failed", "chat_id", chatID, "error", err)
		return
	}
	metrics.StatusPushesTotal.WithLabelValues("ok").Inc()
}
