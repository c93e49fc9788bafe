package engine

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/taokongu2015-sys/telegram-golike-bot/internal/domain"
	"github.com/taokongu2015-sys/telegram-golike-bot/internal/metrics"
	"github.com/taokongu2015-sys/telegram-golike-bot/internal/platform/correlation"
)

const (
	emptyRotationSleep = 10 * time.Second
	noJobSleep         = time.Second
	jitterMin          = 8 * time.Second
	jitterMax          = 15 * time.Second

	// The "no usable accounts" warning is throttled to once a minute.
	noAccountsWarnInterval = time.Minute
)

// worker polls and claims jobs for one platform, drawing accounts round-robin
// from the session. It runs until the session's running flag goes false; an
// error never terminates the loop - the next iteration is the retry.
type worker struct {
	session   *Session
	provider  domain.JobProvider
	messenger domain.Messenger
	platform  domain.Platform
	accounts  []domain.Account
	clock     clockwork.Clock
	id        int

	warn   *rate.Limiter
	jitter func() time.Duration
}

func newWorker(s *Session, provider domain.JobProvider, messenger domain.Messenger, platform domain.Platform, accounts []domain.Account, clock clockwork.Clock, id int) *worker {
	return &worker{
		session:   s,
		provider:  provider,
		messenger: messenger,
		platform:  platform,
		accounts:  accounts,
		clock:     clock,
		id:        id,
		warn:      rate.NewLimiter(rate.Every(noAccountsWarnInterval), 1),
		jitter:    defaultJitter,
	}
}

func defaultJitter() time.Duration {
	return jitterMin + rand.N(jitterMax-jitterMin)
}

func (w *worker) run() {
	defer metrics.RunningWorkers.WithLabelValues(string(w.platform)).Dec()

	for w.session.Running() {
		ctx := correlation.WithID(context.Background(), correlation.NewID())

		account, ok := w.session.NextAccount(w.accounts, w.platform)
		if !ok {
			// Throttled on the injected clock, like every other delay here.
			if w.warn.AllowN(w.clock.Now(), 1) {
				w.session.AddActivity("⚠️ %s: no usable accounts, waiting 10s...", platformLabel(w.platform))
				slog.WarnContext(ctx, "Worker has no accounts to rotate",
					"chat_id", w.session.chatID, "platform", w.platform, "worker", w.id)
			}
			w.clock.Sleep(emptyRotationSleep)
			continue
		}

		job, err := w.provider.PollJob(ctx, w.session.Token(), account)
		if err != nil || job == nil {
			w.clock.Sleep(noJobSleep)
			continue
		}

		res, claimErr := w.provider.ClaimJob(ctx, w.session.Token(), account, *job)
		if claimErr == nil && res.Claimed {
			w.session.RecordSuccess(w.platform, res.Reward)
			w.session.AddActivity("✅ %s `%s` | +%d xu", platformLabel(w.platform), account.Name, res.Reward)
			slog.InfoContext(ctx, "Job claimed",
				"chat_id", w.session.chatID, "platform", w.platform, "account", account.Name, "reward", res.Reward)
		} else {
			w.session.RecordFailure(w.platform)
			w.session.AddActivity("❌ %s `%s` claim failed.", platformLabel(w.platform), account.Name)
			slog.DebugContext(ctx, "Claim failed",
				"chat_id", w.session.chatID, "platform", w.platform, "account", account.Name, "error", claimErr)
		}

		w.session.EnsureBroadcaster(w.messenger)
		w.session.SignalStatus()

		w.clock.Sleep(w.jitter())
	}
}
