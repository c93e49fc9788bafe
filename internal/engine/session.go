package engine

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/taokongu2015-sys/telegram-golike-bot/internal/domain"
	"github.com/taokongu2015-sys/telegram-golike-bot/internal/metrics"
	"github.com/taokongu2015-sys/telegram-golike-bot/internal/platform/ring"
)

const (
	activityLogCapacity = 10
	activityLogTail     = 5
	statusInterval      = 3 * time.Second
)

// Activity timestamps are rendered in the audience's local time (UTC+7).
const vietnamOffset = 7 * time.Hour

// Session is the full runtime state for one user: credential, platform config,
// rotation cursors, aggregated counters, bounded activity log, and the worker
// and broadcaster handles of the current run.
//
// Counter categories each have their own lock so workers on different
// platforms never contend except momentarily on the shared rotation lock.
// Status rendering reads each field under its own lock; approximate
// consistency across fields is acceptable, so there is no global snapshot
// lock.
type Session struct {
	chatID int64
	token  string
	clock  clockwork.Clock

	rot *Rotator

	mu              sync.Mutex
	running         bool
	platforms       domain.PlatformConfig
	workerCounts    map[domain.Platform]int
	statusMessageID int
	bcast           *broadcaster

	successMu sync.Mutex
	successes int

	failureMu sync.Mutex
	failures  int

	rewardMu sync.Mutex
	reward   int

	logMu    sync.Mutex
	activity *ring.Buffer[string]

	// wake carries at most one pending status-update signal.
	wake chan struct{}
}

func newSession(chatID int64, token string, platforms domain.PlatformConfig, clock clockwork.Clock) *Session {
	return &Session{
		chatID:    chatID,
		token:     token,
		clock:     clock,
		rot:       NewRotator(),
		platforms: platforms,
		activity:  ring.New[string](activityLogCapacity),
		wake:      make(chan struct{}, 1),
	}
}

func (s *Session) ChatID() int64 { return s.chatID }
func (s *Session) Token() string { return s.token }

func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Session) Platforms() domain.PlatformConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.platforms
}

// togglePlatform flips one platform flag. Rejected while the session runs.
func (s *Session) togglePlatform(p domain.Platform) (domain.PlatformConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return s.platforms, domain.ErrSessionRunning
	}
	s.platforms = s.platforms.Toggled(p)
	return s.platforms, nil
}

func (s *Session) setPlatforms(cfg domain.PlatformConfig) (domain.PlatformConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return s.platforms, domain.ErrSessionRunning
	}
	s.platforms = cfg
	return s.platforms, nil
}

// --- Counters ---

func (s *Session) RecordSuccess(platform domain.Platform, reward int) {
	s.rewardMu.Lock()
	s.reward += reward
	s.rewardMu.Unlock()

	s.successMu.Lock()
	s.successes++
	s.successMu.Unlock()

	metrics.ClaimsTotal.WithLabelValues(string(platform), "success").Inc()
	metrics.RewardTotal.WithLabelValues(string(platform)).Add(float64(reward))
}

func (s *Session) RecordFailure(platform domain.Platform) {
	s.failureMu.Lock()
	s.failures++
	s.failureMu.Unlock()

	metrics.ClaimsTotal.WithLabelValues(string(platform), "failure").Inc()
}

// Totals returns the cumulative counters. Each is read under its own lock;
// the triple is not a single atomic snapshot.
func (s *Session) Totals() (successes, failures, reward int) {
	s.successMu.Lock()
	successes = s.successes
	s.successMu.Unlock()

	s.failureMu.Lock()
	failures = s.failures
	s.failureMu.Unlock()

	s.rewardMu.Lock()
	reward = s.reward
	s.rewardMu.Unlock()
	return successes, failures, reward
}

// --- Activity log ---

// AddActivity appends a timestamped entry to the bounded activity log.
func (s *Session) AddActivity(format string, args ...any) {
	ts := s.clock.Now().UTC().Add(vietnamOffset).Format("15:04:05")
	entry := fmt.Sprintf("*%s*: %s", ts, fmt.Sprintf(format, args...))

	s.logMu.Lock()
	s.activity.Append(entry)
	s.logMu.Unlock()
}

func (s *Session) activityTail() []string {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	return s.activity.Tail(activityLogTail)
}

// --- Rotation ---

// NextAccount draws the next account for a platform round-robin.
func (s *Session) NextAccount(accounts []domain.Account, platform domain.Platform) (domain.Account, bool) {
	return s.rot.Next(accounts, platform)
}

// --- Status message handle ---

func (s *Session) StatusMessageID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusMessageID
}

func (s *Session) SetStatusMessageID(id int) {
	s.mu.Lock()
	s.statusMessageID = id
	s.mu.Unlock()
}

// --- Broadcaster signalling ---

// SignalStatus requests an immediate status push. Non-blocking; coalesces
// with any pending signal.
func (s *Session) SignalStatus() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// EnsureBroadcaster respawns the status broadcaster if it died while the
// session is still running. Workers call this before signalling.
func (s *Session) EnsureBroadcaster(messenger domain.Messenger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	if s.bcast != nil && s.bcast.alive() {
		return
	}
	respawn := s.bcast != nil
	s.bcast = newBroadcaster(s, messenger, s.clock)
	go s.bcast.run()
	if respawn {
		metrics.BroadcasterRespawnsTotal.Inc()
	}
}

func (s *Session) bcastHandle() *broadcaster {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bcast
}

// --- Lifecycle ---

// start spawns perPlatform workers for every enabled platform that has at
// least one eligible account, plus the status broadcaster. Returns the number
// of workers spawned; if zero, running reverts to false. The running flag is
// re-checked under the lock so concurrent starts spawn exactly one worker set;
// the loser reports false and spawns nothing.
func (s *Session) start(accounts map[domain.Platform][]domain.Account, perPlatform int, provider domain.JobProvider, messenger domain.Messenger) (int, bool) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return 0, false
	}
	s.running = true
	s.workerCounts = make(map[domain.Platform]int)
	started := 0

	for _, p := range domain.Platforms {
		accs := accounts[p]
		if !s.platforms.Enabled(p) || len(accs) == 0 {
			continue
		}
		for i := 1; i <= perPlatform; i++ {
			w := newWorker(s, provider, messenger, p, accs, s.clock, i)
			go w.run()
			metrics.RunningWorkers.WithLabelValues(string(p)).Inc()
			started++
		}
		s.workerCounts[p] = perPlatform
		s.AddActivity("Started %s worker (%d accounts)", platformLabel(p), len(accs))
	}

	if started == 0 {
		s.running = false
		s.workerCounts = nil
		s.mu.Unlock()
		s.AddActivity("❌ No workers could be started.")
		return 0, true
	}
	s.mu.Unlock()

	s.EnsureBroadcaster(messenger)
	return started, true
}

// stop flips the running flag, resets rotation cursors, and clears the worker
// handles. It does not wait for worker goroutines to exit; cessation is
// cooperative and bounded by the longest in-flight timeout plus any sleep
// already entered.
func (s *Session) stop() int {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return 0
	}
	s.running = false
	stopped := 0
	for _, n := range s.workerCounts {
		stopped += n
	}
	s.workerCounts = nil
	s.mu.Unlock()

	s.rot.Reset()
	s.SignalStatus() // hasten broadcaster exit
	return stopped
}

func (s *Session) workerTotals() (total int, perPlatform map[domain.Platform]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	perPlatform = make(map[domain.Platform]int, len(s.workerCounts))
	for p, n := range s.workerCounts {
		perPlatform[p] = n
		total += n
	}
	return total, perPlatform
}

// --- Rendering ---

func platformLabel(p domain.Platform) string {
	switch p {
	case domain.PlatformInstagram:
		return "IG"
	case domain.PlatformThreads:
		return "Threads"
	default:
		return string(p)
	}
}

func flag(enabled bool) string {
	if enabled {
		return "✅"
	}
	return "❌"
}

// RenderStatus composes the status banner, platform flags, worker counts,
// cumulative totals, and the activity log tail (newest last).
func (s *Session) RenderStatus() string {
	cfg := s.Platforms()

	var b strings.Builder
	b.WriteString("*🤖 GOLIKE ROTATOR STATUS*\n")

	if s.Running() {
		total, per := s.workerTotals()
		b.WriteString("🟢 *Status:* RUNNING\n")
		fmt.Fprintf(&b, "Config: %s IG, %s Threads\n", flag(cfg.Instagram), flag(cfg.Threads))
		fmt.Fprintf(&b, "Workers: `%d` (IG:%d, TH:%d)\n\n",
			total, per[domain.PlatformInstagram], per[domain.PlatformThreads])
	} else {
		b.WriteString("🟡 *Status:* STOPPED\n")
		fmt.Fprintf(&b, "Config: %s IG, %s Threads\n", flag(cfg.Instagram), flag(cfg.Threads))
		b.WriteString("Workers: `0`\n\n")
	}

	successes, failures, reward := s.Totals()
	fmt.Fprintf(&b, "💰 *TOTAL EARNED:* `%d` xu\n", reward)
	fmt.Fprintf(&b, "✅ Succeeded: `%d`\n", successes)
	fmt.Fprintf(&b, "❌ Failed: `%d`\n", failures)

	b.WriteString("\n\n*🔔 RECENT ACTIVITY (VN time):*\n")
	if tail := s.activityTail(); len(tail) > 0 {
		b.WriteString(strings.Join(tail, "\n"))
	} else {
		b.WriteString("No activity yet...")
	}

	b.WriteString("\n\n/stopjob to stop, /config to configure.")
	fmt.Fprintf(&b, "\n*Auto-refreshes every %ds (instantly after a claimed job).*", int(statusInterval.Seconds()))
	return b.String()
}
