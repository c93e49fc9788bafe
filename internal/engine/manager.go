package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/taokongu2015-sys/telegram-golike-bot/internal/domain"
	"github.com/taokongu2015-sys/telegram-golike-bot/internal/metrics"
)

// Snapshot is a point-in-time view of a session for the control surface.
// Fields are read under their individual locks; the struct is approximately,
// not atomically, consistent.
type Snapshot struct {
	Running   bool
	Platforms domain.PlatformConfig
	Workers   int
	Successes int
	Failures  int
	Reward    int
}

// StopResult reports what a stop call ended.
type StopResult struct {
	Workers int
	Earned  int
}

// Manager owns the process-wide session registry and orchestrates session
// lifecycle: restore/create, start, stop, credential replacement, deletion.
// The registry lock guards only map mutation and is never held across a
// network call.
type Manager struct {
	provider           domain.JobProvider
	store              domain.CredentialStore
	messenger          domain.Messenger
	clock              clockwork.Clock
	workersPerPlatform int

	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewManager(provider domain.JobProvider, store domain.CredentialStore, messenger domain.Messenger, clock clockwork.Clock, workersPerPlatform int) *Manager {
	if workersPerPlatform < 1 {
		workersPerPlatform = 1
	}
	return &Manager{
		provider:           provider,
		store:              store,
		messenger:          messenger,
		clock:              clock,
		workersPerPlatform: workersPerPlatform,
		sessions:           make(map[int64]*Session),
	}
}

// SessionFor returns the live session for a chat, lazily restoring it from
// the credential store. Returns ErrCredentialRequired when neither exists.
func (m *Manager) SessionFor(ctx context.Context, chatID int64) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[chatID]
	m.mu.Unlock()
	if ok {
		return s, nil
	}

	record, err := m.store.Get(ctx, chatID)
	if err != nil {
		// Durability is lost, not the process.
		slog.Warn("Credential store read failed", "chat_id", chatID, "error", err)
	}
	if record == nil {
		return nil, domain.ErrCredentialRequired
	}

	s = newSession(chatID, record.Token, record.Platforms, m.clock)
	s.AddActivity("Session restored from store.")

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[chatID]; ok {
		// Lost a restore race; keep the winner.
		return existing, nil
	}
	m.sessions[chatID] = s
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	return s, nil
}

// Start spawns workers for every enabled platform with eligible accounts plus
// the status broadcaster. Returns the number of workers started; 0 with a nil
// error means the session was already running.
func (m *Manager) Start(ctx context.Context, chatID int64) (int, error) {
	s, err := m.SessionFor(ctx, chatID)
	if err != nil {
		return 0, err
	}
	if s.Running() {
		return 0, nil
	}

	cfg := s.Platforms()
	if !cfg.Any() {
		return 0, domain.ErrNoPlatformsEnabled
	}

	accounts := make(map[domain.Platform][]domain.Account)
	total := 0
	for _, p := range domain.Platforms {
		if !cfg.Enabled(p) {
			continue
		}
		accs, err := m.provider.ListEligibleAccounts(ctx, s.Token(), p)
		if errors.Is(err, domain.ErrUnauthorized) {
			return 0, fmt.Errorf("listing %s accounts: %w", p, err)
		}
		if err != nil {
			slog.Warn("Account listing failed, platform skipped for this start",
				"chat_id", chatID, "platform", p, "error", err)
			continue
		}
		accounts[p] = accs
		total += len(accs)
	}
	if total == 0 {
		return 0, domain.ErrNoEligibleAccounts
	}

	started, fresh := s.start(accounts, m.workersPerPlatform, m.provider, m.messenger)
	if !fresh {
		// Lost a start race; the winner's worker set is already running.
		return 0, nil
	}
	if started == 0 {
		return 0, domain.ErrNoEligibleAccounts
	}
	s.AddActivity("Started %d worker(s).", started)

	m.refreshStatusMessage(ctx, s)
	return started, nil
}

// refreshStatusMessage replaces the pinned status message with a fresh one so
// the broadcaster has a valid handle to edit.
func (m *Manager) refreshStatusMessage(ctx context.Context, s *Session) {
	if id := s.StatusMessageID(); id != 0 {
		if err := m.messenger.DeleteMessage(ctx, s.chatID, id); err != nil {
			slog.Debug("Stale status message delete failed", "chat_id", s.chatID, "error", err)
		}
		s.SetStatusMessageID(0)
	}

	id, err := m.messenger.SendStatus(ctx, s.chatID, s.RenderStatus(), s.Running())
	if err != nil {
		// The broadcaster sends a fresh message on its next wake.
		slog.Warn("Initial status message failed", "chat_id", s.chatID, "error", err)
		return
	}
	s.SetStatusMessageID(id)
}

// Stop is idempotent: stopping an absent or non-running session returns a
// zero result. It does not wait for workers to exit.
func (m *Manager) Stop(ctx context.Context, chatID int64) (StopResult, error) {
	m.mu.Lock()
	s, ok := m.sessions[chatID]
	m.mu.Unlock()
	if !ok {
		return StopResult{}, nil
	}

	stopped := s.stop()
	_, _, earned := s.Totals()
	if stopped > 0 {
		s.AddActivity("⏹️ Stopped %d worker(s). Total earned: %d", stopped, earned)
		if id := s.StatusMessageID(); id != 0 {
			if err := m.messenger.EditStatus(ctx, chatID, id, s.RenderStatus(), false); err != nil && !errors.Is(err, domain.ErrMessageNotFound) {
				slog.Debug("Final status edit failed", "chat_id", chatID, "error", err)
			}
		}
	}
	return StopResult{Workers: stopped, Earned: earned}, nil
}

// ReplaceCredential verifies a token by listing accounts on every platform,
// stops any running session, and installs a fresh session preserving the
// previous platform config. Returns the eligible account count per platform.
func (m *Manager) ReplaceCredential(ctx context.Context, chatID int64, token string) (map[domain.Platform]int, error) {
	counts := make(map[domain.Platform]int)
	for _, p := range domain.Platforms {
		accs, err := m.provider.ListEligibleAccounts(ctx, token, p)
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, err
		}
		if err != nil {
			slog.Warn("Account listing failed during credential check", "chat_id", chatID, "platform", p, "error", err)
			continue
		}
		counts[p] = len(accs)
	}

	cfg := domain.DefaultPlatformConfig()
	if record, err := m.store.Get(ctx, chatID); err != nil {
		slog.Warn("Credential store read failed", "chat_id", chatID, "error", err)
	} else if record != nil {
		cfg = record.Platforms
	}

	m.mu.Lock()
	old := m.sessions[chatID]
	m.mu.Unlock()
	if old != nil {
		if old.stop() > 0 {
			slog.Info("Stopped running session for credential replacement", "chat_id", chatID)
		}
		cfg = old.Platforms()
	}

	s := newSession(chatID, token, cfg, m.clock)
	s.AddActivity("New token configured. IG:%d, TH:%d",
		counts[domain.PlatformInstagram], counts[domain.PlatformThreads])

	m.mu.Lock()
	m.sessions[chatID] = s
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	m.persist(ctx, s)
	return counts, nil
}

// TogglePlatform flips one platform flag. Rejected while running.
func (m *Manager) TogglePlatform(ctx context.Context, chatID int64, p domain.Platform) (domain.PlatformConfig, error) {
	s, err := m.SessionFor(ctx, chatID)
	if err != nil {
		return domain.PlatformConfig{}, err
	}
	cfg, err := s.togglePlatform(p)
	if err != nil {
		return cfg, err
	}
	m.persist(ctx, s)
	return cfg, nil
}

// SetPlatforms replaces the whole platform config. Rejected while running.
func (m *Manager) SetPlatforms(ctx context.Context, chatID int64, cfg domain.PlatformConfig) (domain.PlatformConfig, error) {
	s, err := m.SessionFor(ctx, chatID)
	if err != nil {
		return domain.PlatformConfig{}, err
	}
	applied, err := s.setPlatforms(cfg)
	if err != nil {
		return applied, err
	}
	m.persist(ctx, s)
	return applied, nil
}

// Snapshot returns a point-in-time view of the session.
func (m *Manager) SnapshotFor(ctx context.Context, chatID int64) (Snapshot, error) {
	s, err := m.SessionFor(ctx, chatID)
	if err != nil {
		return Snapshot{}, err
	}
	successes, failures, reward := s.Totals()
	workers, _ := s.workerTotals()
	return Snapshot{
		Running:   s.Running(),
		Platforms: s.Platforms(),
		Workers:   workers,
		Successes: successes,
		Failures:  failures,
		Reward:    reward,
	}, nil
}

// PublishStatus edits the pinned status message, or sends a fresh one when
// the handle is missing or stale.
func (m *Manager) PublishStatus(ctx context.Context, chatID int64) error {
	s, err := m.SessionFor(ctx, chatID)
	if err != nil {
		return err
	}

	text := s.RenderStatus()
	if id := s.StatusMessageID(); id != 0 {
		err = m.messenger.EditStatus(ctx, chatID, id, text, s.Running())
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrMessageNotFound) {
			return fmt.Errorf("status edit failed: %w", err)
		}
		s.SetStatusMessageID(0)
	}

	id, err := m.messenger.SendStatus(ctx, chatID, text, s.Running())
	if err != nil {
		return fmt.Errorf("status send failed: %w", err)
	}
	s.SetStatusMessageID(id)
	return nil
}

// Delete stops any live session, removes its status message, and purges both
// the registry entry and the persisted record.
func (m *Manager) Delete(ctx context.Context, chatID int64) error {
	m.mu.Lock()
	s, live := m.sessions[chatID]
	delete(m.sessions, chatID)
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	if !live {
		record, err := m.store.Get(ctx, chatID)
		if err != nil {
			slog.Warn("Credential store read failed", "chat_id", chatID, "error", err)
		}
		if record == nil {
			return domain.ErrCredentialRequired
		}
	}

	if live {
		if s.stop() > 0 {
			slog.Info("Stopped running session before deletion", "chat_id", chatID)
		}
		if id := s.StatusMessageID(); id != 0 {
			if err := m.messenger.DeleteMessage(ctx, chatID, id); err != nil {
				slog.Debug("Status message delete failed", "chat_id", chatID, "error", err)
			}
		}
	}

	if err := m.store.Delete(ctx, chatID); err != nil {
		slog.Warn("Credential store delete failed", "chat_id", chatID, "error", err)
	}
	return nil
}

// StopAll stops every live session. Used during shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.stop()
	}
}

func (m *Manager) persist(ctx context.Context, s *Session) {
	record := domain.CredentialRecord{
		ChatID:    s.chatID,
		Token:     s.Token(),
		Platforms: s.Platforms(),
	}
	if err := m.store.Upsert(ctx, record); err != nil {
		// In-memory state stays authoritative; only durability is lost.
		slog.Warn("Credential store write failed", "chat_id", s.chatID, "error", err)
	}
}
