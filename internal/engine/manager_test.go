package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taokongu2015-sys/telegram-golike-bot/internal/domain"
)

const testChatID = int64(42)

type managerFixture struct {
	manager   *Manager
	provider  *fakeProvider
	store     *fakeStore
	messenger *fakeMessenger
	clock     *clockwork.FakeClock
}

func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()
	provider := newFakeProvider()
	store := newFakeStore()
	messenger := newFakeMessenger()
	clock := clockwork.NewFakeClock()
	return &managerFixture{
		manager:   NewManager(provider, store, messenger, clock, 1),
		provider:  provider,
		store:     store,
		messenger: messenger,
		clock:     clock,
	}
}

func (f *managerFixture) seedCredential(cfg domain.PlatformConfig) {
	f.store.records[testChatID] = domain.CredentialRecord{
		ChatID:    testChatID,
		Token:     "token",
		Platforms: cfg,
	}
}

func TestSessionForWithoutCredential(t *testing.T) {
	f := newManagerFixture(t)

	_, err := f.manager.SessionFor(context.Background(), testChatID)

	assert.ErrorIs(t, err, domain.ErrCredentialRequired)
}

func TestSessionForRestoresFromStore(t *testing.T) {
	f := newManagerFixture(t)
	f.seedCredential(domain.PlatformConfig{Instagram: false, Threads: true})

	s, err := f.manager.SessionFor(context.Background(), testChatID)

	require.NoError(t, err)
	assert.Equal(t, "token", s.Token())
	assert.Equal(t, domain.PlatformConfig{Threads: true}, s.Platforms())

	again, err := f.manager.SessionFor(context.Background(), testChatID)
	require.NoError(t, err)
	assert.Same(t, s, again)
}

func TestSessionForStoreErrorMeansCredentialRequired(t *testing.T) {
	f := newManagerFixture(t)
	f.store.getErr = assert.AnError

	_, err := f.manager.SessionFor(context.Background(), testChatID)

	assert.ErrorIs(t, err, domain.ErrCredentialRequired)
}

func TestStartSpawnsWorkersAndSendsStatus(t *testing.T) {
	f := newManagerFixture(t)
	f.seedCredential(domain.DefaultPlatformConfig())
	f.provider.accounts[domain.PlatformInstagram] = accounts(1, 2)
	f.provider.accounts[domain.PlatformThreads] = []domain.Account{{ID: 9, Platform: domain.PlatformThreads}}

	started, err := f.manager.Start(context.Background(), testChatID)

	require.NoError(t, err)
	assert.Equal(t, 2, started)
	assert.Equal(t, 1, f.messenger.sendCount())

	s, _ := f.manager.SessionFor(context.Background(), testChatID)
	assert.True(t, s.Running())
	assert.NotZero(t, s.StatusMessageID())

	f.manager.StopAll()
}

func TestConcurrentStartsSpawnOneWorkerSet(t *testing.T) {
	f := newManagerFixture(t)
	f.seedCredential(domain.PlatformConfig{Instagram: true})

	// Hold both callers inside the account listing so each passes the
	// pre-flight Running check before either reaches Session.start.
	var entered sync.WaitGroup
	entered.Add(2)
	gate := make(chan struct{})
	f.provider.listFn = func(domain.Platform) ([]domain.Account, error) {
		entered.Done()
		<-gate
		return accounts(1, 2), nil
	}

	results := make(chan int, 2)
	for i := 0; i < 2; i++ {
		go func() {
			started, err := f.manager.Start(context.Background(), testChatID)
			assert.NoError(t, err)
			results <- started
		}()
	}
	entered.Wait()
	close(gate)

	total := <-results + <-results
	assert.Equal(t, 1, total)

	s, _ := f.manager.SessionFor(context.Background(), testChatID)
	workers, _ := s.workerTotals()
	assert.Equal(t, 1, workers)

	f.manager.StopAll()
}

func TestStartWhileRunningIsNoop(t *testing.T) {
	f := newManagerFixture(t)
	f.seedCredential(domain.DefaultPlatformConfig())
	f.provider.accounts[domain.PlatformInstagram] = accounts(1)

	started, err := f.manager.Start(context.Background(), testChatID)
	require.NoError(t, err)
	require.Equal(t, 1, started)

	again, err := f.manager.Start(context.Background(), testChatID)
	assert.NoError(t, err)
	assert.Equal(t, 0, again)

	f.manager.StopAll()
}

func TestStartWithAllPlatformsDisabled(t *testing.T) {
	f := newManagerFixture(t)
	f.seedCredential(domain.PlatformConfig{})

	_, err := f.manager.Start(context.Background(), testChatID)

	assert.ErrorIs(t, err, domain.ErrNoPlatformsEnabled)
}

func TestStartWithoutEligibleAccounts(t *testing.T) {
	f := newManagerFixture(t)
	f.seedCredential(domain.DefaultPlatformConfig())

	_, err := f.manager.Start(context.Background(), testChatID)

	assert.ErrorIs(t, err, domain.ErrNoEligibleAccounts)
	s, _ := f.manager.SessionFor(context.Background(), testChatID)
	assert.False(t, s.Running())
}

func TestStartUnauthorizedTokenIsTerminal(t *testing.T) {
	f := newManagerFixture(t)
	f.seedCredential(domain.DefaultPlatformConfig())
	f.provider.listErr[domain.PlatformInstagram] = domain.ErrUnauthorized

	_, err := f.manager.Start(context.Background(), testChatID)

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestStartSkipsPlatformWithListingError(t *testing.T) {
	f := newManagerFixture(t)
	f.seedCredential(domain.DefaultPlatformConfig())
	f.provider.listErr[domain.PlatformInstagram] = assert.AnError
	f.provider.accounts[domain.PlatformThreads] = []domain.Account{{ID: 9, Platform: domain.PlatformThreads}}

	started, err := f.manager.Start(context.Background(), testChatID)

	require.NoError(t, err)
	assert.Equal(t, 1, started)

	f.manager.StopAll()
}

func TestStopIsIdempotent(t *testing.T) {
	f := newManagerFixture(t)

	res, err := f.manager.Stop(context.Background(), testChatID)
	assert.NoError(t, err)
	assert.Zero(t, res)

	f.seedCredential(domain.DefaultPlatformConfig())
	f.provider.accounts[domain.PlatformInstagram] = accounts(1)
	_, err = f.manager.Start(context.Background(), testChatID)
	require.NoError(t, err)

	res, err = f.manager.Stop(context.Background(), testChatID)
	assert.NoError(t, err)
	assert.Equal(t, 1, res.Workers)

	res, err = f.manager.Stop(context.Background(), testChatID)
	assert.NoError(t, err)
	assert.Zero(t, res.Workers)
}

func TestStopReportsCumulativeEarnings(t *testing.T) {
	f := newManagerFixture(t)
	f.seedCredential(domain.DefaultPlatformConfig())
	f.provider.accounts[domain.PlatformInstagram] = accounts(1)

	_, err := f.manager.Start(context.Background(), testChatID)
	require.NoError(t, err)

	s, _ := f.manager.SessionFor(context.Background(), testChatID)
	s.RecordSuccess(domain.PlatformInstagram, 30)

	res, err := f.manager.Stop(context.Background(), testChatID)
	require.NoError(t, err)
	assert.Equal(t, 30, res.Earned)
}

func TestReplaceCredentialVerifiesAndPersists(t *testing.T) {
	f := newManagerFixture(t)
	f.provider.accounts[domain.PlatformInstagram] = accounts(1, 2)

	counts, err := f.manager.ReplaceCredential(context.Background(), testChatID, "fresh")

	require.NoError(t, err)
	assert.Equal(t, 2, counts[domain.PlatformInstagram])
	assert.Equal(t, 0, counts[domain.PlatformThreads])

	record, ok := f.store.stored(testChatID)
	require.True(t, ok)
	assert.Equal(t, "fresh", record.Token)
	assert.Equal(t, domain.DefaultPlatformConfig(), record.Platforms)
}

func TestReplaceCredentialRejectsUnauthorizedToken(t *testing.T) {
	f := newManagerFixture(t)
	f.provider.listErr[domain.PlatformThreads] = domain.ErrUnauthorized

	_, err := f.manager.ReplaceCredential(context.Background(), testChatID, "bad")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, ok := f.store.stored(testChatID)
	assert.False(t, ok)
}

func TestReplaceCredentialStopsRunningSessionAndResetsCounters(t *testing.T) {
	f := newManagerFixture(t)
	f.seedCredential(domain.PlatformConfig{Instagram: true})
	f.provider.accounts[domain.PlatformInstagram] = accounts(1)

	_, err := f.manager.Start(context.Background(), testChatID)
	require.NoError(t, err)
	old, _ := f.manager.SessionFor(context.Background(), testChatID)
	old.RecordSuccess(domain.PlatformInstagram, 99)

	_, err = f.manager.ReplaceCredential(context.Background(), testChatID, "fresh")
	require.NoError(t, err)

	assert.False(t, old.Running())

	s, _ := f.manager.SessionFor(context.Background(), testChatID)
	assert.NotSame(t, old, s)
	successes, _, reward := s.Totals()
	assert.Zero(t, successes)
	assert.Zero(t, reward)
	// Platform config carries over from the replaced session.
	assert.Equal(t, domain.PlatformConfig{Instagram: true}, s.Platforms())
}

func TestTogglePlatformPersists(t *testing.T) {
	f := newManagerFixture(t)
	f.seedCredential(domain.DefaultPlatformConfig())

	cfg, err := f.manager.TogglePlatform(context.Background(), testChatID, domain.PlatformThreads)

	require.NoError(t, err)
	assert.True(t, cfg.Threads)

	record, _ := f.store.stored(testChatID)
	assert.True(t, record.Platforms.Threads)
}

func TestTogglePlatformRejectedWhileRunning(t *testing.T) {
	f := newManagerFixture(t)
	f.seedCredential(domain.DefaultPlatformConfig())
	f.provider.accounts[domain.PlatformInstagram] = accounts(1)
	_, err := f.manager.Start(context.Background(), testChatID)
	require.NoError(t, err)

	_, err = f.manager.TogglePlatform(context.Background(), testChatID, domain.PlatformInstagram)

	assert.ErrorIs(t, err, domain.ErrSessionRunning)
	f.manager.StopAll()
}

func TestSnapshotReflectsSessionState(t *testing.T) {
	f := newManagerFixture(t)
	f.seedCredential(domain.DefaultPlatformConfig())

	s, err := f.manager.SessionFor(context.Background(), testChatID)
	require.NoError(t, err)
	s.RecordSuccess(domain.PlatformInstagram, 7)
	s.RecordFailure(domain.PlatformThreads)

	snap, err := f.manager.SnapshotFor(context.Background(), testChatID)

	require.NoError(t, err)
	assert.False(t, snap.Running)
	assert.Equal(t, 1, snap.Successes)
	assert.Equal(t, 1, snap.Failures)
	assert.Equal(t, 7, snap.Reward)
	assert.Zero(t, snap.Workers)
}

func TestPublishStatusSendsFreshMessageWhenHandleStale(t *testing.T) {
	f := newManagerFixture(t)
	f.seedCredential(domain.DefaultPlatformConfig())

	s, err := f.manager.SessionFor(context.Background(), testChatID)
	require.NoError(t, err)
	s.SetStatusMessageID(77)
	f.messenger.setEditErr(domain.ErrMessageNotFound)

	err = f.manager.PublishStatus(context.Background(), testChatID)

	require.NoError(t, err)
	assert.Equal(t, 1, f.messenger.sendCount())
	assert.NotEqual(t, 77, s.StatusMessageID())
}

func TestDeleteWithoutCredential(t *testing.T) {
	f := newManagerFixture(t)

	err := f.manager.Delete(context.Background(), testChatID)

	assert.ErrorIs(t, err, domain.ErrCredentialRequired)
}

func TestDeleteStopsSessionAndPurgesRecord(t *testing.T) {
	f := newManagerFixture(t)
	f.seedCredential(domain.DefaultPlatformConfig())
	f.provider.accounts[domain.PlatformInstagram] = accounts(1)

	_, err := f.manager.Start(context.Background(), testChatID)
	require.NoError(t, err)
	s, _ := f.manager.SessionFor(context.Background(), testChatID)

	err = f.manager.Delete(context.Background(), testChatID)

	require.NoError(t, err)
	assert.False(t, s.Running())
	_, ok := f.store.stored(testChatID)
	assert.False(t, ok)

	_, err = f.manager.SessionFor(context.Background(), testChatID)
	assert.ErrorIs(t, err, domain.ErrCredentialRequired)
}
