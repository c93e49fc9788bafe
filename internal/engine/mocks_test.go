package engine

import (
	"context"
	"sync"

	"github.com/taokongu2015-sys/telegram-golike-bot/internal/domain"
)

type fakeProvider struct {
	mu       sync.Mutex
	accounts map[domain.Platform][]domain.Account
	listErr  map[domain.Platform]error
	listFn   func(platform domain.Platform) ([]domain.Account, error)
	pollFn   func(account domain.Account) (*domain.Job, error)
	claimFn  func(account domain.Account, job domain.Job) (domain.ClaimResult, error)

	listCalls  int
	pollCalls  []domain.Account
	claimCalls []domain.Account
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		accounts: make(map[domain.Platform][]domain.Account),
		listErr:  make(map[domain.Platform]error),
	}
}

func (f *fakeProvider) ListEligibleAccounts(_ context.Context, _ string, platform domain.Platform) ([]domain.Account, error) {
	f.mu.Lock()
	f.listCalls++
	fn := f.listFn
	err := f.listErr[platform]
	accs := f.accounts[platform]
	f.mu.Unlock()

	if fn != nil {
		return fn(platform)
	}
	if err != nil {
		return nil, err
	}
	return accs, nil
}

func (f *fakeProvider) PollJob(_ context.Context, _ string, account domain.Account) (*domain.Job, error) {
	f.mu.Lock()
	fn := f.pollFn
	f.pollCalls = append(f.pollCalls, account)
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(account)
}

func (f *fakeProvider) ClaimJob(_ context.Context, _ string, account domain.Account, job domain.Job) (domain.ClaimResult, error) {
	f.mu.Lock()
	fn := f.claimFn
	f.claimCalls = append(f.claimCalls, account)
	f.mu.Unlock()
	if fn == nil {
		return domain.ClaimResult{}, nil
	}
	return fn(account, job)
}

func (f *fakeProvider) polled() []domain.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Account(nil), f.pollCalls...)
}

type fakeMessenger struct {
	mu      sync.Mutex
	nextID  int
	sends   []string
	edits   []int
	deletes []int
	notices []string

	sendErr error
	editErr error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{nextID: 100}
}

func (f *fakeMessenger) SendStatus(_ context.Context, _ int64, text string, _ bool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.nextID++
	f.sends = append(f.sends, text)
	return f.nextID, nil
}

func (f *fakeMessenger) EditStatus(_ context.Context, _ int64, messageID int, _ string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, messageID)
	return nil
}

func (f *fakeMessenger) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, messageID)
	return nil
}

func (f *fakeMessenger) SendNotice(_ context.Context, _ int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, text)
	return nil
}

func (f *fakeMessenger) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

func (f *fakeMessenger) editCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.edits)
}

func (f *fakeMessenger) setEditErr(err error) {
	f.mu.Lock()
	f.editErr = err
	f.mu.Unlock()
}

type fakeStore struct {
	mu      sync.Mutex
	records map[int64]domain.CredentialRecord

	getErr    error
	upsertErr error
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[int64]domain.CredentialRecord)}
}

func (f *fakeStore) Get(_ context.Context, chatID int64) (*domain.CredentialRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	record, ok := f.records[chatID]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (f *fakeStore) Upsert(_ context.Context, record domain.CredentialRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.records[record.ChatID] = record
	return nil
}

func (f *fakeStore) Delete(_ context.Context, chatID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.records, chatID)
	return nil
}

func (f *fakeStore) stored(chatID int64) (domain.CredentialRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[chatID]
	return record, ok
}
