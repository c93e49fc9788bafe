package engine

import (
	"sync"

	"github.com/taokongu2015-sys/telegram-golike-bot/internal/domain"
)

// Rotator is a round-robin cursor over a session's accounts, one cursor per
// platform. The cursor read-modify-write is atomic under a single lock, so no
// two concurrent callers observe the same index for the same advance.
type Rotator struct {
	mu      sync.Mutex
	cursors map[domain.Platform]int
}

func NewRotator() *Rotator {
	return &Rotator{cursors: make(map[domain.Platform]int)}
}

// Next returns the account at the platform's cursor and advances it. Returns
// false without advancing when accounts is empty. A cursor left out of bounds
// by a shrunken list resets to 0 before indexing.
func (r *Rotator) Next(accounts []domain.Account, platform domain.Platform) (domain.Account, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(accounts) == 0 {
		return domain.Account{}, false
	}

	cursor := r.cursors[platform]
	if cursor >= len(accounts) {
		cursor = 0
	}

	account := accounts[cursor]
	r.cursors[platform] = (cursor + 1) % len(accounts)
	return account, true
}

// Reset moves every cursor back to 0. Called on session stop.
func (r *Rotator) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for p := range r.cursors {
		r.cursors[p] = 0
	}
}

func (r *Rotator) cursor(platform domain.Platform) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursors[platform]
}
