package domain

import "context"

// CredentialRecord is the durable projection of a user session: everything
// needed to reconstruct it after a restart.
type CredentialRecord struct {
	ChatID    int64
	Token     string
	Platforms PlatformConfig
}

// CredentialStore persists credentials and platform flags across restarts.
// Upsert is idempotent (insert-or-update on chat ID).
type CredentialStore interface {
	Get(ctx context.Context, chatID int64) (*CredentialRecord, error)
	Upsert(ctx context.Context, record CredentialRecord) error
	Delete(ctx context.Context, chatID int64) error
}
