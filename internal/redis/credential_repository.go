package redis

import (
	"context"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/taokongu2015-sys/telegram-golike-bot/internal/domain"
)

const (
	// Redis hash field names for credential keys.
	fieldToken            = "token"
	fieldInstagramEnabled = "instagram_enabled"
	fieldThreadsEnabled   = "threads_enabled"
)

// CredentialRepo persists per-chat Golike credentials and platform flags as a
// Redis hash. Keys have no TTL; a credential lives until /deleteauth.
type CredentialRepo struct {
	rdb *goredis.Client
}

var _ domain.CredentialStore = (*CredentialRepo)(nil)

func NewCredentialRepo(rdb *goredis.Client) *CredentialRepo {
	return &CredentialRepo{rdb: rdb}
}

func (r *CredentialRepo) Get(ctx context.Context, chatID int64) (*domain.CredentialRecord, error) {
	fields, err := r.rdb.HGetAll(ctx, credentialKey(chatID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}
	// HGetAll reports a missing key as an empty map.
	if len(fields) == 0 {
		return nil, nil
	}

	return &domain.CredentialRecord{
		ChatID: chatID,
		Token:  fields[fieldToken],
		Platforms: domain.PlatformConfig{
			Instagram: fields[fieldInstagramEnabled] == "1",
			Threads:   fields[fieldThreadsEnabled] == "1",
		},
	}, nil
}

func (r *CredentialRepo) Upsert(ctx context.Context, record domain.CredentialRecord) error {
	err := r.rdb.HSet(ctx, credentialKey(record.ChatID), map[string]any{
		fieldToken:            record.Token,
		fieldInstagramEnabled: boolField(record.Platforms.Instagram),
		fieldThreadsEnabled:   boolField(record.Platforms.Threads),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to write credential: %w", err)
	}
	return nil
}

func (r *CredentialRepo) Delete(ctx context.Context, chatID int64) error {
	if err := r.rdb.Del(ctx, credentialKey(chatID)).Err(); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

func credentialKey(chatID int64) string {
	return "auth:" + strconv.FormatInt(chatID, 10)
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
