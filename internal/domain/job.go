package domain

import "context"

// Job is a single claimable engagement task surfaced by the provider for one
// account. Jobs are transient: produced by a poll, consumed by a claim, never
// persisted.
type Job struct {
	ID       int64
	Platform Platform
	Reward   int
}

// ClaimResult is the outcome of submitting a claim for a polled job.
type ClaimResult struct {
	Claimed bool
	Reward  int
}

// JobProvider abstracts the remote Golike job-queue API per platform.
//
// Every call carries its own short timeout and performs no internal retry; the
// worker loop is the retry mechanism.
type JobProvider interface {
	// ListEligibleAccounts fetches all linked accounts for a platform, filtered
	// to active-and-not-banned. An unauthorized credential is reported as
	// ErrUnauthorized; anything else (network, parse) is a generic error.
	ListEligibleAccounts(ctx context.Context, token string, platform Platform) ([]Account, error)

	// PollJob asks for a pending job for the account. Absence of a job, any
	// network error, and malformed responses are all reported identically as
	// (nil, nil) - polling never hard-fails.
	PollJob(ctx context.Context, token string, account Account) (*Job, error)

	// ClaimJob submits completion of a polled job. A non-nil error means the
	// claim could not be delivered; callers count it as a failed claim.
	ClaimJob(ctx context.Context, token string, account Account, job Job) (ClaimResult, error)
}
