package domain

import "context"

// Messenger is the outbound half of the control channel. The engine never
// assumes delivery succeeds; failures are logged by callers and never crash a
// worker.
type Messenger interface {
	// SendStatus pushes a fresh status message and returns its handle.
	SendStatus(ctx context.Context, chatID int64, text string, running bool) (int, error)

	// EditStatus updates a previously sent status message in place. A stale
	// handle is reported as ErrMessageNotFound; an unchanged body is not an
	// error.
	EditStatus(ctx context.Context, chatID int64, messageID int, text string, running bool) error

	// DeleteMessage removes a previously sent message. Best effort.
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error

	// SendNotice sends a plain one-off log line to the user.
	SendNotice(ctx context.Context, chatID int64, text string) error
}
