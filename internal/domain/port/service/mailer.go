package service

import "context"

// Mailer delivers transactional mail. Failures are surfaced to the caller;
// the application performs no retries of its own.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendPasswordResetEmail(ctx context.Context, to, name, token string) error
}
