package driven

import "context"

// Mailer defines the driven port for the transactional email service.
// Send makes a single attempt; callers surface failures without retrying.
type Mailer interface {
	Send(ctx context.Context, templateID string, params map[string]string) error
}
