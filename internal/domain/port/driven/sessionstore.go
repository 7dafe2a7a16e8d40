package driven

import (
	"context"
	"errors"
	"time"

	"github.com/ericfisherdev/authorsite/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned by SessionStore writes when
// AUTHORSITE_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set AUTHORSITE_SECRET_KEY")

// SessionStore defines the driven port for signed-in author sessions. Tokens
// are plaintext at this boundary; adapters encrypt them at rest.
type SessionStore interface {
	Create(ctx context.Context, session model.Session) error
	// Get returns (nil, nil) if no session exists for id.
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes sessions whose token expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
