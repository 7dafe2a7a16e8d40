package driven

import (
	"context"

	"github.com/ericfisherdev/authorsite/internal/domain/model"
)

// TokenIssuer defines the driven port for the CMS JWT authentication endpoint.
type TokenIssuer interface {
	// IssueToken exchanges a username and password for a bearer token.
	// Returns ErrUnauthorized when the credentials are rejected.
	IssueToken(ctx context.Context, username, password string) (model.AuthToken, error)
}
