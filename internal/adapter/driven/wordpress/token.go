package wordpress

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/authorsite/internal/domain/model"
	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token       string `json:"token"`
	DisplayName string `json:"user_display_name"`
	Email       string `json:"user_email"`
}

// IssueToken exchanges credentials at the JWT endpoint. Rejected credentials
// return an error matching driven.ErrUnauthorized whose *driven.StatusError
// carries the CMS's own message.
func (c *Client) IssueToken(ctx context.Context, username, password string) (model.AuthToken, error) {
	var resp tokenResponse
	err := c.postJSON(ctx, c.jwtURL+"/token", "", tokenRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return model.AuthToken{}, fmt.Errorf("requesting token: %w", err)
	}
	if resp.Token == "" {
		return model.AuthToken{}, fmt.Errorf("requesting token: %w: empty token", driven.ErrMalformedResponse)
	}

	c.logger.Info("cms token issued", "display_name", resp.DisplayName)
	return model.AuthToken{
		Token:       resp.Token,
		DisplayName: resp.DisplayName,
		Email:       resp.Email,
	}, nil
}
