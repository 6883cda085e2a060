package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"golang.org/x/oauth2"
)

// DefaultTokenURI is used when the credentials file does not name one.
const DefaultTokenURI = "https://oauth2.googleapis.com/token"

var validate = validator.New()

// Credentials is the file written by google-oauthlib-tool.
type Credentials struct {
	Token        string   `json:"token,omitempty"`
	RefreshToken string   `json:"refresh_token" validate:"required"`
	TokenURI     string   `json:"token_uri" validate:"required,url"`
	ClientID     string   `json:"client_id" validate:"required"`
	ClientSecret string   `json:"client_secret" validate:"required"`
	Scopes       []string `json:"scopes"`
}

// LoadCredentials reads and validates the credentials file at path.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode credentials %s: %w", path, err)
	}
	if c.TokenURI == "" {
		c.TokenURI = DefaultTokenURI
	}
	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("invalid credentials %s: %w", path, err)
	}
	return &c, nil
}

func (c *Credentials) config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Scopes:       c.Scopes,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.TokenURI,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Refresh exchanges the refresh token for an access token and returns a
// source that keeps refreshing it. ctx must outlive the returned source.
func (c *Credentials) Refresh(ctx context.Context) (oauth2.TokenSource, error) {
	src := c.config().TokenSource(ctx, &oauth2.Token{RefreshToken: c.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh credentials: %w", err)
	}
	return oauth2.ReuseTokenSource(tok, src), nil
}
