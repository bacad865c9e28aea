package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Gmail API scopes: readonly for checking notifications, send for digests.
var gmailScopes = []string{
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.send",
}

// NewAuthenticatedClient builds an OAuth2 HTTP client from installed-app
// credentials and a cached token. A missing credentials file is a fatal
// configuration error; a missing token triggers the interactive
// authorization flow. Refreshed tokens are written back to tokenPath.
func NewAuthenticatedClient(ctx context.Context, credentialsPath, tokenPath string) (*http.Client, error) {
	raw, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials %s (download OAuth client credentials from Google Cloud Console): %w", credentialsPath, err)
	}

	conf, err := google.ConfigFromJSON(raw, gmailScopes...)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	tok, err := loadToken(tokenPath)
	if err != nil {
		tok, err = authorize(ctx, conf)
		if err != nil {
			return nil, fmt.Errorf("authorize: %w", err)
		}
		if err := saveToken(tokenPath, tok); err != nil {
			return nil, fmt.Errorf("save token: %w", err)
		}
	}

	src := &savingTokenSource{
		path: tokenPath,
		src:  conf.TokenSource(ctx, tok),
		last: tok,
	}

	return oauth2.NewClient(ctx, src), nil
}

// authorize runs the out-of-band code flow: print the consent URL, read the
// code from stdin, exchange it for a token.
func authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	authURL := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Open the following URL in a browser and paste the authorization code:\n%s\n> ", authURL)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, fmt.Errorf("read authorization code: %w", err)
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("parse token %s: %w", path, err)
	}
	return &tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	return os.WriteFile(path, raw, 0o600)
}

// savingTokenSource persists refreshed tokens so the next run skips the
// interactive flow.
type savingTokenSource struct {
	path string
	src  oauth2.TokenSource
	last *oauth2.Token
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.last == nil || tok.AccessToken != s.last.AccessToken {
		if saveErr := saveToken(s.path, tok); saveErr == nil {
			s.last = tok
		}
	}
	return tok, nil
}
