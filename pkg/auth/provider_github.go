package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubOAuthConfig holds configuration for the GitHub OAuth provider.
type GitHubOAuthConfig struct {
	ClientID     string   `env:"GITHUB_OAUTH_CLIENT_ID,required"`
	ClientSecret string   `env:"GITHUB_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string   `env:"GITHUB_OAUTH_REDIRECT_URL,required"`
	Scopes       []string `env:"GITHUB_OAUTH_SCOPES" envSeparator:"," envDefault:"read:user"`
}

type githubAdapter struct {
	conf       *oauth2.Config
	httpClient *http.Client
}

// NewGitHubAdapter creates the code-host provider adapter. GitHub profiles
// may hide the email entirely, so accounts link by the stable profile URL
// and the email-collection flow runs when no email is available.
func NewGitHubAdapter(cfg GitHubOAuthConfig) ProviderAdapter {
	return &githubAdapter{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     github.Endpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *githubAdapter) Name() string {
	return "github"
}

func (a *githubAdapter) Policy() LinkPolicy {
	return LinkPolicy{LinkBy: LinkByProfileURL, EmailGuaranteedVerified: false}
}

// AuthURL builds the GitHub authorization URL with the given state token.
func (a *githubAdapter) AuthURL(state string) string {
	return a.conf.AuthCodeURL(state)
}

type githubUser struct {
	Login   string `json:"login"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	HTMLURL string `json:"html_url"`
	Avatar  string `json:"avatar_url"`
}

// ResolveProfile exchanges the authorization code and fetches the user
// endpoint. The email field is whatever the user made public, which is
// frequently empty; the linker handles that case.
func (a *githubAdapter) ResolveProfile(ctx context.Context, code string) (Profile, error) {
	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return Profile{}, ErrInvalidCode
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/user", nil)
	if err != nil {
		return Profile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("fetch github user: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("github user endpoint returned status %d", resp.StatusCode)
	}

	var u githubUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return Profile{}, fmt.Errorf("decode github user: %w", err)
	}

	if u.HTMLURL == "" {
		return Profile{}, fmt.Errorf("github profile missing html_url")
	}

	displayName := u.Name
	if displayName == "" {
		displayName = u.Login
	}

	var email string
	if u.Email != "" {
		email = normalizeEmail(u.Email)
	}

	return Profile{
		DisplayName: displayName,
		Email:       email,
		ProfileURL:  u.HTMLURL,
		PhotoURL:    u.Avatar,
		Strategy:    StrategyCodeHost,
	}, nil
}
