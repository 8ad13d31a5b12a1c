package line

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

const profileURL = "https://api.line.me/v2/profile"

var lineEndpoint = oauth2.Endpoint{
	AuthURL:   "https://access.line.me/oauth2/v2.1/authorize",
	TokenURL:  "https://api.line.me/oauth2/v2.1/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// Authenticator runs the LINE Login authorization code flow.
type Authenticator interface {
	AuthCodeURL(state string) string
	FetchUserID(ctx context.Context, code string) (string, error)
}

type oauthAuthenticator struct {
	config *oauth2.Config
}

func NewOAuthAuthenticator(channelID, channelSecret, redirectURL string) Authenticator {
	return &oauthAuthenticator{
		config: &oauth2.Config{
			ClientID:     channelID,
			ClientSecret: channelSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"profile", "openid"},
			Endpoint:     lineEndpoint,
		},
	}
}

func (a *oauthAuthenticator) AuthCodeURL(state string) string {
	return a.config.AuthCodeURL(state)
}

func (a *oauthAuthenticator) FetchUserID(ctx context.Context, code string) (string, error) {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}

	resp, err := a.config.Client(ctx, token).Get(profileURL)
	if err != nil {
		return "", fmt.Errorf("failed to get line profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("line profile returned status %d", resp.StatusCode)
	}

	var profile struct {
		UserID      string `json:"userId"`
		DisplayName string `json:"displayName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", fmt.Errorf("failed to decode line profile: %w", err)
	}
	if profile.UserID == "" {
		return "", fmt.Errorf("line profile has no user id")
	}
	return profile.UserID, nil
}
