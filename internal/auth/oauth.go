package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// GoogleUserInfo represents Google OAuth user response
type GoogleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// HandleGoogleCallback exchanges the authorization code, fetches the
// profile, and finds or bootstraps the matching account.
func (s *Service) HandleGoogleCallback(code string) (*AuthResponse, error) {
	googleUser, err := s.getGoogleUserInfo(code)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google user info: %w", err)
	}

	user, err := s.BootstrapOAuthUser(googleUser.Sub, googleUser.Email, googleUser.Name, googleUser.Picture)
	if err != nil {
		return nil, err
	}

	return s.generateAuthResponse(user)
}

// getGoogleUserInfo fetches user info from Google OAuth
func (s *Service) getGoogleUserInfo(code string) (*GoogleUserInfo, error) {
	token, err := s.googleConfig.Exchange(context.Background(), code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	// v3 returns the provider id in the OIDC "sub" field
	client := s.googleConfig.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v3/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var googleUser GoogleUserInfo
	if err := json.Unmarshal(body, &googleUser); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}

	return &googleUser, nil
}
