package client

import (
	"context"
	"net/http"
)

// SignInResult is the login payload: the identity for X-User-ID plus profile.
type SignInResult struct {
	UserID ID   `json:"user_id"`
	User   User `json:"user"`
}

// SignupResult is the registration payload. FirstDispatch is nil when the
// first question waits on channel verification.
type SignupResult struct {
	UserID        ID        `json:"user_id"`
	User          User      `json:"user"`
	FirstDispatch *Dispatch `json:"first_dispatch"`
}

// SignupRequest carries the registration form.
type SignupRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Code     string   `json:"code"`
	JobTrack string   `json:"job_track,omitempty"`
	Position string   `json:"position,omitempty"`
	Channels []string `json:"channels,omitempty"`
	Cadence  string   `json:"cadence,omitempty"`
}

// ProfileUpdate carries a partial settings update; nil fields are untouched.
type ProfileUpdate struct {
	Name     *string   `json:"name,omitempty"`
	JobTrack *string   `json:"job_track,omitempty"`
	Position *string   `json:"position,omitempty"`
	Intro    *string   `json:"intro,omitempty"`
	Channels *[]string `json:"channels,omitempty"`
	Cadence  *string   `json:"cadence,omitempty"`
}

// SignIn logs in with email and password.
func (c *Client) SignIn(ctx context.Context, email, password string) (SignInResult, error) {
	body := map[string]string{"email": email, "password": password}
	return call[SignInResult](ctx, c, http.MethodPost, "/auth/signin", body)
}

// Signup registers a new account. The email verification code must already be
// issued via RequestEmailCode.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (SignupResult, error) {
	return call[SignupResult](ctx, c, http.MethodPost, "/auth/signup", req)
}

// RequestEmailCode asks the backend to mail a verification code.
func (c *Client) RequestEmailCode(ctx context.Context, email string) error {
	_, err := call[struct{}](ctx, c, http.MethodPost, "/auth/email/request", map[string]string{"email": email})
	return err
}

// VerifyEmailCode checks a code without consuming it, for form-side validation.
func (c *Client) VerifyEmailCode(ctx context.Context, email, code string) (bool, error) {
	out, err := call[struct {
		Verified bool `json:"verified"`
	}](ctx, c, http.MethodPost, "/auth/email/verify", map[string]string{"email": email, "code": code})
	if err != nil {
		return false, err
	}
	return out.Verified, nil
}

// ResetPassword replaces the password after an email code verification.
func (c *Client) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	body := map[string]string{"email": email, "code": code, "new_password": newPassword}
	_, err := call[struct{}](ctx, c, http.MethodPost, "/auth/password", body)
	return err
}

// KakaoLoginURL fetches the Kakao authorization URL for the channel handoff.
func (c *Client) KakaoLoginURL(ctx context.Context) (string, error) {
	out, err := call[struct {
		AuthorizationURL string `json:"authorization_url"`
	}](ctx, c, http.MethodGet, "/auth/kakao", nil)
	if err != nil {
		return "", err
	}
	return out.AuthorizationURL, nil
}

// KakaoExchange trades a one-time handoff ticket for the user identity.
func (c *Client) KakaoExchange(ctx context.Context, ticket string) (SignInResult, error) {
	return call[SignInResult](ctx, c, http.MethodPost, "/auth/kakao/exchange", map[string]string{"ticket": ticket})
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (User, error) {
	return call[User](ctx, c, http.MethodGet, "/users/me", nil)
}

// UpdateProfile applies a partial settings update and returns the new profile.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (User, error) {
	return call[User](ctx, c, http.MethodPut, "/users/me", update)
}

// DeleteAccount removes the account. The password gate runs server-side.
func (c *Client) DeleteAccount(ctx context.Context, password string) error {
	_, err := call[struct{}](ctx, c, http.MethodDelete, "/users/me", map[string]string{"password": password})
	return err
}
