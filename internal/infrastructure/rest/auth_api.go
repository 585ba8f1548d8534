package rest

import (
	"context"

	"github.com/workcity/crm-client/internal/core/domain"
	"github.com/workcity/crm-client/internal/core/ports"
)

// AuthAPI implements ports.AuthAPI against /auth. The demo bypass never
// reaches this adapter; it is handled one layer up in the auth service.
type AuthAPI struct {
	http *Client
}

func NewAuthAPI(http *Client) *AuthAPI {
	return &AuthAPI{http: http}
}

func (a *AuthAPI) Login(ctx context.Context, creds ports.Credentials) (*ports.AuthResult, error) {
	if err := checkInput(creds); err != nil {
		return nil, err
	}
	var result ports.AuthResult
	if err := a.http.Post(ctx, "/auth/login", creds, &result); err != nil {
		return nil, withFallback(err, "Invalid email or password")
	}
	return &result, nil
}

func (a *AuthAPI) Signup(ctx context.Context, input ports.SignupInput) (*ports.AuthResult, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}
	var result ports.AuthResult
	if err := a.http.Post(ctx, "/auth/signup", input, &result); err != nil {
		return nil, withFallback(err, "Failed to create account")
	}
	return &result, nil
}

func (a *AuthAPI) Logout(ctx context.Context) error {
	if err := a.http.Post(ctx, "/auth/logout", nil, nil); err != nil {
		return withFallback(err, "Logout failed")
	}
	return nil
}

func (a *AuthAPI) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := a.http.Get(ctx, "/auth/me", &user); err != nil {
		return nil, withFallback(err, "Failed to verify session")
	}
	return &user, nil
}

func (a *AuthAPI) UpdateProfile(ctx context.Context, patch ports.ProfilePatch) (*domain.User, error) {
	if err := checkInput(patch); err != nil {
		return nil, err
	}
	var user domain.User
	if err := a.http.Put(ctx, "/auth/profile", patch, &user); err != nil {
		return nil, withFallback(err, "Failed to update profile")
	}
	return &user, nil
}

func (a *AuthAPI) ChangePassword(ctx context.Context, input ports.ChangePasswordInput) error {
	if err := checkInput(input); err != nil {
		return err
	}
	if err := a.http.Put(ctx, "/auth/change-password", input, nil); err != nil {
		return withFallback(err, "Failed to change password")
	}
	return nil
}
