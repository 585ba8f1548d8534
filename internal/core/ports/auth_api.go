package ports

import (
	"context"

	"github.com/workcity/crm-client/internal/core/domain"
)

// Credentials is a login request.
type Credentials struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupInput carries the registration form fields.
type SignupInput struct {
	FirstName       string `json:"firstName"       validate:"required"`
	LastName        string `json:"lastName"        validate:"required"`
	Email           string `json:"email"           validate:"required,email"`
	Password        string `json:"password"        validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// ProfilePatch is a partial profile update; nil fields are untouched.
type ProfilePatch struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
}

// ChangePasswordInput carries a password rotation request.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6"`
}

// AuthResult is the session material returned by login and signup.
type AuthResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// AuthAPI maps the /auth REST resource. It is purely remote: the demo
// bypass lives in the service layer, never here.
type AuthAPI interface {
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)
	Signup(ctx context.Context, input SignupInput) (*AuthResult, error)
	Logout(ctx context.Context) error
	// CurrentUser calls the whoami endpoint for the stored bearer token.
	CurrentUser(ctx context.Context) (*domain.User, error)
	UpdateProfile(ctx context.Context, patch ProfilePatch) (*domain.User, error)
	ChangePassword(ctx context.Context, input ChangePasswordInput) error
}
