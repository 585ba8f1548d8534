package service

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/workcity/crm-client/internal/core/domain"
	"github.com/workcity/crm-client/internal/core/ports"
	"github.com/workcity/crm-client/internal/metrics"
)

// DemoEmail is the reserved identity satisfied locally without a backend.
// Signing up with it is always rejected before any network call.
const DemoEmail = "demo@workcity.com"

const demoPassword = "demo123"

// AuthService is the authentication state machine: anonymous or
// authenticated, with the session persisted through the injected store.
// It owns the observable {user, isLoading, isAuthenticated} triple.
type AuthService struct {
	api      ports.AuthAPI
	sessions ports.SessionStore
	log      zerolog.Logger

	// demoEnabled gates the local bypass; it is false in production builds
	// so the synthetic identity can never ship live.
	demoEnabled bool
	demoSecret  string

	mu      sync.Mutex
	user    *domain.User
	loading bool
}

// AuthState is a consistent snapshot of the observable auth triple.
// IsAuthenticated is derived from User, so the two can never disagree.
type AuthState struct {
	User            *domain.User
	IsLoading       bool
	IsAuthenticated bool
}

func NewAuthService(api ports.AuthAPI, sessions ports.SessionStore, demoEnabled bool, demoSecret string, log zerolog.Logger) *AuthService {
	return &AuthService{
		api:         api,
		sessions:    sessions,
		demoEnabled: demoEnabled,
		demoSecret:  demoSecret,
		log:         log,
	}
}

// State returns the current observable triple.
func (s *AuthService) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AuthState{
		User:            s.user,
		IsLoading:       s.loading,
		IsAuthenticated: s.user != nil,
	}
}

func (s *AuthService) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *AuthService) settle(user *domain.User) {
	s.mu.Lock()
	s.user = user
	s.loading = false
	s.mu.Unlock()
}

// CheckAuthStatus restores the stored session and verifies it. Demo
// sessions are trusted from the cached record; real sessions are verified
// against the whoami endpoint, and a failed verification clears the slot
// (self-healing by invalidation). Run once at startup.
func (s *AuthService) CheckAuthStatus(ctx context.Context) (*domain.User, error) {
	s.setLoading(true)

	sess, err := s.sessions.Load(ctx)
	if err != nil || sess == nil {
		s.settle(nil)
		return nil, err
	}

	if sess.IsDemo() {
		user := sess.User
		s.settle(&user)
		return &user, nil
	}

	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		// The 401 path already cleared the slot; clear again for every
		// other failure so a broken session cannot linger.
		if clearErr := s.sessions.Clear(ctx); clearErr != nil {
			s.log.Error().Err(clearErr).Msg("failed to clear invalid session")
		}
		metrics.SessionTeardownsTotal.WithLabelValues("invalid").Inc()
		s.settle(nil)
		return nil, nil
	}

	// Refresh the denormalized user copy with the authoritative record.
	if err := s.sessions.Save(ctx, &domain.Session{Token: sess.Token, User: *user}); err != nil {
		s.log.Error().Err(err).Msg("failed to refresh session slot")
	}
	s.settle(user)
	return user, nil
}

// Login authenticates. The reserved demo identity is satisfied locally with
// a synthesized user and token; everything else goes to the remote endpoint.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	s.setLoading(true)

	if s.demoEnabled && email == DemoEmail && password == demoPassword {
		return s.demoLogin(ctx)
	}

	result, err := s.api.Login(ctx, ports.Credentials{Email: email, Password: password})
	if err != nil {
		s.settle(nil)
		return nil, err
	}

	if err := s.sessions.Save(ctx, &domain.Session{Token: result.Token, User: result.User}); err != nil {
		s.settle(nil)
		return nil, &domain.Error{Kind: domain.KindLocal, Message: "could not persist session", Err: err}
	}

	user := result.User
	s.settle(&user)
	s.log.Info().Str("email", user.Email).Msg("logged in")
	return &user, nil
}

// demoLogin synthesizes the demo identity without any network traffic.
func (s *AuthService) demoLogin(ctx context.Context) (*domain.User, error) {
	now := time.Now().UTC()
	user := domain.User{
		ID:        "demo-user-1",
		Email:     DemoEmail,
		FirstName: "Demo",
		LastName:  "User",
		Role:      domain.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	token, err := s.demoToken(&user, now)
	if err != nil {
		s.settle(nil)
		return nil, &domain.Error{Kind: domain.KindLocal, Message: "could not create demo session", Err: err}
	}

	if err := s.sessions.Save(ctx, &domain.Session{Token: token, User: user}); err != nil {
		s.settle(nil)
		return nil, &domain.Error{Kind: domain.KindLocal, Message: "could not persist session", Err: err}
	}

	metrics.DemoLoginsTotal.Inc()
	s.settle(&user)
	s.log.Info().Msg("demo session started")
	return &user, nil
}

// demoToken signs a locally verifiable token carrying the demo identity.
// The DemoTokenPrefix is what distinguishes it everywhere else; the JWT
// payload is informational only.
func (s *AuthService) demoToken(user *domain.User, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.demoSecret))
	if err != nil {
		return "", err
	}
	return domain.DemoTokenPrefix + signed, nil
}

// Signup registers a new account remotely. The reserved demo address is
// rejected locally before any request is issued.
func (s *AuthService) Signup(ctx context.Context, input ports.SignupInput) (*domain.User, error) {
	s.setLoading(true)

	if input.Email == DemoEmail {
		s.settle(nil)
		return nil, &domain.Error{
			Kind:    domain.KindLocal,
			Message: domain.ErrReservedIdentity.Error(),
			Err:     domain.ErrReservedIdentity,
		}
	}

	result, err := s.api.Signup(ctx, input)
	if err != nil {
		s.settle(nil)
		return nil, err
	}

	if err := s.sessions.Save(ctx, &domain.Session{Token: result.Token, User: result.User}); err != nil {
		s.settle(nil)
		return nil, &domain.Error{Kind: domain.KindLocal, Message: "could not persist session", Err: err}
	}

	user := result.User
	s.settle(&user)
	s.log.Info().Str("email", user.Email).Msg("account created")
	return &user, nil
}

// Logout always ends in the anonymous state. The remote call is best
// effort for real sessions and skipped entirely for demo sessions; a remote
// failure is logged, never surfaced.
func (s *AuthService) Logout(ctx context.Context) error {
	s.setLoading(true)

	sess, err := s.sessions.Load(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load session during logout")
	}
	if sess != nil && !sess.IsDemo() {
		if err := s.api.Logout(ctx); err != nil {
			s.log.Warn().Err(err).Msg("remote logout failed")
		}
	}

	if err := s.sessions.Clear(ctx); err != nil {
		s.settle(nil)
		return &domain.Error{Kind: domain.KindLocal, Message: "could not clear session", Err: err}
	}
	metrics.SessionTeardownsTotal.WithLabelValues("logout").Inc()
	s.settle(nil)
	return nil
}

// CurrentUser resolves the active user: none without a session, the cached
// record for demo sessions, the whoami endpoint otherwise. A failed remote
// verification clears the slot and reports none.
func (s *AuthService) CurrentUser(ctx context.Context) (*domain.User, error) {
	sess, err := s.sessions.Load(ctx)
	if err != nil || sess == nil {
		return nil, err
	}
	if sess.IsDemo() {
		user := sess.User
		return &user, nil
	}

	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		if clearErr := s.sessions.Clear(ctx); clearErr != nil {
			s.log.Error().Err(clearErr).Msg("failed to clear invalid session")
		}
		metrics.SessionTeardownsTotal.WithLabelValues("invalid").Inc()
		return nil, nil
	}
	return user, nil
}

// UpdateProfile patches the authenticated user. Demo sessions merge the
// patch into the cached record locally; real sessions defer to the server
// and overwrite the cache with its response.
func (s *AuthService) UpdateProfile(ctx context.Context, patch ports.ProfilePatch) (*domain.User, error) {
	s.setLoading(true)

	sess, err := s.sessions.Load(ctx)
	if err != nil || sess == nil {
		s.setLoading(false)
		return nil, &domain.Error{Kind: domain.KindLocal, Message: domain.ErrNoSession.Error(), Err: domain.ErrNoSession}
	}

	if sess.IsDemo() {
		user := sess.User
		if patch.FirstName != nil {
			user.FirstName = *patch.FirstName
		}
		if patch.LastName != nil {
			user.LastName = *patch.LastName
		}
		if patch.Email != nil {
			user.Email = *patch.Email
		}
		user.UpdatedAt = time.Now().UTC()

		if err := s.sessions.Save(ctx, &domain.Session{Token: sess.Token, User: user}); err != nil {
			s.setLoading(false)
			return nil, &domain.Error{Kind: domain.KindLocal, Message: "could not persist session", Err: err}
		}
		s.settle(&user)
		return &user, nil
	}

	user, err := s.api.UpdateProfile(ctx, patch)
	if err != nil {
		s.setLoading(false)
		return nil, err
	}
	if err := s.sessions.Save(ctx, &domain.Session{Token: sess.Token, User: *user}); err != nil {
		s.log.Error().Err(err).Msg("failed to refresh session slot")
	}
	s.settle(user)
	return user, nil
}

// ChangePassword rotates the account password. Demo sessions have no
// server-side account, so the call is refused locally.
func (s *AuthService) ChangePassword(ctx context.Context, input ports.ChangePasswordInput) error {
	sess, err := s.sessions.Load(ctx)
	if err != nil || sess == nil {
		return &domain.Error{Kind: domain.KindLocal, Message: domain.ErrNoSession.Error(), Err: domain.ErrNoSession}
	}
	if sess.IsDemo() {
		return &domain.Error{Kind: domain.KindLocal, Message: "password changes are not available for demo sessions"}
	}
	return s.api.ChangePassword(ctx, input)
}
