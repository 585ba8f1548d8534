// Package mockapi is an in-process implementation of the Workcity REST
// contract, backed by memory. It exists so the client core can be exercised
// without a live backend: integration tests mount it on httptest, and the
// CLI can serve it locally for demos. It is not the product backend.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Server wires the echo instance, the in-memory store, and token handling.
type Server struct {
	echo      *echo.Echo
	store     *memStore
	jwtSecret string
	log       zerolog.Logger
}

// Options configures a mock API server.
type Options struct {
	// JWTSecret signs the HS256 tokens issued by login/signup.
	JWTSecret string
	Logger    zerolog.Logger
}

// New builds a Server with all routes registered under /api.
func New(opts Options) *Server {
	s := &Server{
		echo:      echo.New(),
		store:     newMemStore(),
		jwtSecret: opts.JWTSecret,
		log:       opts.Logger,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Validator = newEchoValidator()
	s.echo.HTTPErrorHandler = s.handleError

	api := s.echo.Group("/api")
	api.GET("/health", s.health)
	api.GET("/health/database", s.healthDatabase)

	api.POST("/auth/login", s.login)
	api.POST("/auth/signup", s.signup)

	authed := api.Group("", s.requireAuth)
	authed.POST("/auth/logout", s.logout)
	authed.GET("/auth/me", s.me)
	authed.PUT("/auth/profile", s.updateProfile)
	authed.PUT("/auth/change-password", s.changePassword)

	authed.GET("/clients", s.listClients)
	authed.POST("/clients", s.createClient)
	authed.GET("/clients/:id", s.getClient)
	authed.PUT("/clients/:id", s.updateClient)
	authed.DELETE("/clients/:id", s.deleteClient)

	authed.GET("/projects", s.listProjects)
	authed.POST("/projects", s.createProject)
	authed.GET("/projects/client/:clientId", s.projectsByClient)
	authed.GET("/projects/:id", s.getProject)
	authed.PUT("/projects/:id", s.updateProject)
	authed.DELETE("/projects/:id", s.deleteProject)

	return s
}

// Handler exposes the server as an http.Handler for httptest mounting.
func (s *Server) Handler() http.Handler { return s.echo }

// Start serves on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Msg("mock API listening")
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Seed registers a user account so the mock is immediately usable. Errors
// (e.g. duplicate email on a second call) are returned for the caller to
// log.
func (s *Server) Seed(firstName, lastName, email, password string) error {
	_, err := s.store.createUser(firstName, lastName, email, password, "admin")
	return err
}

// ── Auth middleware (bearer JWT) ─────────────────────────────────────────────

// requireAuth validates the bearer JWT and injects the user id into the
// request context. Demo-prefixed tokens are not JWTs this server issued and
// fail here with 401, which is exactly what a real backend would do.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}

		claims := jwt.MapClaims{}
		tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return []byte(s.jwtSecret), nil
		})
		if err != nil || !tkn.Valid {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		sub, _ := claims["sub"].(string)
		if _, ok := s.store.getUser(sub); !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
		}

		c.Set("userID", sub)
		return next(c)
	}
}

// userID extracts the id injected by requireAuth.
func userID(c echo.Context) string {
	id, _ := c.Get("userID").(string)
	return id
}

// ── Error handling ───────────────────────────────────────────────────────────

// handleError renders every error as the API's envelope with success=false
// and a human-readable message, mapping known store errors to their status
// codes.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal server error"

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		msg = fmt.Sprintf("%v", he.Message)
	case errors.Is(err, errRecordNotFound):
		code = http.StatusNotFound
		msg = err.Error()
	case errors.Is(err, errUnknownUser):
		code = http.StatusUnauthorized
		msg = err.Error()
	case errors.Is(err, errEmailTaken):
		code = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, errUnknownClient), errors.Is(err, errWrongPassword), errors.Is(err, errClientHasProjects):
		code = http.StatusBadRequest
		msg = err.Error()
	default:
		s.log.Error().Err(err).Str("path", c.Path()).Msg("unhandled mock API error")
	}

	_ = c.JSON(code, map[string]any{"message": msg, "success": false})
}

// ── Validation ───────────────────────────────────────────────────────────────

// echoValidator wraps go-playground/validator so echo can call c.Validate.
type echoValidator struct {
	v *validator.Validate
}

func newEchoValidator() *echoValidator {
	return &echoValidator{v: validator.New()}
}

func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return echo.NewHTTPError(http.StatusBadRequest, strings.Join(msgs, "; "))
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
