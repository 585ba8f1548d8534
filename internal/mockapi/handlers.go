package mockapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/workcity/crm-client/internal/core/domain"
	"github.com/workcity/crm-client/internal/core/ports"
)

const tokenTTL = 24 * time.Hour

// respond writes the single-resource envelope {data, message, success}.
func respond(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, map[string]any{
		"data":    data,
		"message": message,
		"success": true,
	})
}

// respondPage writes the list envelope {data, pagination}.
func respondPage(c echo.Context, data any, pagination ports.Pagination) error {
	return c.JSON(http.StatusOK, map[string]any{
		"data":       data,
		"pagination": pagination,
		"success":    true,
	})
}

func filtersFromQuery(c echo.Context) ports.Filters {
	f := ports.Filters{
		Search:    c.QueryParam("search"),
		Status:    c.QueryParam("status"),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	}
	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		f.Page = page
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		f.Limit = limit
	}
	return f
}

// ── Health ───────────────────────────────────────────────────────────────────

func (s *Server) health(c echo.Context) error {
	return respond(c, http.StatusOK, ports.HealthReport{
		Status:    ports.HealthOK,
		Message:   "Mock API is running",
		Timestamp: time.Now().UTC(),
		Version:   "dev",
	}, "")
}

func (s *Server) healthDatabase(c echo.Context) error {
	// The backing store is process memory; it is healthy as long as the
	// process answers.
	return respond(c, http.StatusOK, ports.HealthReport{
		Status:    ports.HealthOK,
		Message:   "In-memory store is reachable",
		Timestamp: time.Now().UTC(),
	}, "")
}

// ── Auth ─────────────────────────────────────────────────────────────────────

func (s *Server) issueToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}

func (s *Server) login(c echo.Context) error {
	var req ports.Credentials
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := s.store.authenticate(req.Email, req.Password)
	if err != nil {
		return err
	}
	token, err := s.issueToken(user)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, ports.AuthResult{Token: token, User: *user}, "Login successful")
}

func (s *Server) signup(c echo.Context) error {
	var req ports.SignupInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := s.store.createUser(req.FirstName, req.LastName, req.Email, req.Password, domain.RoleUser)
	if err != nil {
		return err
	}
	token, err := s.issueToken(user)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, ports.AuthResult{Token: token, User: *user}, "Account created")
}

func (s *Server) logout(c echo.Context) error {
	// Tokens are stateless; logout only acknowledges.
	return respond(c, http.StatusOK, nil, "Logged out")
}

func (s *Server) me(c echo.Context) error {
	user, ok := s.store.getUser(userID(c))
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}
	return respond(c, http.StatusOK, user, "")
}

func (s *Server) updateProfile(c echo.Context) error {
	var patch ports.ProfilePatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	user, err := s.store.updateUser(userID(c), patch)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "Profile updated")
}

func (s *Server) changePassword(c echo.Context) error {
	var req ports.ChangePasswordInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := s.store.changePassword(userID(c), req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "Password changed")
}

// ── Clients ──────────────────────────────────────────────────────────────────

func (s *Server) listClients(c echo.Context) error {
	items, pagination := s.store.listClients(filtersFromQuery(c))
	return respondPage(c, items, pagination)
}

func (s *Server) getClient(c echo.Context) error {
	client, ok := s.store.getClient(c.Param("id"))
	if !ok {
		return errRecordNotFound
	}
	return respond(c, http.StatusOK, client, "")
}

func (s *Server) createClient(c echo.Context) error {
	var draft ports.ClientDraft
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&draft); err != nil {
		return err
	}
	client := s.store.insertClient(draft)
	return respond(c, http.StatusCreated, client, "Client created")
}

func (s *Server) updateClient(c echo.Context) error {
	var patch ports.ClientPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&patch); err != nil {
		return err
	}
	client, err := s.store.updateClient(c.Param("id"), patch)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, client, "Client updated")
}

func (s *Server) deleteClient(c echo.Context) error {
	if err := s.store.deleteClient(c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "Client deleted")
}

// ── Projects ─────────────────────────────────────────────────────────────────

func (s *Server) listProjects(c echo.Context) error {
	items, pagination := s.store.listProjects(filtersFromQuery(c))
	return respondPage(c, items, pagination)
}

func (s *Server) getProject(c echo.Context) error {
	project, ok := s.store.getProject(c.Param("id"))
	if !ok {
		return errRecordNotFound
	}
	return respond(c, http.StatusOK, project, "")
}

func (s *Server) projectsByClient(c echo.Context) error {
	projects := s.store.projectsByClient(c.Param("clientId"))
	return respond(c, http.StatusOK, projects, "")
}

func (s *Server) createProject(c echo.Context) error {
	var draft ports.ProjectDraft
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&draft); err != nil {
		return err
	}
	project, err := s.store.insertProject(draft)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, project, "Project created")
}

func (s *Server) updateProject(c echo.Context) error {
	var patch ports.ProjectPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&patch); err != nil {
		return err
	}
	project, err := s.store.updateProject(c.Param("id"), patch)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, project, "Project updated")
}

func (s *Server) deleteProject(c echo.Context) error {
	if err := s.store.deleteProject(c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "Project deleted")
}
