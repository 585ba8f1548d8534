// Command workcity is a thin front end over the client core: it logs in and
// out, manages clients and projects, and reports system health. It exists to
// exercise the core; all real logic lives under internal/.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/workcity/crm-client/internal/core/domain"
	"github.com/workcity/crm-client/internal/core/ports"
	"github.com/workcity/crm-client/internal/core/service"
	"github.com/workcity/crm-client/internal/infrastructure/rest"
	"github.com/workcity/crm-client/internal/infrastructure/session"
	"github.com/workcity/crm-client/internal/mockapi"
	"github.com/workcity/crm-client/internal/pkg/config"
	"github.com/workcity/crm-client/pkg/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

const usage = `usage: workcity <command> [flags]

commands:
  login       -email -password
  signup      -first -last -email -password
  logout
  whoami
  profile     -first -last -email
  passwd      -current -new
  clients     list|get|create|update|delete
  projects    list|get|create|update|delete|by-client
  health
  mockapi     [-addr]
`

// app bundles everything a command needs.
type app struct {
	cfg      *config.Config
	auth     *service.AuthService
	clients  *service.ClientStore
	projects *service.ProjectStore
	health   *service.HealthService
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("missing command")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// The mock API does not need the client stack.
	if args[0] == "mockapi" {
		return runMockAPI(ctx, cfg, args[1:])
	}

	sessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		return err
	}

	httpClient := rest.NewClient(rest.Options{
		BaseURL:  cfg.APIURL,
		Timeout:  cfg.HTTPTimeout,
		Sessions: sessions,
		OnUnauthorized: func() {
			fmt.Fprintln(os.Stderr, "session expired, please run `workcity login` again")
		},
		Logger: log,
	})

	a := &app{
		cfg:      cfg,
		auth:     service.NewAuthService(rest.NewAuthAPI(httpClient), sessions, cfg.DemoEnabled(), cfg.DemoSecret, log),
		clients:  service.NewClientStore(rest.NewClientAPI(httpClient), ports.Filters{}, log),
		projects: service.NewProjectStore(rest.NewProjectAPI(httpClient), ports.Filters{}, log),
		health:   service.NewHealthService(rest.NewHealthAPI(httpClient)),
	}

	switch args[0] {
	case "login":
		return a.login(ctx, args[1:])
	case "signup":
		return a.signup(ctx, args[1:])
	case "logout":
		return a.auth.Logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "profile":
		return a.profile(ctx, args[1:])
	case "passwd":
		return a.passwd(ctx, args[1:])
	case "clients":
		return a.clientsCmd(ctx, args[1:])
	case "projects":
		return a.projectsCmd(ctx, args[1:])
	case "health":
		return a.healthCmd(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// newSessionStore picks the Redis slot when configured, the file slot
// otherwise.
func newSessionStore(ctx context.Context, cfg *config.Config) (ports.SessionStore, error) {
	if cfg.Redis.Addr != "" {
		client, err := session.Connect(ctx, session.RedisConfig{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, err
		}
		return session.NewRedisStore(client, ""), nil
	}
	return session.NewFileStore(cfg.SessionPath)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// ── Auth commands ────────────────────────────────────────────────────────────

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s (%s)\n", user.FullName(), user.Email)
	return nil
}

func (a *app) signup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.auth.Signup(ctx, ports.SignupInput{
		FirstName:       *first,
		LastName:        *last,
		Email:           *email,
		Password:        *password,
		ConfirmPassword: *password,
	})
	if err != nil {
		return err
	}
	fmt.Printf("account created for %s\n", user.Email)
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	user, err := a.auth.CheckAuthStatus(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Println("not logged in")
		return nil
	}
	return printJSON(user)
}

func (a *app) profile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	first := fs.String("first", "", "new first name")
	last := fs.String("last", "", "new last name")
	email := fs.String("email", "", "new email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var patch ports.ProfilePatch
	if *first != "" {
		patch.FirstName = first
	}
	if *last != "" {
		patch.LastName = last
	}
	if *email != "" {
		patch.Email = email
	}

	user, err := a.auth.UpdateProfile(ctx, patch)
	if err != nil {
		return err
	}
	return printJSON(user)
}

func (a *app) passwd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("passwd", flag.ContinueOnError)
	current := fs.String("current", "", "current password")
	next := fs.String("new", "", "new password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.auth.ChangePassword(ctx, ports.ChangePasswordInput{CurrentPassword: *current, NewPassword: *next}); err != nil {
		return err
	}
	fmt.Println("password changed")
	return nil
}

// ── Client commands ──────────────────────────────────────────────────────────

func (a *app) clientsCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: workcity clients list|get|create|update|delete")
	}

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("clients list", flag.ContinueOnError)
		filters := bindFilterFlags(fs)
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := a.clients.SetFilters(ctx, *filters); err != nil {
			return err
		}
		snap := a.clients.Snapshot()
		return printJSON(map[string]any{"clients": snap.Items, "pagination": snap.Pagination})

	case "get":
		fs := flag.NewFlagSet("clients get", flag.ContinueOnError)
		id := fs.String("id", "", "client id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		client, err := a.clients.Get(ctx, *id)
		if err != nil {
			return err
		}
		return printJSON(client)

	case "create":
		fs := flag.NewFlagSet("clients create", flag.ContinueOnError)
		draft := ports.ClientDraft{}
		fs.StringVar(&draft.Name, "name", "", "client name")
		fs.StringVar(&draft.Email, "email", "", "client email")
		fs.StringVar(&draft.Phone, "phone", "", "phone")
		fs.StringVar(&draft.Company, "company", "", "company")
		fs.StringVar(&draft.Notes, "notes", "", "notes")
		status := fs.String("status", string(domain.ClientActive), "active|inactive")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		draft.Status = domain.ClientStatus(*status)
		client, err := a.clients.Create(ctx, draft)
		if err != nil {
			return err
		}
		return printJSON(client)

	case "update":
		fs := flag.NewFlagSet("clients update", flag.ContinueOnError)
		id := fs.String("id", "", "client id")
		name := fs.String("name", "", "new name")
		status := fs.String("status", "", "new status")
		notes := fs.String("notes", "", "new notes")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		var patch ports.ClientPatch
		if *name != "" {
			patch.Name = name
		}
		if *status != "" {
			st := domain.ClientStatus(*status)
			patch.Status = &st
		}
		if *notes != "" {
			patch.Notes = notes
		}
		client, err := a.clients.Update(ctx, *id, patch)
		if err != nil {
			return err
		}
		return printJSON(client)

	case "delete":
		fs := flag.NewFlagSet("clients delete", flag.ContinueOnError)
		id := fs.String("id", "", "client id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := a.clients.Delete(ctx, *id); err != nil {
			return err
		}
		fmt.Println("client deleted")
		return nil

	default:
		return fmt.Errorf("unknown clients subcommand %q", args[0])
	}
}

// ── Project commands ─────────────────────────────────────────────────────────

func (a *app) projectsCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: workcity projects list|get|create|update|delete|by-client")
	}

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("projects list", flag.ContinueOnError)
		filters := bindFilterFlags(fs)
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := a.projects.SetFilters(ctx, *filters); err != nil {
			return err
		}
		snap := a.projects.Snapshot()
		return printJSON(map[string]any{"projects": snap.Items, "pagination": snap.Pagination})

	case "get":
		fs := flag.NewFlagSet("projects get", flag.ContinueOnError)
		id := fs.String("id", "", "project id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		project, err := a.projects.Get(ctx, *id)
		if err != nil {
			return err
		}
		return printJSON(project)

	case "by-client":
		fs := flag.NewFlagSet("projects by-client", flag.ContinueOnError)
		clientID := fs.String("client", "", "client id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		projects, err := a.projects.ByClient(ctx, *clientID)
		if err != nil {
			return err
		}
		return printJSON(projects)

	case "create":
		fs := flag.NewFlagSet("projects create", flag.ContinueOnError)
		draft := ports.ProjectDraft{}
		fs.StringVar(&draft.Name, "name", "", "project name")
		fs.StringVar(&draft.Description, "description", "", "description")
		fs.StringVar(&draft.ClientID, "client", "", "client id")
		fs.Float64Var(&draft.Budget, "budget", 0, "budget")
		status := fs.String("status", string(domain.ProjectPlanning), "project status")
		start := fs.String("start", "", "start date (YYYY-MM-DD, defaults to today)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		draft.Status = domain.ProjectStatus(*status)
		draft.StartDate = time.Now().UTC()
		if *start != "" {
			d, err := time.Parse("2006-01-02", *start)
			if err != nil {
				return fmt.Errorf("invalid start date: %w", err)
			}
			draft.StartDate = d
		}
		project, err := a.projects.Create(ctx, draft)
		if err != nil {
			return err
		}
		return printJSON(project)

	case "update":
		fs := flag.NewFlagSet("projects update", flag.ContinueOnError)
		id := fs.String("id", "", "project id")
		name := fs.String("name", "", "new name")
		status := fs.String("status", "", "new status")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		var patch ports.ProjectPatch
		if *name != "" {
			patch.Name = name
		}
		if *status != "" {
			st := domain.ProjectStatus(*status)
			patch.Status = &st
		}
		project, err := a.projects.Update(ctx, *id, patch)
		if err != nil {
			return err
		}
		return printJSON(project)

	case "delete":
		fs := flag.NewFlagSet("projects delete", flag.ContinueOnError)
		id := fs.String("id", "", "project id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := a.projects.Delete(ctx, *id); err != nil {
			return err
		}
		fmt.Println("project deleted")
		return nil

	default:
		return fmt.Errorf("unknown projects subcommand %q", args[0])
	}
}

func bindFilterFlags(fs *flag.FlagSet) *ports.Filters {
	f := &ports.Filters{}
	fs.StringVar(&f.Search, "search", "", "search term")
	fs.StringVar(&f.Status, "status", "", "status filter")
	fs.StringVar(&f.SortBy, "sort", "", "sort field")
	fs.StringVar(&f.SortOrder, "order", "", "asc|desc")
	fs.IntVar(&f.Page, "page", 0, "page number")
	fs.IntVar(&f.Limit, "limit", 0, "items per page")
	return f
}

// ── Health and mock API ──────────────────────────────────────────────────────

func (a *app) healthCmd(ctx context.Context) error {
	return printJSON(a.health.Status(ctx))
}

func runMockAPI(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("mockapi", flag.ContinueOnError)
	addr := fs.String("addr", ":"+cfg.Mock.Port, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := logger.Get()
	server := mockapi.New(mockapi.Options{JWTSecret: cfg.Mock.JWTSecret, Logger: log})
	if err := server.Seed("Work", "City", "admin@workcity.com", "password123"); err != nil {
		log.Warn().Err(err).Msg("seed failed")
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start(*addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
