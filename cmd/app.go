package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/frahmantamala/office-ticketing/internal"
	"github.com/frahmantamala/office-ticketing/internal/auth"
	authPostgres "github.com/frahmantamala/office-ticketing/internal/auth/postgres"
	"github.com/frahmantamala/office-ticketing/internal/category"
	categoryPostgres "github.com/frahmantamala/office-ticketing/internal/category/postgres"
	"github.com/frahmantamala/office-ticketing/internal/core/events"
	"github.com/frahmantamala/office-ticketing/internal/database"
	"github.com/frahmantamala/office-ticketing/internal/report"
	reportPostgres "github.com/frahmantamala/office-ticketing/internal/report/postgres"
	"github.com/frahmantamala/office-ticketing/internal/seed"
	"github.com/frahmantamala/office-ticketing/internal/session"
	"github.com/frahmantamala/office-ticketing/internal/ticket"
	ticketPostgres "github.com/frahmantamala/office-ticketing/internal/ticket/postgres"
	ticketRedis "github.com/frahmantamala/office-ticketing/internal/ticket/redis"
	"github.com/frahmantamala/office-ticketing/internal/user"
	userPostgres "github.com/frahmantamala/office-ticketing/internal/user/postgres"
	"github.com/frahmantamala/office-ticketing/internal/view"
	"github.com/frahmantamala/office-ticketing/internal/viewmodel"
	"github.com/frahmantamala/office-ticketing/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gorm.io/gorm"
)

// App holds every wired component for one command invocation.
type App struct {
	Config      *internal.Config
	Logger      *slog.Logger
	DB          *gorm.DB
	Bus         *events.EventBus
	Hasher      *auth.PasswordHasher
	Auth        *auth.Service
	Users       *user.Service
	Categories  *category.Service
	Tickets     *ticket.Service
	Reports     *report.Service
	Loader      *ticket.Loader
	Session     *session.Host
	Permissions auth.PermissionChecker
	Renderer    *view.Renderer

	out    io.Writer
	closer []func() error
}

func initLogger(cfg *internal.Config) *slog.Logger {
	logger.Init(logger.Options{
		Env:    cfg.App.Env,
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
	})
	return logger.LoggerWrapper()
}

// openDB connects and, when configured, brings the schema up to date.
func openDB(ctx context.Context, cfg *internal.Config, log *slog.Logger) (*gorm.DB, error) {
	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, log, false); err != nil {
			_ = database.Close(db)
			return nil, err
		}
	}
	return db, nil
}

// newCacheStore picks the ticket cache backend. An unreachable redis falls
// back to the in-process store.
func newCacheStore(ctx context.Context, cfg internal.CacheConfig, log *slog.Logger) (ticket.CacheStore, func() error) {
	if cfg.Driver != "redis" {
		return ticket.NewMemoryStore(), func() error { return nil }
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := ticketRedis.NewCacheStore(client, cfg.KeyPrefix, cfg.FreshnessWindow)
	if err := store.Ping(ctx); err != nil {
		log.Warn("redis unavailable, using in-process ticket cache", "addr", cfg.Redis.Addr, "error", err)
		_ = client.Close()
		return ticket.NewMemoryStore(), func() error { return nil }
	}
	return store, client.Close
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 100
}

func newApp(cmd *cobra.Command) (*App, error) {
	cfg, err := loadConfig(configDir)
	if err != nil {
		return nil, err
	}
	log := initLogger(cfg)
	ctx := cmd.Context()

	db, err := openDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	hasher := auth.NewPasswordHasher(cfg.Security.BCryptCost)
	if cfg.Seed.OnStartup {
		if _, err := seed.NewSeeder(db, hasher, log).Run(ctx); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	users := user.NewService(userPostgres.NewUserRepository(db), hasher, log)
	categories := category.NewService(categoryPostgres.NewCategoryRepository(db), log)
	tickets := ticket.NewService(ticketPostgres.NewTicketRepository(db), categories, users, log)
	authService := auth.NewService(authPostgres.NewRepository(db), users, hasher, log)

	reportRepo, err := reportPostgres.NewRepository(db)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	store, closeStore := newCacheStore(ctx, cfg.Cache, log)
	loader := ticket.NewLoader(tickets, store, cfg.Cache.FreshnessWindow, log)

	bus := events.NewEventBus(log)
	tokens := auth.NewJWTTokenGenerator(cfg.Security.SessionSecret, cfg.Security.SessionTTL)
	host := session.NewHost(tokens, users, cfg.Security.SessionFile, log,
		func(_ context.Context, u *user.User) { authService.SetCurrentUser(u) },
		loader.SetUser,
	)
	host.Register(bus)
	bus.Subscribe(events.EventTypeTicketsChanged, loader.HandleTicketsChanged)

	out := cmd.OutOrStdout()
	return &App{
		Config:      cfg,
		Logger:      log,
		DB:          db,
		Bus:         bus,
		Hasher:      hasher,
		Auth:        authService,
		Users:       users,
		Categories:  categories,
		Tickets:     tickets,
		Reports:     report.NewService(reportRepo, log),
		Loader:      loader,
		Session:     host,
		Permissions: auth.NewPermissionChecker(),
		Renderer:    view.NewRenderer(view.DefaultTheme, terminalWidth(out)),
		out:         out,
		closer:      []func() error{closeStore, func() error { return database.Close(db) }},
	}, nil
}

// Close drains pending event handlers, then releases the cache and the
// database.
func (a *App) Close() {
	a.Bus.Wait()
	for _, c := range a.closer {
		if err := c(); err != nil {
			a.Logger.Warn("failed to release resource", "error", err)
		}
	}
}

// timeout bounds a single command by database.query_timeout.
func (a *App) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return internal.WithTimeout(ctx, a.Config.Database.QueryTimeout)
}

// RequireUser restores the stored session. Without one the command fails
// with ErrSessionInvalid.
func (a *App) RequireUser(ctx context.Context) (*user.User, error) {
	u, err := a.Session.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, internal.ErrSessionInvalid
	}
	return u, nil
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(s string) {
	fmt.Fprintln(a.out, s)
}

func (a *App) mainViewModel() *viewmodel.MainViewModel {
	return viewmodel.NewMainViewModel(a.Auth, a.Loader, a.Tickets, a.Permissions, a.Bus, a.Logger)
}

// ticketsChanged announces a write so the cached ticket list gets dropped.
// Handlers outlive the command timeout, so they run without its deadline.
func (a *App) ticketsChanged(ctx context.Context, ticketID int64, action string) {
	_ = a.Bus.Publish(context.WithoutCancel(ctx), events.NewTicketsChangedEvent(ticketID, action))
}
