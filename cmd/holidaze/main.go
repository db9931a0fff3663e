package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"holidaze/internal/account"
	"holidaze/internal/api"
	"holidaze/internal/booking"
	"holidaze/internal/config"
	"holidaze/internal/database"
	"holidaze/internal/events"
	"holidaze/internal/session"
	"holidaze/internal/venues"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

const appKey = "holidaze"

// app holds the wired services shared by every command.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	store   *session.Store
	client  *api.Client
	account *account.Service
	booking *booking.Service
	manager *venues.Manager
	search  *venues.Searcher
	closers []func() error
}

func main() {
	cliApp := &cli.App{
		Name:  "holidaze",
		Usage: "browse, book and manage Holidaze venues",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to config.yaml", EnvVars: []string{"HOLIDAZE_CONFIG"}},
			&cli.StringFlag{Name: "log-level", Usage: "override log.level"},
		},
		Before:   setup,
		After:    teardown,
		Commands: commands(),
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", api.Message(err))
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.Log.Format == "json" {
		return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	a := &app{cfg: cfg, logger: newLogger(cfg)}
	c.App.Metadata = map[string]interface{}{appKey: a}

	backend, err := a.sessionBackend()
	if err != nil {
		return err
	}
	a.store = session.NewStore(backend, events.NewEventBus(), &a.logger)
	a.store.Subscribe(func(s session.Session) {
		a.logger.Debug().Bool("logged_in", s.LoggedIn()).Str("name", s.Name).Msg("session changed")
	})

	a.client = api.NewClient(api.Options{
		BaseURL:       cfg.API.BaseURL,
		APIKey:        cfg.API.APIKey,
		Timeout:       cfg.APITimeout(),
		RatePerSecond: cfg.API.RatePerSecond,
		Burst:         cfg.API.Burst,
	}, a.store, &a.logger)
	if cfg.Redis.Address != "" && cfg.CacheTTL() > 0 {
		rdb := a.redisClient()
		a.client.UseRedisCache(rdb, cfg.CacheTTL())
	}

	a.account = account.NewService(a.client, a.store, &a.logger)
	a.booking = booking.NewService(a.client, a.client, a.store, &a.logger)
	a.manager = venues.NewManager(a.client, a.store, &a.logger)
	a.search = venues.NewSearcher(a.client, cfg.SearchPageSize(), cfg.SearchMaxPages(), &a.logger)
	return nil
}

func teardown(c *cli.Context) error {
	a, ok := c.App.Metadata[appKey].(*app)
	if !ok {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func fromContext(c *cli.Context) *app {
	return c.App.Metadata[appKey].(*app)
}

func (a *app) redisClient() *redis.Client {
	rdb := redis.NewClient(&redis.Options{Addr: a.cfg.Redis.Address, Password: a.cfg.Redis.Password, DB: a.cfg.Redis.DB})
	a.closers = append(a.closers, rdb.Close)
	return rdb
}

func (a *app) openSQLite() (*database.DB, error) {
	db, err := database.NewDB(a.cfg.Session.Path, &a.logger)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	return db, nil
}

// sessionBackend picks where the session lives. Redis falls back to the local
// SQLite file while it is unreachable.
func (a *app) sessionBackend() (session.Backend, error) {
	switch a.cfg.Session.Backend {
	case "memory":
		return session.NewMemoryBackend(), nil
	case "redis":
		primary := session.NewRedisBackend(a.redisClient(), a.cfg.Session.KeyPrefix)
		fallback, err := a.openSQLite()
		if err != nil {
			a.logger.Warn().Err(err).Msg("sqlite fallback unavailable, using memory")
			return session.NewFailoverBackend(primary, session.NewMemoryBackend(), &a.logger), nil
		}
		return session.NewFailoverBackend(primary, fallback, &a.logger), nil
	default:
		return a.openSQLite()
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	logger.Info().Int("port", port).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
