package shared

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"tubetrack/internal/cache"
	"tubetrack/internal/config"
	"tubetrack/internal/service"
	"tubetrack/internal/storage"
)

// App is the wired application shared by the commands.
type App struct {
	Config   config.Config
	Log      *logrus.Logger
	Repo     storage.Repository
	Pages    cache.Pages
	Videos   *service.VideoService
	Training *service.TrainingService
}

// NewLogger builds the root logger: JSON on stdout at the given level.
func NewLogger(level string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(lvl)
	return log, nil
}

// OpenRepository opens the store selected by cfg.Store.Driver.
func OpenRepository(ctx context.Context, cfg config.StoreConfig, log logrus.FieldLogger) (storage.Repository, error) {
	switch cfg.Driver {
	case config.DriverFirestore:
		return storage.NewFirestoreRepository(ctx, cfg.Firestore.Project, log)
	case config.DriverBadger:
		return storage.NewBadgerRepository(cfg.Badger.Path, log)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// Open loads the configuration and wires the store, cache and services.
func (c *Context) Open(ctx context.Context) (*App, error) {
	cfg, err := config.LoadConfig(c.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	log, err := NewLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"store_driver": cfg.Store.Driver,
		"http_addr":    cfg.HTTP.Addr,
	}).Info("Configuration loaded successfully")

	repo, err := OpenRepository(ctx, cfg.Store, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	pages := cache.NewPages(cfg.Cache.Enabled, cfg.Cache.SizeMB, cfg.Cache.TTL, log)
	return &App{
		Config:   cfg,
		Log:      log,
		Repo:     repo,
		Pages:    pages,
		Videos:   service.NewVideoService(repo, pages, log),
		Training: service.NewTrainingService(repo, pages, log),
	}, nil
}

// Close releases the store.
func (a *App) Close() {
	a.Log.Info("Closing database...")
	if err := a.Repo.Close(); err != nil {
		a.Log.WithError(err).Error("Error closing database")
	}
}
