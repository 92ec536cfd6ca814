// Command smoke walks a full session against an API: optional registration,
// login, activity CRUD and logout. It exits non-zero on the first failure.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rryowa/fitness_session/internal/client"
	"github.com/rryowa/fitness_session/internal/models"
	"github.com/rryowa/fitness_session/internal/service"
	"github.com/rryowa/fitness_session/internal/storage"
	"github.com/rryowa/fitness_session/internal/storage/file"
	"github.com/rryowa/fitness_session/internal/storage/memory"
	"github.com/rryowa/fitness_session/internal/storage/redis"
	"github.com/rryowa/fitness_session/internal/util"
)

func main() {
	username := flag.String("username", os.Getenv("SMOKE_USERNAME"), "account username")
	password := flag.String("password", os.Getenv("SMOKE_PASSWORD"), "account password")
	register := flag.Bool("register", false, "register the account first")
	flag.Parse()

	logger := util.NewZapLogger()
	defer logger.Sync() //nolint:errcheck // stdout sync

	cfg := util.NewClientConfig()
	store, cleanup, err := newCredentialStore(logger, cfg)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}
	defer cleanup()

	registry := prometheus.NewRegistry()
	opts := []client.Option{
		client.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		client.WithMetrics(client.NewMetrics(registry)),
	}
	if cfg.CoalesceRefresh {
		opts = append(opts, client.WithCoalescedRefresh())
	}
	pipeline := client.NewPipeline(cfg.BaseURL, store, logger, opts...)
	sessions := service.NewSessionService(pipeline, store, logger)

	if err := run(context.Background(), logger, sessions, *username, *password, *register); err != nil {
		logger.Errorw("smoke run failed", "error", err)
		os.Exit(1)
	}
	logMetrics(logger, registry)
}

func run(ctx context.Context, log *zap.SugaredLogger, sessions *service.SessionService, username, password string, register bool) error {
	state := sessions.Start(ctx)
	log.Infow("session restored", "authenticated", state.Authenticated())

	if register {
		user, err := sessions.Register(ctx, models.RegisterRequest{
			Username:  username,
			Email:     username + "@example.com",
			FirstName: "Smoke",
			LastName:  "Test",
			Password:  password,
			Password2: password,
		})
		if err != nil {
			return err
		}
		log.Infow("registered", "username", user.Username)
	}

	if !state.Authenticated() || register {
		if err := sessions.Login(ctx, username, password); err != nil {
			return err
		}
	}
	if !sessions.State().Authenticated() {
		return errors.New("login did not produce an authenticated session")
	}

	created, err := sessions.CreateActivity(ctx, models.CreateActivityRequest{
		Title:       "Run",
		Description: "5k",
		Status:      models.StatusPlanned,
	})
	if err != nil {
		return err
	}
	log.Infow("activity created", "id", created.ID)

	if _, err := sessions.UpdateActivity(ctx, created.ID, models.UpdateActivityRequest{Status: models.StatusCompleted}); err != nil {
		return err
	}

	list, err := sessions.ListActivities(ctx)
	if err != nil {
		return err
	}
	log.Infow("activities listed", "count", len(list))

	if err := sessions.DeleteActivity(ctx, created.ID); err != nil {
		return err
	}

	sessions.Logout(ctx)
	log.Info("logged out")
	return nil
}

func newCredentialStore(log *zap.SugaredLogger, cfg *util.ClientConfig) (storage.CredentialStore, func(), error) {
	switch cfg.CredentialStore {
	case util.BackendMemory:
		return memory.NewCredentialStore(), func() {}, nil
	case util.BackendRedis:
		rdb, cleanup, err := util.NewRedisClient(log, util.NewRedisConfig())
		if err != nil {
			return nil, nil, err
		}
		return redis.NewCredentialStore(rdb, cfg.BaseURL), cleanup, nil
	default:
		store, err := file.NewCredentialStore(cfg.CredentialDir, cfg.BaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Debugw("using file credential store", "path", store.Path())
		return store, func() {}, nil
	}
}

func logMetrics(log *zap.SugaredLogger, registry *prometheus.Registry) {
	families, err := registry.Gather()
	if err != nil {
		log.Warnw("failed to gather metrics", "error", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]interface{}, 0, 2*len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName(), lp.GetValue())
			}
			log.Infow(mf.GetName(), append(labels, "value", m.GetCounter().GetValue())...)
		}
	}
}
