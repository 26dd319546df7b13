// Package app wires configuration into the tutor's components.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/abhisek/trigtutor/internal/cache"
	"github.com/abhisek/trigtutor/internal/chat"
	"github.com/abhisek/trigtutor/internal/config"
	"github.com/abhisek/trigtutor/internal/exercises"
	"github.com/abhisek/trigtutor/internal/generate"
	"github.com/abhisek/trigtutor/internal/httpapi"
	"github.com/abhisek/trigtutor/internal/lessons"
	"github.com/abhisek/trigtutor/internal/llm"
	"github.com/abhisek/trigtutor/internal/quiz"
	"github.com/abhisek/trigtutor/internal/store"
	"github.com/abhisek/trigtutor/internal/topics"
)

// Base holds the parts every command needs: the database and the response
// cache. It never talks to the generation backend.
type Base struct {
	Config *config.Config
	Log    *zap.Logger
	Store  *store.Store
	Cache  *cache.Cache

	redis *redis.Client
}

// OpenBase opens the database and the configured cache backend.
func OpenBase(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Base, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dbPath := cfg.DB.Path
	if dbPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		dbPath = p
	} else if err := store.EnsureDir(dbPath); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	b := &Base{Config: cfg, Log: log, Store: st}

	backend, err := b.openCacheStore(ctx)
	if err != nil {
		st.Close()
		return nil, err
	}
	b.Cache = cache.New(backend,
		cache.WithTTL(cfg.Cache.TTL),
		cache.WithLogger(log.Named("cache")))

	log.Debug("base opened",
		zap.String("db", dbPath),
		zap.String("cache", cfg.Cache.Backend))
	return b, nil
}

func (b *Base) openCacheStore(ctx context.Context) (cache.Store, error) {
	switch b.Config.Cache.Backend {
	case config.CacheMemory:
		return cache.NewMemoryStore(), nil
	case config.CacheRedis:
		client, err := cache.NewRedisClient(ctx, b.Config.Redis)
		if err != nil {
			return nil, err
		}
		b.redis = client
		return cache.NewRedisStore(client, b.Config.Cache.TTL), nil
	default:
		s, err := cache.NewSQLiteStore(ctx, b.Store.DB())
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Close releases the cache backend and the database.
func (b *Base) Close() error {
	var errs []error
	if b.redis != nil {
		errs = append(errs, b.redis.Close())
	}
	errs = append(errs, b.Store.Close())
	return errors.Join(errs...)
}

// App is the fully wired tutor.
type App struct {
	*Base

	Provider  llm.Provider
	Client    *generate.Client
	Topics    *topics.Validator
	Lessons   *lessons.Service
	Quiz      *quiz.Manager
	Exercises *exercises.Generator
	Tutor     *exercises.Tutor
	Chat      *chat.Flow
}

// New opens the base and builds every generation component on top of the
// configured provider.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if err := cfg.LLM.Validate(); err != nil {
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}

	base, err := OpenBase(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM, base.Store.EventRepo(), base.Log.Named("llm"))
	if err != nil {
		base.Close()
		return nil, err
	}
	return Wire(base, provider), nil
}

// Wire builds the components over an opened base and a provider.
func Wire(base *Base, provider llm.Provider) *App {
	log := base.Log
	client := generate.NewClient(provider, base.Cache, log.Named("generate"))
	validator := topics.NewValidator(client, log.Named("topics"))
	lessonSvc := lessons.NewService(client, lessons.DefaultConfig(), log.Named("lessons"))

	return &App{
		Base:      base,
		Provider:  provider,
		Client:    client,
		Topics:    validator,
		Lessons:   lessonSvc,
		Quiz:      quiz.NewManager(lessonSvc, log.Named("quiz")),
		Exercises: exercises.NewGenerator(client, log.Named("exercises")),
		Tutor:     exercises.NewTutor(client, log.Named("tutor")),
		Chat:      chat.NewFlow(validator, lessonSvc, base.Store.RequestLog(), log.Named("chat")),
	}
}

// Server builds the HTTP API over the app.
func (a *App) Server() *httpapi.Server {
	srv := a.Config.Server
	return httpapi.NewServer(httpapi.Services{
		Chat:      a.Chat,
		Topics:    a.Topics,
		Lessons:   a.Lessons,
		Quiz:      a.Quiz,
		Exercises: a.Exercises,
		Tutor:     a.Tutor,
		Users:     a.Store.UserRepo(),
	}, httpapi.Config{
		Addr:          srv.Addr,
		SessionSecret: []byte(srv.SessionSecret),
		ReadTimeout:   srv.ReadTimeout,
		WriteTimeout:  srv.WriteTimeout,
	}, a.Log)
}
