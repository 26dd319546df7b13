// Package httpapi exposes the tutor over a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/abhisek/trigtutor/internal/chat"
	"github.com/abhisek/trigtutor/internal/exercises"
	"github.com/abhisek/trigtutor/internal/lessons"
	"github.com/abhisek/trigtutor/internal/quiz"
	"github.com/abhisek/trigtutor/internal/store"
	"github.com/abhisek/trigtutor/internal/topics"
)

// Services are the components the API serves.
type Services struct {
	Chat      *chat.Flow
	Topics    *topics.Validator
	Lessons   *lessons.Service
	Quiz      *quiz.Manager
	Exercises *exercises.Generator
	Tutor     *exercises.Tutor
	Users     store.UserRepo
}

// Config holds HTTP server settings.
type Config struct {
	Addr          string
	SessionSecret []byte
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

// Server serves the API.
type Server struct {
	svc       Services
	cfg       Config
	sessions  sessions.Store
	histories *historyRegistry
	log       *zap.Logger
	engine    *gin.Engine
}

// NewServer builds the router. An empty session secret gets a random key,
// so sessions do not survive a restart.
func NewServer(svc Services, cfg Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		svc:       svc,
		cfg:       cfg,
		sessions:  newSessionStore(cfg.SessionSecret),
		histories: newHistoryRegistry(maxSessions, sessionIdleTTL),
		log:       log.Named("http"),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))

	r.GET("/healthz", healthCheck)

	api := r.Group("/api")
	api.POST("/chat", s.handleChat)
	api.POST("/topics/validate", s.handleValidateTopic)
	api.POST("/content", s.handleContent)
	api.POST("/quiz/extra", s.handleExtraQuiz)
	api.POST("/quiz/advance", s.handleAdvanceQuiz)
	api.POST("/quiz/score", s.handleScoreQuiz)
	api.POST("/exercises", s.handleExercise)
	api.POST("/exercises/clarify", s.handleClarify)
	api.POST("/practice", s.handlePractice)
	api.GET("/roadmap", s.handleRoadmap)
	api.GET("/users/:id", s.handleGetUser)
	api.POST("/users/:id/analytics", s.handleAnalytics)
	api.POST("/users/:id/progress", s.handleProgress)

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func healthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
