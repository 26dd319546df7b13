package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/trigtutor/internal/app"
	"github.com/abhisek/trigtutor/internal/config"
	"github.com/abhisek/trigtutor/internal/generate"
	"github.com/abhisek/trigtutor/internal/logger"
	"github.com/abhisek/trigtutor/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "trigtutor",
	Short:         "AI trigonometry tutor",
	Long:          "trigtutor generates trigonometry lessons, quizzes and practice exercises for secondary-school students.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/trigtutor/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides TRIGTUTOR_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(lessonCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(exerciseCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(roadmapCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the configuration and applies the persistent flags on
// top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DB.Path = p
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// openApp builds the full tutor. Callers must Close it.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg, log)
}

// openBase opens the database and cache only.
func openBase(cmd *cobra.Command) (*app.Base, error) {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return app.OpenBase(cmd.Context(), cfg, log)
}

// openStore opens the database without touching the cache backend.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	path := cfg.DB.Path
	if path == "" {
		if path, err = store.DefaultDBPath(); err != nil {
			return nil, err
		}
	} else if err := store.EnsureDir(path); err != nil {
		return nil, err
	}
	return store.Open(path)
}

// userError turns a generation failure into the learner-facing message,
// logging the underlying error.
func userError(a *app.App, surface generate.Surface, err error) error {
	a.Log.Debug("command failed", zap.String("surface", string(surface)), zap.Error(err))
	return errors.New(generate.UserMessage(surface, err))
}
