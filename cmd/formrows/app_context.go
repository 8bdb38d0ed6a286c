package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formrows/internal/config"
	"github.com/goliatone/go-formrows/internal/logger"
	"github.com/goliatone/go-formrows/pkg/layout"
)

// appContext bundles the services every command builds at startup.
type appContext struct {
	cfg     config.Config
	log     *logger.Logger
	catalog *layout.Catalog
}

func loadApp(cmd *cobra.Command, flags *rootFlags) (*appContext, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	cfg.Layouts = append(cfg.Layouts, flags.layouts...)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Options{
		Level:         cfg.Log.Level,
		HumanReadable: cfg.Log.Human || flags.human,
		Writer:        cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	catalog, err := loadCatalog(cfg.Layouts)
	if err != nil {
		return nil, err
	}
	return &appContext{cfg: cfg, log: log, catalog: catalog}, nil
}

// loadCatalog layers the layout files matched by patterns over the built-in
// forms; a file form replaces a built-in one with the same id.
func loadCatalog(patterns []string) (*layout.Catalog, error) {
	catalog := layout.DefaultCatalog()
	if len(patterns) == 0 {
		return catalog, nil
	}
	forms, err := layout.LoadAll(patterns...)
	if err != nil {
		return nil, err
	}
	for _, form := range forms {
		catalog.Put(form)
	}
	return catalog, nil
}

// preferencesPath returns where the terminal theme preference lives.
func preferencesPath(cfg config.Config) (string, error) {
	if cfg.Theme.PreferencesFile != "" {
		return cfg.Theme.PreferencesFile, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "formrows", "preferences.yaml"), nil
}
