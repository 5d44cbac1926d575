package cli

import (
	"context"
	"fmt"

	"github.com/glorpus-work/modpick/internal/logger"
	"github.com/glorpus-work/modpick/pkg/archive"
	"github.com/glorpus-work/modpick/pkg/catalog"
	"github.com/glorpus-work/modpick/pkg/config"
	"github.com/glorpus-work/modpick/pkg/download"
	"github.com/glorpus-work/modpick/pkg/errors"
	"github.com/glorpus-work/modpick/pkg/fsutil"
	"github.com/glorpus-work/modpick/pkg/model"
	"github.com/glorpus-work/modpick/pkg/orchestrator"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
	TargetDir  *string
)

// loadConfig loads the configuration, applies the global flags and sets up logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with CLI flags if provided
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
	if TargetDir != nil && *TargetDir != "" {
		cfg.Settings.TargetDir = *TargetDir
	}

	initLogging(cfg)
	return cfg, nil
}

func initLogging(cfg *config.Config) {
	logger.InitLogger(cfg.Settings.LogLevel, logger.OutputFormat(cfg.Settings.LogFormat))
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		// An empty path makes LoadConfig and SaveConfig fail with ErrEmptyConfigPath.
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}

func loadClient(cfg *config.Config) *download.Client {
	return download.NewClient(cfg.Settings.HTTPTimeout, cfg.Settings.UserAgent)
}

func loadFetcher(cfg *config.Config, client *download.Client) *catalog.Fetcher {
	return catalog.NewFetcher(client, cfg.Settings.ManifestURL, cfg.Settings.ExcludeMarker)
}

func loadFilesystem(cfg *config.Config) *fsutil.LocalFS {
	return fsutil.NewLocalFS(archive.NewManager()).WithScratchDir(cfg.GetScratchDir())
}

func loadOrchestrator(cfg *config.Config, client *download.Client, hooks orchestrator.Hooks) *orchestrator.Orchestrator {
	return orchestrator.New(client, loadFilesystem(cfg), cfg.Settings.TargetDir, cfg.Settings.ArchiveExtensions, hooks)
}

// logHooks forwards orchestrator progress to the debug log.
func logHooks() orchestrator.Hooks {
	return orchestrator.Hooks{OnEvent: func(e orchestrator.Event) {
		logger.Debug("Install progress", logger.Fields{"phase": e.Phase, "package": e.ID, "msg": e.Msg})
	}}
}

// fetchCatalog downloads and parses the manifest named in cfg.
func fetchCatalog(ctx context.Context, cfg *config.Config) (*model.Catalog, error) {
	cat, err := loadFetcher(cfg, loadClient(cfg)).Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	return cat, nil
}

func findPackage(cat *model.Catalog, name string) (model.Package, error) {
	pkg, ok := cat.Lookup(name)
	if !ok {
		return model.Package{}, errors.ErrPackageNotFoundWithName(name)
	}
	return pkg, nil
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
