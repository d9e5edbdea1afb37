package main

import (
	"strings"

	"github.com/FocuswithJustin/RosaArchive/core/cache"
	"github.com/FocuswithJustin/RosaArchive/core/checksum"
	"github.com/FocuswithJustin/RosaArchive/core/names"
	"github.com/FocuswithJustin/RosaArchive/core/repository"
	"github.com/FocuswithJustin/RosaArchive/core/store"
	"github.com/FocuswithJustin/RosaArchive/internal/config"
	"github.com/FocuswithJustin/RosaArchive/internal/logging"
	"github.com/FocuswithJustin/RosaArchive/internal/tools"
)

// Env lazily builds the configuration and repository shared by commands.
type Env struct {
	Globals *CLI

	cfg    *config.Config
	repo   *repository.Repository
	cached *cache.CachedRepository
}

// Config loads the configuration once, applies the global overrides and
// configures logging.
func (e *Env) Config() (*config.Config, error) {
	if e.cfg != nil {
		return e.cfg, nil
	}
	cfg, path, found, err := config.Load(e.Globals.Config)
	if err != nil {
		return nil, err
	}
	if e.Globals.Root != "" {
		root, err := config.ExpandPath(e.Globals.Root)
		if err != nil {
			return nil, err
		}
		cfg.Archive.Root = root
	}
	if e.Globals.LogLevel != "" {
		cfg.Logging.Level = strings.ToLower(e.Globals.LogLevel)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	logging.InitLogger(level, format)
	logging.Debug("configuration loaded", "path", path, "found", found, "root", cfg.Archive.Root)

	e.cfg = cfg
	return cfg, nil
}

// Repository builds the repository described by the configuration.
func (e *Env) Repository() (*repository.Repository, error) {
	if e.repo != nil {
		return e.repo, nil
	}
	cfg, err := e.Config()
	if err != nil {
		return nil, err
	}
	parser, err := names.NewParser(cfg.Archive.NameDelimiter, cfg.Archive.PagePattern)
	if err != nil {
		return nil, err
	}
	alg, err := checksum.ParseAlgorithm(cfg.Archive.DigestAlgorithm)
	if err != nil {
		return nil, err
	}
	logger := logging.GetLogger()
	e.repo = repository.New(store.NewFS(cfg.Archive.Root),
		repository.WithParser(parser),
		repository.WithChecksumEngine(checksum.New(alg, checksum.WithLogger(logger))),
		repository.WithProber(tools.Identify{Binary: cfg.Tools.Identify, Timeout: cfg.ProbeTimeout()}),
		repository.WithCropper(tools.Convert{Binary: cfg.Tools.Convert}),
		repository.WithCropWorkers(cfg.Crop.Workers),
		repository.WithCropTimeout(cfg.CropTimeout()),
		repository.WithLogger(logger),
	)
	return e.repo, nil
}

// Cached returns the caching layer over the repository, or nil when the
// configuration disables caching.
func (e *Env) Cached() (*cache.CachedRepository, error) {
	if e.cached != nil {
		return e.cached, nil
	}
	repo, err := e.Repository()
	if err != nil {
		return nil, err
	}
	if e.cfg.Cache.Books == 0 {
		return nil, nil
	}
	e.cached = cache.NewCachedRepository(repo, cache.Config{
		MaxSize: e.cfg.Cache.Books,
		TTL:     e.cfg.CacheTTL(),
		OnEvict: func(key, _ any) { logging.GetLogger().Debug("cache_evict", "key", key) },
	})
	return e.cached, nil
}
