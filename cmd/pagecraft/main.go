package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/janver/pagecraft/internal/autosave"
	"github.com/janver/pagecraft/internal/binding"
	"github.com/janver/pagecraft/internal/catalog"
	"github.com/janver/pagecraft/internal/cli"
	"github.com/janver/pagecraft/internal/config"
	"github.com/janver/pagecraft/internal/db"
	"github.com/janver/pagecraft/internal/persist"
	"github.com/janver/pagecraft/internal/registry"
	"github.com/janver/pagecraft/internal/render"
	"github.com/janver/pagecraft/internal/store"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath, err := config.DefaultPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	// Determine DB path: env var or default ~/.pagecraft/pagecraft.db
	dbPath := os.Getenv("PAGECRAFT_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".pagecraft", "pagecraft.db")
	}

	database, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Entity store + component registry with the built-in catalog.
	st := store.New(store.NoopObserver{})
	reg := registry.New(logger)
	catalog.Register(reg)
	plugins := registry.NewPluginManager(reg, logger)

	// Renderers share the store as tree reader.
	editor := render.NewEditor(st, reg, render.NewLogSink(os.Stderr))
	preview := render.NewPreview(st, reg, render.NoopSink{})

	// Bindings recompute derived component values on every store change.
	resolver := binding.New(binding.NewStoreSource(st), binding.MapSource{})
	watcher := binding.NewWatcher(st, resolver)
	defer watcher.Close()

	app := &cli.App{
		Store:    st,
		Registry: reg,
		Plugins:  plugins,
		Editor:   editor,
		Preview:  preview,
		Bridge:   persist.NewBridge(st),
		Config:   cfg,
		UoW:      db.NewSQLiteUnitOfWork(database),
		Logger:   logger,
	}

	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Hydrate before wiring autosave or dirty tracking so loading the saved
	// project does not immediately save it back.
	statePath, err := config.StatePath()
	if err != nil {
		return err
	}
	var client *autosave.Client
	if cfg.Autosave.Enabled {
		client = autosave.NewClient(cfg.Autosave.Endpoint)
	}
	if err := cli.Hydrate(app, client, cfg.Server.Project, statePath); err != nil {
		return err
	}

	var dirty atomic.Bool
	unsubDirty := st.Subscribe(func(ch store.Change) {
		if ch.Kind != store.KindUIState {
			dirty.Store(true)
		}
	})
	defer unsubDirty()

	if cfg.Autosave.Enabled {
		saver := autosave.NewSaver(
			client,
			autosave.StoreProvider(st),
			cfg.Server.Project,
			cfg.Debounce(),
			logger,
		)
		unsubscribe := autosave.Attach(saver, st)
		defer func() {
			unsubscribe()
			saver.FlushAll()
			saver.Wait()
		}()
		app.Saver = saver
	}

	if err := cli.NewRootCmd(app).Execute(); err != nil {
		return err
	}
	if dirty.Load() {
		if err := cli.PersistLocal(app, statePath); err != nil {
			return fmt.Errorf("saving local state: %w", err)
		}
	}
	return nil
}
