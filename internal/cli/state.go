package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/janver/pagecraft/internal/autosave"
)

// Hydrate fills the entity store at process start. With a client it first
// asks the autosave server for the project's saved pages and seeds the
// page version counters from what it gets back. When the server is
// unreachable or holds nothing it falls back to the local state document;
// a missing document means a fresh workspace.
func Hydrate(app *App, client *autosave.Client, projectID, statePath string) error {
	if client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		states, err := client.LoadProject(ctx, projectID)
		cancel()
		switch {
		case err != nil:
			app.logger().Warn("autosave server unreachable, using local state",
				"project", projectID, "error", err)
		case len(states) > 0:
			payloads := make([][]byte, len(states))
			versions := make(map[string]int64, len(states))
			for i, ps := range states {
				payloads[i] = ps.State
				versions[ps.PageID] = ps.Version
			}
			if err := app.Bridge.Hydrate(payloads...); err != nil {
				return fmt.Errorf("loading project %s from autosave server: %w", projectID, err)
			}
			app.Store.SeedPageVersions(versions)
			return nil
		}
	}

	data, err := os.ReadFile(statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", statePath, err)
	}
	if err := app.Bridge.Upload(data); err != nil {
		return fmt.Errorf("loading %s: %w", statePath, err)
	}
	return nil
}

// PersistLocal writes the store to the local state document so the next
// run can start from it even without the autosave server.
func PersistLocal(app *App, statePath string) error {
	if err := os.MkdirAll(filepath.Dir(statePath), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return app.Bridge.DownloadToFile(statePath)
}
