// Package dock wires the core services into one application container.
package dock

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/colonyops/dock/internal/core/comments"
	"github.com/colonyops/dock/internal/core/config"
	"github.com/colonyops/dock/internal/core/ctxkey"
	"github.com/colonyops/dock/internal/core/storage"
	"github.com/colonyops/dock/internal/core/views"
)

// App carries the wired services commands operate on.
type App struct {
	Config   *config.Config
	Registry *views.Registry
	Context  *ctxkey.Service
	Store    storage.Scoped
	Comments *comments.Model
}

// New builds the application container from configuration: seeds the
// context-key service, registers contributed views, opens the scoped
// store, and loads any shared comment threads.
func New(cfg *config.Config) (*App, error) {
	ctx := ctxkey.NewFromMap(cfg.Context)
	ctx.Set("workspaceOpen", cfg.WorkspaceOpen())

	reg := views.NewRegistry()
	descs, err := cfg.Descriptors()
	if err != nil {
		return nil, err
	}
	if err := reg.Register(descs...); err != nil {
		return nil, err
	}

	cm := comments.NewModel()
	if cfg.Comments.File != "" {
		threads, err := comments.LoadFile(cfg.Comments.File)
		if err != nil {
			return nil, err
		}
		if err := cm.SetThreads(threads); err != nil {
			return nil, fmt.Errorf("load comment threads: %w", err)
		}
		log.Debug().Int("threads", len(threads)).Str("file", cfg.Comments.File).Msg("loaded comment threads")
	}
	ctx.Set("commentsEnabled", cm.HasThreads())

	return &App{
		Config:   cfg,
		Registry: reg,
		Context:  ctx,
		Store:    storage.NewFile(filepath.Join(cfg.DataDir, "storage")),
		Comments: cm,
	}, nil
}

// OpenViews builds the persisted view model for one location. The caller
// owns both returned values and must Close them (model first).
func (a *App) OpenViews(loc views.Location) (*views.Collection, *views.PersistentModel) {
	coll := views.NewCollection(loc, a.Registry, a.Context)
	key := fmt.Sprintf("%s.views.layout", loc)
	return coll, views.NewPersistentModel(coll, a.Store, key, a.Config.WorkspaceOpen())
}

// Locations returns the distinct locations with registered views, in
// first-seen order.
func (a *App) Locations() []views.Location {
	seen := map[views.Location]struct{}{}
	var out []views.Location
	for _, loc := range []views.Location{views.LocationSidebar, views.LocationPanel} {
		if len(a.Registry.Views(loc)) > 0 {
			seen[loc] = struct{}{}
			out = append(out, loc)
		}
	}
	for _, v := range a.Config.Views {
		loc := views.Location(v.Location)
		if _, ok := seen[loc]; !ok && len(a.Registry.Views(loc)) > 0 {
			seen[loc] = struct{}{}
			out = append(out, loc)
		}
	}
	return out
}
