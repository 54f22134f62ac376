// Package config handles configuration loading and validation for dock.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/dock/internal/core/views"
	"github.com/colonyops/dock/internal/core/when"
)

// builtinViews are the views dock always contributes. Manifest views are
// appended on top of these.
var builtinViews = []ViewContribution{
	{ID: "explorer", Name: "Explorer", Location: "sidebar", Order: intp(0)},
	{ID: "search", Name: "Search", Location: "sidebar", Order: intp(1)},
	{ID: "scm", Name: "Source Control", Location: "sidebar", Order: intp(2), When: "scmProviderCount"},
	{ID: "comments", Name: "Comments", Location: "panel", Order: intp(0), When: "commentsEnabled"},
	{ID: "problems", Name: "Problems", Location: "panel", Order: intp(1), Pinned: true},
}

func intp(v int) *int { return &v }

// Config holds the application configuration.
type Config struct {
	// Workspace is the open workspace root; empty means no workspace,
	// which switches persisted layout to the global scope.
	Workspace string `yaml:"workspace"`
	// Context seeds the context-key service at startup.
	Context map[string]any `yaml:"context"`
	// Views are manifest-contributed views, added on top of the built-ins.
	Views []ViewContribution `yaml:"views"`
	// Comments points at a JSON file of comment threads to load.
	Comments CommentsConfig `yaml:"comments"`
	// DataDir is set by the caller, not read from the config file.
	DataDir string `yaml:"-"`
}

// ViewContribution is the manifest form of one view declaration.
type ViewContribution struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Location  string `yaml:"location"`
	When      string `yaml:"when"`      // predicate expression; empty = always active
	Order     *int   `yaml:"order"`     // nil sorts after all ordered views
	Collapsed bool   `yaml:"collapsed"` // default collapsed state
	Pinned    bool   `yaml:"pinned"`    // pinned views cannot be hidden
}

// CommentsConfig configures the comment-thread source.
type CommentsConfig struct {
	File string `yaml:"file"`
}

// DefaultConfig returns a Config with the built-in views and no workspace.
func DefaultConfig() Config {
	return Config{
		Context: map[string]any{},
		Views:   append([]ViewContribution(nil), builtinViews...),
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the
// provided dataDir. Manifest views are appended to the built-ins.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			var user Config
			if err := yaml.Unmarshal(data, &user); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			cfg.Workspace = user.Workspace
			cfg.Comments = user.Comments
			for k, v := range user.Context {
				cfg.Context[k] = v
			}
			cfg.Views = append(cfg.Views, user.Views...)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// WorkspaceOpen reports whether a workspace is configured.
func (c *Config) WorkspaceOpen() bool {
	return c.Workspace != ""
}

// Descriptors converts the contributed views to registry descriptors.
func (c *Config) Descriptors() ([]views.Descriptor, error) {
	out := make([]views.Descriptor, 0, len(c.Views))
	for _, v := range c.Views {
		var expr *when.Expr
		if v.When != "" {
			parsed, err := when.Parse(v.When)
			if err != nil {
				return nil, fmt.Errorf("view %q: parse when clause: %w", v.ID, err)
			}
			expr = parsed
		}
		out = append(out, views.Descriptor{
			ID:                  v.ID,
			Name:                v.Name,
			Location:            views.Location(v.Location),
			When:                expr,
			CanToggleVisibility: !v.Pinned,
			Order:               v.Order,
			Collapsed:           v.Collapsed,
		})
	}
	return out, nil
}
