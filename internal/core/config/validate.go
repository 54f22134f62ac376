package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/dock/internal/core/when"
)

// Validate checks structural validity: every contributed view carries the
// required fields, ids are unique, and when clauses parse.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		c.validateViews(),
		c.validateWorkspace(),
	)
}

// ValidateDeep runs Validate plus I/O checks against the filesystem.
func (c *Config) ValidateDeep() error {
	if err := c.Validate(); err != nil {
		return err
	}

	var errs criterio.FieldErrorsBuilder
	if c.Comments.File != "" {
		if _, err := os.Stat(c.Comments.File); err != nil {
			errs = errs.Append("comments.file", fmt.Errorf("cannot access: %w", err))
		}
	}
	return errs.ToError()
}

func (c *Config) validateViews() error {
	var errs criterio.FieldErrorsBuilder

	seen := map[string]struct{}{}
	for i, v := range c.Views {
		field := func(name string) string { return fmt.Sprintf("views[%d].%s", i, name) }

		if strings.TrimSpace(v.ID) == "" {
			errs = errs.Append(field("id"), fmt.Errorf("is required"))
		}
		if strings.TrimSpace(v.Name) == "" {
			errs = errs.Append(field("name"), fmt.Errorf("is required"))
		}
		if strings.TrimSpace(v.Location) == "" {
			errs = errs.Append(field("location"), fmt.Errorf("is required"))
		}

		if _, dup := seen[v.ID]; dup && v.ID != "" {
			errs = errs.Append(field("id"), fmt.Errorf("duplicate view id %q", v.ID))
		}
		seen[v.ID] = struct{}{}

		if v.When != "" {
			if _, err := when.Parse(v.When); err != nil {
				errs = errs.Append(field("when"), fmt.Errorf("invalid expression %q: %w", v.When, err))
			}
		}
	}

	return errs.ToError()
}

func (c *Config) validateWorkspace() error {
	if c.Workspace == "" {
		return nil
	}

	info, err := os.Stat(c.Workspace)
	if os.IsNotExist(err) {
		return nil // may be created later
	}
	if err != nil {
		return criterio.NewFieldErrors("workspace", fmt.Errorf("cannot access: %w", err))
	}
	if !info.IsDir() {
		return criterio.NewFieldErrors("workspace", fmt.Errorf("%s is not a directory", c.Workspace))
	}
	return nil
}
