// Package views implements the registry and reconciliation model for
// contributed side-panel views: which views exist, which are active under
// the current context, and which the user has shown, hidden, or reordered.
package views

import (
	"fmt"
	"strings"

	"github.com/colonyops/dock/internal/core/when"
	"github.com/hay-kot/criterio"
)

// Location identifies the container a view is contributed to.
type Location string

// Well-known locations. Contributions may introduce additional ones.
const (
	LocationSidebar Location = "sidebar"
	LocationPanel   Location = "panel"
)

// Descriptor declares one contributed view. Descriptors are immutable
// once registered; the registry owns them for their registered lifetime.
type Descriptor struct {
	// ID is unique within a location.
	ID   string
	Name string
	// Location is the container the view belongs to.
	Location Location
	// When gates activation; nil means always active.
	When *when.Expr
	// CanToggleVisibility permits the user to show/hide the view.
	CanToggleVisibility bool
	// Order is the declared sort position; nil sorts after all ordered views.
	Order *int
	// Collapsed is the default collapsed state for first-time users.
	Collapsed bool
}

// Validate checks the fields every registered descriptor must carry.
func (d Descriptor) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("id", d.ID, required),
		criterio.Run("name", d.Name, required),
		criterio.Run("location", string(d.Location), required),
	)
}

func required(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("is required")
	}
	return nil
}

// State is the per-view mutable record the user's customizations live in.
// It is created lazily when a descriptor is first observed and survives
// deregistration so a re-registered view restores prior choices.
type State struct {
	Visible   bool `json:"visible"`
	Collapsed bool `json:"collapsed"`
	Order     *int `json:"order,omitempty"`
	Size      *int `json:"size,omitempty"`
}
