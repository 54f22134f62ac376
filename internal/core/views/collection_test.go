package views_test

import (
	"testing"

	"github.com/colonyops/dock/internal/core/ctxkey"
	"github.com/colonyops/dock/internal/core/views"
	"github.com/colonyops/dock/internal/core/when"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(descs []views.Descriptor) []string {
	out := make([]string, 0, len(descs))
	for _, d := range descs {
		out = append(out, d.ID)
	}
	return out
}

func TestCollection_SeedsFromRegistry(t *testing.T) {
	reg := views.NewRegistry()
	ctx := ctxkey.NewFromMap(map[string]any{"gitEnabled": true})

	require.NoError(t, reg.Register(
		views.Descriptor{ID: "explorer", Name: "Explorer", Location: views.LocationSidebar},
		views.Descriptor{ID: "scm", Name: "Source Control", Location: views.LocationSidebar, When: when.MustParse("gitEnabled")},
		views.Descriptor{ID: "debug", Name: "Debug", Location: views.LocationSidebar, When: when.MustParse("debuggersAvailable")},
		views.Descriptor{ID: "problems", Name: "Problems", Location: views.LocationPanel},
	))

	c := views.NewCollection(views.LocationSidebar, reg, ctx)
	defer c.Close()

	assert.Equal(t, []string{"explorer", "scm"}, ids(c.ActiveDescriptors()))
}

func TestCollection_RegisteredBatchCoalescesSignal(t *testing.T) {
	reg := views.NewRegistry()
	ctx := ctxkey.New()

	c := views.NewCollection(views.LocationSidebar, reg, ctx)
	defer c.Close()

	var fired int
	c.OnDidChange(func() { fired++ })

	require.NoError(t, reg.Register(
		views.Descriptor{ID: "a", Name: "A", Location: views.LocationSidebar},
		views.Descriptor{ID: "b", Name: "B", Location: views.LocationSidebar},
	))
	assert.Equal(t, 1, fired, "one signal per batch")

	// A batch with no active member is silent.
	require.NoError(t, reg.Register(
		views.Descriptor{ID: "c", Name: "C", Location: views.LocationSidebar, When: when.MustParse("neverSet")},
	))
	assert.Equal(t, 1, fired)

	// Other locations never signal this collection.
	require.NoError(t, reg.Register(
		views.Descriptor{ID: "p", Name: "P", Location: views.LocationPanel},
	))
	assert.Equal(t, 1, fired)
}

func TestCollection_DeregisterInactiveIsSilent(t *testing.T) {
	reg := views.NewRegistry()
	ctx := ctxkey.New()

	require.NoError(t, reg.Register(
		views.Descriptor{ID: "active", Name: "Active", Location: views.LocationSidebar},
		views.Descriptor{ID: "inactive", Name: "Inactive", Location: views.LocationSidebar, When: when.MustParse("neverSet")},
	))

	c := views.NewCollection(views.LocationSidebar, reg, ctx)
	defer c.Close()

	var fired int
	c.OnDidChange(func() { fired++ })

	reg.Deregister("inactive")
	assert.Equal(t, 0, fired)

	reg.Deregister("active")
	assert.Equal(t, 1, fired)
	assert.Empty(t, c.ActiveDescriptors())
}

func TestCollection_ContextChangeRecomputesActive(t *testing.T) {
	reg := views.NewRegistry()
	ctx := ctxkey.New()

	require.NoError(t, reg.Register(
		views.Descriptor{ID: "always", Name: "Always", Location: views.LocationSidebar},
		views.Descriptor{ID: "gated", Name: "Gated", Location: views.LocationSidebar, When: when.MustParse("flag")},
	))

	c := views.NewCollection(views.LocationSidebar, reg, ctx)
	defer c.Close()

	var fired int
	c.OnDidChange(func() { fired++ })

	assert.Equal(t, []string{"always"}, ids(c.ActiveDescriptors()))

	ctx.Set("flag", true)
	assert.Equal(t, 1, fired)
	assert.Equal(t, []string{"always", "gated"}, ids(c.ActiveDescriptors()))

	// Unrelated keys never reach the recompute.
	ctx.Set("unrelated", true)
	assert.Equal(t, 1, fired)

	// A relevant key changing without flipping any active flag is silent.
	ctx.Set("flag", "still-truthy")
	assert.Equal(t, 1, fired)

	ctx.Delete("flag")
	assert.Equal(t, 2, fired)
	assert.Equal(t, []string{"always"}, ids(c.ActiveDescriptors()))
}

func TestCollection_SharedContextKeysAreRefCounted(t *testing.T) {
	reg := views.NewRegistry()
	ctx := ctxkey.New()

	require.NoError(t, reg.Register(
		views.Descriptor{ID: "one", Name: "One", Location: views.LocationSidebar, When: when.MustParse("shared")},
		views.Descriptor{ID: "two", Name: "Two", Location: views.LocationSidebar, When: when.MustParse("shared && extra")},
	))

	c := views.NewCollection(views.LocationSidebar, reg, ctx)
	defer c.Close()

	// Removing one holder of "shared" must keep the key watched.
	reg.Deregister("two")

	var fired int
	c.OnDidChange(func() { fired++ })

	ctx.Set("shared", true)
	assert.Equal(t, 1, fired)
	assert.Equal(t, []string{"one"}, ids(c.ActiveDescriptors()))
}

func TestCollection_CloseStopsSignals(t *testing.T) {
	reg := views.NewRegistry()
	ctx := ctxkey.New()

	c := views.NewCollection(views.LocationSidebar, reg, ctx)

	var fired int
	c.OnDidChange(func() { fired++ })

	c.Close()

	require.NoError(t, reg.Register(views.Descriptor{ID: "a", Name: "A", Location: views.LocationSidebar}))
	assert.Equal(t, 0, fired)
}

func TestCollection_ActiveIsInsertionOrder(t *testing.T) {
	reg := views.NewRegistry()
	ctx := ctxkey.New()

	c := views.NewCollection(views.LocationSidebar, reg, ctx)
	defer c.Close()

	// Declared orders are ignored here; the collection is pre-sort.
	two := 2
	one := 1
	require.NoError(t, reg.Register(
		views.Descriptor{ID: "x", Name: "X", Location: views.LocationSidebar, Order: &two},
		views.Descriptor{ID: "y", Name: "Y", Location: views.LocationSidebar, Order: &one},
	))

	assert.Equal(t, []string{"x", "y"}, ids(c.ActiveDescriptors()))
}
