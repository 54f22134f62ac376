package ctxkey_test

import (
	"testing"

	"github.com/colonyops/dock/internal/core/ctxkey"
	"github.com/colonyops/dock/internal/core/when"
	"github.com/colonyops/dock/pkg/countset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_SetEmitsOnChangeOnly(t *testing.T) {
	svc := ctxkey.New()

	var fired int
	svc.OnDidChangeContext(func(ctxkey.ChangeEvent) { fired++ })

	svc.Set("mode", "diff")
	svc.Set("mode", "diff") // unchanged, no event
	svc.Set("mode", "merge")

	assert.Equal(t, 2, fired)
}

func TestService_DeleteAbsentIsSilent(t *testing.T) {
	svc := ctxkey.New()

	var fired int
	svc.OnDidChangeContext(func(ctxkey.ChangeEvent) { fired++ })

	svc.Delete("missing")
	assert.Equal(t, 0, fired)

	svc.Set("present", true)
	svc.Delete("present")
	assert.Equal(t, 2, fired)

	_, ok := svc.Value("present")
	assert.False(t, ok)
}

func TestService_ApplyCoalescesIntoOneEvent(t *testing.T) {
	svc := ctxkey.NewFromMap(map[string]any{"stable": 1})

	var evs []ctxkey.ChangeEvent
	svc.OnDidChangeContext(func(e ctxkey.ChangeEvent) { evs = append(evs, e) })

	svc.Apply(map[string]any{
		"stable": 1, // unchanged, excluded from the event
		"a":      true,
		"b":      "x",
	})

	require.Len(t, evs, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, evs[0].Keys())
}

func TestService_ApplyWithNoEffectiveChangeIsSilent(t *testing.T) {
	svc := ctxkey.NewFromMap(map[string]any{"a": 1})

	var fired int
	svc.OnDidChangeContext(func(ctxkey.ChangeEvent) { fired++ })

	svc.Apply(map[string]any{"a": 1})
	assert.Equal(t, 0, fired)
}

func TestChangeEvent_AffectsSome(t *testing.T) {
	svc := ctxkey.New()

	var last ctxkey.ChangeEvent
	svc.OnDidChangeContext(func(e ctxkey.ChangeEvent) { last = e })
	svc.Set("watched", true)

	watched := countset.New[string]()
	watched.Add("watched")
	assert.True(t, last.AffectsSome(watched))

	other := countset.New[string]()
	other.Add("unrelated")
	assert.False(t, last.AffectsSome(other))
}

func TestService_Matches(t *testing.T) {
	svc := ctxkey.NewFromMap(map[string]any{"explorerEnabled": true})

	assert.True(t, svc.Matches(when.MustParse("explorerEnabled")))
	assert.False(t, svc.Matches(when.MustParse("!explorerEnabled")))
	assert.True(t, svc.Matches(nil))
}

func TestService_Unsubscribe(t *testing.T) {
	svc := ctxkey.New()

	var fired int
	unsub := svc.OnDidChangeContext(func(ctxkey.ChangeEvent) { fired++ })

	svc.Set("a", 1)
	unsub()
	svc.Set("b", 2)

	assert.Equal(t, 1, fired)
}
