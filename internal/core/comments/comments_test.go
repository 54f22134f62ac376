package comments_test

import (
	"testing"

	"github.com/colonyops/dock/internal/core/comments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func thread(id, resource string, bodies ...string) comments.Thread {
	t := comments.Thread{
		ID:       id,
		Resource: resource,
		Range:    comments.Range{StartLine: 1, StartColumn: 1, EndLine: 1, EndColumn: 1},
	}
	for _, b := range bodies {
		t.Comments = append(t.Comments, comments.Comment{Author: "dev", Body: b})
	}
	return t
}

func resourceIDs(rs []*comments.ResourceThreads) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestModel_SetThreadsGroupsByResource(t *testing.T) {
	m := comments.NewModel()

	require.NoError(t, m.SetThreads([]comments.Thread{
		thread("t3", "file:///b.go", "on b"),
		thread("t1", "file:///a.go", "first", "second"),
		thread("t2", "file:///a.go", "another"),
	}))

	rs := m.Resources()
	require.Len(t, rs, 2)

	// Groups are ordered by resource identity string.
	assert.Equal(t, []string{"file:///a.go", "file:///b.go"}, resourceIDs(rs))
	assert.Len(t, rs[0].Threads, 2)
	assert.Len(t, rs[1].Threads, 1)
}

func TestModel_FirstCommentIsRootRestAreReplies(t *testing.T) {
	m := comments.NewModel()

	require.NoError(t, m.SetThreads([]comments.Thread{
		thread("t1", "file:///a.ts", "root comment", "reply comment"),
	}))

	rs := m.Resources()
	require.Len(t, rs, 1)
	require.Len(t, rs[0].Threads, 1)

	node := rs[0].Threads[0]
	assert.Equal(t, "root comment", node.Comment.Body)
	require.Len(t, node.Replies, 1)
	assert.Equal(t, "reply comment", node.Replies[0].Body)
}

func TestModel_SetThreadsRejectsEmptyThread(t *testing.T) {
	m := comments.NewModel()

	err := m.SetThreads([]comments.Thread{thread("empty", "file:///a.go")})
	assert.ErrorIs(t, err, comments.ErrEmptyThread)
	assert.False(t, m.HasThreads())
}

func TestModel_SetThreadsReplacesExistingGrouping(t *testing.T) {
	m := comments.NewModel()

	require.NoError(t, m.SetThreads([]comments.Thread{thread("t1", "file:///old.go", "x")}))
	require.NoError(t, m.SetThreads([]comments.Thread{thread("t2", "file:///new.go", "y")}))

	assert.Equal(t, []string{"file:///new.go"}, resourceIDs(m.Resources()))
}

func TestModel_RemoveLastThreadDropsResource(t *testing.T) {
	m := comments.NewModel()

	require.NoError(t, m.SetThreads([]comments.Thread{thread("t1", "file:///a.go", "only")}))
	require.True(t, m.HasThreads())

	require.NoError(t, m.UpdateThreads(comments.ChangeEvent{
		Removed: []comments.Thread{thread("t1", "file:///a.go", "only")},
	}))

	assert.False(t, m.HasThreads())
	assert.Empty(t, m.Resources())
}

func TestModel_RemoveKeepsSiblingThreads(t *testing.T) {
	m := comments.NewModel()

	require.NoError(t, m.SetThreads([]comments.Thread{
		thread("t1", "file:///a.go", "one"),
		thread("t2", "file:///a.go", "two"),
	}))

	require.NoError(t, m.UpdateThreads(comments.ChangeEvent{
		Removed: []comments.Thread{thread("t1", "file:///a.go", "one")},
	}))

	rs := m.Resources()
	require.Len(t, rs, 1)
	require.Len(t, rs[0].Threads, 1)
	assert.Equal(t, "t2", rs[0].Threads[0].ThreadID)
}

func TestModel_ChangedReplacesNodeInPlace(t *testing.T) {
	m := comments.NewModel()

	require.NoError(t, m.SetThreads([]comments.Thread{
		thread("t1", "file:///a.go", "before"),
		thread("t2", "file:///a.go", "stays"),
	}))

	require.NoError(t, m.UpdateThreads(comments.ChangeEvent{
		Changed: []comments.Thread{thread("t1", "file:///a.go", "after", "new reply")},
	}))

	rs := m.Resources()
	require.Len(t, rs, 1)
	require.Len(t, rs[0].Threads, 2)
	assert.Equal(t, "after", rs[0].Threads[0].Comment.Body)
	assert.Len(t, rs[0].Threads[0].Replies, 1)
	assert.Equal(t, "stays", rs[0].Threads[1].Comment.Body)
}

func TestModel_AddedMergesIntoExistingResource(t *testing.T) {
	m := comments.NewModel()

	require.NoError(t, m.SetThreads([]comments.Thread{thread("t1", "file:///a.go", "existing")}))

	require.NoError(t, m.UpdateThreads(comments.ChangeEvent{
		Added: []comments.Thread{
			thread("t2", "file:///a.go", "merged in"),
			thread("t3", "file:///b.go", "new resource"),
		},
	}))

	rs := m.Resources()
	require.Len(t, rs, 2, "existing resource must not be duplicated")
	assert.Equal(t, "file:///a.go", rs[0].ID)
	assert.Len(t, rs[0].Threads, 2)
	assert.Equal(t, "file:///b.go", rs[1].ID)
}

func TestModel_UpdateAppliesRemovedThenChangedThenAdded(t *testing.T) {
	m := comments.NewModel()

	require.NoError(t, m.SetThreads([]comments.Thread{
		thread("t1", "file:///a.go", "one"),
		thread("t2", "file:///a.go", "two"),
	}))

	// Remove the whole resource, then re-add to it: the add must land in
	// a fresh group, proving removed ran first.
	require.NoError(t, m.UpdateThreads(comments.ChangeEvent{
		Removed: []comments.Thread{
			thread("t1", "file:///a.go", "one"),
			thread("t2", "file:///a.go", "two"),
		},
		Added: []comments.Thread{thread("t3", "file:///a.go", "three")},
	}))

	rs := m.Resources()
	require.Len(t, rs, 1)
	require.Len(t, rs[0].Threads, 1)
	assert.Equal(t, "t3", rs[0].Threads[0].ThreadID)
}

func TestModel_UpdateMissingReferencesAreReportedNotFatal(t *testing.T) {
	m := comments.NewModel()

	require.NoError(t, m.SetThreads([]comments.Thread{thread("t1", "file:///a.go", "one")}))

	err := m.UpdateThreads(comments.ChangeEvent{
		Removed: []comments.Thread{
			thread("ghost", "file:///a.go", "x"),
			thread("t9", "file:///nowhere.go", "x"),
		},
		Changed: []comments.Thread{thread("ghost2", "file:///a.go", "x")},
		Added:   []comments.Thread{thread("t2", "file:///a.go", "added anyway")},
	})

	require.Error(t, err)
	assert.ErrorContains(t, err, "remove thread ghost")
	assert.ErrorContains(t, err, "remove thread t9")
	assert.ErrorContains(t, err, "change thread ghost2")

	// The valid phases still applied.
	rs := m.Resources()
	require.Len(t, rs, 1)
	assert.Len(t, rs[0].Threads, 2)
}

func TestModel_HasThreadsAndMessage(t *testing.T) {
	m := comments.NewModel()

	assert.False(t, m.HasThreads())
	assert.NotEmpty(t, m.Message())

	require.NoError(t, m.SetThreads([]comments.Thread{thread("t1", "file:///a.go", "x")}))
	assert.True(t, m.HasThreads())
	assert.Empty(t, m.Message())
}

func TestModel_MatchResources(t *testing.T) {
	m := comments.NewModel()

	require.NoError(t, m.SetThreads([]comments.Thread{
		thread("t1", "file:///src/a.go", "x"),
		thread("t2", "file:///src/deep/b.go", "x"),
		thread("t3", "file:///docs/readme.md", "x"),
	}))

	got, err := m.MatchResources("file:///src/**/*.go")
	require.NoError(t, err)
	assert.Equal(t, []string{"file:///src/a.go", "file:///src/deep/b.go"}, resourceIDs(got))

	got, err = m.MatchResources("**/*.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"file:///docs/readme.md"}, resourceIDs(got))

	_, err = m.MatchResources("[unclosed")
	assert.Error(t, err)
}
