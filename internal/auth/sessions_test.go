package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsGetAndEnd(t *testing.T) {
	previews := NewMemoryPreviews()
	s := NewSessions(func() *Flow { return newTestFlow(newFakeBackend(), previews) }, time.Minute)

	id, f := s.Get("")
	require.NotEmpty(t, id)
	again, f2 := s.Get(id)
	assert.Equal(t, id, again)
	assert.Same(t, f, f2)

	other, f3 := s.Get("unknown")
	assert.NotEqual(t, "unknown", other)
	assert.NotSame(t, f, f3)
	assert.Equal(t, 2, s.Len())

	sellerSignUp(t, f)
	require.NoError(t, f.AttachImage(ImageFile{Data: pngBytes(8)}))
	s.End(id)
	assert.Equal(t, 0, previews.Live())
	assert.Equal(t, 1, s.Len())
}

func TestSessionsSweep(t *testing.T) {
	previews := NewMemoryPreviews()
	s := NewSessions(func() *Flow { return newTestFlow(newFakeBackend(), previews) }, time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	oldID, old := s.Get("")
	sellerSignUp(t, old)
	require.NoError(t, old.AttachImage(ImageFile{Data: pngBytes(8)}))

	now = now.Add(2 * time.Minute)
	freshID, _ := s.Get("")

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, previews.Live())

	id, _ := s.Get(oldID)
	assert.NotEqual(t, oldID, id)
	id, _ = s.Get(freshID)
	assert.Equal(t, freshID, id)

	s.Stop()
	assert.Equal(t, 0, s.Len())
	s.Stop()
}

func TestSessionsLookupDoesNotCreate(t *testing.T) {
	s := NewSessions(func() *Flow { return newTestFlow(newFakeBackend(), NewMemoryPreviews()) }, time.Minute)

	_, ok := s.Lookup("")
	assert.False(t, ok)
	_, ok = s.Lookup("unknown")
	assert.False(t, ok)

	draft := s.Draft()
	require.NotNil(t, draft)
	assert.Equal(t, ModeSignIn, draft.Snapshot().Mode)
	assert.Zero(t, s.Len())

	id, f := s.Get("")
	got, ok := s.Lookup(id)
	require.True(t, ok)
	assert.Same(t, f, got)
	assert.Equal(t, 1, s.Len())
}

func TestSessionsLimitEvictsLeastRecent(t *testing.T) {
	previews := NewMemoryPreviews()
	s := NewSessions(func() *Flow { return newTestFlow(newFakeBackend(), previews) }, time.Hour)
	s.SetLimit(2)
	now := time.Now()
	s.now = func() time.Time { return now }

	firstID, first := s.Get("")
	sellerSignUp(t, first)
	require.NoError(t, first.AttachImage(ImageFile{Data: pngBytes(8)}))

	now = now.Add(time.Second)
	secondID, _ := s.Get("")
	now = now.Add(time.Second)
	thirdID, _ := s.Get("")

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 0, previews.Live())
	_, ok := s.Lookup(firstID)
	assert.False(t, ok)
	_, ok = s.Lookup(secondID)
	assert.True(t, ok)
	_, ok = s.Lookup(thirdID)
	assert.True(t, ok)
}
