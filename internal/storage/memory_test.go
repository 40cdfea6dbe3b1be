package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	exists, err := s.Exists(ctx, "a.md")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, s.Put(ctx, "a.md", []byte("body"), "text/markdown"))
	exists, err = s.Exists(ctx, "a.md")
	require.NoError(t, err)
	require.True(t, exists)

	data, err := s.Get(ctx, "a.md")
	require.NoError(t, err)
	require.Equal(t, "body", string(data))

	require.NoError(t, s.Delete(ctx, "a.md"))
	_, err = s.Get(ctx, "a.md")
	require.ErrorIs(t, err, ErrBlobNotFound)

	// deleting a missing blob is not an error
	require.NoError(t, s.Delete(ctx, "a.md"))
}
