package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalFixture(t *testing.T) (*LocalStore, []byte) {
	t.Helper()
	dir := t.TempDir()
	content := []byte("0123456789abcdefghij")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mp4"), content, 0o644))
	return NewLocalStore(dir), content
}

func TestLocalStore_Size(t *testing.T) {
	store, content := newLocalFixture(t)

	size, err := store.Size(context.Background(), "clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)
}

func TestLocalStore_SizeMissing(t *testing.T) {
	store, _ := newLocalFixture(t)

	_, err := store.Size(context.Background(), "nope.mp4")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestLocalStore_OpenRange(t *testing.T) {
	store, content := newLocalFixture(t)

	cases := []struct {
		name       string
		start, end int64
		want       []byte
	}{
		{"full file", 0, int64(len(content)) - 1, content},
		{"middle slice", 5, 9, content[5:10]},
		{"single byte", 0, 0, content[:1]},
		{"tail", 15, int64(len(content)) - 1, content[15:]},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rc, err := store.OpenRange(context.Background(), "clip.mp4", tc.start, tc.end)
			require.NoError(t, err)
			defer rc.Close()

			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLocalStore_OpenRangeMissing(t *testing.T) {
	store, _ := newLocalFixture(t)

	_, err := store.OpenRange(context.Background(), "nope.mp4", 0, 10)
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestLocalStore_RejectsPathEscape(t *testing.T) {
	store, _ := newLocalFixture(t)

	for _, ref := range []string{
		"../secrets.txt",
		"../../etc/passwd",
		"sub/../../outside.mp4",
	} {
		_, err := store.Size(context.Background(), ref)
		assert.ErrorIs(t, err, ErrBlobNotFound, "ref %q", ref)
	}
}
