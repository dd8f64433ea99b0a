package storage

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir())
	assert.NoError(t, err)
	return store
}

func TestLocalStore_SaveGeneratesNameKeepingExtension(t *testing.T) {
	store := newStore(t)

	storedName, err := store.Save(strings.NewReader("hello"), "notes.txt")
	assert.NoError(t, err)
	assert.NotEqual(t, "notes.txt", storedName)
	assert.True(t, strings.HasSuffix(storedName, ".txt"))

	content, err := os.ReadFile(store.Path(storedName))
	assert.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestLocalStore_SameNameNeverCollides(t *testing.T) {
	store := newStore(t)

	first, err := store.Save(strings.NewReader("a"), "dup.txt")
	assert.NoError(t, err)
	second, err := store.Save(strings.NewReader("b"), "dup.txt")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, store.Exists(first))
	assert.True(t, store.Exists(second))
}

func TestLocalStore_PathStaysInsideStore(t *testing.T) {
	store := newStore(t)

	// A stored name is never user input, but Path still flattens traversal.
	path := store.Path("../../etc/passwd")
	assert.False(t, strings.Contains(path, ".."))
	assert.True(t, strings.HasSuffix(path, "passwd"))
}

func TestLocalStore_RemoveMissingBlob(t *testing.T) {
	store := newStore(t)

	err := store.Remove("never-existed.bin")
	assert.True(t, os.IsNotExist(err))
	assert.False(t, store.Exists("never-existed.bin"))
}
