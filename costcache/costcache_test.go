// costcache_test.go - Tests fuer Speicher- und BadgerDB-Cache
package costcache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testCache(t *testing.T, c Cache) {
	t.Helper()
	require := require.New(t)

	_, ok := c.Get("matmul")
	require.False(ok, "leerer Cache darf nichts liefern")

	c.Put("matmul", 1.25)
	cost, ok := c.Get("matmul")
	require.True(ok)
	require.Equal(1.25, cost)

	c.Put("matmul", 2.5)
	cost, _ = c.Get("matmul")
	require.Equal(2.5, cost, "Put ueberschreibt")
}

func TestMemory(t *testing.T) {
	c := NewMemory()
	defer c.Close()
	testCache(t, c)
}

func TestBadgerInMemory(t *testing.T) {
	c, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	defer c.Close()
	testCache(t, c)
}

// TestBadgerPersists prueft, dass Kosten einen Neustart ueberleben
func TestBadgerPersists(t *testing.T) {
	dir := t.TempDir()

	c, err := Open(Config{Path: dir})
	require.NoError(t, err)
	c.Put("conv2d", 0.5)
	require.NoError(t, c.Close())

	c, err = Open(Config{Path: dir})
	require.NoError(t, err)
	defer c.Close()

	cost, ok := c.Get("conv2d")
	require.True(t, ok)
	require.Equal(t, 0.5, cost)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
}
