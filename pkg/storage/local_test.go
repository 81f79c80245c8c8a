package storage

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tmpDisk(t *testing.T) *localDisk {
	t.Helper()
	return &localDisk{root: t.TempDir(), baseURL: "http://localhost:5000/uploads"}
}

func TestLocalDiskRoundTrip(t *testing.T) {
	d := tmpDisk(t)

	require.NoError(t, d.Put("dishes/salad.jpg", []byte("jpeg-bytes")))
	assert.True(t, d.Exists("dishes/salad.jpg"))

	got, err := d.Get("dishes/salad.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), got)

	require.NoError(t, d.Delete("dishes/salad.jpg"))
	assert.False(t, d.Exists("dishes/salad.jpg"))
}

func TestLocalDiskPutStream(t *testing.T) {
	d := tmpDisk(t)

	require.NoError(t, d.PutStream("a/b/c.bin", bytes.NewReader([]byte("stream"))))
	got, err := d.Get("a/b/c.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("stream"), got)
}

func TestLocalDiskDeleteMissingIsNil(t *testing.T) {
	d := tmpDisk(t)
	assert.NoError(t, d.Delete("never/existed.png"))
}

func TestLocalDiskURL(t *testing.T) {
	d := tmpDisk(t)
	assert.Equal(t, "http://localhost:5000/uploads/dishes/salad.jpg", d.URL("dishes/salad.jpg"))
}

func TestDefaultDiskDelegation(t *testing.T) {
	d := tmpDisk(t)
	RegisterDisk("local", d)
	managerMu.Lock()
	defaultDisk = "local"
	managerMu.Unlock()

	require.NoError(t, Put("x.txt", []byte("hello")))
	assert.True(t, Exists("x.txt"))
	got, err := Get("x.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
	require.NoError(t, Delete("x.txt"))
}
