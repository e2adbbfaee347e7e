package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaos-io/cutout/pixel"
)

func sample() *pixel.Buffer {
	b := pixel.New(4, 3)
	b.Fill(pixel.Color{R: 10, G: 20, B: 30, A: 255})
	b.SetAlpha(1, 1, 0)
	return b
}

func TestSavePNGAndLoadBuffer(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "out.png")
	want := sample()
	require.NoError(t, SavePNG(path, want))

	got, err := LoadBuffer(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	_, err = LoadBuffer(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestLoadBuffer_URL(t *testing.T) {
	t.Parallel()

	data, err := pixel.EncodePNGBytes(sample())
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cat.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(data)
	}))
	defer server.Close()

	got, err := LoadBuffer(context.Background(), server.URL+"/cat.png")
	require.NoError(t, err)
	assert.True(t, sample().Equal(got))

	_, err = LoadBuffer(context.Background(), server.URL+"/dog.png")
	assert.ErrorContains(t, err, "status 404")
}

func TestOpenImage_NotAnImage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "x.png")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))
	_, err := OpenImage(path)
	assert.Error(t, err)
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	assert.True(t, IsURL("https://example.com/a.png"))
	assert.True(t, IsURL("http://example.com/a.png"))
	assert.False(t, IsURL("input/a.png"))
}

func TestTrace(t *testing.T) {
	t.Parallel()

	done := Trace("noop")
	assert.NotPanics(t, done)
}
