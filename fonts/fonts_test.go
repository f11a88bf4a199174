package fonts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinCatalog(t *testing.T) {
	c := Builtin()
	all := c.All()
	require.Len(t, all, 5)

	remote := 0
	for _, tf := range all {
		assert.NotEmpty(t, tf.CSSStack, tf.ID)
		if tf.Embeddable() {
			remote++
		}
	}
	assert.Equal(t, 1, remote)

	tf, ok := c.Lookup("chenyuluoyan-thin")
	require.True(t, ok)
	assert.Contains(t, tf.Source, "https://")

	assert.Equal(t, "chenyuluoyan-thin", c.Resolve("missing").ID)
}

func TestParseRejectsSecondRemoteSource(t *testing.T) {
	_, err := Parse([]byte(`
typefaces:
  - id: a
    source: https://example.com/a.ttf
  - id: b
    source: https://example.com/b.ttf
`))
	require.Error(t, err)
}

func TestStandardTypeface(t *testing.T) {
	assert.NotEmpty(t, Standard())
}

func TestHTTPFetcherCachesSuccess(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("font-bytes"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client())
	for i := 0; i < 2; i++ {
		data, err := f.Fetch(context.Background(), srv.URL+"/font.ttf")
		require.NoError(t, err)
		assert.Equal(t, "font-bytes", string(data))
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestHTTPFetcherStatusFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	data, err := NewHTTPFetcher(srv.Client()).Fetch(context.Background(), srv.URL+"/missing.ttf")
	require.Error(t, err)
	assert.Nil(t, data)
	assert.True(t, errors.Is(err, ErrAssetFetchFailed))

	var fetchErr *AssetFetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.Status)
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPFetcherCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHTTPFetcher(srv.Client()).Fetch(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAssetFetchFailed))
	assert.True(t, errors.Is(err, context.Canceled))
}
