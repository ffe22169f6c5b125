package http_test

import (
	"os"
	"path/filepath"
	"testing"

	pwhttp "github.com/fwojciec/pricewatch/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCookies(t *testing.T) {
	t.Parallel()

	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "cookies.json")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	t.Run("reads cookie list and defaults path", func(t *testing.T) {
		t.Parallel()

		path := write(t, `[
			{"name": "_abck", "value": "x", "domain": ".falabella.com", "path": "/cl"},
			{"name": "bm_sz", "value": "y", "domain": ".falabella.com"}
		]`)

		cookies, err := pwhttp.LoadCookies(path)

		require.NoError(t, err)
		require.Len(t, cookies, 2)
		assert.Equal(t, "/cl", cookies[0].Path)
		assert.Equal(t, "/", cookies[1].Path)
		assert.Equal(t, ".falabella.com", cookies[1].Domain)
	})

	t.Run("rejects cookie without domain", func(t *testing.T) {
		t.Parallel()

		_, err := pwhttp.LoadCookies(write(t, `[{"name": "a", "value": "b"}]`))
		require.Error(t, err)
	})

	t.Run("rejects malformed file", func(t *testing.T) {
		t.Parallel()

		_, err := pwhttp.LoadCookies(write(t, `{not json`))
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := pwhttp.LoadCookies(filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
	})
}
