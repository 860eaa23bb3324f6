package source

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.frame")
	require.NoError(t, os.WriteFile(path, []byte("<Frame/>"), 0o644))

	u, err := FromLocation(path)
	require.NoError(t, err)
	assert.Equal(t, "file", u.Scheme)

	b, err := New(nil, nil).ReadAll(u)
	require.NoError(t, err)
	assert.Equal(t, "<Frame/>", string(b))
}

func TestJoinRelativeToDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "a.css"), []byte("a{}"), 0o644))

	doc, err := FromLocation(filepath.Join(dir, "doc.frame"))
	require.NoError(t, err)
	u, err := Join(doc, "css/a.css")
	require.NoError(t, err)

	b, err := New(nil, nil).ReadAll(u)
	require.NoError(t, err)
	assert.Equal(t, "a{}", string(b))
}

func TestMissingFile(t *testing.T) {
	u, err := FromLocation(filepath.Join(t.TempDir(), "nope.frame"))
	require.NoError(t, err)
	_, err = New(nil, nil).ReadAll(u)
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/style.css" {
			w.Write([]byte("a { width: 1px }"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	res := New(srv.Client(), nil)
	doc, err := FromLocation(srv.URL + "/doc.frame")
	require.NoError(t, err)

	u, err := Join(doc, "style.css")
	require.NoError(t, err)
	b, err := res.ReadAll(u)
	require.NoError(t, err)
	assert.Equal(t, "a { width: 1px }", string(b))

	u, err = Join(doc, "missing.css")
	require.NoError(t, err)
	_, err = res.ReadAll(u)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusNotFound, netErr.Status)
}

func TestUnsupportedScheme(t *testing.T) {
	base, err := url.Parse("https://example.com/doc.frame")
	require.NoError(t, err)
	u, err := Join(base, "ftp://example.com/a.css")
	require.NoError(t, err)
	_, err = New(nil, nil).Resolve(u)
	var urlErr *URLError
	assert.ErrorAs(t, err, &urlErr)
}
