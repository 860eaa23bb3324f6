// Package source opens documents and stylesheets by location. A location is
// either a local path or a file, http or https URL.
package source

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// IOError is a failure to read a local file
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("reading %s: %v", e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// NetworkError is a failed or unsuccessful HTTP fetch
type NetworkError struct {
	URL    string
	Status int // 0 when no response was received
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetching %s: status %d", e.URL, e.Status)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// URLError is a location that cannot be turned into a URL
type URLError struct {
	Location string
	Err      error
}

func (e *URLError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid location %q: %v", e.Location, e.Err)
	}
	return fmt.Sprintf("invalid location %q", e.Location)
}

func (e *URLError) Unwrap() error { return e.Err }

// Resolver turns URLs into byte streams. It keeps no cache; every call
// reads or fetches again.
type Resolver struct {
	client *http.Client
	log    *zap.Logger
}

// New creates a resolver. A nil client means http.DefaultClient.
func New(client *http.Client, log *zap.Logger) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{client: client, log: log}
}

// FromLocation parses a location. Anything without a file, http or https
// scheme is taken as a local path and canonicalized.
func FromLocation(loc string) (*url.URL, error) {
	if u, err := url.Parse(loc); err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return u, nil
		case "file":
			return fileURL(u.Path, loc)
		}
	}
	return fileURL(loc, loc)
}

func fileURL(path, loc string) (*url.URL, error) {
	if path == "" {
		return nil, &URLError{Location: loc}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &URLError{Location: loc, Err: err}
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}, nil
}

// Join resolves ref relative to base, the way a Style src is resolved
// against its document
func Join(base *url.URL, ref string) (*url.URL, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return nil, &URLError{Location: ref, Err: err}
	}
	u := base.ResolveReference(r)
	if u.Scheme == "file" {
		return fileURL(filepath.FromSlash(u.Path), ref)
	}
	return u, nil
}

// DisplayName is the name used for u in diagnostics: the local path for
// file URLs, the URL otherwise
func DisplayName(u *url.URL) string {
	if u.Scheme == "file" {
		return filepath.FromSlash(u.Path)
	}
	return u.String()
}

// Resolve opens u. The caller closes the stream.
func (r *Resolver) Resolve(u *url.URL) (io.ReadCloser, error) {
	switch u.Scheme {
	case "file":
		path := filepath.FromSlash(u.Path)
		r.log.Debug("opening file", zap.String("path", path))
		f, err := os.Open(path)
		if err != nil {
			return nil, &IOError{Path: path, Err: err}
		}
		return f, nil
	case "http", "https":
		r.log.Debug("fetching", zap.Stringer("url", u))
		resp, err := r.client.Get(u.String())
		if err != nil {
			return nil, &NetworkError{URL: u.String(), Err: err}
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			return nil, &NetworkError{URL: u.String(), Status: resp.StatusCode}
		}
		return resp.Body, nil
	}
	return nil, &URLError{Location: u.String(), Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
}

// ReadAll resolves u and reads it completely
func (r *Resolver) ReadAll(u *url.URL) ([]byte, error) {
	rc, err := r.Resolve(u)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		if u.Scheme == "file" {
			return nil, &IOError{Path: DisplayName(u), Err: err}
		}
		return nil, &NetworkError{URL: u.String(), Err: err}
	}
	return b, nil
}
