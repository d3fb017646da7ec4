// Package loader brings models into the viewer through an external IFC
// engine and tracks which models are loaded.
package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Source identifies a model as either a local file or a URL.
type Source struct {
	Path string // local file path
	URL  string // http(s) URL
}

// FileSource returns a Source for a local file.
func FileSource(p string) Source {
	return Source{Path: p}
}

// URLSource returns a Source for a remote file.
func URLSource(u string) Source {
	return Source{URL: u}
}

// ParseSource treats http:// and https:// strings as URLs and everything
// else as a file path.
func ParseSource(s string) Source {
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return URLSource(s)
	}
	return FileSource(s)
}

// IsURL reports whether the source is remote.
func (s Source) IsURL() bool {
	return s.URL != ""
}

// Name returns the base name of the file or URL path.
func (s Source) Name() string {
	if s.IsURL() {
		u := s.URL
		if i := strings.IndexAny(u, "?#"); i >= 0 {
			u = u[:i]
		}
		return path.Base(u)
	}
	return filepath.Base(s.Path)
}

func (s Source) String() string {
	if s.IsURL() {
		return s.URL
	}
	return s.Path
}

// Open returns the model bytes. client may be nil to use http.DefaultClient.
func (s Source) Open(ctx context.Context, client *http.Client) (io.ReadCloser, error) {
	if !s.IsURL() {
		if s.Path == "" {
			return nil, fmt.Errorf("empty model source")
		}
		return os.Open(s.Path)
	}

	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: %s", s.URL, resp.Status)
	}
	return resp.Body, nil
}
