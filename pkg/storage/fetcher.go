package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// File is a fetched attachment body.
type File struct {
	// Name is the base name of the location.
	Name string

	// ContentType is the reported or detected MIME type.
	ContentType string

	// Data is the file content.
	Data []byte
}

// Size returns the file size in bytes.
func (f *File) Size() int64 {
	return int64(len(f.Data))
}

func newFile(location, contentType string, data []byte) *File {
	name := path.Base(location)
	if contentType == "" || normalizeMIME(contentType) == MIMEOctetStream {
		contentType = DetectMIME(name, data)
	}
	return &File{Name: name, ContentType: contentType, Data: data}
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the client used for http(s) locations.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) {
		f.http = hc
	}
}

// WithS3Client sets the client used for s3:// locations.
func WithS3Client(client ObjectGetter) Option {
	return func(f *Fetcher) {
		f.s3 = client
	}
}

// WithRules adds rules checked against every fetched file, in order.
func WithRules(rules ...Rule) Option {
	return func(f *Fetcher) {
		f.rules = append(f.rules, rules...)
	}
}

// Fetcher loads attachment content referenced by a path or URL.
//
// Supported locations:
//   - local paths and file:// URLs
//   - http:// and https:// URLs
//   - s3://bucket/key (requires S3 credentials or WithS3Client)
type Fetcher struct {
	http  *http.Client
	s3    ObjectGetter
	rules []Rule
	cfg   Config
}

// New creates a Fetcher.
func New(cfg Config, opts ...Option) (*Fetcher, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	f := &Fetcher{cfg: cfg}
	for _, opt := range opts {
		opt(f)
	}
	if f.http == nil {
		f.http = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	if f.s3 == nil && cfg.S3.AccessKey != "" {
		f.s3 = newS3Client(cfg.S3)
	}
	return f, nil
}

// Fetch loads the file at location and applies the configured validation rules.
func (f *Fetcher) Fetch(ctx context.Context, location string) (*File, error) {
	file, err := f.fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	if err := check(file, f.rules); err != nil {
		return nil, err
	}
	return file, nil
}

func (f *Fetcher) fetch(ctx context.Context, location string) (*File, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: empty location", ErrInvalidURL)
	}

	scheme, _, found := strings.Cut(location, "://")
	if !found {
		return f.fetchLocal(location)
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	switch strings.ToLower(scheme) {
	case "file":
		return f.fetchLocal(u.Path)
	case "http", "https":
		return f.fetchHTTP(ctx, u)
	case "s3":
		return f.fetchS3(ctx, u)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}
}

func (f *Fetcher) fetchLocal(name string) (*File, error) {
	var (
		file fs.File
		err  error
	)
	if f.cfg.LocalRoot != "" {
		rel, relErr := f.relativeToRoot(name)
		if relErr != nil {
			return nil, relErr
		}
		root, rootErr := os.OpenRoot(f.cfg.LocalRoot)
		if rootErr != nil {
			return nil, fmt.Errorf("%w: local root: %v", ErrInvalidConfig, rootErr)
		}
		defer root.Close()
		file, err = root.Open(rel)
	} else {
		file, err = os.Open(name)
	}
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		case errors.Is(err, fs.ErrPermission):
			return nil, fmt.Errorf("%w: %s", ErrAccessDenied, name)
		case f.cfg.LocalRoot != "":
			return nil, fmt.Errorf("%w: %s: %v", ErrOutsideRoot, name, err)
		default:
			return nil, fmt.Errorf("%w: %s: %v", ErrDownloadFailed, name, err)
		}
	}
	defer file.Close()

	data, err := f.readLimited(file)
	if err != nil {
		return nil, err
	}
	return newFile(name, "", data), nil
}

// relativeToRoot maps name to a path inside LocalRoot.
// Relative names are taken as relative to the root.
func (f *Fetcher) relativeToRoot(name string) (string, error) {
	if !filepath.IsAbs(name) {
		return filepath.Clean(name), nil
	}
	root, err := filepath.Abs(f.cfg.LocalRoot)
	if err != nil {
		return "", fmt.Errorf("%w: local root: %v", ErrInvalidConfig, err)
	}
	rel, err := filepath.Rel(root, name)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, name)
	}
	return rel, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, u *url.URL) (*File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if resp == nil || resp.Body == nil {
		return nil, fmt.Errorf("%w: empty response", ErrDownloadFailed)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, u.Redacted())
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", ErrAccessDenied, u.Redacted())
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrDownloadFailed, resp.StatusCode)
	}

	if resp.ContentLength > f.cfg.MaxSize {
		return nil, ErrFileTooLarge
	}

	data, err := f.readLimited(resp.Body)
	if err != nil {
		return nil, err
	}
	return newFile(u.Path, resp.Header.Get("Content-Type"), data), nil
}
