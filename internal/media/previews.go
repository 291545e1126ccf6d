package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/desertthunder/vidstyle/internal/models"
	"github.com/desertthunder/vidstyle/internal/shared"
)

// DiskPreviews stores uploads as temporary files addressed by random tokens.
type DiskPreviews struct {
	dir      string
	baseURL  string
	maxBytes int64

	mu      sync.Mutex
	entries map[string]*diskLocator
}

// DiskPreviewsOpts configures a [DiskPreviews].
type DiskPreviewsOpts struct {
	Dir      string // Directory for preview files, created if missing
	BaseURL  string // Prefix for locator URLs (default: /preview/)
	MaxBytes int64  // Upload size limit; 0 disables the check
}

// NewDiskPreviews creates the preview directory and returns an empty store.
func NewDiskPreviews(opts DiskPreviewsOpts) (*DiskPreviews, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("%w: preview directory is required", shared.ErrInvalidConfig)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "/preview/"
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create preview directory: %w", err)
	}

	return &DiskPreviews{
		dir:      opts.Dir,
		baseURL:  opts.BaseURL,
		maxBytes: opts.MaxBytes,
		entries:  make(map[string]*diskLocator),
	}, nil
}

// Acquire copies the upload body to a new preview file and registers its token.
func (p *DiskPreviews) Acquire(upload Upload) (Locator, error) {
	if upload.Body == nil {
		return nil, fmt.Errorf("%w: upload has no body", shared.ErrInvalidInput)
	}

	token := shared.GenerateID()
	path := filepath.Join(p.dir, token+strings.ToLower(filepath.Ext(upload.Name)))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create preview file: %w", err)
	}

	body := upload.Body
	if p.maxBytes > 0 {
		body = io.LimitReader(body, p.maxBytes+1)
	}

	written, err := io.Copy(f, body)
	closeErr := f.Close()
	switch {
	case err != nil:
		os.Remove(path)
		return nil, fmt.Errorf("failed to write preview file: %w", err)
	case closeErr != nil:
		os.Remove(path)
		return nil, fmt.Errorf("failed to close preview file: %w", closeErr)
	case p.maxBytes > 0 && written > p.maxBytes:
		os.Remove(path)
		return nil, fmt.Errorf("%w: %s", shared.ErrMediaTooLarge, shared.FormatMegabytes(p.maxBytes))
	}

	meta := upload.Media()
	if meta.Size <= 0 {
		meta.Size = written
	}

	loc := &diskLocator{owner: p, token: token, path: path, media: meta}

	p.mu.Lock()
	p.entries[token] = loc
	p.mu.Unlock()

	return loc, nil
}

// Open returns the file behind a live token. The caller closes it.
func (p *DiskPreviews) Open(token string) (*os.File, models.Media, error) {
	p.mu.Lock()
	loc, ok := p.entries[token]
	p.mu.Unlock()

	if !ok {
		return nil, models.Media{}, fmt.Errorf("%w: %s", shared.ErrPreviewNotFound, token)
	}

	f, err := os.Open(loc.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, models.Media{}, fmt.Errorf("%w: %s", shared.ErrPreviewNotFound, token)
		}
		return nil, models.Media{}, fmt.Errorf("failed to open preview: %w", err)
	}

	return f, loc.media, nil
}

// Live returns the number of locators not yet released.
func (p *DiskPreviews) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Close releases every live locator.
func (p *DiskPreviews) Close() error {
	p.mu.Lock()
	live := make([]*diskLocator, 0, len(p.entries))
	for _, loc := range p.entries {
		live = append(live, loc)
	}
	p.mu.Unlock()

	var errs []error
	for _, loc := range live {
		if err := loc.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *DiskPreviews) forget(token string) {
	p.mu.Lock()
	delete(p.entries, token)
	p.mu.Unlock()
}

type diskLocator struct {
	owner *DiskPreviews
	token string
	path  string
	media models.Media
	once  sync.Once
	err   error
}

func (l *diskLocator) Token() string { return l.token }
func (l *diskLocator) URL() string   { return l.owner.baseURL + l.token }

func (l *diskLocator) Media() models.Media { return l.media }

// Release forgets the token and removes the file. Later calls return the first result.
func (l *diskLocator) Release() error {
	l.once.Do(func() {
		l.owner.forget(l.token)
		if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			l.err = fmt.Errorf("failed to remove preview file: %w", err)
		}
	})
	return l.err
}
