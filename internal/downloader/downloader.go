package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gocloud.dev/blob"

	gghttp "github.com/ligustah/geogate/internal/http"
	"github.com/ligustah/geogate/internal/progress"
)

// DefaultMaxSize caps a single retrieved document.
const DefaultMaxSize int64 = 50 * 1024 * 1024

// CopySuffix is appended to every saved file name.
const CopySuffix = "_Official_Copy"

// DefaultExtension is used when the content type has no known extension.
const DefaultExtension = ".jpg"

var (
	// ErrRetrieval wraps every failure to obtain or save a document.
	ErrRetrieval = errors.New("downloader: retrieval failed")

	// ErrTooLarge is returned when a document exceeds the size limit.
	ErrTooLarge = errors.New("downloader: content too large")
)

// Content is a fetched document. Callers must close Body.
type Content struct {
	Body        io.ReadCloser
	ContentType string
	// Size is the advertised length, or -1 when unknown.
	Size int64
}

// Fetcher retrieves document content over HTTP.
type Fetcher struct {
	client  *gghttp.Client
	maxSize int64
}

// NewFetcher creates a fetcher. A maxSize of zero or less uses DefaultMaxSize.
func NewFetcher(client *gghttp.Client, maxSize int64) *Fetcher {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Fetcher{client: client, maxSize: maxSize}
}

// Fetch opens the document at url. The returned body fails with ErrTooLarge
// once more than the size limit has been read.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Content, error) {
	resp, err := f.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}

	if resp.ContentLength > f.maxSize {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %w (%s > %s)", ErrRetrieval, ErrTooLarge,
			progress.FormatBytes(resp.ContentLength), progress.FormatBytes(f.maxSize))
	}

	return &Content{
		Body:        &limitedBody{rc: resp.Body, remaining: f.maxSize},
		ContentType: resp.ContentType,
		Size:        resp.ContentLength,
	}, nil
}

// limitedBody reads at most remaining bytes and reports ErrTooLarge if the
// underlying body has more.
type limitedBody struct {
	rc        io.ReadCloser
	remaining int64
}

func (l *limitedBody) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, ErrTooLarge
	}
	// Read one byte past the limit to detect overflow.
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.rc.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n + int(l.remaining), ErrTooLarge
	}
	return n, err
}

func (l *limitedBody) Close() error {
	return l.rc.Close()
}

// SaverOptions configures a Saver.
type SaverOptions struct {
	// Prefix is prepended to every object key, e.g. "downloads/".
	Prefix string

	// Progress enables a progress bar per saved document.
	Progress bool

	// ProgressOptions are passed to the progress reporter.
	ProgressOptions progress.Options
}

// Saver writes document content into an output bucket.
type Saver struct {
	bucket *blob.Bucket
	opts   SaverOptions
}

// NewSaver creates a saver writing to bucket.
func NewSaver(bucket *blob.Bucket, opts SaverOptions) *Saver {
	return &Saver{bucket: bucket, opts: opts}
}

// Save streams content into the bucket under the sanitized name and returns
// the object key. Nothing is committed if the copy fails.
func (s *Saver) Save(ctx context.Context, name string, c *Content) (string, error) {
	defer c.Body.Close()

	key := s.opts.Prefix + SanitizeFilename(name, ExtensionFor(c.ContentType))

	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.bucket.NewWriter(writeCtx, key, &blob.WriterOptions{
		ContentType: c.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", ErrRetrieval, key, err)
	}

	var dst io.Writer = w
	var reporter *progress.Reporter
	if s.opts.Progress {
		po := s.opts.ProgressOptions
		po.Description = key
		reporter = progress.NewReporter(c.Size, po)
		dst = io.MultiWriter(w, reporter)
	}

	if _, err := io.Copy(dst, c.Body); err != nil {
		// Cancelling before Close aborts the write.
		cancel()
		w.Close()
		return "", fmt.Errorf("%w: write %s: %w", ErrRetrieval, key, err)
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: close %s: %w", ErrRetrieval, key, err)
	}

	if reporter != nil {
		reporter.Finish()
	}

	return key, nil
}

// Downloader fetches a document and saves it.
type Downloader struct {
	fetcher *Fetcher
	saver   *Saver
	logger  *zap.Logger
}

// New creates a downloader. A nil logger discards output.
func New(fetcher *Fetcher, saver *Saver, logger *zap.Logger) *Downloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Downloader{fetcher: fetcher, saver: saver, logger: logger}
}

// Download retrieves url and saves it under the sanitized form of name.
// Every error wraps ErrRetrieval.
func (d *Downloader) Download(ctx context.Context, name, url string) (string, error) {
	content, err := d.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	key, err := d.saver.Save(ctx, name, content)
	if err != nil {
		return "", err
	}

	d.logger.Debug("document saved",
		zap.String("url", url),
		zap.String("key", key),
		zap.String("content_type", content.ContentType))
	return key, nil
}

var whitespace = regexp.MustCompile(`\s+`)

// SanitizeFilename replaces whitespace runs in name with "_" and appends the
// official copy suffix and ext.
func SanitizeFilename(name, ext string) string {
	return whitespace.ReplaceAllString(name, "_") + CopySuffix + ext
}

var preferredExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
	"text/plain":      ".txt",
}

// ExtensionFor maps a Content-Type header to a file extension, falling back to
// DefaultExtension.
func ExtensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return DefaultExtension
	}
	mediaType = strings.ToLower(mediaType)
	if ext, ok := preferredExtensions[mediaType]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return DefaultExtension
}
