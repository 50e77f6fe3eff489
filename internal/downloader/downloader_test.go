package downloader

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"

	gghttp "github.com/ligustah/geogate/internal/http"
	"github.com/ligustah/geogate/internal/progress"
)

func testClient() *gghttp.Client {
	opts := gghttp.DefaultOptions()
	opts.RetryAttempts = 0
	opts.Timeout = 5 * time.Second
	return gghttp.NewClient(opts)
}

func serveBytes(t *testing.T, contentType string, data []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Write(data)
	}))
	t.Cleanup(server.Close)
	return server
}

func newDownloader(bucket *blob.Bucket, maxSize int64) *Downloader {
	return New(NewFetcher(testClient(), maxSize), NewSaver(bucket, SaverOptions{}), nil)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		want string
	}{
		{"Aadhaar Linking Form 6A", ".jpg", "Aadhaar_Linking_Form_6A_Official_Copy.jpg"},
		{"  spaced\t\tout  ", ".pdf", "_spaced_out__Official_Copy.pdf"},
		{"आयकर अनुपालन सूचना", ".jpg", "आयकर_अनुपालन_सूचना_Official_Copy.jpg"},
		{"NoSpaces", ".png", "NoSpaces_Official_Copy.png"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.name, tt.ext))
		})
	}
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"application/pdf", ".pdf"},
		{"text/plain; charset=utf-8", ".txt"},
		{"IMAGE/JPEG", ".jpg"},
		{"", ".jpg"},
		{"not a media type;;", ".jpg"},
		{"application/x-geogate-unknown", ".jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtensionFor(tt.contentType))
		})
	}
}

func TestDownload(t *testing.T) {
	data := bytes.Repeat([]byte("official"), 1024)
	server := serveBytes(t, "image/jpeg", data)

	ctx := context.Background()
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	key, err := newDownloader(bucket, 0).Download(ctx, "Income Tax Notice", server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Income_Tax_Notice_Official_Copy.jpg", key)

	got, err := bucket.ReadAll(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	attrs, err := bucket.Attributes(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", attrs.ContentType)
}

func TestDownloadPrefixAndProgress(t *testing.T) {
	data := []byte("%PDF-1.4 notice")
	server := serveBytes(t, "application/pdf", data)

	ctx := context.Background()
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	var out bytes.Buffer
	saver := NewSaver(bucket, SaverOptions{
		Prefix:          "downloads/",
		Progress:        true,
		ProgressOptions: progress.Options{Output: &out},
	})
	d := New(NewFetcher(testClient(), 0), saver, nil)

	key, err := d.Download(ctx, "Penalty Schedule", server.URL)
	require.NoError(t, err)
	assert.Equal(t, "downloads/Penalty_Schedule_Official_Copy.pdf", key)

	exists, err := bucket.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDownloadHTTPErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, gghttp.ErrNotFound},
		{"forbidden", http.StatusForbidden, gghttp.ErrForbidden},
		{"unauthorized", http.StatusUnauthorized, gghttp.ErrUnauthorized},
		{"server error", http.StatusBadGateway, gghttp.ErrServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			bucket := memblob.OpenBucket(nil)
			defer bucket.Close()

			_, err := newDownloader(bucket, 0).Download(context.Background(), "Doc", server.URL)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrRetrieval))
			assert.True(t, errors.Is(err, tt.want))
		})
	}
}

func TestDownloadTooLargeDeclared(t *testing.T) {
	server := serveBytes(t, "image/jpeg", make([]byte, 2048))

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	_, err := newDownloader(bucket, 1024).Download(context.Background(), "Big", server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRetrieval))
	assert.True(t, errors.Is(err, ErrTooLarge))
}

func TestDownloadTooLargeStreamed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(http.StatusOK)
		// Flushing before the body forces chunked encoding, so no length is
		// advertised.
		w.(http.Flusher).Flush()
		w.Write(make([]byte, 4096))
	}))
	defer server.Close()

	ctx := context.Background()
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	_, err := newDownloader(bucket, 1024).Download(ctx, "Streamed Doc", server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooLarge))

	exists, err := bucket.Exists(ctx, "Streamed_Doc_Official_Copy.jpg")
	require.NoError(t, err)
	assert.False(t, exists, "aborted save must not leave an object")
}

func TestDownloadExactlyMaxSize(t *testing.T) {
	data := make([]byte, 1024)
	server := serveBytes(t, "image/png", data)

	ctx := context.Background()
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	key, err := newDownloader(bucket, 1024).Download(ctx, "Edge", server.URL)
	require.NoError(t, err)

	got, err := bucket.ReadAll(ctx, key)
	require.NoError(t, err)
	assert.Len(t, got, 1024)
}

func TestDownloadContextCancelled(t *testing.T) {
	server := serveBytes(t, "image/jpeg", []byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	_, err := newDownloader(bucket, 0).Download(ctx, "Doc", server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRetrieval))
	assert.True(t, errors.Is(err, context.Canceled))
}
