package progress

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/schollz/progressbar/v3"
)

// Options configures the progress reporter.
type Options struct {
	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// Description is shown in front of the bar, usually the file name.
	Description string

	// Hidden suppresses rendering while still counting bytes.
	Hidden bool
}

// Reporter tracks bytes written for a single saved document.
type Reporter struct {
	bar   *progressbar.ProgressBar
	bytes atomic.Int64
}

// NewReporter creates a reporter for a transfer of total bytes. A negative
// total renders an indeterminate spinner.
func NewReporter(total int64, opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.Hidden {
		opts.Output = io.Discard
	}

	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(opts.Output),
		progressbar.OptionSetDescription("[geogate] "+opts.Description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)
	return &Reporter{bar: bar}
}

// Write implements io.Writer so the reporter can sit in an io.MultiWriter.
func (r *Reporter) Write(p []byte) (int, error) {
	r.bytes.Add(int64(len(p)))
	if _, err := r.bar.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Bytes returns the number of bytes reported so far.
func (r *Reporter) Bytes() int64 {
	return r.bytes.Load()
}

// Finish completes the bar.
func (r *Reporter) Finish() error {
	return r.bar.Finish()
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case b >= GB:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// FormatBytes is exported for use by other packages.
func FormatBytes(b int64) string {
	return formatBytes(b)
}

// ParseBytes parses a human-readable byte string (e.g., "50MB").
func ParseBytes(s string) (int64, error) {
	var multiplier int64 = 1
	s = trimSuffix(s, " ")

	switch {
	case hasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		s = s[:len(s)-2]
	case hasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		s = s[:len(s)-2]
	case hasSuffix(s, "KB"):
		multiplier = 1024
		s = s[:len(s)-2]
	case hasSuffix(s, "B"):
		s = s[:len(s)-1]
	}

	var value float64
	_, err := fmt.Sscanf(s, "%f", &value)
	if err != nil {
		return 0, fmt.Errorf("invalid byte string: %s", s)
	}

	return int64(value * float64(multiplier)), nil
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

func trimSuffix(s, suffix string) string {
	for hasSuffix(s, suffix) {
		s = s[:len(s)-len(suffix)]
	}
	return s
}
