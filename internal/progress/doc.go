// Package progress reports document save progress and parses byte sizes.
//
// # Reporter
//
// A Reporter wraps a progressbar and counts bytes written through it. Place it
// in an io.MultiWriter next to the destination:
//
//	r := progress.NewReporter(size, progress.Options{Description: name})
//	io.Copy(io.MultiWriter(dst, r), src)
//	r.Finish()
//
// # Sizes
//
// FormatBytes and ParseBytes convert between byte counts and strings such as
// "1.2 MB" or "50MB", using 1024 multiples.
package progress
