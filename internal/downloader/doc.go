// Package downloader retrieves catalog documents and saves official copies.
//
// A Fetcher opens the document over the retrying HTTP client and enforces a
// maximum size. A Saver streams the content into an output bucket under a
// sanitized key:
//
//	Aadhaar Form 6A  ->  Aadhaar_Form_6A_Official_Copy.jpg
//
// The extension comes from the response Content-Type. Downloader combines the
// two; every error it returns wraps ErrRetrieval, so callers can distinguish
// retrieval failures with errors.Is while the HTTP cause stays reachable:
//
//	if errors.Is(err, gghttp.ErrNotFound) { ... }
//
// Saves go through a cancellable writer context, so a failed copy never
// leaves a partial object behind.
package downloader
