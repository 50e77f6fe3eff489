// Package http provides the HTTP client used to retrieve portal documents and
// to query IP geolocation endpoints.
//
// This package handles:
//   - Connection pooling
//   - A per-request timeout that bounds retrieval
//   - Retry with exponential backoff for network errors and 5xx responses
//   - Mapping of 401/403/404 to sentinel errors
//
// # Usage
//
//	client := http.NewClient(http.DefaultOptions())
//
//	resp, err := client.Get(ctx, url)
//	defer resp.Body.Close()
//	// resp.ContentType, resp.ContentLength
//
//	var out lookupResult
//	err = client.GetJSON(ctx, endpoint, &out)
package http
