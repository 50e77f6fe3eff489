package auditlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/ligustah/geogate/internal/geo"
	"github.com/ligustah/geogate/internal/locale"
)

// DefaultKey is the object key holding the serialized log.
const DefaultKey = "gov_portal_logs"

// ErrMalformedLog is returned by Load when the stored log cannot be parsed.
var ErrMalformedLog = errors.New("auditlog: malformed persisted log")

// Entry is a single capture event. Entries are never modified after creation.
type Entry struct {
	ID        string  `json:"id"`
	Timestamp string  `json:"timestamp"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Action    string  `json:"action"`
}

// Coordinates returns the captured position.
func (e Entry) Coordinates() geo.Coordinates {
	return geo.Coordinates{Latitude: e.Latitude, Longitude: e.Longitude}
}

// Options configures a Store.
type Options struct {
	// Key is the object key of the persisted log.
	// Default: DefaultKey
	Key string

	// Formatter renders capture times.
	// Default: locale.MediumDateTime(locale.Default)
	Formatter locale.Formatter

	// Clock supplies capture times.
	// Default: clockwork.NewRealClock()
	Clock clockwork.Clock

	// NewID generates entry ids.
	// Default: random UUIDs
	NewID func() string

	Logger *zap.Logger
}

// Store is the in-memory audit log backed by a bucket object.
type Store struct {
	bucket *blob.Bucket
	opts   Options

	mu      sync.RWMutex
	entries []Entry
}

// New returns an empty Store persisting to bucket. Call Load to restore a
// previously saved log.
func New(bucket *blob.Bucket, opts Options) *Store {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Formatter == nil {
		opts.Formatter = locale.MediumDateTime(locale.Default)
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString() }
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Store{bucket: bucket, opts: opts}
}

// Load replaces the in-memory log with the persisted one. A missing object
// yields an empty log. A malformed object leaves the log empty and returns an
// error wrapping ErrMalformedLog.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil

	data, err := s.bucket.ReadAll(ctx, s.opts.Key)
	if err != nil {
		if isNotExist(err) {
			return nil
		}
		return fmt.Errorf("auditlog: read %s: %w", s.opts.Key, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedLog, err)
	}
	s.entries = entries

	s.opts.Logger.Debug("audit log loaded",
		zap.String("key", s.opts.Key),
		zap.Int("entries", len(entries)),
	)
	return nil
}

// Append records a capture at the head of the log and persists the whole log
// before returning. If persisting fails the in-memory log is unchanged.
func (s *Store) Append(ctx context.Context, action string, coords geo.Coordinates) (Entry, error) {
	entry := Entry{
		ID:        s.opts.NewID(),
		Timestamp: s.opts.Formatter(s.opts.Clock.Now()),
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
		Action:    action,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Entry, 0, len(s.entries)+1)
	next = append(next, entry)
	next = append(next, s.entries...)

	if err := s.persist(ctx, next); err != nil {
		return Entry{}, err
	}
	s.entries = next

	s.opts.Logger.Info("capture recorded",
		zap.String("id", entry.ID),
		zap.String("action", action),
		zap.Int("entries", len(next)),
	)
	return entry, nil
}

func (s *Store) persist(ctx context.Context, entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("auditlog: marshal: %w", err)
	}
	opts := &blob.WriterOptions{ContentType: "application/json"}
	if err := s.bucket.WriteAll(ctx, s.opts.Key, data, opts); err != nil {
		return fmt.Errorf("auditlog: write %s: %w", s.opts.Key, err)
	}
	return nil
}

// All returns a copy of the log, newest first.
func (s *Store) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry{}, s.entries...)
}

// Recent returns at most n entries, newest first.
func (s *Store) Recent(n int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n < 0 || n > len(s.entries) {
		n = len(s.entries)
	}
	return append([]Entry{}, s.entries[:n]...)
}

// Len returns the number of recorded captures.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// isNotExist returns true if the error indicates the object doesn't exist.
func isNotExist(err error) bool {
	return gcerrors.Code(err) == gcerrors.NotFound
}
