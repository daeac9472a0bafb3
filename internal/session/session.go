package session

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/appetiteclub/apt"

	"github.com/comandaclub/comanda/internal/storage"
)

const (
	sessionKey = "table_session"
	queryParam = "tableId"

	// DefaultTTL bounds how long a scanned QR code keeps a device bound
	// to its table.
	DefaultTTL = 2 * time.Hour
)

// TableSession binds a device to a physical table until it expires.
// Times are unix milliseconds, matching the persisted wire shape.
type TableSession struct {
	TableID   string `json:"tableId"`
	StartTime int64  `json:"startTime"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Store resolves and persists the table binding for the current session.
type Store struct {
	kv     storage.Store
	ttl    time.Duration
	logger apt.Logger
	now    func() time.Time
}

func NewStore(kv storage.Store, ttl time.Duration, logger apt.Logger) *Store {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if kv == nil {
		kv = storage.NewNoopStore()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		kv:     kv,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Resolve returns the table id for this session. A tableId query parameter
// (the scanned QR code) wins and rebinds the session; otherwise any
// persisted, unexpired session is used. Malformed or expired persisted data
// is discarded and treated as absent.
func (s *Store) Resolve(query url.Values) (string, bool) {
	if id := query.Get(queryParam); id != "" {
		s.Bind(id)
		return id, true
	}

	current, ok := s.Current()
	if !ok {
		return "", false
	}
	return current.TableID, true
}

// Bind creates and persists a fresh session for tableID.
func (s *Store) Bind(tableID string) TableSession {
	now := s.now()
	sess := TableSession{
		TableID:   tableID,
		StartTime: now.UnixMilli(),
		ExpiresAt: now.Add(s.ttl).UnixMilli(),
	}

	raw, err := json.Marshal(sess)
	if err == nil {
		err = s.kv.Set(sessionKey, string(raw))
	}
	if err != nil {
		s.logger.Error("cannot persist table session", "table_id", tableID, "error", err)
	}

	return sess
}

// Current returns the persisted session if it exists and has not expired.
func (s *Store) Current() (TableSession, bool) {
	raw, ok := s.kv.Get(sessionKey)
	if !ok {
		return TableSession{}, false
	}

	var sess TableSession
	if err := json.Unmarshal([]byte(raw), &sess); err != nil || sess.TableID == "" {
		s.logger.Debug("discarding malformed table session")
		s.Clear()
		return TableSession{}, false
	}

	if s.now().UnixMilli() > sess.ExpiresAt {
		s.Clear()
		return TableSession{}, false
	}

	return sess, true
}

// Clear releases the persisted session.
func (s *Store) Clear() {
	if err := s.kv.Delete(sessionKey); err != nil {
		s.logger.Error("cannot clear table session", "error", err)
	}
}
