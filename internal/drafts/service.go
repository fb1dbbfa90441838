// Package drafts autosaves in-progress forms to Redis. Saving is best effort:
// a failure is reported in the returned status and never as an error.
package drafts

import (
	"context"
	"encoding/json"
	"regexp"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/logger"
	"github.com/thermolaq/atelier-backend/pkg/redis"
)

// Status is what the form shows next to the autosave indicator.
type Status string

const (
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusError  Status = "error"
)

// MaxPayloadBytes bounds one draft.
const MaxPayloadBytes = 256 << 10

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// Result reports the outcome of a save.
type Result struct {
	Status  Status     `json:"status"`
	SavedAt *time.Time `json:"saved_at,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// errUnavailable is the message of a save lost to the store, as opposed to
// a rejected payload.
const errUnavailable = "draft could not be saved"

// Retryable reports whether the save failed on the store and may succeed later.
func (r Result) Retryable() bool {
	return r.Status == StatusError && r.Error == errUnavailable
}

// Draft is a stored form snapshot.
type Draft struct {
	Payload json.RawMessage `json:"payload"`
	SavedAt time.Time       `json:"saved_at"`
}

type Service struct {
	kv   redis.KV
	ttl  time.Duration
	logg *logger.Logger
	now  func() time.Time
}

func NewService(kv redis.KV, ttl time.Duration, logg *logger.Logger) (*Service, error) {
	if kv == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "draft store required")
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{kv: kv, ttl: ttl, logg: logg, now: time.Now}, nil
}

// Pending is the status a client shows while Save is in flight.
func Pending() Result {
	return Result{Status: StatusSaving}
}

// Save stores payload under the caller's draft key.
func (s *Service) Save(ctx context.Context, tenantID, userID uuid.UUID, key string, payload json.RawMessage) Result {
	if !keyPattern.MatchString(key) {
		return Result{Status: StatusError, Error: "invalid draft key"}
	}
	if len(payload) == 0 || !json.Valid(payload) {
		return Result{Status: StatusError, Error: "draft must be valid JSON"}
	}
	if len(payload) > MaxPayloadBytes {
		return Result{Status: StatusError, Error: "draft too large"}
	}

	savedAt := s.now().UTC()
	encoded, err := json.Marshal(Draft{Payload: payload, SavedAt: savedAt})
	if err != nil {
		return s.failed(ctx, key, err)
	}
	if err := s.kv.Set(ctx, s.kv.DraftKey(tenantID.String(), userID.String(), key), string(encoded), s.ttl); err != nil {
		return s.failed(ctx, key, err)
	}
	return Result{Status: StatusSaved, SavedAt: &savedAt}
}

func (s *Service) failed(ctx context.Context, key string, err error) Result {
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"draft_key": key, "error": err.Error()}), "draft.save_failed")
	return Result{Status: StatusError, Error: errUnavailable}
}

// Load returns the stored draft, or nil when there is none.
func (s *Service) Load(ctx context.Context, tenantID, userID uuid.UUID, key string) (*Draft, error) {
	if !keyPattern.MatchString(key) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid draft key")
	}
	raw, err := s.kv.Get(ctx, s.kv.DraftKey(tenantID.String(), userID.String(), key))
	if err != nil {
		if redis.IsMiss(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load draft")
	}
	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"draft_key": key, "error": err.Error()}), "draft.corrupt")
		return nil, nil
	}
	return &draft, nil
}

func (s *Service) Discard(ctx context.Context, tenantID, userID uuid.UUID, key string) error {
	if !keyPattern.MatchString(key) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid draft key")
	}
	if err := s.kv.Del(ctx, s.kv.DraftKey(tenantID.String(), userID.String(), key)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "discard draft")
	}
	return nil
}
