package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// KindTransfer records a balance movement. Mints carry an empty from
	// address, burns an empty to address.
	KindTransfer = "transfer"
	// KindApproval records the absolute allowance set by an owner for a spender.
	KindApproval = "approval"
	// KindLocked records tokens entering a time lock.
	KindLocked = "locked"
	// KindUnlocked records a matured lock being claimed.
	KindUnlocked = "unlocked"
	// KindRoleGranted records a role grant to a principal.
	KindRoleGranted = "role_granted"
	// KindRoleRevoked records a role revocation from a principal.
	KindRoleRevoked = "role_revoked"
)

// Transfer is the payload for KindTransfer records.
type Transfer struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// Approval is the payload for KindApproval records. Amount is the absolute
// allowance after the change, not a delta.
type Approval struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Amount  int64  `json:"amount"`
}

// Locked is the payload for KindLocked records. Amount is the full locked
// amount under the reason after the change.
type Locked struct {
	Account    string    `json:"account"`
	Reason     string    `json:"reason"`
	Amount     int64     `json:"amount"`
	UnlockTime time.Time `json:"unlock_time"`
}

// Unlocked is the payload for KindUnlocked records.
type Unlocked struct {
	Account string `json:"account"`
	Reason  string `json:"reason"`
	Amount  int64  `json:"amount"`
}

// RoleGranted is the payload for KindRoleGranted records.
type RoleGranted struct {
	Principal string `json:"principal"`
	Role      string `json:"role"`
}

// RoleRevoked is the payload for KindRoleRevoked records.
type RoleRevoked struct {
	Principal string `json:"principal"`
	Role      string `json:"role"`
}

// Record is one entry of the audit journal. Data holds one of the payload
// structs above when the record is built in process, or raw JSON when it is
// read back from storage.
type Record struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Data       any       `json:"data"`
	RecordedAt time.Time `json:"recorded_at"`
}

// NewRecord stamps a payload with a fresh id and the current time.
func NewRecord(kind string, data any) Record {
	return Record{
		ID:         uuid.NewString(),
		Kind:       kind,
		Data:       data,
		RecordedAt: time.Now().UTC(),
	}
}

// Sink receives records after the unit of work that produced them commits.
type Sink interface {
	Emit(ctx context.Context, record Record) error
}

// LoggerSink writes records to the structured logger.
type LoggerSink struct {
	logger *slog.Logger
}

// NewLoggerSink constructs a logging sink.
func NewLoggerSink(logger *slog.Logger) *LoggerSink {
	return &LoggerSink{logger: logger}
}

// Emit writes the record to the structured logger.
func (s *LoggerSink) Emit(_ context.Context, record Record) error {
	if s == nil || s.logger == nil {
		return nil
	}
	s.logger.Info("ledger event", "id", record.ID, "kind", record.Kind, "data", record.Data)
	return nil
}

// MemorySink buffers records in memory. Useful for tests.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

// NewMemorySink constructs an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Emit appends the record to the buffer.
func (s *MemorySink) Emit(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// Records returns a copy of everything emitted so far, oldest first.
func (s *MemorySink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}
