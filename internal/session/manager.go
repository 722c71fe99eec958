package session

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager owns the single active session of the process: the selected
// interview configuration and the transcript ledger share one lifecycle,
// created together on Select and cleared together on a successful Commit.
// Concurrent sessions are unsupported; all mutable state lives behind one
// mutex and the Manager is injected into every component that needs it.
type Manager struct {
	mu        sync.Mutex
	sessionID string
	cfg       *InterviewConfig
	ledger    []TurnRecord
	turnBusy  bool

	subMu sync.Mutex
	subs  map[chan TurnEvent]struct{}

	now func() time.Time
}

// NewManager constructs an empty Manager with no active session.
func NewManager() *Manager {
	return &Manager{
		subs: make(map[chan TurnEvent]struct{}),
		now:  time.Now,
	}
}

// Select starts a new session for the given configuration, replacing any
// prior configuration and clearing the ledger. It returns the session id.
func (m *Manager) Select(cfg InterviewConfig) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	c := cfg
	m.cfg = &c
	m.ledger = nil
	m.turnBusy = false
	m.sessionID = uuid.NewString()
	log.Printf("session: selected interview %q (id=%s session=%s)", cfg.Title, cfg.ID, m.sessionID)
	return m.sessionID
}

// Active reports whether an interview is currently selected.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg != nil
}

// SessionID returns the current session id, or "" when no session is active.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Config returns a copy of the active interview configuration, or nil.
func (m *Manager) Config() *InterviewConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil {
		return nil
	}
	c := *m.cfg
	c.KeySkills = append([]string(nil), m.cfg.KeySkills...)
	return &c
}

// Append validates and appends one turn to the ledger, stamping it with
// the current time. Subscribers are notified after the append commits.
func (m *Manager) Append(role Role, text string) error {
	text = strings.TrimSpace(text)
	if (role != RoleUser && role != RoleAssistant) || text == "" {
		return ErrEmptyTurn
	}
	rec := TurnRecord{Role: role, Text: text, Timestamp: m.now()}
	m.mu.Lock()
	m.ledger = append(m.ledger, rec)
	m.mu.Unlock()
	m.broadcast(TurnEvent{Role: string(rec.Role), Text: rec.Text, Timestamp: rec.Timestamp})
	return nil
}

// Snapshot returns the ledger in append order for read-only consumption.
func (m *Manager) Snapshot() []TurnRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TurnRecord, len(m.ledger))
	copy(out, m.ledger)
	return out
}

// Clear empties the ledger and drops the session context.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = nil
	m.ledger = nil
	m.sessionID = ""
	m.turnBusy = false
}

// BeginTurn acquires the turn gate: turn N+1 must not start before turn
// N's ledger append has completed. EndTurn releases it.
func (m *Manager) BeginTurn() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.turnBusy {
		return ErrTurnInProgress
	}
	m.turnBusy = true
	return nil
}

// EndTurn releases the turn gate.
func (m *Manager) EndTurn() {
	m.mu.Lock()
	m.turnBusy = false
	m.mu.Unlock()
}

// FinalizeView returns the state needed to build an assessment: the
// configuration, the full ledger and the session id. It fails with
// ErrInvalidState when the ledger is empty.
func (m *Manager) FinalizeView() (*InterviewConfig, []TurnRecord, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ledger) == 0 {
		return nil, nil, "", ErrInvalidState
	}
	var cfg *InterviewConfig
	if m.cfg != nil {
		c := *m.cfg
		c.KeySkills = append([]string(nil), m.cfg.KeySkills...)
		cfg = &c
	}
	ledger := make([]TurnRecord, len(m.ledger))
	copy(ledger, m.ledger)
	return cfg, ledger, m.sessionID, nil
}

// Commit is the single commit point of the session. It runs persist while
// holding the session and, only if persist succeeds, clears the ledger and
// the configuration together. On failure both are left untouched so the
// operation can be retried. turns is the ledger length the caller built
// its result from; if the ledger has grown since, nothing is persisted
// and ErrTurnInProgress is returned so the caller can re-finalize with
// the full transcript.
func (m *Manager) Commit(turns int, persist func() error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ledger) == 0 {
		return ErrInvalidState
	}
	if len(m.ledger) != turns {
		return fmt.Errorf("%w: ledger changed during finalize", ErrTurnInProgress)
	}
	if err := persist(); err != nil {
		return err
	}
	m.cfg = nil
	m.ledger = nil
	m.sessionID = ""
	m.turnBusy = false
	return nil
}

// Subscribe registers an event feed consumer. The returned cancel func
// must be called to release the subscription.
func (m *Manager) Subscribe() (<-chan TurnEvent, func()) {
	ch := make(chan TurnEvent, 16)
	m.subMu.Lock()
	m.subs[ch] = struct{}{}
	m.subMu.Unlock()
	cancel := func() {
		m.subMu.Lock()
		if _, ok := m.subs[ch]; ok {
			delete(m.subs, ch)
			close(ch)
		}
		m.subMu.Unlock()
	}
	return ch, cancel
}

func (m *Manager) broadcast(ev TurnEvent) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for ch := range m.subs {
		select {
		case ch <- ev:
		default:
			// slow consumer; drop rather than stall the turn
		}
	}
}
