// Package memory keeps bounded per-conversation message history used to
// build chat context strings.
package memory

import (
	"strings"
	"sync"
)

// Role labels one side of a conversation entry.
const (
	RoleUser = "user"
	RoleNPC  = "npc"
)

// Entry is a single turn in a conversation log.
type Entry struct {
	Role    string
	Content string
}

// Memory holds per-(threadID, playerID) conversation logs. Appends and
// reads for the same key are serialized; logs are append-only except for
// FIFO eviction from the head once a cap is exceeded.
type Memory struct {
	mu   sync.Mutex
	logs map[string][]Entry
}

// New creates an empty Memory.
func New() *Memory {
	return &Memory{logs: make(map[string][]Entry)}
}

func key(threadID, playerID string) string {
	return threadID + "::" + playerID
}

// Get returns a copy of the log for the given key, creating an empty log on
// first access.
func (m *Memory) Get(threadID, playerID string) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(threadID, playerID)
	log, ok := m.logs[k]
	if !ok {
		m.logs[k] = nil
		return nil
	}
	out := make([]Entry, len(log))
	copy(out, log)
	return out
}

// Append adds one entry, then evicts from the front until the log length is
// at most cap. A cap <= 0 means unbounded.
func (m *Memory) Append(threadID, playerID, role, content string, cap int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(threadID, playerID)
	log := append(m.logs[k], Entry{Role: role, Content: content})
	if cap > 0 && len(log) > cap {
		log = log[len(log)-cap:]
	}
	m.logs[k] = log
}

// Len returns the current log length for the given key.
func (m *Memory) Len(threadID, playerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs[key(threadID, playerID)])
}

// BuildContext renders the last min(lastN, len) entries as alternating
// role-labeled lines, oldest first. The result is sent verbatim as context
// with the next chat request.
func (m *Memory) BuildContext(threadID, playerID string, lastN int) string {
	m.mu.Lock()
	log := m.logs[key(threadID, playerID)]
	start := len(log)
	if lastN > 0 {
		start = len(log) - lastN
		if start < 0 {
			start = 0
		}
	}
	tail := make([]Entry, len(log)-start)
	copy(tail, log[start:])
	m.mu.Unlock()

	var b strings.Builder
	for _, e := range tail {
		if e.Role == RoleUser {
			b.WriteString("Player: ")
		} else {
			b.WriteString("NPC: ")
		}
		b.WriteString(e.Content)
		b.WriteString("\n")
	}
	return b.String()
}
