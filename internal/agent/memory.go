package agent

import "sync"

// Memory keeps roughly the last maxPairs user/model exchanges of one
// session. Older turns are evicted in order and the history never
// starts with a model turn.
type Memory struct {
	mu       sync.Mutex
	maxPairs int
	turns    []Turn
}

func NewMemory(maxPairs int) *Memory {
	if maxPairs <= 0 {
		maxPairs = 5
	}
	return &Memory{maxPairs: maxPairs}
}

// Add records one completed exchange. The model text stored here is
// the final chat reply, never the raw command JSON.
func (m *Memory) Add(userText, modelText string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns,
		Turn{Role: RoleUser, Text: userText},
		Turn{Role: RoleModel, Text: modelText},
	)
	m.trim()
}

// AddUser records a user turn whose reply is not kept, leaving the
// pair open. Command turns use this: the confirmation text stays out
// of the model history.
func (m *Memory) AddUser(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, Turn{Role: RoleUser, Text: text})
	m.trim()
}

// trim drops the oldest turns past the bound and makes sure eviction
// never leaves a model turn at the front.
func (m *Memory) trim() {
	if max := m.maxPairs * 2; len(m.turns) > max {
		m.turns = m.turns[len(m.turns)-max:]
	}
	for len(m.turns) > 0 && m.turns[0].Role == RoleModel {
		m.turns = m.turns[1:]
	}
}

// Turns returns a copy of the stored history, oldest first.
func (m *Memory) Turns() []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Reset clears the session history.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = nil
}
