package agent

import (
	"fmt"
	"testing"
)

func TestMemoryKeepsWholePairs(t *testing.T) {
	m := NewMemory(2)
	for i := 1; i <= 4; i++ {
		m.Add(fmt.Sprintf("question %d", i), fmt.Sprintf("réponse %d", i))
	}

	turns := m.Turns()
	if len(turns) != 4 {
		t.Fatalf("turns = %d, want 4", len(turns))
	}
	if turns[0].Role != RoleUser || turns[0].Text != "question 3" {
		t.Fatalf("oldest turn = %+v, want user question 3", turns[0])
	}
	if turns[3].Role != RoleModel || turns[3].Text != "réponse 4" {
		t.Fatalf("newest turn = %+v", turns[3])
	}
	for i, turn := range turns {
		wantUser := i%2 == 0
		if (turn.Role == RoleUser) != wantUser {
			t.Fatalf("turn %d role = %s, alternation broken", i, turn.Role)
		}
	}
}

func TestMemoryUnpairedUserAppend(t *testing.T) {
	m := NewMemory(1)
	m.Add("question 1", "réponse 1")
	m.AddUser("commande 2")

	// Eviction past the bound must not leave a model turn in front.
	turns := m.Turns()
	if len(turns) != 1 {
		t.Fatalf("turns = %+v, want the lone user turn", turns)
	}
	if turns[0].Role != RoleUser || turns[0].Text != "commande 2" {
		t.Fatalf("turn = %+v", turns[0])
	}
}

func TestMemoryZeroDefaultsToFivePairs(t *testing.T) {
	m := NewMemory(0)
	for i := 0; i < 10; i++ {
		m.Add("q", "r")
	}
	if got := len(m.Turns()); got != 10 {
		t.Fatalf("turns = %d, want 10 (5 pairs)", got)
	}
}

func TestMemoryTurnsReturnsCopy(t *testing.T) {
	m := NewMemory(5)
	m.Add("q", "r")
	turns := m.Turns()
	turns[0].Text = "mutated"
	if m.Turns()[0].Text != "q" {
		t.Fatalf("internal history mutated through the returned slice")
	}
}

func TestMemoryReset(t *testing.T) {
	m := NewMemory(5)
	m.Add("q", "r")
	m.Reset()
	if len(m.Turns()) != 0 {
		t.Fatalf("history survives Reset")
	}
}
