package brain

import "gostop/internal/domain"

// Memory stores what the bot has seen leave play during the current deal.
type Memory struct {
	deal int
	// gone holds captured card ids; a captured card never returns to play.
	gone map[string]domain.Month
}

// NewMemory initializes a fresh memory state.
func NewMemory() *Memory {
	return &Memory{gone: make(map[string]domain.Month)}
}

// Reset clears the memory for a new deal.
func (m *Memory) Reset() {
	m.deal = 0
	clear(m.gone)
}

// Observe records the public capture piles of s. Moving to another deal
// forgets the previous one.
func (m *Memory) Observe(s *domain.GameState) {
	if s == nil {
		return
	}
	if s.DealNumber != m.deal {
		m.Reset()
		m.deal = s.DealNumber
	}
	for _, p := range s.Players {
		for _, c := range p.Captured.All() {
			m.gone[c.ID] = c.Month
		}
	}
}

// Gone returns how many cards of month sit in capture piles.
func (m *Memory) Gone(month domain.Month) int {
	n := 0
	for _, mm := range m.gone {
		if mm == month {
			n++
		}
	}
	return n
}

// Seen reports whether the card with id has been captured this deal.
func (m *Memory) Seen(id string) bool {
	_, ok := m.gone[id]
	return ok
}
