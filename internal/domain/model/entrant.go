// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// Result is the base outcome of a judged bout.
type Result string

// Base bout outcomes. Elimination suffixes never change these; they only
// affect knockout bookkeeping.
const (
	ResultA   Result = "A"
	ResultB   Result = "B"
	ResultTie Result = "tie"
)

// Entrant represents a ranked competitor (a file under comparison).
type Entrant struct {
	ID     int64
	Path   string // display identifier, unique within a ladder
	Elo    float64
	Wins   int
	Losses int
	Ties   int
}

// GamesPlayed returns the number of bouts the entrant has been judged in.
func (e Entrant) GamesPlayed() int {
	return e.Wins + e.Losses + e.Ties
}

// Record formats the win/loss/tie counters, e.g. "3W-1L-0T".
func (e Entrant) Record() string {
	return fmt.Sprintf("%dW-%dL-%dT", e.Wins, e.Losses, e.Ties)
}

// GameRecord is an immutable, append-only record of one judged bout.
type GameRecord struct {
	ID        int64
	EntrantA  int64
	EntrantB  int64
	Result    Result
	Timestamp time.Time
}

// Pool is an optional fixed subset of entrants scoping a knockout run.
// A nil *Pool means every entrant is eligible.
type Pool struct {
	RunID   string // uuid assigned at curation time
	Members map[int64]struct{}
}

// Has reports whether the entrant is part of the pool.
func (p *Pool) Has(id int64) bool {
	if p == nil {
		return true
	}
	_, ok := p.Members[id]
	return ok
}

// Size returns the number of pool members; zero for a nil pool.
func (p *Pool) Size() int {
	if p == nil {
		return 0
	}
	return len(p.Members)
}
