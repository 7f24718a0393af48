// Package tournament implements the knockout state machine pieces that are
// pure functions of their inputs: the result-command table and curated pool
// selection. Elimination bookkeeping itself lives in the persistence layer;
// this package only decides what a judged command means.
package tournament

import (
	"strings"

	"github.com/okian/duelo/internal/domain/model"
)

// Command is a judged outcome for the current bout, possibly carrying an
// elimination suffix. A trailing '-' eliminates the named side regardless
// of who won the bout; a trailing '+' on a win spares the loser.
type Command string

// The full command table.
const (
	CmdA        Command = "A"   // A wins, B eliminated
	CmdB        Command = "B"   // B wins, A eliminated
	CmdTie      Command = "tie" // nobody eliminated
	CmdAMinus   Command = "A-"  // A wins but retires
	CmdBMinus   Command = "B-"  // B wins but retires
	CmdAPlus    Command = "A+"  // A wins, B spared
	CmdBPlus    Command = "B+"  // B wins, A spared
	CmdTieAOut  Command = "TA-" // tie, A eliminated
	CmdTieBOut  Command = "TB-" // tie, B eliminated
	CmdTieBoth  Command = "T-"  // tie, both eliminated
)

// Outcome describes the consequences of a command: the base result used for
// the rating update and the elimination decision for each side.
type Outcome struct {
	Result     model.Result
	EliminateA bool
	EliminateB bool

	// RetiredWinner marks an A-/B- command: the winner leaves voluntarily.
	RetiredWinner bool
	// SparedLoser marks an A+/B+ command: the loser stays in.
	SparedLoser bool
}

// Eliminations returns how many entrants the outcome removes.
func (o Outcome) Eliminations() int {
	n := 0
	if o.EliminateA {
		n++
	}
	if o.EliminateB {
		n++
	}
	return n
}

// Parse normalizes a judged input line into a Command. 'T' and 't' mean
// tie; elimination suffixes are case-insensitive.
func Parse(input string) (Command, error) {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "A":
		return CmdA, nil
	case "B":
		return CmdB, nil
	case "T", "TIE":
		return CmdTie, nil
	case "A-":
		return CmdAMinus, nil
	case "B-":
		return CmdBMinus, nil
	case "A+":
		return CmdAPlus, nil
	case "B+":
		return CmdBPlus, nil
	case "TA-":
		return CmdTieAOut, nil
	case "TB-":
		return CmdTieBOut, nil
	case "T-":
		return CmdTieBoth, nil
	}
	return "", ErrUnknownCommand
}

// Eliminating reports whether the command can remove an entrant; such
// commands are only meaningful in knockout mode.
func (c Command) Eliminating() bool {
	switch c {
	case CmdAMinus, CmdBMinus, CmdAPlus, CmdBPlus, CmdTieAOut, CmdTieBOut, CmdTieBoth:
		return true
	}
	return false
}

// Outcome resolves the command against the transition table. The rating
// update always uses the base result, independent of any suffix.
func (c Command) Outcome() Outcome {
	switch c {
	case CmdA:
		return Outcome{Result: model.ResultA, EliminateB: true}
	case CmdB:
		return Outcome{Result: model.ResultB, EliminateA: true}
	case CmdAMinus:
		return Outcome{Result: model.ResultA, EliminateA: true, RetiredWinner: true}
	case CmdBMinus:
		return Outcome{Result: model.ResultB, EliminateB: true, RetiredWinner: true}
	case CmdAPlus:
		return Outcome{Result: model.ResultA, SparedLoser: true}
	case CmdBPlus:
		return Outcome{Result: model.ResultB, SparedLoser: true}
	case CmdTieAOut:
		return Outcome{Result: model.ResultTie, EliminateA: true}
	case CmdTieBOut:
		return Outcome{Result: model.ResultTie, EliminateB: true}
	case CmdTieBoth:
		return Outcome{Result: model.ResultTie, EliminateA: true, EliminateB: true}
	default:
		return Outcome{Result: model.ResultTie}
	}
}

// LadderOutcome resolves the command for ladder mode, where eliminations
// never apply.
func (c Command) LadderOutcome() Outcome {
	o := c.Outcome()
	return Outcome{Result: o.Result}
}
