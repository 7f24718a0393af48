// Package app wires the rating engine, match selection, and knockout
// bookkeeping into the interactive judging loop. The persisted store is the
// sole source of truth: eligibility, eliminations, and the pool are re-read
// at the top of every iteration instead of being mirrored in memory.
package app

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/okian/duelo/internal/adapters/discovery"
	"github.com/okian/duelo/internal/adapters/repository"
	"github.com/okian/duelo/internal/adapters/term"
	"github.com/okian/duelo/internal/domain/matchmaking"
	"github.com/okian/duelo/internal/domain/model"
	"github.com/okian/duelo/internal/domain/rating"
	"github.com/okian/duelo/internal/domain/tournament"
	"github.com/okian/duelo/pkg/logger"
	"github.com/okian/duelo/pkg/metrics"
)

const defaultLeaderboardSize = 10

// Params carries the per-run settings supplied on the command line.
type Params struct {
	Dir      string
	Pattern  *regexp.Regexp
	Knockout bool
	Power    float64
	PoolSize int // 0 = no curated pool
	TopSkew  int // entrants drawn by the fixed top-skew phase
}

// Service runs the judging loop: select a bout, present it, apply the
// judged command, repeat. Strictly sequential; one bout is fully persisted
// before the next begins.
type Service struct {
	store    repository.Store
	scanner  *discovery.Scanner
	selector *matchmaking.Selector
	render   *term.Renderer
	prompt   *term.Prompter
	log      logger.Logger

	rng     *rand.Rand
	now     func() time.Time
	topSize int
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithRand sets the random source used for pool curation.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithClock sets the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLeaderboardSize sets the default `top` listing length.
func WithLeaderboardSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topSize = n
		}
	}
}

// New constructs a Service over its collaborators.
func New(store repository.Store, scanner *discovery.Scanner, selector *matchmaking.Selector,
	render *term.Renderer, prompt *term.Prompter, opts ...Option) *Service {
	s := &Service{
		store:    store,
		scanner:  scanner,
		selector: selector,
		render:   render,
		prompt:   prompt,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
		topSize:  defaultLeaderboardSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	return s
}

// Run drives the judging loop until the entrants run out, the judge quits,
// or a fatal error surfaces. Configuration conflicts and integrity errors
// are returned; everything else is reported and survived.
func (s *Service) Run(ctx context.Context, p Params) error {
	if p.Knockout {
		if err := s.initKnockout(ctx, p); err != nil {
			return err
		}
	}

	s.render.Welcome(p.Knockout)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.sync(ctx); err != nil {
			// Discovery trouble is tolerated: judge with what the store has.
			s.log.Warn(ctx, "discovery sync failed", logger.Error(err))
		}

		sc, err := s.loadScope(ctx, p)
		if err != nil {
			return err
		}

		files, err := s.eligible(ctx, p, sc)
		if err != nil {
			return err
		}
		metrics.UpdateKnockoutRemaining(len(files))

		switch {
		case len(files) == 0:
			s.render.Warnf("No files found matching the pattern.")
			return nil
		case len(files) == 1 && p.Knockout:
			quit, err := s.winnerScreen(ctx, p, sc)
			if err != nil || quit {
				return err
			}
			continue
		case len(files) == 1:
			s.render.Warnf("Only one file found. Need at least two for comparison.")
			return nil
		}

		first, err := s.selector.PickFirst(files, p.Power)
		if err != nil {
			return err
		}
		second, ok := s.selector.PickSecond(files, first)
		if !ok {
			// No possible opponent; skip the bout rather than fail.
			s.render.Warnf("Could not find an opponent for %s.", first.Path)
			continue
		}

		quit, err := s.presentAndJudge(ctx, p, first, second)
		if err != nil || quit {
			return err
		}
	}
}

// scope is the knockout view rebuilt from the store every iteration.
type scope struct {
	pool  *model.Pool
	marks map[int64]time.Time
}

func (sc scope) active(id int64) bool {
	if !sc.pool.Has(id) {
		return false
	}
	_, out := sc.marks[id]
	return !out
}

// sync merges freshly discovered files into the store; first insert wins.
func (s *Service) sync(ctx context.Context) error {
	names, err := s.scanner.Scan()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := s.store.Upsert(ctx, name); err != nil {
			return err
		}
	}
	n, err := s.store.Count(ctx)
	if err == nil {
		metrics.UpdateEntrantsTracked(n)
	}
	return nil
}

// loadScope re-reads the persisted pool and elimination marks.
func (s *Service) loadScope(ctx context.Context, p Params) (scope, error) {
	sc := scope{}
	if !p.Knockout {
		return sc, nil
	}

	marks, err := s.store.Eliminations(ctx)
	if err != nil {
		return sc, err
	}
	sc.marks = marks

	pool, err := s.store.LoadPool(ctx)
	switch {
	case errors.Is(err, repository.ErrNoPool):
	case err != nil:
		return sc, err
	default:
		sc.pool = pool
	}
	return sc, nil
}

// eligible lists entrants that exist on disk, match the pattern, and are
// still active within the knockout scope.
func (s *Service) eligible(ctx context.Context, p Params, sc scope) ([]model.Entrant, error) {
	return s.store.Entrants(ctx, func(e model.Entrant) bool {
		if !s.scanner.Exists(e.Path) || !s.scanner.Matches(e.Path) {
			return false
		}
		if p.Knockout && !sc.active(e.ID) {
			return false
		}
		return true
	})
}

// presentAndJudge shows one matchup and handles judge input until a command
// resolves the bout or changes the world enough to require a re-sync.
func (s *Service) presentAndJudge(ctx context.Context, p Params, a, b model.Entrant) (quit bool, err error) {
	ranks, err := s.store.Rankings(ctx)
	if err != nil {
		return false, err
	}
	probA := rating.WinProbability(a.Elo, b.Elo)

	show := func() { s.render.Matchup(a, b, ranks[a.ID], ranks[b.ID], probA) }
	show()

	for {
		input, err := s.prompt.Line(promptText(p.Knockout))
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		if err != nil {
			return false, err
		}

		lower := strings.ToLower(input)
		switch {
		case lower == "q" || lower == "quit":
			return true, nil

		case lower == "top" || strings.HasPrefix(lower, "top "):
			if err := s.showLeaderboard(ctx, input); err != nil {
				return false, err
			}
			show()

		case lower == "o":
			if err := s.scanner.Open(a.Path, b.Path); err != nil {
				s.render.Warnf("Could not open files: %v", err)
			}

		case strings.HasPrefix(lower, "ren "):
			if err := s.handleRename(ctx, input, &a, &b); err != nil {
				s.render.Warnf("%v", err)
			}
			show()

		case strings.HasPrefix(lower, "rem "):
			handled, err := s.handleRemove(ctx, strings.TrimSpace(input[4:]), a, b)
			if err != nil {
				return false, err
			}
			if handled {
				return false, nil // re-sync with the entrant gone
			}

		case lower == "reset" && p.Knockout:
			done, err := s.handleReset(ctx)
			if err != nil {
				return false, err
			}
			if done {
				return false, nil
			}
			show()

		default:
			cmd, perr := tournament.Parse(input)
			if perr != nil {
				s.render.Warnf("Invalid input. %s", commandHint(p.Knockout))
				continue
			}
			if cmd.Eliminating() && !p.Knockout {
				s.render.Warnf("Elimination commands are only available in knockout mode.")
				continue
			}
			return false, s.judge(ctx, p, cmd, a, b)
		}
	}
}

// showLeaderboard prints the current Elo-descending listing.
func (s *Service) showLeaderboard(ctx context.Context, input string) error {
	n := s.topSize
	if fields := strings.Fields(input); len(fields) == 2 {
		if parsed, err := strconv.Atoi(fields[1]); err == nil && parsed > 0 {
			n = parsed
		}
	}

	entries, err := s.store.Entrants(ctx, nil)
	if err != nil {
		return err
	}
	sortByElo(entries)
	if len(entries) > n {
		entries = entries[:n]
	}
	s.render.Leaderboard(entries)
	return nil
}

// promptText lists the accepted commands per mode.
func promptText(knockout bool) string {
	if knockout {
		return "Your choice (A/B/t/a-/b-/a+/b+/ta-/tb-/t-/o/top [N]/ren <old> <new>/rem a|b|ab/reset/q): "
	}
	return "Your choice (A/B/t/o/top [N]/ren <old> <new>/rem a|b|ab/q): "
}

func commandHint(knockout bool) string {
	if knockout {
		return "Enter A, B, t, a-, b-, a+, b+, ta-, tb-, t-, o, top [N], ren, rem, reset, or q."
	}
	return "Enter A, B, t, o, top [N], ren, rem, or q."
}

// sortByElo orders entries Elo descending with id ascending as tiebreak,
// matching the store's ranking order.
func sortByElo(entries []model.Entrant) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Elo != entries[j].Elo {
			return entries[i].Elo > entries[j].Elo
		}
		return entries[i].ID < entries[j].ID
	})
}
