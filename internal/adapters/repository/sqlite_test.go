package repository_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/okian/duelo/internal/adapters/repository"
	"github.com/okian/duelo/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func newStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()
	s, err := repository.Open(filepath.Join(t.TempDir(), "ranks.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *repository.SQLiteStore, paths ...string) map[string]int64 {
	t.Helper()
	ctx := context.Background()
	for _, p := range paths {
		if err := s.Upsert(ctx, p); err != nil {
			t.Fatalf("upsert %s: %v", p, err)
		}
	}
	entrants, err := s.Entrants(ctx, nil)
	if err != nil {
		t.Fatalf("entrants: %v", err)
	}
	ids := make(map[string]int64, len(entrants))
	for _, e := range entrants {
		ids[e.Path] = e.ID
	}
	return ids
}

func TestUpsert(t *testing.T) {
	Convey("Given a fresh store", t, func() {
		ctx := context.Background()
		s := newStore(t)

		Convey("When the same path is upserted twice", func() {
			So(s.Upsert(ctx, "a.py"), ShouldBeNil)
			So(s.Upsert(ctx, "a.py"), ShouldBeNil)

			Convey("Then one row exists with the default rating", func() {
				entrants, err := s.Entrants(ctx, nil)
				So(err, ShouldBeNil)
				So(len(entrants), ShouldEqual, 1)
				So(entrants[0].Elo, ShouldEqual, 1000)
				So(entrants[0].GamesPlayed(), ShouldEqual, 0)
			})
		})

		Convey("When an unknown id is looked up", func() {
			_, err := s.Entrant(ctx, 99)
			So(err, ShouldWrap, repository.ErrUnknownEntrant)
		})

		Convey("When entrants are listed with a filter", func() {
			ids := seed(t, s, "a.py", "b.py", "c.py")
			kept, err := s.Entrants(ctx, func(e model.Entrant) bool {
				return e.ID != ids["b.py"]
			})
			So(err, ShouldBeNil)
			So(len(kept), ShouldEqual, 2)
		})
	})
}

func TestApplyBout(t *testing.T) {
	Convey("Given two seeded entrants", t, func() {
		ctx := context.Background()
		s := newStore(t)
		ids := seed(t, s, "a.py", "b.py")

		Convey("When A beats B", func() {
			So(s.ApplyBout(ctx, ids["a.py"], ids["b.py"], 1016, 984, model.ResultA), ShouldBeNil)

			Convey("Then ratings and counters land on the right sides", func() {
				a, err := s.Entrant(ctx, ids["a.py"])
				So(err, ShouldBeNil)
				So(a.Elo, ShouldEqual, 1016)
				So(a.Wins, ShouldEqual, 1)
				So(a.Losses, ShouldEqual, 0)

				b, err := s.Entrant(ctx, ids["b.py"])
				So(err, ShouldBeNil)
				So(b.Elo, ShouldEqual, 984)
				So(b.Losses, ShouldEqual, 1)
			})
		})

		Convey("When the bout is a tie", func() {
			So(s.ApplyBout(ctx, ids["a.py"], ids["b.py"], 1000, 1000, model.ResultTie), ShouldBeNil)

			a, _ := s.Entrant(ctx, ids["a.py"])
			b, _ := s.Entrant(ctx, ids["b.py"])
			So(a.Ties, ShouldEqual, 1)
			So(b.Ties, ShouldEqual, 1)
		})

		Convey("When one side does not exist", func() {
			err := s.ApplyBout(ctx, ids["a.py"], 99, 1016, 984, model.ResultA)
			So(err, ShouldWrap, repository.ErrUnknownEntrant)

			Convey("Then nothing is applied to the side that does", func() {
				a, getErr := s.Entrant(ctx, ids["a.py"])
				So(getErr, ShouldBeNil)
				So(a.Elo, ShouldEqual, 1000)
				So(a.Wins, ShouldEqual, 0)
			})
		})
	})
}

func TestEliminations(t *testing.T) {
	Convey("Given seeded entrants", t, func() {
		ctx := context.Background()
		s := newStore(t)
		ids := seed(t, s, "a.py", "b.py", "c.py")

		Convey("When an entrant is marked twice", func() {
			So(s.MarkEliminated(ctx, ids["b.py"]), ShouldBeNil)
			So(s.MarkEliminated(ctx, ids["b.py"]), ShouldBeNil)

			Convey("Then a single mark exists", func() {
				marks, err := s.Eliminations(ctx)
				So(err, ShouldBeNil)
				So(len(marks), ShouldEqual, 1)
				_, ok := marks[ids["b.py"]]
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When marks are cleared", func() {
			So(s.MarkEliminated(ctx, ids["a.py"]), ShouldBeNil)
			So(s.MarkEliminated(ctx, ids["c.py"]), ShouldBeNil)
			So(s.ClearEliminations(ctx), ShouldBeNil)

			marks, err := s.Eliminations(ctx)
			So(err, ShouldBeNil)
			So(len(marks), ShouldEqual, 0)
		})
	})
}

func TestPoolPersistence(t *testing.T) {
	Convey("Given seeded entrants", t, func() {
		ctx := context.Background()
		s := newStore(t)
		ids := seed(t, s, "a.py", "b.py", "c.py", "d.py")

		Convey("When no pool has been saved", func() {
			_, err := s.LoadPool(ctx)
			So(err, ShouldEqual, repository.ErrNoPool)
		})

		Convey("When a pool is saved and reloaded", func() {
			saved := []int64{ids["a.py"], ids["c.py"], ids["d.py"]}
			So(s.SavePool(ctx, "run-1", saved), ShouldBeNil)

			pool, err := s.LoadPool(ctx)
			So(err, ShouldBeNil)
			So(pool.RunID, ShouldEqual, "run-1")
			So(pool.Size(), ShouldEqual, 3)
			So(pool.Has(ids["a.py"]), ShouldBeTrue)
			So(pool.Has(ids["b.py"]), ShouldBeFalse)

			Convey("And a second save replaces the first", func() {
				So(s.SavePool(ctx, "run-2", []int64{ids["b.py"]}), ShouldBeNil)
				pool, err := s.LoadPool(ctx)
				So(err, ShouldBeNil)
				So(pool.RunID, ShouldEqual, "run-2")
				So(pool.Size(), ShouldEqual, 1)
			})

			Convey("And clearing leaves no pool behind", func() {
				So(s.ClearPool(ctx), ShouldBeNil)
				_, err := s.LoadPool(ctx)
				So(err, ShouldEqual, repository.ErrNoPool)
			})
		})
	})
}

func TestRemoveAndShift(t *testing.T) {
	Convey("Given entrants with history", t, func() {
		ctx := context.Background()
		s := newStore(t)
		ids := seed(t, s, "a.py", "b.py", "c.py")
		So(s.ApplyBout(ctx, ids["a.py"], ids["b.py"], 1016, 984, model.ResultA), ShouldBeNil)
		So(s.MarkEliminated(ctx, ids["b.py"]), ShouldBeNil)

		Convey("When an entrant with games and a mark is removed", func() {
			So(s.Remove(ctx, ids["b.py"]), ShouldBeNil)

			Convey("Then the row, its games, and its mark are gone", func() {
				_, err := s.Entrant(ctx, ids["b.py"])
				So(err, ShouldWrap, repository.ErrUnknownEntrant)

				marks, err := s.Eliminations(ctx)
				So(err, ShouldBeNil)
				So(len(marks), ShouldEqual, 0)

				n, err := s.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
			})
		})

		Convey("When removing an unknown id", func() {
			So(s.Remove(ctx, 99), ShouldWrap, repository.ErrUnknownEntrant)
		})

		Convey("When ratings are shifted around a removal", func() {
			moved, err := s.ShiftRatings(ctx, 8, ids["b.py"])
			So(err, ShouldBeNil)
			So(moved, ShouldEqual, 2)

			a, _ := s.Entrant(ctx, ids["a.py"])
			b, _ := s.Entrant(ctx, ids["b.py"])
			c, _ := s.Entrant(ctx, ids["c.py"])
			So(a.Elo, ShouldEqual, 1024)
			So(b.Elo, ShouldEqual, 984)
			So(c.Elo, ShouldEqual, 1008)
		})
	})
}

func TestRankings(t *testing.T) {
	Convey("Given entrants with distinct ratings", t, func() {
		ctx := context.Background()
		s := newStore(t)
		ids := seed(t, s, "low.py", "high.py", "mid.py")
		So(s.ApplyBout(ctx, ids["high.py"], ids["low.py"], 1050, 950, model.ResultA), ShouldBeNil)

		Convey("Then positions follow Elo descending", func() {
			ranks, err := s.Rankings(ctx)
			So(err, ShouldBeNil)
			So(ranks[ids["high.py"]], ShouldEqual, 1)
			So(ranks[ids["mid.py"]], ShouldEqual, 2)
			So(ranks[ids["low.py"]], ShouldEqual, 3)
		})

		Convey("Then equal ratings break ties by id ascending", func() {
			fresh := newStore(t)
			fids := seed(t, fresh, "x.py", "y.py")
			ranks, err := fresh.Rankings(ctx)
			So(err, ShouldBeNil)
			So(ranks[fids["x.py"]], ShouldEqual, 1)
			So(ranks[fids["y.py"]], ShouldEqual, 2)
		})
	})
}

func TestKnockoutResults(t *testing.T) {
	Convey("Given a finished knockout", t, func() {
		ctx := context.Background()
		s := newStore(t)
		ids := seed(t, s, "winner.py", "second.py", "third.py")

		// Push ratings apart so the ordering is unambiguous even when
		// elimination timestamps land in the same second.
		So(s.ApplyBout(ctx, ids["winner.py"], ids["third.py"], 1100, 900, model.ResultA), ShouldBeNil)
		So(s.ApplyBout(ctx, ids["second.py"], ids["third.py"], 1050, 880, model.ResultA), ShouldBeNil)

		So(s.MarkEliminated(ctx, ids["third.py"]), ShouldBeNil)
		So(s.MarkEliminated(ctx, ids["second.py"]), ShouldBeNil)

		Convey("Then the winner leads and later eliminations rank higher", func() {
			rows, err := s.KnockoutResults(ctx)
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 3)

			So(rows[0].Entrant.ID, ShouldEqual, ids["winner.py"])
			So(rows[0].EliminatedAt, ShouldBeNil)
			So(rows[1].Entrant.ID, ShouldEqual, ids["second.py"])
			So(rows[1].EliminatedAt, ShouldNotBeNil)
			So(rows[2].Entrant.ID, ShouldEqual, ids["third.py"])
		})
	})
}

func TestRename(t *testing.T) {
	Convey("Given a seeded entrant", t, func() {
		ctx := context.Background()
		s := newStore(t)
		ids := seed(t, s, "old.py")

		Convey("When it is renamed", func() {
			So(s.Rename(ctx, "old.py", "new.py"), ShouldBeNil)

			e, err := s.Entrant(ctx, ids["old.py"])
			So(err, ShouldBeNil)
			So(e.Path, ShouldEqual, "new.py")
		})

		Convey("When the old path does not exist", func() {
			So(s.Rename(ctx, "ghost.py", "new.py"), ShouldWrap, repository.ErrUnknownEntrant)
		})
	})
}
