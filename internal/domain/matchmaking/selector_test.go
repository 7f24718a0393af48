package matchmaking_test

import (
	"math/rand"
	"testing"

	"github.com/okian/duelo/internal/domain/matchmaking"
	"github.com/okian/duelo/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func entrant(id int64, elo float64, games int) model.Entrant {
	return model.Entrant{ID: id, Path: "e", Elo: elo, Wins: games}
}

func TestWeights(t *testing.T) {
	Convey("Given the first-pick weight", t, func() {
		Convey("Then a default-rated fresh entrant weighs one half", func() {
			So(matchmaking.Weight(entrant(1, 1000, 0), 1.0), ShouldAlmostEqual, 0.5, 1e-12)
		})

		Convey("Then play count damps the weight", func() {
			fresh := matchmaking.Weight(entrant(1, 1000, 0), 1.0)
			played := matchmaking.Weight(entrant(2, 1000, 9), 1.0)
			So(played, ShouldAlmostEqual, fresh/10, 1e-12)
		})

		Convey("Then power zero ignores play count", func() {
			fresh := matchmaking.Weight(entrant(1, 1000, 0), 0)
			played := matchmaking.Weight(entrant(2, 1000, 500), 0)
			So(played, ShouldAlmostEqual, fresh, 1e-12)
		})

		Convey("Then stronger entrants weigh more", func() {
			So(matchmaking.Weight(entrant(1, 1200, 0), 1.0),
				ShouldBeGreaterThan, matchmaking.Weight(entrant(2, 800, 0), 1.0))
		})
	})

	Convey("Given the pair weight", t, func() {
		first := entrant(1, 1100, 0)

		Convey("Then an equal opponent is the best possible match", func() {
			So(matchmaking.PairWeight(first, entrant(2, 1100, 0)), ShouldEqual, 0.5)
		})

		Convey("Then closeness beats distance in both directions", func() {
			close := matchmaking.PairWeight(first, entrant(2, 1150, 0))
			farUp := matchmaking.PairWeight(first, entrant(3, 1500, 0))
			farDown := matchmaking.PairWeight(first, entrant(4, 700, 0))
			So(close, ShouldBeGreaterThan, farUp)
			So(close, ShouldBeGreaterThan, farDown)
		})

		Convey("Then the weight is symmetric in the pair", func() {
			a, b := entrant(1, 950, 0), entrant(2, 1300, 0)
			So(matchmaking.PairWeight(a, b), ShouldEqual, matchmaking.PairWeight(b, a))
		})
	})
}

func TestSelector(t *testing.T) {
	Convey("Given a selector with a fixed seed", t, func() {
		sel := matchmaking.NewSelector(matchmaking.WithRand(rand.New(rand.NewSource(7))))

		Convey("When picking from an empty population", func() {
			_, err := sel.PickFirst(nil, 1.0)

			Convey("Then it reports the sentinel error", func() {
				So(err, ShouldEqual, matchmaking.ErrNoEntrants)
			})
		})

		Convey("When picking from a single entrant", func() {
			only := entrant(42, 1000, 0)
			first, err := sel.PickFirst([]model.Entrant{only}, 1.0)
			So(err, ShouldBeNil)
			So(first.ID, ShouldEqual, 42)

			Convey("Then no second pick is possible", func() {
				_, ok := sel.PickSecond([]model.Entrant{only}, first)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When picking a second from a real population", func() {
			entrants := []model.Entrant{
				entrant(1, 1000, 0), entrant(2, 1050, 3), entrant(3, 900, 1), entrant(4, 1400, 8),
			}

			Convey("Then the opponent is never the first pick", func() {
				for i := 0; i < 100; i++ {
					first, err := sel.PickFirst(entrants, 1.0)
					So(err, ShouldBeNil)
					second, ok := sel.PickSecond(entrants, first)
					So(ok, ShouldBeTrue)
					So(second.ID, ShouldNotEqual, first.ID)
				}
			})
		})

		Convey("When all entrants share one rating and play count", func() {
			entrants := []model.Entrant{
				entrant(1, 1000, 2), entrant(2, 1000, 2), entrant(3, 1000, 2),
			}

			Convey("Then every entrant is eventually selected", func() {
				seen := make(map[int64]bool)
				for i := 0; i < 200; i++ {
					first, err := sel.PickFirst(entrants, 1.0)
					So(err, ShouldBeNil)
					seen[first.ID] = true
				}
				So(len(seen), ShouldEqual, 3)
			})
		})
	})
}
