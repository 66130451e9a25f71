package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/roster/internal/adapters/repository"
	"github.com/okian/roster/internal/domain/filter"
	"github.com/okian/roster/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func newPlayer(name string, race model.Race, experience int64) model.Player {
	p := model.Player{
		Name:       name,
		Title:      "the " + name,
		Race:       race,
		Profession: model.ProfessionWarrior,
		Birthday:   time.Date(2005, time.June, 1, 0, 0, 0, 0, time.UTC),
	}
	p.SetExperience(experience)
	return p
}

func TestMemoryStore_CRUD(t *testing.T) {
	Convey("Given an empty memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(ctx)
		defer store.Close()

		So(store.Backend(), ShouldEqual, "memory")

		Convey("When a player is inserted", func() {
			stored, err := store.Insert(ctx, newPlayer("Ayla", model.RaceElf, 750))
			So(err, ShouldBeNil)

			Convey("Then it receives the first id", func() {
				So(stored.ID, ShouldEqual, 1)
			})

			Convey("Then Get returns it", func() {
				got, err := store.Get(ctx, stored.ID)
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Ayla")
				So(got.Level, ShouldEqual, 3)
				So(got.UntilNextLevel, ShouldEqual, 250)
			})

			Convey("Then Update replaces it", func() {
				stored.Banned = true
				So(store.Update(ctx, stored), ShouldBeNil)
				got, err := store.Get(ctx, stored.ID)
				So(err, ShouldBeNil)
				So(got.Banned, ShouldBeTrue)
			})

			Convey("Then Delete removes it", func() {
				So(store.Delete(ctx, stored.ID), ShouldBeNil)
				_, err := store.Get(ctx, stored.ID)
				So(err, ShouldEqual, repository.ErrNotFound)
			})

			Convey("Then ids are never reused after delete", func() {
				So(store.Delete(ctx, stored.ID), ShouldBeNil)
				next, err := store.Insert(ctx, newPlayer("Bren", model.RaceOrc, 0))
				So(err, ShouldBeNil)
				So(next.ID, ShouldEqual, 2)
			})
		})

		Convey("When absent ids are addressed", func() {
			_, err := store.Get(ctx, 42)
			So(err, ShouldEqual, repository.ErrNotFound)
			So(store.Update(ctx, model.Player{ID: 42}), ShouldEqual, repository.ErrNotFound)
			So(store.Delete(ctx, 42), ShouldEqual, repository.ErrNotFound)
		})
	})
}

func TestMemoryStore_Query(t *testing.T) {
	Convey("Given a seeded memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(ctx, repository.WithSeed(
			newPlayer("Ayla", model.RaceElf, 750),
			newPlayer("Bren", model.RaceOrc, 100),
			newPlayer("Cato", model.RaceElf, 5000),
			newPlayer("Dain", model.RaceDwarf, 100),
		))
		defer store.Close()

		Convey("Then seeded players get sequential ids", func() {
			got, err := store.Get(ctx, 4)
			So(err, ShouldBeNil)
			So(got.Name, ShouldEqual, "Dain")
		})

		Convey("When counting with an empty predicate", func() {
			n, err := store.Count(ctx, filter.Predicate{})
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 4)
		})

		Convey("When filtering by race", func() {
			race := model.RaceElf
			pred := filter.Build(filter.Criteria{Race: &race})

			n, err := store.Count(ctx, pred)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
		})

		Convey("When ordering by experience with a page window", func() {
			q := filter.Query{
				Order: model.OrderExperience,
				Page:  filter.Page{Number: 0, Size: 3},
			}
			got, err := store.Find(ctx, q)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 3)

			Convey("Then equal experience is broken by id", func() {
				So(got[0].Name, ShouldEqual, "Bren")
				So(got[1].Name, ShouldEqual, "Dain")
				So(got[2].Name, ShouldEqual, "Ayla")
			})

			Convey("Then the second page holds the remainder", func() {
				q.Page.Number = 1
				rest, err := store.Find(ctx, q)
				So(err, ShouldBeNil)
				So(len(rest), ShouldEqual, 1)
				So(rest[0].Name, ShouldEqual, "Cato")
			})
		})

		Convey("When a page is past the end", func() {
			got, err := store.Find(ctx, filter.Query{Page: filter.Page{Number: 9, Size: 3}})
			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
		})
	})

	Convey("Given seeded players with explicit ids", t, func() {
		ctx := context.Background()
		p := newPlayer("Eldo", model.RaceHuman, 0)
		p.ID = 40
		store := repository.NewMemoryStore(ctx, repository.WithSeed(p))
		defer store.Close()

		Convey("Then the sequence continues after the highest id", func() {
			next, err := store.Insert(ctx, newPlayer("Fynn", model.RaceHuman, 0))
			So(err, ShouldBeNil)
			So(next.ID, ShouldEqual, 41)
		})
	})

	Convey("Given an id-less seed before one with an explicit low id", t, func() {
		ctx := context.Background()
		first := newPlayer("Hana", model.RaceElf, 0)
		second := newPlayer("Ivo", model.RaceOrc, 0)
		second.ID = 1
		store := repository.NewMemoryStore(ctx, repository.WithSeed(first, second))
		defer store.Close()

		Convey("Then both records are kept under distinct ids", func() {
			n, err := store.Count(ctx, filter.Predicate{})
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)

			explicit, err := store.Get(ctx, 1)
			So(err, ShouldBeNil)
			So(explicit.Name, ShouldEqual, "Ivo")

			assigned, err := store.Get(ctx, 2)
			So(err, ShouldBeNil)
			So(assigned.Name, ShouldEqual, "Hana")
		})

		Convey("Then new inserts continue after both", func() {
			next, err := store.Insert(ctx, newPlayer("Jory", model.RaceHuman, 0))
			So(err, ShouldBeNil)
			So(next.ID, ShouldEqual, 3)
		})
	})
}

func TestMemoryStore_Close(t *testing.T) {
	Convey("Given a closed memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(ctx, repository.WithMetricsUpdateInterval(10*time.Millisecond))
		So(store.Close(), ShouldBeNil)

		Convey("Then every operation fails with ErrClosed", func() {
			_, err := store.Find(ctx, filter.Query{})
			So(err, ShouldEqual, repository.ErrClosed)
			_, err = store.Count(ctx, filter.Predicate{})
			So(err, ShouldEqual, repository.ErrClosed)
			_, err = store.Insert(ctx, newPlayer("Gil", model.RaceHobbit, 0))
			So(err, ShouldEqual, repository.ErrClosed)
		})

		Convey("Then closing again is harmless", func() {
			So(store.Close(), ShouldBeNil)
		})
	})
}

func TestMemoryStore_ConcurrentInsert(t *testing.T) {
	Convey("Given concurrent writers", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(ctx)
		defer store.Close()

		const writers = 8
		const perWriter = 25
		var wg sync.WaitGroup
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < perWriter; i++ {
					_, _ = store.Insert(ctx, newPlayer(fmt.Sprintf("p%d-%d", w, i), model.RaceTroll, int64(i)))
				}
			}(w)
		}
		wg.Wait()

		Convey("Then every insert got a distinct id", func() {
			n, err := store.Count(ctx, filter.Predicate{})
			So(err, ShouldBeNil)
			So(n, ShouldEqual, writers*perWriter)
		})
	})
}
