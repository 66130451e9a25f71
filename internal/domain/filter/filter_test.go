package filter_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/roster/internal/domain/filter"
	"github.com/okian/roster/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func ptr[T any](v T) *T { return &v }

func player(id int64, name string, experience int64) model.Player {
	p := model.Player{
		ID:         id,
		Name:       name,
		Title:      "Title of " + name,
		Race:       model.RaceElf,
		Profession: model.ProfessionDruid,
		Birthday:   time.Date(2001+int(id), time.March, 1, 0, 0, 0, 0, time.UTC),
	}
	p.SetExperience(experience)
	return p
}

func ids(players []model.Player) []int64 {
	out := make([]int64, len(players))
	for i, p := range players {
		out[i] = p.ID
	}
	return out
}

func TestBuild(t *testing.T) {
	Convey("Given empty criteria", t, func() {
		pred := filter.Build(filter.Criteria{})

		Convey("Then the predicate matches everything", func() {
			So(pred.Empty(), ShouldBeTrue)
			So(pred.Match(player(1, "any", 0)), ShouldBeTrue)
			So(pred.String(), ShouldEqual, "*")
		})
	})

	Convey("Given every criterion set", t, func() {
		c := filter.Criteria{
			Name:       ptr("Ara"),
			Title:      ptr("king"),
			Race:       ptr(model.RaceHuman),
			Profession: ptr(model.ProfessionWarrior),
			Birthday:   filter.SentinelRange(1, 2),
			Banned:     ptr(false),
			Experience: filter.SentinelRange(10, 20),
			Level:      filter.SentinelRange(0, 5),
		}
		pred := filter.Build(c)

		Convey("Then clauses follow field order", func() {
			fields := make([]filter.Field, len(pred.Clauses))
			for i, cl := range pred.Clauses {
				fields[i] = cl.Field
			}
			So(fields, ShouldResemble, []filter.Field{
				filter.FieldName, filter.FieldTitle, filter.FieldRace, filter.FieldProfession,
				filter.FieldExperience, filter.FieldBirthday, filter.FieldBanned, filter.FieldLevel,
			})
		})

		Convey("And text needles are lowered", func() {
			So(pred.Clauses[0].Text, ShouldEqual, "ara")
			So(pred.Clauses[0].Op, ShouldEqual, filter.OpContains)
		})

		Convey("And an upper-only level bound becomes AtMost", func() {
			So(pred.Clauses[7].Op, ShouldEqual, filter.OpAtMost)
			So(pred.Clauses[7].Hi, ShouldEqual, 5)
		})
	})
}

func TestRangeRules(t *testing.T) {
	Convey("Given players with experience 50, 150 and 250", t, func() {
		players := []model.Player{player(1, "a", 50), player(2, "b", 150), player(3, "c", 250)}
		run := func(r filter.Range) []int64 {
			return ids(filter.Apply(players, filter.Query{Predicate: filter.Build(filter.Criteria{Experience: r})}))
		}

		Convey("min=100 max=200 keeps only 150", func() {
			So(run(filter.SentinelRange(100, 200)), ShouldResemble, []int64{2})
		})

		Convey("min=100 max=0 keeps 150 and 250", func() {
			So(run(filter.SentinelRange(100, 0)), ShouldResemble, []int64{2, 3})
		})

		Convey("min=0 max=200 keeps 50 and 150", func() {
			So(run(filter.SentinelRange(0, 200)), ShouldResemble, []int64{1, 2})
		})

		Convey("both zero keeps everything", func() {
			So(run(filter.SentinelRange(0, 0)), ShouldResemble, []int64{1, 2, 3})
		})

		Convey("an inverted or collapsed range adds no clause", func() {
			So(run(filter.SentinelRange(200, 100)), ShouldResemble, []int64{1, 2, 3})
			So(run(filter.SentinelRange(150, 150)), ShouldResemble, []int64{1, 2, 3})
		})

		Convey("an explicit zero upper bound is honoured", func() {
			So(run(filter.Range{Max: ptr(int64(0))}), ShouldBeEmpty)
			So(run(filter.Range{Min: ptr(int64(0))}), ShouldResemble, []int64{1, 2, 3})
		})

		Convey("bounds are inclusive", func() {
			So(run(filter.SentinelRange(50, 150)), ShouldResemble, []int64{1, 2})
		})
	})
}

func TestMatch(t *testing.T) {
	Convey("Given a player", t, func() {
		p := player(4, "Legolas", 300)
		p.Title = "Prince of Mirkwood"
		p.Banned = true

		Convey("Name and title match case-insensitive substrings", func() {
			So(filter.Build(filter.Criteria{Name: ptr("GOLA")}).Match(p), ShouldBeTrue)
			So(filter.Build(filter.Criteria{Title: ptr("mirk")}).Match(p), ShouldBeTrue)
			So(filter.Build(filter.Criteria{Name: ptr("gimli")}).Match(p), ShouldBeFalse)
		})

		Convey("Race and profession match exactly", func() {
			So(filter.Build(filter.Criteria{Race: ptr(model.RaceElf)}).Match(p), ShouldBeTrue)
			So(filter.Build(filter.Criteria{Race: ptr(model.RaceDwarf)}).Match(p), ShouldBeFalse)
			So(filter.Build(filter.Criteria{Profession: ptr(model.ProfessionDruid)}).Match(p), ShouldBeTrue)
		})

		Convey("Banned distinguishes false from unset", func() {
			So(filter.Build(filter.Criteria{Banned: ptr(true)}).Match(p), ShouldBeTrue)
			So(filter.Build(filter.Criteria{Banned: ptr(false)}).Match(p), ShouldBeFalse)
			So(filter.Build(filter.Criteria{}).Match(p), ShouldBeTrue)
		})

		Convey("Birthday bounds compare epoch milliseconds", func() {
			ms := p.BirthdayMillis()
			So(filter.Build(filter.Criteria{Birthday: filter.SentinelRange(ms, 0)}).Match(p), ShouldBeTrue)
			So(filter.Build(filter.Criteria{Birthday: filter.SentinelRange(ms+1, 0)}).Match(p), ShouldBeFalse)
			So(filter.Build(filter.Criteria{Birthday: filter.SentinelRange(0, ms-1)}).Match(p), ShouldBeFalse)
		})

		Convey("Level bounds use the derived level", func() {
			So(p.Level, ShouldEqual, 2)
			So(filter.Build(filter.Criteria{Level: filter.SentinelRange(2, 0)}).Match(p), ShouldBeTrue)
			So(filter.Build(filter.Criteria{Level: filter.SentinelRange(0, 1)}).Match(p), ShouldBeFalse)
		})

		Convey("All clauses must hold", func() {
			c := filter.Criteria{Name: ptr("leg"), Banned: ptr(false)}
			So(filter.Build(c).Match(p), ShouldBeFalse)
		})
	})
}

func TestOrderingAndPaging(t *testing.T) {
	Convey("Given five players", t, func() {
		players := []model.Player{
			player(1, "Eowyn", 500),
			player(2, "Bilbo", 100),
			player(3, "Daeron", 900),
			player(4, "Arwen", 300),
			player(5, "Celeborn", 700),
		}

		Convey("Ordering by name with page size 2, page 1 yields the third and fourth names", func() {
			q := filter.Query{Order: model.OrderName, Page: filter.Page{Number: 1, Size: 2}}
			got := filter.Apply(players, q)
			So(len(got), ShouldEqual, 2)
			So(got[0].Name, ShouldEqual, "Celeborn")
			So(got[1].Name, ShouldEqual, "Daeron")
		})

		Convey("Ordering by experience sorts ascending", func() {
			got := filter.Apply(players, filter.Query{Order: model.OrderExperience})
			So(ids(got), ShouldResemble, []int64{2, 4, 1, 5, 3})
		})

		Convey("Unknown or empty order falls back to id", func() {
			So(ids(filter.Apply(players, filter.Query{})), ShouldResemble, []int64{1, 2, 3, 4, 5})
			So(filter.Column(model.Order("SHOE_SIZE")), ShouldEqual, "id")
		})

		Convey("Equal keys break ties by id", func() {
			got := filter.Apply([]model.Player{player(9, "x", 0), player(3, "x", 0)}, filter.Query{Order: model.OrderName})
			So(ids(got), ShouldResemble, []int64{3, 9})
		})

		Convey("A page past the end is empty", func() {
			got := filter.Apply(players, filter.Query{Page: filter.Page{Number: 10, Size: 3}})
			So(got, ShouldBeEmpty)
		})

		Convey("A page whose offset overflows is empty rather than the first page", func() {
			page := filter.Page{Number: 1 << 62, Size: 4}
			So(page.Overflows(), ShouldBeTrue)
			So(filter.Apply(players, filter.Query{Page: page}), ShouldBeEmpty)

			start, end := page.Window(len(players))
			So(start, ShouldEqual, len(players))
			So(end, ShouldEqual, len(players))
		})

		Convey("Apply does not reorder the input", func() {
			_ = filter.Apply(players, filter.Query{Order: model.OrderName})
			So(ids(players), ShouldResemble, []int64{1, 2, 3, 4, 5})
		})

		Convey("Count ignores paging", func() {
			pred := filter.Build(filter.Criteria{Experience: filter.SentinelRange(300, 0)})
			So(filter.Count(players, pred), ShouldEqual, 4)
		})
	})
}

func TestPageNormalize(t *testing.T) {
	Convey("Given page windows", t, func() {
		Convey("A missing size takes the default", func() {
			p, err := filter.Page{}.Normalize(0)
			So(err, ShouldBeNil)
			So(p.Size, ShouldEqual, filter.DefaultPageSize)

			p, err = filter.Page{Number: 2}.Normalize(10)
			So(err, ShouldBeNil)
			So(p.Size, ShouldEqual, 10)
			So(p.Offset(), ShouldEqual, 20)
		})

		Convey("A negative page number is rejected", func() {
			_, err := filter.Page{Number: -1, Size: 3}.Normalize(3)
			So(err, ShouldNotBeNil)
		})

		Convey("A page number whose offset overflows is rejected", func() {
			_, err := filter.Page{Number: 4611686018427387904, Size: 4}.Normalize(3)
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "pageNumber")

			_, err = filter.Page{Number: math.MaxInt}.Normalize(3)
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})

		Convey("The largest representable offset is accepted", func() {
			p, err := filter.Page{Number: math.MaxInt / 4, Size: 4}.Normalize(3)
			So(err, ShouldBeNil)
			So(p.Overflows(), ShouldBeFalse)
		})
	})
}
