package api

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/okian/roster/internal/domain/filter"
	"github.com/okian/roster/internal/domain/model"
)

// parseCriteria reads the list/count query parameters. Numeric bounds use
// the zero-means-unset convention; pageSize 0 defers to the service default.
func parseCriteria(q url.Values) (filter.Criteria, error) {
	var (
		c   filter.Criteria
		err error
	)
	if q.Has("name") {
		name := q.Get("name")
		c.Name = &name
	}
	if q.Has("title") {
		title := q.Get("title")
		c.Title = &title
	}
	if v := q.Get("race"); v != "" {
		r, err := model.ParseRace(v)
		if err != nil {
			return filter.Criteria{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		c.Race = &r
	}
	if v := q.Get("profession"); v != "" {
		p, err := model.ParseProfession(v)
		if err != nil {
			return filter.Criteria{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		c.Profession = &p
	}
	if v := q.Get("banned"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter.Criteria{}, fmt.Errorf("%w: banned: %q is not a boolean", ErrBadRequest, v)
		}
		c.Banned = &b
	}
	if c.Order, err = model.ParseOrder(q.Get("order")); err != nil {
		return filter.Criteria{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	ints := map[string]int64{}
	for _, key := range []string{
		"after", "before", "minExperience", "maxExperience", "minLevel", "maxLevel", "pageNumber", "pageSize",
	} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter.Criteria{}, fmt.Errorf("%w: %s: %q is not an integer", ErrBadRequest, key, v)
		}
		ints[key] = n
	}
	c.Birthday = filter.SentinelRange(ints["after"], ints["before"])
	c.Experience = filter.SentinelRange(ints["minExperience"], ints["maxExperience"])
	c.Level = filter.SentinelRange(ints["minLevel"], ints["maxLevel"])
	c.Page = filter.Page{Number: int(ints["pageNumber"]), Size: int(ints["pageSize"])}
	return c, nil
}

// parseID reads the {id} path variable.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", model.ErrInvalidID, raw, err)
	}
	return id, nil
}
