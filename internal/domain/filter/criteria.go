// Package filter turns optional search criteria into a predicate over
// players, and orders and windows the matching records.
package filter

import "github.com/okian/roster/internal/domain/model"

// Range is an optional inclusive bound pair. A nil bound is not set.
type Range struct {
	Min *int64
	Max *int64
}

// SentinelRange builds a Range from the zero-means-unset convention used by
// the REST query parameters: a zero bound is treated as absent.
func SentinelRange(minVal, maxVal int64) Range {
	var r Range
	if minVal != 0 {
		r.Min = &minVal
	}
	if maxVal != 0 {
		r.Max = &maxVal
	}
	return r
}

// Criteria is the request-scoped set of search parameters. Every field is
// optional. A Criteria is built per request and never shared.
type Criteria struct {
	Name       *string
	Title      *string
	Race       *model.Race
	Profession *model.Profession
	Birthday   Range // epoch milliseconds; Min is "after", Max is "before"
	Banned     *bool
	Experience Range
	Level      Range
	Order      model.Order
	Page       Page
}

// Query bundles what a store needs to answer a list request.
type Query struct {
	Predicate Predicate
	Order     model.Order
	Page      Page
}

// Query builds the predicate and returns it with the ordering and window.
func (c Criteria) Query() Query {
	return Query{Predicate: Build(c), Order: c.Order, Page: c.Page}
}
