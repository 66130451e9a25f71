package filter

import (
	"fmt"
	"math"

	"github.com/okian/roster/internal/domain/model"
)

// DefaultPageSize matches the REST default when pageSize is omitted.
const DefaultPageSize = 3

// Page is a zero-based offset window.
type Page struct {
	Number int
	Size   int
}

// Offset returns the index of the first record in the window.
func (p Page) Offset() int { return p.Number * p.Size }

// Overflows reports whether Number*Size does not fit in an int.
func (p Page) Overflows() bool {
	return p.Size > 0 && p.Number > math.MaxInt/p.Size
}

// Normalize replaces a non-positive size with defaultSize and rejects a
// negative page number or one whose offset overflows.
func (p Page) Normalize(defaultSize int) (Page, error) {
	if p.Number < 0 {
		return Page{}, &model.FieldError{Field: "pageNumber", Reason: fmt.Sprintf("must not be negative, got %d", p.Number)}
	}
	if p.Size <= 0 {
		if defaultSize <= 0 {
			defaultSize = DefaultPageSize
		}
		p.Size = defaultSize
	}
	if p.Overflows() {
		return Page{}, &model.FieldError{
			Field:  "pageNumber",
			Reason: fmt.Sprintf("offset of page %d with size %d is out of range", p.Number, p.Size),
		}
	}
	return p, nil
}

// Window returns the [start, end) bounds of the page within n records.
// An overflowing page is past the end.
func (p Page) Window(n int) (int, int) {
	if p.Overflows() {
		return n, n
	}
	start := p.Offset()
	if start > n || start < 0 {
		return n, n
	}
	end := start + p.Size
	if end > n || end < start || p.Size <= 0 {
		end = n
	}
	return start, end
}
