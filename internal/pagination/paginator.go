// Package pagination slices ordered sequences into fixed-size pages.
package pagination

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// PageSize is the number of items on every feed page.
const PageSize = 10

// Page is one window over an ordered sequence plus navigation metadata.
type Page[T any] struct {
	Items              []T  `json:"object_list"`
	Count              int  `json:"count"`
	NumPages           int  `json:"num_pages"`
	Number             int  `json:"number"`
	HasPrevious        bool `json:"has_previous"`
	HasNext            bool `json:"has_next"`
	PreviousPageNumber int  `json:"previous_page_number"`
	NextPageNumber     int  `json:"next_page_number"`

	size int
}

// ParsePageNumber turns the raw "page" query value into a page number.
// A missing or non-numeric value means the first page. Numeric values pass
// through unchanged and are clamped by Paginate; values beyond the int range
// saturate so they clamp the same way.
func ParsePageNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err == nil {
		return n
	}
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(strings.TrimSpace(raw), "-") {
			return math.MinInt
		}
		return math.MaxInt
	}
	return 1
}

// Window resolves number against a sequence of count items split into pages
// of size. It returns the clamped page number and the offset of its first
// item. A number below one or past the end selects the last page.
func Window(count, size, number int) (page, offset int) {
	if size < 1 {
		size = PageSize
	}
	numPages := 1
	if count > 0 {
		numPages = (count + size - 1) / size
	}
	if number < 1 || number > numPages {
		number = numPages
	}
	return number, (number - 1) * size
}

// NewPage builds a page from items already cut by the caller. count is the
// size of the whole sequence and number must come from Window.
func NewPage[T any](items []T, count, size, number int) Page[T] {
	if size < 1 {
		size = PageSize
	}
	numPages := 1
	if count > 0 {
		numPages = (count + size - 1) / size
	}
	if items == nil {
		items = make([]T, 0)
	}

	p := Page[T]{
		Items:       items,
		Count:       count,
		NumPages:    numPages,
		Number:      number,
		HasPrevious: number > 1,
		HasNext:     number < numPages,
		size:        size,
	}
	if p.HasPrevious {
		p.PreviousPageNumber = number - 1
	}
	if p.HasNext {
		p.NextPageNumber = number + 1
	}
	return p
}

// Paginate returns page number of items split into pages of size. A number
// below one or past the end yields the last page; an empty sequence is a
// single empty page.
func Paginate[T any](items []T, size, number int) Page[T] {
	if size < 1 {
		size = PageSize
	}

	count := len(items)
	number, start := Window(count, size, number)
	end := start + size
	if end > count {
		end = count
	}

	window := make([]T, 0, end-start)
	window = append(window, items[start:end]...)
	return NewPage(window, count, size, number)
}

// HasOtherPages reports whether navigation controls are needed.
func (p Page[T]) HasOtherPages() bool {
	return p.HasPrevious || p.HasNext
}

// StartIndex is the 1-based position of the first item on the page, or 0 for
// an empty page.
func (p Page[T]) StartIndex() int {
	if p.Count == 0 {
		return 0
	}
	size := p.size
	if size == 0 {
		// Pages decoded from JSON lose their size.
		size = PageSize
	}
	return (p.Number-1)*size + 1
}

// EndIndex is the 1-based position of the last item on the page.
func (p Page[T]) EndIndex() int {
	if p.Count == 0 {
		return 0
	}
	return p.StartIndex() + len(p.Items) - 1
}
