// Package book maps a linear page sequence onto the left/right spread
// slots of a bound book. Page numbers are 1-based; interior spreads
// always pair an even left page with the following odd page, the way
// page 2 faces page 3 in a physical book.
package book

// NoPage marks an absent spread slot.
const NoPage = 0

// Spread is the pair of page slots displayed simultaneously. A slot
// holding NoPage is empty (the outside of a cover, or the blank side
// facing a last page). Spreads are values; navigation recomputes them
// rather than mutating them.
type Spread struct {
	Left  int
	Right int
}

// HasLeft reports whether the left slot holds a page.
func (s Spread) HasLeft() bool { return s.Left != NoPage }

// HasRight reports whether the right slot holds a page.
func (s Spread) HasRight() bool { return s.Right != NoPage }

// Pages returns the present page numbers, left first.
func (s Spread) Pages() []int {
	var pages []int
	if s.HasLeft() {
		pages = append(pages, s.Left)
	}
	if s.HasRight() {
		pages = append(pages, s.Right)
	}
	return pages
}

// Contains reports whether page occupies either slot.
func (s Spread) Contains(page int) bool {
	return page != NoPage && (s.Left == page || s.Right == page)
}

// Resolve maps a page number to the spread that displays it.
//
// Page 1 is the cover and sits alone on the right. The last page of an
// odd-count document is the back cover and sits alone on the left.
// Every other page pairs up as (even, even+1); a right slot that would
// fall past totalPages is left empty.
//
// Callers must pass 1 <= page <= totalPages; Resolve does not validate.
func Resolve(page, totalPages int) Spread {
	switch {
	case page == 1:
		return Spread{Left: NoPage, Right: 1}
	case totalPages%2 != 0 && page == totalPages:
		return Spread{Left: totalPages, Right: NoPage}
	}

	s := Spread{}
	if page%2 == 0 {
		s.Left, s.Right = page, page+1
	} else {
		s.Left, s.Right = page-1, page
	}
	if s.Right > totalPages {
		s.Right = NoPage
	}
	return s
}

// NextPage returns the navigation target one spread forward of page,
// or page itself when the move would leave [1, totalPages].
//
// From the cover the target is 2. From an even page the target is
// page+2 (the next spread's left page); from an odd page >= 3 the
// target is page+1. The asymmetry against PreviousPage at the 2-3
// boundary is deliberate.
func NextPage(page, totalPages int) int {
	var target int
	switch {
	case page == 1:
		target = 2
	case page%2 == 0:
		target = page + 2
	default:
		target = page + 1
	}
	if target > totalPages {
		return page
	}
	return target
}

// PreviousPage returns the navigation target one spread backward of
// page, or page itself when the move would leave [1, totalPages].
func PreviousPage(page, totalPages int) int {
	var target int
	switch {
	case page == 2 || page == 3:
		target = 1
	case page%2 == 0:
		target = page - 2
	default:
		target = page - 3
	}
	if target < 1 {
		return page
	}
	return target
}
