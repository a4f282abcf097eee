package model

// PageSize is the fixed number of rows per list page.
const PageSize = 20

// TotalPages returns ceil(count/size). A zero count still yields one page so
// the list always has a current page to display.
func TotalPages(count, size int) int {
	if size <= 0 {
		size = PageSize
	}
	if count <= 0 {
		return 1
	}
	return (count + size - 1) / size
}

// PageInfo describes the position of the visible page.
type PageInfo struct {
	Page       int
	TotalPages int
	Count      int
	// Local is true when the full result set is held client-side.
	Local bool
}

// Empty reports whether the active filter matched nothing.
func (p PageInfo) Empty() bool {
	return p.Count == 0
}

// HasPrev reports whether a previous page exists.
func (p PageInfo) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a next page exists.
func (p PageInfo) HasNext() bool {
	return p.Page < p.TotalPages
}

// Slice returns the window of items for page (1-based) of the given size.
func Slice[T any](items []T, page, size int) []T {
	if size <= 0 {
		size = PageSize
	}
	start := (page - 1) * size
	if page < 1 || start >= len(items) {
		return nil
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}
