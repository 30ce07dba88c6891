package liststore

// Page is one slice of a paginated collection. Page numbers are 1-based.
type Page[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	TotalPages int
	Total      int
}

func (p Page[T]) HasPrev() bool { return p.Page > 1 }
func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages }

// Paginate returns page of items, size per page. page is clamped to
// [1, TotalPages]; an empty collection yields page 1 of 0. A size <= 0 puts
// everything on one page.
func Paginate[T any](items []T, page, size int) Page[T] {
	total := len(items)
	if size <= 0 {
		size = max(total, 1)
	}

	pages := (total + size - 1) / size
	page = min(max(page, 1), max(pages, 1))

	start := min((page-1)*size, total)
	end := min(start+size, total)

	out := make([]T, end-start)
	copy(out, items[start:end])

	return Page[T]{
		Items:      out,
		Page:       page,
		PageSize:   size,
		TotalPages: pages,
		Total:      total,
	}
}
