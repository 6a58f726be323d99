package app

// Page is one window of a filtered record sequence.
type Page[T any] struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Data        []T `json:"data"`
}

// Paginate returns the page-th window of limit items.
//
// page < 1 is treated as 1. limit < 1 puts every item on page 1. A page past
// the end yields an empty Data slice. Data never aliases items beyond the
// window, so appending to it cannot overwrite the source.
func Paginate[T any](items []T, page, limit int) Page[T] {
	if page < 1 {
		page = 1
	}
	total := len(items)
	out := Page[T]{TotalItems: total, CurrentPage: page, Data: []T{}}
	if total == 0 {
		return out
	}

	if limit < 1 {
		out.TotalPages = 1
		if page == 1 {
			out.Data = items[:total:total]
		}
		return out
	}

	out.TotalPages = total / limit
	if total%limit != 0 {
		out.TotalPages++
	}
	if page > out.TotalPages {
		return out
	}

	// page <= TotalPages keeps start < total, so no overflow here
	start := (page - 1) * limit
	end := total
	if total-start > limit {
		end = start + limit
	}
	out.Data = items[start:end:end]
	return out
}
