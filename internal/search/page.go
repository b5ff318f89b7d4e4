package search

// PageSize is the fixed number of results per page.
const PageSize = 40

// Page is one slice of the merged results.
type Page struct {
	Items      []MergedResult `json:"items"`
	Offset     int            `json:"offset"`
	TotalItems int            `json:"total_items"`
	TotalPages int            `json:"total_pages"`
}

// TotalPages returns ceil(total/PageSize).
func TotalPages(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + PageSize - 1) / PageSize
}

// Paginate returns page offset (zero based) of results.  Offsets outside
// the result range, including negative ones, yield an empty page.
func Paginate(results []MergedResult, offset int) Page {
	total := len(results)
	p := Page{
		Items:      []MergedResult{},
		Offset:     offset,
		TotalItems: total,
		TotalPages: TotalPages(total),
	}
	if offset < 0 || offset >= p.TotalPages {
		return p
	}
	start := offset * PageSize
	end := min(start+PageSize, total)
	p.Items = results[start:end]
	return p
}
