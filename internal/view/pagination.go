package view

// Ellipsis marks a gap in VisiblePages.
const Ellipsis = 0

const maxVisiblePages = 5

// VisiblePages returns the page buttons to show, with Ellipsis for gaps.
func VisiblePages(current, total int) []int {
	if total <= 0 {
		return nil
	}
	if total <= maxVisiblePages {
		pages := make([]int, 0, total)
		for i := 1; i <= total; i++ {
			pages = append(pages, i)
		}
		return pages
	}
	switch {
	case current <= 2:
		return []int{1, 2, Ellipsis, total}
	case current >= total-2:
		return []int{1, Ellipsis, total - 2, total - 1, total}
	default:
		return []int{1, Ellipsis, current, current + 1, Ellipsis, total}
	}
}
