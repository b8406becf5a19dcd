package batch

import (
	"fmt"

	"svw.info/tiles/internal/domain"
)

// ResolveRange turns the CLI options into an inclusive date range:
//
//	neither start nor end  [today, today+days-1]
//	start and end          [start, end] (days ignored)
//	start only             [start, start+days-1]
//	end only               [end-days+1, end]
//
// The result is not checked for start <= end; Run does that.
func ResolveRange(days int, start, end *domain.Date, today domain.Date) (domain.Date, domain.Date, error) {
	if start != nil && end != nil {
		return *start, *end, nil
	}
	if days < 1 {
		return domain.Date{}, domain.Date{}, fmt.Errorf("%w: days must be at least 1, got %d", domain.ErrRange, days)
	}
	switch {
	case start != nil:
		return *start, start.AddDays(days - 1), nil
	case end != nil:
		return end.AddDays(-(days - 1)), *end, nil
	default:
		return today, today.AddDays(days - 1), nil
	}
}
