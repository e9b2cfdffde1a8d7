// Package pricing computes order prices, platform fees, wait estimates and
// opening status from catalog data.  Every function is deterministic and
// free of I/O so that previews and placed orders price identically.
package pricing

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/iliyamo/food-ordering-assistant/internal/model"
)

const (
	baseWaitMinutes  = 15
	waitPerPair      = 5
	smallOrderLimit  = 50
	mediumOrderLimit = 500
)

// CancelWindow is how long after creation an order may still be cancelled.
const CancelWindow = 5 * time.Minute

// InvalidCustomizationError is returned when a requested customization is
// not declared on the item.
type InvalidCustomizationError struct {
	Item string // item name as stored in the catalog
	Name string // customization name as requested
}

func (e *InvalidCustomizationError) Error() string {
	return fmt.Sprintf("invalid customization %q for %s", e.Name, e.Item)
}

// Line is a priced order line used to compute totals.
type Line struct {
	UnitPrice float64
	Quantity  int
}

// Summary is the pricing block of a preview or order.
type Summary struct {
	Subtotal    float64 `json:"subtotal"`
	PlatformFee float64 `json:"platformFee"`
	Total       float64 `json:"total"`
}

// LinePrice returns the unit price of item with the requested
// customizations applied.  Each requested name is matched against the
// item's declared customizations ignoring case and surrounding whitespace;
// the declared price is used and any price supplied with the request is
// ignored.  An unknown name fails with *InvalidCustomizationError.
func LinePrice(item *model.Item, requested []model.Customization) (float64, []model.Customization, error) {
	unit := item.BasePrice
	selected := make([]model.Customization, 0, len(requested))
	for _, req := range requested {
		declared, ok := item.Customization(req.Name)
		if !ok {
			return 0, nil, &InvalidCustomizationError{Item: item.Name, Name: strings.TrimSpace(req.Name)}
		}
		unit += declared.Price
		selected = append(selected, declared)
	}
	return unit, selected, nil
}

// PlatformFee is a step function of the subtotal: 5 up to 50, 10 up to
// 500 and 20 above.
func PlatformFee(subtotal float64) float64 {
	switch {
	case subtotal <= smallOrderLimit:
		return 5
	case subtotal <= mediumOrderLimit:
		return 10
	default:
		return 20
	}
}

// Totals sums unit price × quantity over lines and adds the platform fee.
func Totals(lines []Line) Summary {
	var subtotal float64
	for _, l := range lines {
		subtotal += l.UnitPrice * float64(l.Quantity)
	}
	return TotalsFor(subtotal)
}

// TotalsFor builds a Summary from an already computed subtotal.
func TotalsFor(subtotal float64) Summary {
	fee := PlatformFee(subtotal)
	return Summary{Subtotal: subtotal, PlatformFee: fee, Total: subtotal + fee}
}

// EstimateWaitTime returns the wait in minutes for an order with the given
// line quantities: 15 minutes plus 5 for every started pair of units.
func EstimateWaitTime(quantities ...int) int {
	total := 0
	for _, q := range quantities {
		total += q
	}
	pairs := int(math.Ceil(float64(total) / 2))
	return baseWaitMinutes + pairs*waitPerPair
}

// IsOpen reports whether at falls inside one of the shifts scheduled for
// at's weekday.  Shift bounds are inclusive.  A nil schedule or a day
// without shifts is closed.
func IsOpen(schedule model.Schedule, at time.Time) bool {
	if schedule == nil {
		return false
	}
	shifts, ok := schedule[at.Weekday()]
	if !ok {
		return false
	}
	minute := model.MinuteOfDay(at.Hour(), at.Minute())
	for _, s := range shifts {
		if minute >= s.Open && minute <= s.Close {
			return true
		}
	}
	return false
}

// CanBeCancelled reports whether the user may still cancel order: it must
// not have progressed past ACCEPTED and be at most five minutes old.
func CanBeCancelled(order *model.Order, now time.Time) bool {
	if order.Status != model.OrderPlaced && order.Status != model.OrderAccepted {
		return false
	}
	return now.Sub(order.CreatedAt) <= CancelWindow
}
