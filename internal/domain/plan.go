package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// LotDraw is one planned deduction against a single lot.
type LotDraw struct {
	LotID uuid.UUID
	Units int64
}

// SortLotsFIFO orders lots oldest acquisition first, ties broken by lot id
// ascending. This ordering governs which cost basis each investor receives,
// so it must stay deterministic and match the repository listing order.
func SortLotsFIFO(lots []ShareLot) {
	sort.Slice(lots, func(i, j int) bool {
		if !lots[i].AcquiredAt.Equal(lots[j].AcquiredAt) {
			return lots[i].AcquiredAt.Before(lots[j].AcquiredAt)
		}
		return lots[i].LotID.String() < lots[j].LotID.String()
	})
}

// PlanDraw walks the given lots in order, drawing against each lot's current
// remaining units until requestedUnits is satisfied. Lots that are locked up
// or empty at the given instant are skipped. When total drawable supply falls
// short it returns ErrInsufficientInventory and no plan, so callers never
// apply a partial draw.
func PlanDraw(lots []ShareLot, requestedUnits int64, now time.Time) ([]LotDraw, error) {
	if requestedUnits <= 0 {
		return nil, ErrInvalidInput
	}

	remaining := requestedUnits
	draws := make([]LotDraw, 0, 2)
	for _, lot := range lots {
		if remaining == 0 {
			break
		}
		if !lot.Drawable(now) {
			continue
		}
		units := lot.UnitsRemaining
		if units > remaining {
			units = remaining
		}
		draws = append(draws, LotDraw{LotID: lot.LotID, Units: units})
		remaining -= units
	}
	if remaining > 0 {
		return nil, ErrInsufficientInventory
	}
	return draws, nil
}
