package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	admindomain "github.com/spicyjump/storefront/services/admin/domain"
)

// Period names a trailing reporting window.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

var periodDays = map[Period]int{
	PeriodDay:   1,
	PeriodWeek:  7,
	PeriodMonth: 30,
	PeriodYear:  365,
}

// Days returns the window length, or 0 for an unknown period.
func (p Period) Days() int { return periodDays[p] }

// DateRange is the half-open interval [From, To).
type DateRange struct {
	From time.Time
	To   time.Time
}

// ResolveRange picks the reporting window. When both start and end are set
// they win over period; end is a calendar date and is included whole.
// An empty period means month.
func ResolveRange(period Period, start, end *time.Time, now time.Time) (DateRange, error) {
	if period == "" {
		period = PeriodMonth
	}
	if start != nil && end != nil {
		r := DateRange{From: *start, To: end.AddDate(0, 0, 1)}
		if !r.From.Before(r.To) {
			return DateRange{}, fmt.Errorf("%w: start %s is after end %s",
				admindomain.ErrInvalidDateRange, start.Format(time.DateOnly), end.Format(time.DateOnly))
		}
		return r, nil
	}
	days := period.Days()
	if days == 0 {
		return DateRange{}, fmt.Errorf("%w: unknown period %q", admindomain.ErrInvalidDateRange, period)
	}
	return DateRange{From: now.AddDate(0, 0, -days), To: now}, nil
}

// Previous is the window of the same length that ends where r starts.
func (r DateRange) Previous() DateRange {
	return DateRange{From: r.From.Add(-r.To.Sub(r.From)), To: r.From}
}

// Days counts the started days in r, never less than one.
func (r DateRange) Days() int {
	d := r.To.Sub(r.From)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return max(days, 1)
}

type RevenueStats struct {
	Total        decimal.Decimal
	DailyAverage decimal.Decimal
	// GrowthRate is the percentage change against the previous window.
	GrowthRate decimal.Decimal
}

type OrderStats struct {
	Total     int
	Completed int
	Cancelled int
}

type UserStats struct {
	TotalActive int
	New         int
}

// Dashboard is the admin overview for one window.
type Dashboard struct {
	Period  Period
	Range   DateRange
	Revenue RevenueStats
	Orders  OrderStats
	Users   UserStats
}

// NewRevenueStats derives the averages from raw totals.
func NewRevenueStats(current, previous decimal.Decimal, days int) RevenueStats {
	return RevenueStats{
		Total:        current,
		DailyAverage: current.DivRound(decimal.NewFromInt(int64(max(days, 1))), 2),
		GrowthRate:   GrowthRate(current, previous),
	}
}

// GrowthRate is (current-previous)/previous in percent, rounded to two
// places. A zero previous window yields 0.
func GrowthRate(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Mul(decimal.NewFromInt(100)).DivRound(previous, 2)
}

const maxBehaviorScore = 100

// UserBehavior summarises how engaged a user is.
type UserBehavior struct {
	UserID         uuid.UUID
	TotalOrders    int
	TotalSpent     decimal.Decimal
	ReviewsWritten int
	Score          decimal.Decimal
}

// NewUserBehavior scores orders×5 + reviews×2 + spent/10, capped at 100.
func NewUserBehavior(userID uuid.UUID, orders, reviews int, spent decimal.Decimal) UserBehavior {
	score := decimal.NewFromInt(int64(orders*5 + reviews*2)).Add(spent.Div(decimal.NewFromInt(10)))
	if limit := decimal.NewFromInt(maxBehaviorScore); score.GreaterThan(limit) {
		score = limit
	}
	return UserBehavior{
		UserID:         userID,
		TotalOrders:    orders,
		TotalSpent:     spent,
		ReviewsWritten: reviews,
		Score:          score.Round(2),
	}
}
