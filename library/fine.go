package library

import (
	"math"
	"time"
)

// Fine schedule. A return after the due date is treated as a lost book:
// the full missing penalty applies on top of the per-day late fee, even
// one day past due. This conflation of late and missing is the domain
// rule, not an accident.
const (
	missingPenaltyFactor = 2.0  // 200% of book price once past due
	lateFeePerDay        = 50   // flat fee per late day
	smallDamageFactor    = 0.10 // 10% of book price
	largeDamageFactor    = 0.50 // 50% of book price
)

// CalculateFine computes the fine for returning the book at returnDate.
// Pure: it reads nothing but its arguments. The result is rounded to
// the nearest whole currency unit and is never negative.
func CalculateFine(dueDate, returnDate time.Time, price int, damage DamageType) int {
	fine := 0.0

	if returnDate.After(dueDate) {
		fine += float64(price) * missingPenaltyFactor
		fine += float64(DaysLate(dueDate, returnDate) * lateFeePerDay)
	}

	switch damage {
	case DamageSmall:
		fine += float64(price) * smallDamageFactor
	case DamageLarge:
		fine += float64(price) * largeDamageFactor
	}

	if fine < 0 {
		return 0
	}
	return int(math.Round(fine))
}

// DaysLate counts whole late days, rounding any partial day up. On-time
// returns count zero.
func DaysLate(dueDate, returnDate time.Time) int {
	if !returnDate.After(dueDate) {
		return 0
	}
	return int(math.Ceil(returnDate.Sub(dueDate).Hours() / 24))
}

// ProvisionalFine computes the fine a still-active transaction would
// carry if returned at now, for display ahead of the actual return.
func ProvisionalFine(t *Transaction, price int, damage DamageType, now time.Time) int {
	effective := now
	if t.ReturnDate != nil {
		effective = *t.ReturnDate
	}
	return CalculateFine(t.DueDate, effective, price, damage)
}
