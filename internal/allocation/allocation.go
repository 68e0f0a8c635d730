// Package allocation computes how a payment amount is spread over open
// assessments. It performs no I/O; callers persist the resulting shares.
package allocation

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Candidate is an assessment that may receive part of a payment.
type Candidate struct {
	AssessmentID uint
	AmountDue    decimal.Decimal
	AmountPaid   decimal.Decimal
}

// Balance returns max(0, due - paid).
func (c Candidate) Balance() decimal.Decimal {
	return Balance(c.AmountDue, c.AmountPaid)
}

// Share is the amount assigned to one assessment.
type Share struct {
	AssessmentID uint
	Amount       decimal.Decimal
}

// Balance returns the outstanding amount on an assessment, never negative.
func Balance(due, paid decimal.Decimal) decimal.Decimal {
	b := due.Sub(paid)
	if b.IsNegative() {
		return decimal.Zero
	}
	return b
}

// Single assigns min(balance, amount) to the target. It returns false when
// nothing can be assigned.
func Single(target Candidate, amount decimal.Decimal) (Share, bool) {
	if !amount.IsPositive() {
		return Share{}, false
	}
	applied := decimal.Min(target.Balance(), amount)
	if !applied.IsPositive() {
		return Share{}, false
	}
	return Share{AssessmentID: target.AssessmentID, Amount: applied}, true
}

// Open filters candidates down to those with a positive balance, ordered by
// assessment id.
func Open(candidates []Candidate) []Candidate {
	open := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Balance().IsPositive() {
			open = append(open, c)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].AssessmentID < open[j].AssessmentID
	})
	return open
}

// TotalBalance sums the balances of the candidates.
func TotalBalance(candidates []Candidate) decimal.Decimal {
	total := decimal.Zero
	for _, c := range candidates {
		total = total.Add(c.Balance())
	}
	return total
}

// Split spreads amount over the open candidates in proportion to their
// balances. Shares are rounded to cents half away from zero, the last
// candidate takes the remainder, and no share exceeds its balance. The
// shares always sum to min(amount, total balance). Zero shares are omitted.
func Split(candidates []Candidate, amount decimal.Decimal) []Share {
	open := Open(candidates)
	if len(open) == 0 || !amount.IsPositive() {
		return nil
	}
	total := TotalBalance(open)
	if !total.IsPositive() {
		return nil
	}

	if amount.GreaterThanOrEqual(total) {
		shares := make([]Share, 0, len(open))
		for _, c := range open {
			shares = append(shares, Share{AssessmentID: c.AssessmentID, Amount: c.Balance()})
		}
		return shares
	}

	amounts := make([]decimal.Decimal, len(open))
	allocated := decimal.Zero
	last := len(open) - 1
	for i, c := range open {
		var s decimal.Decimal
		if i < last {
			s = amount.Mul(c.Balance()).Div(total).Round(2)
		} else {
			s = amount.Sub(allocated)
		}
		s = decimal.Min(s, c.Balance(), amount.Sub(allocated))
		if s.IsNegative() {
			s = decimal.Zero
		}
		amounts[i] = s
		allocated = allocated.Add(s)
	}

	// A capped last share leaves money behind; hand it to earlier
	// candidates that still have room, in order.
	leftover := amount.Sub(allocated)
	for i := 0; i < len(open) && leftover.IsPositive(); i++ {
		room := open[i].Balance().Sub(amounts[i])
		if !room.IsPositive() {
			continue
		}
		add := decimal.Min(room, leftover)
		amounts[i] = amounts[i].Add(add)
		leftover = leftover.Sub(add)
	}

	shares := make([]Share, 0, len(open))
	for i, c := range open {
		if amounts[i].IsPositive() {
			shares = append(shares, Share{AssessmentID: c.AssessmentID, Amount: amounts[i]})
		}
	}
	return shares
}

// Sum totals the share amounts.
func Sum(shares []Share) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	return total
}
