package debt

import "math"

// monthsToPayoff returns how many months payment takes to retire balance at
// monthly rate r, using the standard amortization closed form. It returns
// +Inf when the payment never covers the interest.
func monthsToPayoff(balance, r, payment float64) float64 {
	switch {
	case balance <= 0:
		return 0
	case payment <= 0:
		return math.Inf(1)
	case r == 0:
		return balance / payment
	case payment <= balance*r:
		return math.Inf(1)
	}
	return -math.Log(1-balance*r/payment) / math.Log(1+r)
}

// balanceAfter returns the balance remaining after paying payment for months
// (which may be fractional) at monthly rate r.
func balanceAfter(balance, r, payment, months float64) float64 {
	if r == 0 {
		return balance - payment*months
	}
	growth := math.Pow(1+r, months)
	return balance*growth - payment*(growth-1)/r
}

// interestOver returns the interest accrued while paying payment for months.
func interestOver(balance, r, payment, months float64) float64 {
	if months <= 0 || r == 0 {
		return 0
	}
	return payment*months - (balance - balanceAfter(balance, r, payment, months))
}
