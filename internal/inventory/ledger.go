// Package inventory holds the stock arithmetic for closed units and open
// bottles. Every operation works on a Stock value and returns the next value,
// so a failed operation leaves the caller's state untouched.
package inventory

import "github.com/shopspring/decimal"

// Stock is the ledger view of one product.
type Stock struct {
	Units    int             // closed bottles or accessories on hand
	OpenMl   decimal.Decimal // volume left in the opened bottle
	BottleMl decimal.Decimal // nominal volume of a full bottle, zero when not decant-capable
}

// Pour is the result of a successful decant consumption.
type Pour struct {
	Ml            decimal.Decimal
	BottlesOpened int
}

// ConsumeDecant pours ml out of the open bottle, opening closed bottles as
// needed to cover a pour that spans several of them.
func (s Stock) ConsumeDecant(ml decimal.Decimal) (Stock, Pour, error) {
	if !s.BottleMl.IsPositive() || !ml.IsPositive() {
		return s, Pour{}, ErrInvalidDecantRequest
	}

	next := s
	need := ml
	opened := 0

	if !next.OpenMl.IsPositive() {
		if next.Units <= 0 {
			return s, Pour{}, ErrOutOfStock
		}
		next.Units--
		next.OpenMl = next.BottleMl
		opened++
	}

	for need.GreaterThan(next.OpenMl) && next.Units > 0 {
		need = need.Sub(next.OpenMl)
		next.Units--
		next.OpenMl = next.BottleMl
		opened++
	}

	if need.GreaterThan(next.OpenMl) {
		return s, Pour{}, ErrInsufficientStock
	}

	next.OpenMl = next.OpenMl.Sub(need)
	return next, Pour{Ml: ml, BottlesOpened: opened}, nil
}

// ConsumeUnits takes n closed units out of stock.
func (s Stock) ConsumeUnits(n int) (Stock, error) {
	if n <= 0 {
		return s, ErrInvalidQuantity
	}
	if s.Units < n {
		return s, ErrInsufficientStock
	}
	s.Units -= n
	return s, nil
}

// RestoreUnits puts n closed units back. Non-positive counts are ignored.
func (s Stock) RestoreUnits(n int) Stock {
	if n > 0 {
		s.Units += n
	}
	return s
}

// RestoreDecant pours ml back into the open bottle and folds every completed
// bottle into closed stock. It returns the number of bottles folded. Products
// without a bottle size are left as they are.
//
// Folding is one-way: a returned pour that completes a bottle becomes a
// closed unit, even if that volume originally came from a partly used one.
func (s Stock) RestoreDecant(ml decimal.Decimal) (Stock, int) {
	if !s.BottleMl.IsPositive() || !ml.IsPositive() {
		return s, 0
	}
	s.OpenMl = s.OpenMl.Add(ml)
	return s.fold()
}

// Normalize clamps a negative remainder to zero and folds complete bottles.
func (s Stock) Normalize() Stock {
	if s.OpenMl.IsNegative() {
		s.OpenMl = decimal.Zero
	}
	if !s.BottleMl.IsPositive() {
		return s
	}
	s, _ = s.fold()
	return s
}

// Valid reports whether the open remainder lies in [0, BottleMl).
func (s Stock) Valid() bool {
	if !s.BottleMl.IsPositive() {
		return true
	}
	return !s.OpenMl.IsNegative() && s.OpenMl.LessThan(s.BottleMl) && s.Units >= 0
}

func (s Stock) fold() (Stock, int) {
	folded := 0
	for s.OpenMl.GreaterThanOrEqual(s.BottleMl) {
		s.Units++
		s.OpenMl = s.OpenMl.Sub(s.BottleMl)
		folded++
	}
	return s, folded
}

// PourCost attributes purchase cost to a poured volume:
// purchasePrice * ml / bottleMl, rounded to cents. Zero when bottleMl is not positive.
func PourCost(purchasePrice, bottleMl, ml decimal.Decimal) decimal.Decimal {
	if !bottleMl.IsPositive() {
		return decimal.Zero
	}
	return purchasePrice.Mul(ml).Div(bottleMl).Round(2)
}
