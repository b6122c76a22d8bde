package orders

import "github.com/shopspring/decimal"

// Reservation rules shared by every ledger implementation. The postgres repo
// applies them inside its transaction; the in-memory ledger used in tests
// applies them under its lock. Keeping them pure keeps the two in agreement.

// validateSnapshot checks the fetched in-stock products against the
// requested id count. An empty snapshot means nothing requested is
// available; a short snapshot means at least one id did not resolve to an
// in-stock product, which fails the whole reservation rather than silently
// dropping line items.
func validateSnapshot(requested []string, available []Product) error {
	if len(available) == 0 {
		return ErrNoAvailableProducts
	}
	if len(available) < len(requested) {
		return ErrProductNotFound
	}
	return nil
}

// totalPrice validates each unit price and returns the aggregate, rounded to
// two decimals half-up.
func totalPrice(products []Product) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range products {
		if p.Price.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, &InvalidPriceError{ProductID: p.ID}
		}
		total = total.Add(p.Price)
	}
	total = total.Round(2)
	if total.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return total, nil
}
