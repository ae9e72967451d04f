package services

// PriceTable resolves the expected amount for a package duration. Amount
// validation is the final defense against a forged callback carrying a valid
// signature but a tampered amount, so lookups are strict.
type PriceTable struct {
	packages   map[int]int
	boostPrice int
}

// NewPriceTable creates a price table from the configured package prices.
func NewPriceTable(packages map[int]int, boostPrice int) *PriceTable {
	copied := make(map[int]int, len(packages))
	for days, price := range packages {
		copied[days] = price
	}
	return &PriceTable{packages: copied, boostPrice: boostPrice}
}

// ExpectedAmount returns the price for a package duration. packageDays 0 is
// the boost price. ok is false for durations not on the table.
func (t *PriceTable) ExpectedAmount(packageDays int) (int, bool) {
	if packageDays == 0 {
		return t.boostPrice, true
	}
	price, ok := t.packages[packageDays]
	return price, ok
}
