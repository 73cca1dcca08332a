package pricing

import (
	"fmt"

	"ms-rsvp/internal/models"
)

// Prices in minor currency units (cents).
const (
	RegularPrice int64 = 12000
	VIPPrice     int64 = 20000
)

var table = map[models.Category]int64{
	models.CategoryRegular: RegularPrice,
	models.CategoryVIP:     VIPPrice,
}

// PriceFor returns the price charged for a category at creation time.
func PriceFor(category models.Category) (int64, error) {
	price, ok := table[category]
	if !ok {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidCategory, category)
	}
	return price, nil
}

// FormatPrice renders minor units as dollars, e.g. 12000 -> "$120.00".
func FormatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
