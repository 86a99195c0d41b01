package dataset

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"oficina/internal/money"
	"oficina/pkg/models"
)

var errMissingValue = errors.New("missing value")

// Layouts tried in order. Date-only values land at midnight in the
// configured location.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006",
}

// parseDate parses a snapshot date in loc.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return time.Time{}, errMissingValue
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, cleaned, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// parseAmount accepts YAML/JSON numbers and typed text.
func parseAmount(v interface{}) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, errMissingValue
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case float64:
		return x, nil
	case string:
		d, err := money.Parse(x)
		if err != nil {
			return 0, err
		}
		return d.InexactFloat64(), nil
	default:
		return 0, fmt.Errorf("unsupported amount type %T", v)
	}
}

// sumItems totals invoice lines in decimal so the result does not depend on
// float rounding of each line.
func sumItems(items []rawItem) (float64, error) {
	total := decimal.Zero
	for i, raw := range items {
		item, err := parseItem(raw)
		if err != nil {
			return 0, fmt.Errorf("item %d: %w", i+1, err)
		}
		total = total.Add(decimal.NewFromFloat(item.Quantity).Mul(decimal.NewFromFloat(item.UnitPrice)))
	}
	return total.InexactFloat64(), nil
}

// parseItem reads one invoice line. A missing quantity means 1.
func parseItem(raw rawItem) (models.LineItem, error) {
	qty, err := parseAmount(raw.Quantity)
	if errors.Is(err, errMissingValue) {
		qty, err = 1, nil
	}
	if err != nil {
		return models.LineItem{}, fmt.Errorf("quantity: %w", err)
	}
	price, err := parseAmount(raw.UnitPrice)
	if err != nil {
		return models.LineItem{}, fmt.Errorf("unit price: %w", err)
	}
	return models.LineItem{Description: raw.Description, Quantity: qty, UnitPrice: price}, nil
}
