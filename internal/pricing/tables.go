package pricing

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/polkiloo/storefront/internal/domain/model"
)

const (
	basisPoints = 10000

	defaultConvenienceFeeBPS = 300
)

// Tables is the static pricing configuration.
type Tables struct {
	// ConvenienceFeeBPS is the card surcharge in basis points.
	ConvenienceFeeBPS int64
	// DiscountCodes maps an upper-cased code to its rate in basis points.
	DiscountCodes map[string]int64
	ShippingFees  map[model.ShippingMethod]model.Cents
}

// DefaultTables returns the built-in discount codes and shipping fees.
func DefaultTables() Tables {
	return Tables{
		ConvenienceFeeBPS: defaultConvenienceFeeBPS,
		DiscountCodes: map[string]int64{
			"ICON10":  1000,
			"TEST100": 10000,
		},
		ShippingFees: map[model.ShippingMethod]model.Cents{
			model.ShippingPickup:         0,
			model.ShippingFlat:           700,
			model.ShippingUSPSFirstClass: 500,
			model.ShippingUSPSPriority:   900,
		},
	}
}

type tablesFile struct {
	ConvenienceFeeBPS *int64             `yaml:"convenience_fee_bps"`
	DiscountCodes     map[string]float64 `yaml:"discount_codes"`
	ShippingFees      map[string]float64 `yaml:"shipping_fees"`
}

// LoadTables reads pricing tables from a YAML file. An empty path yields the defaults.
func LoadTables(path string) (Tables, error) {
	if path == "" {
		return DefaultTables(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read pricing file: %w", err)
	}
	return ParseTables(data)
}

// ParseTables decodes YAML pricing tables, filling anything omitted from the defaults.
func ParseTables(data []byte) (Tables, error) {
	var raw tablesFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Tables{}, fmt.Errorf("decode pricing tables: %w", err)
	}

	tables := DefaultTables()
	if raw.ConvenienceFeeBPS != nil {
		if *raw.ConvenienceFeeBPS < 0 || *raw.ConvenienceFeeBPS > basisPoints {
			return Tables{}, fmt.Errorf("convenience_fee_bps out of range: %d", *raw.ConvenienceFeeBPS)
		}
		tables.ConvenienceFeeBPS = *raw.ConvenienceFeeBPS
	}

	if raw.DiscountCodes != nil {
		tables.DiscountCodes = make(map[string]int64, len(raw.DiscountCodes))
		for code, rate := range raw.DiscountCodes {
			if rate < 0 || rate > 1 {
				return Tables{}, fmt.Errorf("discount %q rate out of range: %v", code, rate)
			}
			tables.DiscountCodes[normalizeCode(code)] = int64(math.Round(rate * basisPoints))
		}
	}

	for method, fee := range raw.ShippingFees {
		if fee < 0 {
			return Tables{}, fmt.Errorf("shipping fee %q is negative", method)
		}
		tables.ShippingFees[model.ShippingMethod(strings.ToLower(strings.TrimSpace(method)))] = model.CentsFromFloat(fee)
	}

	return tables, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
