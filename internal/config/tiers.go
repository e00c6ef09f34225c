package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"pocketcredit-backend/internal/domain/amortization"
	"pocketcredit-backend/internal/domain/eligibility"
)

type tierConfig struct {
	Name       string `yaml:"name"`
	MinAmount  string `yaml:"min_amount"`
	MaxAmount  string `yaml:"max_amount"`
	MaxTenure  int    `yaml:"max_tenure"`
	TenureUnit string `yaml:"tenure_unit"`
	Rate       string `yaml:"rate"`
}

type tiersConfig struct {
	Tiers []tierConfig `yaml:"tiers"`
}

// DefaultTiers is the rate card used when no TIERS_FILE is configured.
func DefaultTiers() []eligibility.Tier {
	mk := func(name, min, max string, tenure int, rate string) eligibility.Tier {
		return eligibility.Tier{
			Name:       name,
			MinAmount:  decimal.RequireFromString(min),
			MaxAmount:  decimal.RequireFromString(max),
			MaxTenure:  tenure,
			TenureUnit: amortization.UnitMonth,
			Rate:       decimal.RequireFromString(rate),
		}
	}
	return []eligibility.Tier{
		mk("new_member", "5000", "50000", 12, "0.18"),
		mk("silver", "10000", "200000", 24, "0.16"),
		mk("gold", "25000", "500000", 36, "0.14"),
		mk("platinum", "50000", "1000000", 60, "0.12"),
	}
}

// LoadTiers reads the rate card from a YAML file, or returns DefaultTiers for an
// empty path.
func LoadTiers(path string) ([]eligibility.Tier, error) {
	if path == "" {
		return DefaultTiers(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}
	return parseTiers(data, path)
}

func parseTiers(data []byte, source string) ([]eligibility.Tier, error) {
	var cfg tiersConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", source, err)
	}
	if len(cfg.Tiers) == 0 {
		return nil, fmt.Errorf("%s declares no tiers", source)
	}

	out := make([]eligibility.Tier, 0, len(cfg.Tiers))
	for i, tc := range cfg.Tiers {
		if tc.Name == "" {
			return nil, fmt.Errorf("tier at index %d missing name", i)
		}
		t := eligibility.Tier{Name: tc.Name, MaxTenure: tc.MaxTenure, TenureUnit: amortization.TenureUnit(tc.TenureUnit)}
		for _, f := range []struct {
			field string
			raw   string
			dst   *decimal.Decimal
		}{
			{"min_amount", tc.MinAmount, &t.MinAmount},
			{"max_amount", tc.MaxAmount, &t.MaxAmount},
			{"rate", tc.Rate, &t.Rate},
		} {
			v, err := decimal.NewFromString(f.raw)
			if err != nil {
				return nil, fmt.Errorf("tier %s: invalid %s %q", tc.Name, f.field, f.raw)
			}
			*f.dst = v
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
