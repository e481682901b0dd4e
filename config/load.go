package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

const envPrefix = "DATAKING_"

// Load reads the first config.yaml found among paths (when present) and
// applies DATAKING_* env overrides, e.g. DATAKING_DATABASEURL or
// DATAKING_PAYSTACK_SECRETKEY.
func Load(paths ...string) (*App, error) {
	k := koanf.New(".")

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := k.Load(file.Provider(p), yaml.Parser()); err != nil {
			return nil, err
		}
		break
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, err
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	if len(cfg.Catalog.Networks) == 0 {
		cfg.Catalog.Networks = DefaultNetworks()
	}
	return cfg, nil
}

func defaults() *App {
	cfg := &App{
		Env:       "dev",
		Port:      "8080",
		JWTSecret: "local_dev_secret",
	}
	cfg.Upgrade.AgentFee = decimal.NewFromInt(50)
	cfg.Upgrade.DealerFee = decimal.NewFromInt(150)
	cfg.Upgrade.VIPFee = decimal.NewFromInt(300)
	return cfg
}

// DefaultNetworks is the grid observed in production fixtures: ids 1-4
// customer tier, 5-8 agent, 9-12 dealer, 13-16 VIP, columns MTN, TELECEL,
// ISHARE, BIGTIME (so id 5 is agent MTN and id 13 is VIP MTN).
func DefaultNetworks() []NetworkEntry {
	networks := []string{"MTN", "TELECEL", "ISHARE", "BIGTIME"}
	tiers := []string{"customer_product", "agent_product", "dealer_product", "vip_product"}

	out := make([]NetworkEntry, 0, len(networks)*len(tiers))
	id := 1
	for _, tier := range tiers {
		for _, n := range networks {
			out = append(out, NetworkEntry{ID: id, Network: n, Tier: tier})
			id++
		}
	}
	return out
}
