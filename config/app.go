package config

import "github.com/shopspring/decimal"

type App struct {
	Env         string `koanf:"env"`
	Port        string `koanf:"port"`
	DatabaseURL string `koanf:"databaseUrl"`
	JWTSecret   string `koanf:"jwtSecret"`

	Paystack Paystack `koanf:"paystack"`
	Upgrade  Upgrade  `koanf:"upgrade"`
	Catalog  Catalog  `koanf:"catalog"`
}

type Paystack struct {
	SecretKey   string `koanf:"secretKey"`
	CallbackURL string `koanf:"callbackUrl"`
}

// Upgrade holds the wallet fee charged for each paid role upgrade.
type Upgrade struct {
	AgentFee  decimal.Decimal `koanf:"agentFee"`
	DealerFee decimal.Decimal `koanf:"dealerFee"`
	VIPFee    decimal.Decimal `koanf:"vipFee"`
}

// Catalog carries the network_id -> (network, tier) map. The numeric grid is
// configuration data, not code: the authoritative mapping comes from here.
type Catalog struct {
	Networks []NetworkEntry `koanf:"networks"`
}

type NetworkEntry struct {
	ID      int    `koanf:"id" json:"id"`
	Network string `koanf:"network" json:"network"`
	Tier    string `koanf:"tier" json:"tier"`
}
