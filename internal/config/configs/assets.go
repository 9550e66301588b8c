package configs

import "time"

// Assets configures how asset handles are resolved to asset services.
// Endpoints maps an asset handle to the base URL of its service, e.g.
// ASSET_ENDPOINTS="TTK|http://tokens:9000/ttk,USD|http://usd:9000". When no
// endpoint is configured an in-process bank is used instead, holding
// DevAssets with DevMint units minted to the ledger owner.
type Assets struct {
	Endpoints map[string]string `env:"ENDPOINTS" envKeyValSeparator:"|"`
	Timeout   time.Duration     `env:"TIMEOUT" envDefault:"10s"`
	DevAssets []string          `env:"DEV_ASSETS" envDefault:"TTK"`
	DevMint   uint64            `env:"DEV_MINT" envDefault:"1000000"`
}

// Remote reports whether external asset services are configured.
func (c Assets) Remote() bool {
	return len(c.Endpoints) > 0
}
