package configs

// Ledger configures the ledger core. Owner is installed only when the
// store has never been initialised. Custody is the account that holds
// escrowed assets at the asset services.
type Ledger struct {
	Owner   string `env:"OWNER"`
	Custody string `env:"CUSTODY" envDefault:"ledger"`
	// Store selects the repository: "postgres" or "memory".
	Store string `env:"STORE" envDefault:"postgres"`
}

// UseMemory reports whether the in-process store is selected.
func (c Ledger) UseMemory() bool {
	return c.Store == "memory"
}
