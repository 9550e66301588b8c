package configs

import "time"

// HTTP defines configuration for the HTTP server. Claims are throttled
// per caller with a token bucket of ClaimBurst tokens refilled at
// ClaimRPS per second.
type HTTP struct {
	// Port is the TCP port the HTTP server will listen on. Defaults to 8080.
	Port            uint16        `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
	ClaimRPS        float64       `env:"CLAIM_RPS" envDefault:"5"`
	ClaimBurst      int           `env:"CLAIM_BURST" envDefault:"10"`
	// TurnTimeout bounds how long a mutating request waits for the ledger.
	// Keep it below ASSET_TIMEOUT.
	TurnTimeout     time.Duration `env:"TURN_TIMEOUT" envDefault:"5s"`
}
