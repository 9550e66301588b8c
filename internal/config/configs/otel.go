package configs

// Otel configures trace export. Tracing is disabled while Endpoint is
// empty.
type Otel struct {
	Endpoint    string `env:"ENDPOINT"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"airdrop-ledger"`
}

// Enabled reports whether spans should be exported.
func (o Otel) Enabled() bool {
	return o.Endpoint != ""
}
