package internal

// Option configures a Run or RunMCP invocation.
type Option func(*application)

type application struct {
	config *Config
}

// WithConfig supplies the clawmarks configuration. Required; Run and
// RunMCP fail without it.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
