package gen

// Config holds the compilation settings of a graph.
type Config struct {
	// AutoID makes every schema without an explicit primary key behave
	// as if it opted in to the surrogate integer key. Off by default;
	// schemas can still opt in individually.
	AutoID bool
	// Discriminator is the column storing the concrete model name in
	// tables shared through single-table inheritance.
	Discriminator string
}

// Option allows configuring the graph compilation using functional options.
type Option func(*Config)

// AutoID configures the graph to synthesize a surrogate integer primary
// key for every schema that does not declare one.
func AutoID() Option {
	return func(cfg *Config) {
		cfg.AutoID = true
	}
}

// Discriminator overrides the discriminator column name used by
// single-table inheritance.
func Discriminator(column string) Option {
	return func(cfg *Config) {
		cfg.Discriminator = column
	}
}

// NewConfig applies the options on a default configuration.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{Discriminator: DiscriminatorColumn}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Discriminator == "" {
		cfg.Discriminator = DiscriminatorColumn
	}
	return cfg
}
