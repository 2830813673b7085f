package strata

import (
	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

const (
	// DefaultNamespace is the namespace a world runs under when none is
	// configured.
	DefaultNamespace = "world"

	// DefaultLogLevel is applied when STRATA_LOG_LEVEL is unset.
	DefaultLogLevel = "info"

	// DefaultEntityCapacity is the number of entities the entity index
	// preallocates storage for.
	DefaultEntityCapacity = 1024

	// DefaultComponentCapacity is the number of instances each component
	// table preallocates storage for.
	DefaultComponentCapacity = 256
)

var defaultConfig = WorldConfig{
	StrataNamespace:         DefaultNamespace,
	StrataLogLevel:          DefaultLogLevel,
	StrataEntityCapacity:    DefaultEntityCapacity,
	StrataComponentCapacity: DefaultComponentCapacity,
	StatsdAddress:           "",
}

type WorldConfig struct {
	// StrataNamespace labels this world in log context and telemetry tags.
	StrataNamespace string `config:"STRATA_NAMESPACE"`
	// StrataLogLevel must be a level zerolog can parse.
	StrataLogLevel string `config:"STRATA_LOG_LEVEL"`
	// StrataEntityCapacity sizes the entity index up front.
	StrataEntityCapacity int `config:"STRATA_ENTITY_CAPACITY"`
	// StrataComponentCapacity sizes each component table up front.
	StrataComponentCapacity int `config:"STRATA_COMPONENT_CAPACITY"`
	// StatsdAddress enables metric emission when set. Metrics are dropped
	// when it is empty.
	StatsdAddress string `config:"STATSD_ADDRESS"`
}

func loadWorldConfig() (*WorldConfig, error) {
	cfg := defaultConfig
	if err := config.FromEnv().To(&cfg); err != nil {
		return nil, eris.Wrap(err, "failed to load world config from env variables")
	}
	if err := cfg.Validate(); err != nil {
		return nil, eris.Wrap(err, "invalid world config")
	}
	return &cfg, nil
}

// Validate checks that the config is usable.
func (w *WorldConfig) Validate() error {
	if w.StrataNamespace == "" {
		return eris.New("STRATA_NAMESPACE must not be empty")
	}
	if _, err := zerolog.ParseLevel(w.StrataLogLevel); err != nil {
		return eris.Wrapf(err, "STRATA_LOG_LEVEL must be one of the zerolog levels")
	}
	if w.StrataEntityCapacity < 1 {
		return eris.New("STRATA_ENTITY_CAPACITY must be at least 1")
	}
	if w.StrataComponentCapacity < 1 {
		return eris.New("STRATA_COMPONENT_CAPACITY must be at least 1")
	}
	return nil
}

func (w *WorldConfig) setLogLevel() error {
	level, err := zerolog.ParseLevel(w.StrataLogLevel)
	if err != nil {
		return eris.Wrap(err, "failed to parse log level")
	}
	zerolog.SetGlobalLevel(level)
	return nil
}
