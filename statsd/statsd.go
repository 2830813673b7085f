// Package statsd is a helper package that wraps some common statsd methods.
// It hides the datadog dependency so if we decide to migrate away from datadog in the future, we only need to
// edit this single file. For example, the https://pkg.go.dev/github.com/cactus/go-statsd-client/statsd package roughly
// implements datadog's ClientInterface interface.
package statsd

import (
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

var client ddstatsd.ClientInterface = &ddstatsd.NoOpClient{}

func Client() ddstatsd.ClientInterface {
	return client
}

// EmitCompactionStat reports how long one stage of a compaction pass took.
// The stage tag separates the entity index pass from the table passes.
func EmitCompactionStat(start time.Time, stage string) {
	duration := time.Since(start)
	err := Client().Timing("compaction", duration, []string{stage}, 1)
	if err != nil {
		log.Logger.Warn().Msgf("failed to emit compaction stat: %v", err)
	}
}

// EmitReclaimedStat reports how many slots a compaction pass reclaimed.
func EmitReclaimedStat(count int, kind string) {
	err := Client().Count("reclaimed", int64(count), []string{kind}, 1)
	if err != nil {
		log.Logger.Warn().Msgf("failed to emit reclaimed stat: %v", err)
	}
}

// EmitLiveGauge reports the current number of live entities.
func EmitLiveGauge(entities int) {
	err := Client().Gauge("entities.live", float64(entities), nil, 1)
	if err != nil {
		log.Logger.Warn().Msgf("failed to emit live entity gauge: %v", err)
	}
}

func Init(address string, tags []string) error {
	if address == "" {
		return eris.New("address must not be empty")
	}
	opts := []ddstatsd.Option{
		// The statsd namespace is the prefix of all metrics
		ddstatsd.WithNamespace("strata"),
	}
	if len(tags) > 0 {
		opts = append(opts, ddstatsd.WithTags(tags))
	}

	newClient, err := ddstatsd.New(address, opts...)
	if err != nil {
		return err
	}
	// Success! replace the global client
	client = newClient
	return nil
}
