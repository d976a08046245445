// Command nonehound is a thin example entry point: it builds a Config from
// environment variables and hands it to collector.Run. Argument parsing,
// credential prompting, and DNS resolution are the embedding application's
// job, per spec §1's Non-goals — this binary exists only to exercise the
// core end to end.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/huskyhound/nonehound/internal/collector"
	"github.com/huskyhound/nonehound/internal/config"
	"github.com/huskyhound/nonehound/internal/resolvehost"
)

func main() {
	log := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	cfg := &config.Config{
		Domain:             os.Getenv("NONEHOUND_DOMAIN"),
		Username:           os.Getenv("NONEHOUND_USERNAME"),
		Password:           os.Getenv("NONEHOUND_PASSWORD"),
		ControllerFQDN:     os.Getenv("NONEHOUND_CONTROLLER"),
		UseSecureTransport: os.Getenv("NONEHOUND_LDAPS") == "1",
		OutputPath:         envOr("NONEHOUND_OUTPUT", "."),
		ArchiveBundle:      os.Getenv("NONEHOUND_ARCHIVE") == "1",
		CollectionMode:     config.CollectionMode(envOr("NONEHOUND_MODE", string(config.ModeAll))),
		Verbosity:          envInt("NONEHOUND_VERBOSITY", 0),
	}

	opts := collector.Options{}
	if cfg.CollectionMode != config.ModeControllerOnly {
		opts.HostResolver = resolvehost.New()
	}

	summary, err := collector.Run(context.Background(), cfg, log, opts)
	if err != nil {
		log.Error().Err(err).Msg("collection failed")
		os.Exit(1)
	}

	fmt.Printf("collected %d entries, %d warnings, wrote %d files\n",
		summary.TotalEntries, summary.TotalWarnings, len(summary.WrittenFiles))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
