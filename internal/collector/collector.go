// Package collector wires the connector, directory, cache, parser, resolver,
// and emitter stages into the single A→B→(C)→D→E→F pipeline spec §2
// describes.
package collector

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/huskyhound/nonehound/internal/cache"
	"github.com/huskyhound/nonehound/internal/config"
	"github.com/huskyhound/nonehound/internal/connector"
	"github.com/huskyhound/nonehound/internal/directory"
	"github.com/huskyhound/nonehound/internal/emitter"
	"github.com/huskyhound/nonehound/internal/model"
	"github.com/huskyhound/nonehound/internal/parser"
	"github.com/huskyhound/nonehound/internal/resolver"
)

// Options carries the optional, caller-supplied extension points spec §1
// names by interface only: an integrated-auth binder and a host resolver.
// FilterData is passed to the LDAP filter template when Config.LDAPFilter
// contains "{{".
type Options struct {
	KerberosBinder connector.KerberosBinder
	HostResolver   directory.HostResolver
	FilterData     interface{}
}

// Summary is the per-run accounting spec §9's stage-share table implies and
// the SUPPLEMENT carries forward from the original's final summary table.
type Summary struct {
	RunID          string
	Counts         map[model.ObjectKind]int
	StageDurations map[string]time.Duration
	TotalEntries   int
	TotalWarnings  int
	WrittenFiles   []string
}

// Run executes one full collection pass against cfg, returning a Summary on
// success. Every returned error satisfies Terminal() bool, per spec §7.
func Run(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts Options) (*Summary, error) {
	if err := cfg.Normalize(); err != nil {
		log.Error().Err(err).Msg("configuration invalid")
		return nil, ConfigError{cause: err}
	}

	runID := uuid.New().String()
	log = log.With().Str("run_id", runID).Str("domain", cfg.Domain).Logger()
	log = log.Level(verbosityLevel(cfg.Verbosity))

	summary := &Summary{
		RunID:          runID,
		Counts:         map[model.ObjectKind]int{},
		StageDurations: map[string]time.Duration{},
	}

	p := parser.New(cfg.Domain, log)

	collectStart := time.Now()
	entries, err := collect(ctx, cfg, opts, log, p)
	summary.StageDurations["collect"] = time.Since(collectStart)
	summary.TotalEntries = entries
	summary.TotalWarnings = p.Warnings
	if err != nil {
		log.Error().Err(err).Msg("collection stage failed")
		return nil, err
	}

	resolveStart := time.Now()
	resolver.New(p, log).Resolve()
	summary.StageDurations["resolve"] = time.Since(resolveStart)
	log.Info().Msg("resolver pass complete")

	if opts.HostResolver != nil && cfg.CollectionMode != config.ModeControllerOnly {
		resolveHosts(ctx, p, opts.HostResolver)
	}

	for _, k := range allKinds(p) {
		summary.Counts[k]++
	}

	emitStart := time.Now()
	written, err := emit(cfg, p)
	summary.StageDurations["emit"] = time.Since(emitStart)
	if err != nil {
		log.Error().Err(err).Msg("emitter stage failed")
		return nil, err
	}
	summary.WrittenFiles = written
	log.Info().Strs("files", written).Msg("bundle written")

	return summary, nil
}

// collect runs stage B (or C in resume mode) and feeds every entry to the
// Parser (stage D), writing to a fresh cache (stage C) when enabled.
func collect(ctx context.Context, cfg *config.Config, opts Options, log zerolog.Logger, p *parser.Parser) (int, error) {
	var cacheWriter *cache.Writer
	if cfg.CacheEnabled && !cfg.Resume {
		w, err := cache.NewWriter(cache.Path(cfg.OutputPath, cfg.Domain), cfg.CacheBufferSize)
		if err != nil {
			return 0, ProtocolError{cause: err}
		}
		cacheWriter = w
	}

	feed := func(e directory.Entry) error {
		if cacheWriter != nil {
			if err := cacheWriter.Add(e); err != nil {
				return err
			}
		}
		return p.Parse(e)
	}

	var total int
	var err error
	if cfg.Resume {
		total, err = replayCache(cfg, feed)
	} else {
		total, err = searchDirectory(ctx, cfg, opts, log, feed)
	}

	if cacheWriter != nil {
		if ferr := cacheWriter.Finish(); ferr != nil && err == nil {
			err = ProtocolError{cause: ferr}
		}
	}

	return total, err
}

// searchDirectory binds and walks every naming context DiscoverNamingContexts
// returns, per spec §4.A/§4.B. A cancellation signal aborts the current
// search and drops the bind without writing partial output.
func searchDirectory(ctx context.Context, cfg *config.Config, opts Options, log zerolog.Logger, feed func(directory.Entry) error) (int, error) {
	conn, err := connector.Dial(ctx, cfg)
	if err != nil {
		return 0, ConnectionError{cause: err}
	}
	defer conn.Close()

	if err := connector.Bind(conn, cfg, opts.KerberosBinder); err != nil {
		return 0, ConnectionError{cause: err}
	}
	log.Info().Msg("bind established")

	contexts, err := connector.DiscoverNamingContexts(conn, log)
	if err != nil {
		return 0, ConnectionError{cause: err}
	}

	filter, err := connector.RenderFilter(cfg.LDAPFilter, opts.FilterData)
	if err != nil {
		return 0, ConnectionError{cause: err}
	}

	total := 0
	for _, base := range contexts {
		select {
		case <-ctx.Done():
			return total, CancellationError{cause: ctx.Err()}
		default:
		}

		n, err := directory.Search(ctx, conn, base, filter, log, feed)
		total += n
		if err != nil {
			if ctx.Err() != nil {
				return total, CancellationError{cause: ctx.Err()}
			}
			return total, ConnectionError{cause: err}
		}
	}

	if total == 0 {
		return 0, ProtocolError{cause: directory.EmptyResultError{}}
	}
	return total, nil
}

// replayCache is stage C in reader mode: it requires an existing cache file
// and replaces the live search entirely, per spec §4.C/§6.
func replayCache(cfg *config.Config, feed func(directory.Entry) error) (int, error) {
	r, err := cache.NewReader(cache.Path(cfg.OutputPath, cfg.Domain))
	if err != nil {
		return 0, ProtocolError{cause: err}
	}
	defer r.Close()

	total := 0
	for {
		e, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, ProtocolError{cause: err}
		}
		if err := feed(e); err != nil {
			return total, err
		}
		total++
	}
	return total, nil
}

// resolveHosts calls opts.HostResolver once per distinct computer FQDN,
// populating fqdn_to_ip as an additive Properties entry, per the Host
// resolution extension point.
func resolveHosts(ctx context.Context, p *parser.Parser, hr directory.HostResolver) {
	for _, c := range p.Computers {
		dns, _ := c.Properties["dnshostname"].(string)
		if dns == "" {
			continue
		}
		if ip, ok := hr.Resolve(ctx, strings.ToUpper(dns)); ok {
			c.Properties["fqdn_to_ip"] = ip
		}
	}
}

func verbosityLevel(v int) zerolog.Level {
	switch {
	case v >= 3:
		return zerolog.TraceLevel
	case v == 2:
		return zerolog.DebugLevel
	case v == 1:
		return zerolog.InfoLevel
	default:
		return zerolog.WarnLevel
	}
}

func allKinds(p *parser.Parser) []model.ObjectKind {
	var out []model.ObjectKind
	for range p.Users {
		out = append(out, model.KindUser)
	}
	for range p.Groups {
		out = append(out, model.KindGroup)
	}
	for range p.Computers {
		out = append(out, model.KindComputer)
	}
	for range p.OUs {
		out = append(out, model.KindOU)
	}
	for range p.Domains {
		out = append(out, model.KindDomain)
	}
	for range p.GPOs {
		out = append(out, model.KindGPO)
	}
	for range p.Containers {
		out = append(out, model.KindContainer)
	}
	for range p.AIACAs {
		out = append(out, model.KindAIACA)
	}
	for range p.RootCAs {
		out = append(out, model.KindRootCA)
	}
	for range p.EnterpriseCAs {
		out = append(out, model.KindEnterpriseCA)
	}
	for range p.CertTemplates {
		out = append(out, model.KindCertTemplate)
	}
	for range p.IssuancePolicies {
		out = append(out, model.KindIssuancePolicy)
	}
	for range p.NTAuthStores {
		out = append(out, model.KindNTAuthStore)
	}
	return out
}

// emit runs stage F, converting each typed slice to the []interface{} Kind
// the emitter expects.
func emit(cfg *config.Config, p *parser.Parser) ([]string, error) {
	kinds := emitter.KindsOf(
		toAny(p.Users), toAny(p.Groups), toAny(p.Computers), toAny(p.OUs),
		toAny(p.Domains), toAny(p.GPOs), toAny(p.Containers),
		toAny(p.NTAuthStores), toAny(p.AIACAs), toAny(p.RootCAs),
		toAny(p.EnterpriseCAs), toAny(p.CertTemplates), toAny(p.IssuancePolicies),
	)

	written, err := emitter.Emit(cfg.OutputPath, cfg.Domain, timestamp(), cfg.ArchiveBundle, kinds)
	if err != nil {
		return nil, EmitterError{cause: err}
	}
	return written, nil
}

func toAny[T any](items []T) []interface{} {
	out := make([]interface{}, len(items))
	for i, v := range items {
		out[i] = v
	}
	return out
}

func timestamp() string {
	return time.Now().UTC().Format("20060102150405")
}
