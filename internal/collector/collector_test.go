package collector_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/huskyhound/nonehound/internal/cache"
	"github.com/huskyhound/nonehound/internal/collector"
	"github.com/huskyhound/nonehound/internal/config"
	"github.com/huskyhound/nonehound/internal/directory"
)

var domainSID = []byte{
	0x01, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
	0x15, 0x00, 0x00, 0x00,
	0x7B, 0x00, 0x00, 0x00,
	0xC8, 0x00, 0x00, 0x00,
	0x2D, 0x01, 0x00, 0x00,
}

func seedCache(t *testing.T, outputPath, domain string) {
	t.Helper()
	w, err := cache.NewWriter(cache.Path(outputPath, domain), 10)
	require.NoError(t, err)

	require.NoError(t, w.Add(directory.Entry{
		DN:       "DC=Example,DC=Local",
		Attrs:    map[string][]string{"objectClass": {"top", "domainDNS"}},
		BinAttrs: map[string][][]byte{"objectSid": {domainSID}},
	}))
	require.NoError(t, w.Add(directory.Entry{
		DN:    "OU=Sales,DC=Example,DC=Local",
		Attrs: map[string][]string{"objectClass": {"top", "organizationalUnit"}},
	}))
	require.NoError(t, w.Finish())
}

func TestRunResumesFromCacheAndEmitsJSON(t *testing.T) {
	r := require.New(t)

	dir := t.TempDir()
	seedCache(t, dir, "EXAMPLE.LOCAL")

	cfg := &config.Config{
		Domain:       "EXAMPLE.LOCAL",
		Username:     "svc",
		Password:     "pw",
		OutputPath:   dir,
		CacheEnabled: true,
		Resume:       true,
	}

	summary, err := collector.Run(context.Background(), cfg, zerolog.Nop(), collector.Options{})
	r.NoError(err)
	r.NotNil(summary)
	r.Equal(2, summary.TotalEntries)
	r.NotEmpty(summary.WrittenFiles)

	found := false
	for _, f := range summary.WrittenFiles {
		if filepath.Base(f) != "" {
			if _, statErr := os.Stat(f); statErr == nil {
				found = true
			}
		}
	}
	r.True(found)
}

func TestRunFailsConfigurationErrorWithoutCredentials(t *testing.T) {
	r := require.New(t)

	cfg := &config.Config{Domain: "EXAMPLE.LOCAL"}
	_, err := collector.Run(context.Background(), cfg, zerolog.Nop(), collector.Options{})
	r.Error(err)

	var cfgErr collector.ConfigError
	r.ErrorAs(err, &cfgErr)
	r.True(cfgErr.Terminal())
}

func TestRunResumeWithoutCacheFileIsProtocolError(t *testing.T) {
	r := require.New(t)

	dir := t.TempDir()
	cfg := &config.Config{
		Domain:       "EXAMPLE.LOCAL",
		Username:     "svc",
		Password:     "pw",
		OutputPath:   dir,
		CacheEnabled: true,
		Resume:       true,
	}

	_, err := collector.Run(context.Background(), cfg, zerolog.Nop(), collector.Options{})
	r.Error(err)

	var protoErr collector.ProtocolError
	r.ErrorAs(err, &protoErr)
	r.True(protoErr.Terminal())
}
