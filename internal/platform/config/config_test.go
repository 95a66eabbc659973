package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mandata/internal/platform/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "mandata.changes", cfg.KafkaTopic)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MANDATA_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources:
  senat:
    url: https://data.senat.fr/senateurs.csv
    min_interval: 500ms
  assemblee:
    url: https://data.assemblee-nationale.fr/deputes.json
    ballot_url: https://data.assemblee-nationale.fr/scrutins/%d.json
  judilibre:
    url: https://api.judilibre.fr/export
    page_size: 50
`), 0o600))

	catalog, err := config.LoadCatalog(path)
	require.NoError(t, err)

	senat, err := catalog.Feed("senat")
	require.NoError(t, err)
	assert.Equal(t, "https://data.senat.fr/senateurs.csv", senat.URL)
	assert.Equal(t, 500*time.Millisecond, senat.MinInterval)

	judilibre, err := catalog.Feed("judilibre")
	require.NoError(t, err)
	assert.Equal(t, 50, judilibre.PageSize)

	_, err = catalog.Feed("unknown")
	require.Error(t, err)
}

// The shipped catalog must select the SPARQL binding names the wikidata
// adapter reads; a drifted query silently yields empty names and every
// person row fails validation.
func TestShippedCatalogWikidataBindings(t *testing.T) {
	catalog, err := config.LoadCatalog(filepath.Join("..", "..", "..", "sources.yml"))
	require.NoError(t, err)

	wikidata, err := catalog.Feed("wikidata")
	require.NoError(t, err)

	for _, binding := range []string{"?person", "?firstName", "?lastName", "?birthDate", "?birthPlaceLabel", "?image"} {
		assert.Contains(t, wikidata.PersonQuery, binding)
	}
	for _, binding := range []string{"?party", "?partyLabel", "?shortName", "?rgb", "?website"} {
		assert.Contains(t, wikidata.PartyQuery, binding)
	}
}
