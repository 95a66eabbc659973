package hatvp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mandata/internal/source"
	"mandata/internal/source/hatvp"
	id "mandata/pkg/domain"
)

const feed = "id_declarant;prenom;nom;date_naissance;type_document;id_document;date_publication\n" +
	"H-77;Jean;Dupont;1970-03-15;di;DI-2026-77;2026-01-12\n" +
	"H-78;Claire;Moreau;;dsp;DSP-2026-12;2026-02-03\n"

func TestFetchParsesDeclarations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	adapter := hatvp.New(source.NewClient(), srv.URL)
	assert.Equal(t, id.SourceHATVP, adapter.Source())
	assert.True(t, adapter.Capability().ClosesDeclarations)
	assert.Empty(t, adapter.Capability().ClosesMandates, "declarations never close mandates")

	records, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	o := records[0].Official
	assert.Equal(t, "H-77", o.ExternalID)
	assert.Equal(t, "Jean", o.FirstName)
	require.NotNil(t, o.BirthDate)
	require.NotNil(t, o.Declaration)
	assert.Equal(t, "di", o.Declaration.Kind)
	assert.Equal(t, "DI-2026-77", o.Declaration.ExternalID)
	assert.Equal(t, time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), o.Declaration.PublishedAt)
	assert.Nil(t, o.Mandate, "the list says nothing about offices held")
}
