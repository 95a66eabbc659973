package senat_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mandata/internal/domain"
	"mandata/internal/source"
	"mandata/internal/source/senat"
	id "mandata/pkg/domain"
)

const feed = "Matricule;Qualité;Nom usuel;Prénom usuel;Date naissance;Ville de naissance;Département;Groupe politique;Sigle groupe;Courrier électronique;Profession;Date de début de mandat;URL photo\n" +
	"08015R;Sénateur;Dupont;Jean;1970-03-15;Bordeaux;33;Groupe Les Républicains;LR;j.dupont@senat.fr;Avocat;2023-10-02;https://senat.fr/photos/08015r.jpg\n" +
	"12044T;Sénatrice;Moreau;Claire;13/07/1965;Lyon;69;;;;;2023-10-02;\n"

func TestFetchParsesExport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	adapter := senat.New(source.NewClient(), srv.URL)
	assert.Equal(t, id.SourceSenat, adapter.Source())
	assert.Equal(t, domain.MandateSenateur, adapter.Capability().ClosesMandates)

	records, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	require.Equal(t, source.KindOfficial, first.Kind)
	o := first.Official
	assert.Equal(t, "08015R", o.ExternalID)
	assert.Equal(t, "Jean", o.FirstName)
	assert.Equal(t, "Dupont", o.LastName)
	assert.Equal(t, "33", o.Department)
	assert.Equal(t, "Avocat", o.Profession)
	require.NotNil(t, o.BirthDate)
	assert.Equal(t, time.Date(1970, 3, 15, 0, 0, 0, 0, time.UTC), *o.BirthDate)
	require.NotNil(t, o.Mandate)
	assert.Equal(t, domain.MandateSenateur, o.Mandate.Kind)
	assert.Equal(t, "Sénat", o.Mandate.Institution)
	assert.Equal(t, time.Date(2023, 10, 2, 0, 0, 0, 0, time.UTC), o.Mandate.StartDate)
	require.NotNil(t, o.Party)
	assert.Equal(t, "Groupe Les Républicains", o.Party.Name)
	assert.Equal(t, "LR", o.Party.Acronym)

	// French date format and absent optionals.
	second := records[1].Official
	require.NotNil(t, second.BirthDate)
	assert.Equal(t, time.Date(1965, 7, 13, 0, 0, 0, 0, time.UTC), *second.BirthDate)
	assert.Nil(t, second.Party)
	assert.Empty(t, second.PhotoURL)
}

func TestFetchSurfacesHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	adapter := senat.New(source.NewClient(), srv.URL)
	_, err := adapter.Fetch(context.Background())
	require.Error(t, err)
}
