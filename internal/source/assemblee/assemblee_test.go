package assemblee_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mandata/internal/domain"
	"mandata/internal/source"
	"mandata/internal/source/assemblee"
	id "mandata/pkg/domain"
)

const deputesFeed = `[
  {
    "uid": "PA1234",
    "prenom": "Jean",
    "nom": "Dupont",
    "dateNaissance": "1970-03-15",
    "lieuNaissance": "Bordeaux",
    "departement": "33",
    "email": "jean.dupont@assemblee-nationale.fr",
    "profession": "Avocat",
    "urlPhoto": "https://assemblee-nationale.fr/photos/PA1234.jpg",
    "dateDebutMandat": "2024-07-08",
    "groupe": {"libelle": "Groupe Démocrate", "sigle": "DEM"}
  },
  {"uid": "PA5678", "prenom": "Claire", "nom": "Moreau"}
]`

func TestDeputiesFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, deputesFeed)
	}))
	defer srv.Close()

	adapter := assemblee.NewDeputies(source.NewClient(), srv.URL)
	assert.Equal(t, id.SourceAssemblee, adapter.Source())
	assert.Equal(t, domain.MandateDepute, adapter.Capability().ClosesMandates)

	records, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	o := records[0].Official
	assert.Equal(t, "PA1234", o.ExternalID)
	assert.Equal(t, "33", o.Department)
	require.NotNil(t, o.BirthDate)
	assert.Equal(t, time.Date(1970, 3, 15, 0, 0, 0, 0, time.UTC), *o.BirthDate)
	require.NotNil(t, o.Mandate)
	assert.Equal(t, domain.MandateDepute, o.Mandate.Kind)
	assert.Equal(t, "Assemblée nationale", o.Mandate.Institution)
	assert.Equal(t, time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC), o.Mandate.StartDate)
	require.NotNil(t, o.Party)
	assert.Equal(t, "Groupe Démocrate", o.Party.Name)
	assert.Equal(t, "DEM", o.Party.Acronym)

	second := records[1].Official
	assert.Nil(t, second.Party)
	assert.Nil(t, second.BirthDate)
}

const scrutinIndex = `<html><body>
<table class="scrutins">
  <tr><th>Numéro</th><th>Date</th><th>Objet</th><th>Résultat</th></tr>
  <tr>
    <td class="numero"><a href="/scrutins/101">101</a></td>
    <td class="date">10/04/2026</td>
    <td class="titre">Projet de loi de finances</td>
    <td class="resultat">Pour : 350 Contre : 140 Abstention : 22</td>
  </tr>
  <tr><td colspan="4">Séance levée à 20h00</td></tr>
  <tr>
    <td class="numero"><a href="/scrutins/102">102</a></td>
    <td class="date">11/04/2026</td>
    <td class="titre">Motion de censure</td>
    <td class="resultat">Pour : 230 Contre : 290 Abstention : 5</td>
  </tr>
</table>
</body></html>`

const scrutin101 = `{
  "numero": 101,
  "groupes": [
    {"sigle": "DEM", "votes": {"pour": ["PA1234"], "contre": [], "abstention": ["PA5678"], "nonVotant": []}},
    {"sigle": "LR", "votes": {"pour": [], "contre": ["PA9999"], "abstention": [], "nonVotant": ["PA0001"]}}
  ]
}`

func TestRollCallsListAndBallots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/scrutins":
			fmt.Fprint(w, scrutinIndex)
		case "/scrutins/101.json":
			fmt.Fprint(w, scrutin101)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	adapter := assemblee.NewRollCalls(source.NewClient(), srv.URL+"/scrutins", srv.URL+"/scrutins/%d.json")
	assert.Equal(t, id.SourceAssemblee, adapter.Source())

	metas, err := adapter.List(context.Background())
	require.NoError(t, err)
	require.Len(t, metas, 2, "announcement rows are skipped")

	first := metas[0]
	assert.Equal(t, 101, first.Number)
	assert.Equal(t, time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "Projet de loi de finances", first.Title)
	assert.Equal(t, 350, first.CountFor)
	assert.Equal(t, 140, first.CountAgainst)
	assert.Equal(t, 22, first.CountAbstain)

	ballots, err := adapter.Ballots(context.Background(), 101)
	require.NoError(t, err)
	require.Len(t, ballots, 4)
	byVoter := map[string]domain.VotePosition{}
	for _, b := range ballots {
		byVoter[b.VoterExternalID] = b.Position
	}
	assert.Equal(t, domain.VotePour, byVoter["PA1234"])
	assert.Equal(t, domain.VoteAbstention, byVoter["PA5678"])
	assert.Equal(t, domain.VoteContre, byVoter["PA9999"])
	assert.Equal(t, domain.VoteAbsent, byVoter["PA0001"])
}
