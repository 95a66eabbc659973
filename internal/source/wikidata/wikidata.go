// Package wikidata ingests tabular SPARQL bindings from the knowledge graph:
// birth facts for officials and display metadata (color, website) for
// parties. It is the lowest-priority source, fills gaps, and never closes
// anything.
package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"mandata/internal/source"
	id "mandata/pkg/domain"
)

// Adapter runs the configured SPARQL queries against the endpoint.
type Adapter struct {
	client      *source.Client
	endpoint    string
	personQuery string
	partyQuery  string
}

// New builds the adapter. The two queries are configuration, not code: they
// live in the source catalog next to the endpoint URL.
func New(client *source.Client, endpoint, personQuery, partyQuery string) *Adapter {
	return &Adapter{
		client:      client,
		endpoint:    endpoint,
		personQuery: personQuery,
		partyQuery:  partyQuery,
	}
}

func (a *Adapter) Source() id.Source { return id.SourceWikidata }

// Capability is empty: the graph is not a roster and must never trigger
// stale closure.
func (a *Adapter) Capability() source.Capability { return source.Capability{} }

// binding is one SPARQL result cell.
type binding struct {
	Value string `json:"value"`
}

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]binding `json:"bindings"`
	} `json:"results"`
}

func (a *Adapter) Fetch(ctx context.Context) ([]source.Record, error) {
	var records []source.Record

	if a.personQuery != "" {
		rows, err := a.query(ctx, a.personQuery)
		if err != nil {
			return nil, fmt.Errorf("person query: %w", err)
		}
		for _, row := range rows {
			official := &source.Official{
				Source:     id.SourceWikidata,
				ExternalID: entityID(row["person"].Value),
				FirstName:  row["firstName"].Value,
				LastName:   row["lastName"].Value,
				BirthPlace: row["birthPlaceLabel"].Value,
				PhotoURL:   row["image"].Value,
			}
			if birth, err := source.ParseDate(row["birthDate"].Value); err == nil {
				official.BirthDate = birth
			}
			records = append(records, source.OfficialRecord(official))
		}
	}

	if a.partyQuery != "" {
		rows, err := a.query(ctx, a.partyQuery)
		if err != nil {
			return nil, fmt.Errorf("party query: %w", err)
		}
		for _, row := range rows {
			org := &source.Organization{
				Source:     id.SourceWikidata,
				ExternalID: entityID(row["party"].Value),
				Name:       row["partyLabel"].Value,
				Acronym:    row["shortName"].Value,
				Website:    row["website"].Value,
			}
			if rgb := row["rgb"].Value; rgb != "" {
				org.Color = "#" + strings.TrimPrefix(rgb, "#")
			}
			records = append(records, source.OrganizationRecord(org))
		}
	}
	return records, nil
}

func (a *Adapter) query(ctx context.Context, q string) ([]map[string]binding, error) {
	u := a.endpoint + "?format=json&query=" + url.QueryEscape(q)
	body, err := a.client.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	var resp sparqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse bindings: %w", err)
	}
	return resp.Results.Bindings, nil
}

// entityID strips the entity URI down to its Q-identifier.
func entityID(uri string) string {
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}
