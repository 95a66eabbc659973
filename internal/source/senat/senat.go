// Package senat ingests the Sénat open-data export of sitting senators, a
// semicolon-separated CSV with one senator per row. The feed is a complete
// snapshot, so it is authoritative for closing senator mandates.
package senat

import (
	"context"
	"fmt"

	"mandata/internal/domain"
	"mandata/internal/source"
	id "mandata/pkg/domain"
)

// Adapter fetches and parses the senator export.
type Adapter struct {
	client  *source.Client
	feedURL string
}

// New builds the adapter for the given export URL.
func New(client *source.Client, feedURL string) *Adapter {
	return &Adapter{client: client, feedURL: feedURL}
}

func (a *Adapter) Source() id.Source { return id.SourceSenat }

func (a *Adapter) Capability() source.Capability {
	return source.Capability{ClosesMandates: domain.MandateSenateur}
}

// Fetch downloads the full export and normalizes every row. Unparseable
// dates degrade to nil rather than dropping the senator; rows without a name
// are passed through and counted as row errors by the pipeline.
func (a *Adapter) Fetch(ctx context.Context) ([]source.Record, error) {
	body, err := a.client.Get(ctx, a.feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch senators: %w", err)
	}
	table, err := source.ParseCSV(body, ';')
	if err != nil {
		return nil, fmt.Errorf("parse senators: %w", err)
	}

	records := make([]source.Record, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		official := &source.Official{
			Source:     id.SourceSenat,
			ExternalID: row.Get("Matricule"),
			FirstName:  row.Get("Prénom usuel"),
			LastName:   row.Get("Nom usuel"),
			BirthPlace: row.Get("Ville de naissance"),
			Department: row.Get("Département"),
			Email:      row.Get("Courrier électronique"),
			Profession: row.Get("Profession"),
			PhotoURL:   row.Get("URL photo"),
		}
		if birth, err := source.ParseDate(row.Get("Date naissance")); err == nil {
			official.BirthDate = birth
		}

		mandate := &source.MandateInfo{
			Kind:        domain.MandateSenateur,
			Institution: "Sénat",
			Department:  row.Get("Département"),
			Title:       row.Get("Qualité"),
		}
		if start, err := source.ParseDate(row.Get("Date de début de mandat")); err == nil && start != nil {
			mandate.StartDate = *start
		}
		official.Mandate = mandate

		if group := row.Get("Groupe politique"); group != "" {
			official.Party = &source.PartyInfo{
				Name:    group,
				Acronym: row.Get("Sigle groupe"),
			}
		}
		records = append(records, source.OfficialRecord(official))
	}
	return records, nil
}
