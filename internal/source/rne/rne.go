// Package rne ingests the Répertoire National des Élus export of mayors, a
// comma-separated CSV of roughly 35 thousand rows. The export carries no
// stable per-person identifier, so resolution relies entirely on the name
// index and stale detection falls back to the mandate's natural key.
package rne

import (
	"context"
	"fmt"

	"mandata/internal/domain"
	"mandata/internal/source"
	id "mandata/pkg/domain"
)

// Adapter fetches and parses the mayors export.
type Adapter struct {
	client  *source.Client
	feedURL string
}

// New builds the adapter for the given export URL.
func New(client *source.Client, feedURL string) *Adapter {
	return &Adapter{client: client, feedURL: feedURL}
}

func (a *Adapter) Source() id.Source { return id.SourceRNE }

func (a *Adapter) Capability() source.Capability {
	return source.Capability{ClosesMandates: domain.MandateMaire}
}

func (a *Adapter) Fetch(ctx context.Context) ([]source.Record, error) {
	body, err := a.client.Get(ctx, a.feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch mayors: %w", err)
	}
	table, err := source.ParseCSV(body, ',')
	if err != nil {
		return nil, fmt.Errorf("parse mayors: %w", err)
	}

	records := make([]source.Record, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		official := &source.Official{
			Source:     id.SourceRNE,
			FirstName:  row.Get("Prénom de l'élu"),
			LastName:   row.Get("Nom de l'élu"),
			Department: row.Get("Code du département"),
			Profession: row.Get("Libellé de la profession"),
		}
		if birth, err := source.ParseDate(row.Get("Date de naissance")); err == nil {
			official.BirthDate = birth
		}

		mandate := &source.MandateInfo{
			Kind:        domain.MandateMaire,
			Institution: row.Get("Libellé de la commune"),
			Department:  row.Get("Code du département"),
			Title:       "Maire",
		}
		if start, err := source.ParseDate(row.Get("Date de début du mandat")); err == nil && start != nil {
			mandate.StartDate = *start
		}
		official.Mandate = mandate
		records = append(records, source.OfficialRecord(official))
	}
	return records, nil
}
