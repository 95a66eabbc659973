// Package hatvp ingests the HATVP open-data list of published declarations
// (interest and asset declarations), a semicolon-separated CSV. The list is
// the complete set of currently published documents, so a declaration absent
// from it has been delisted and gets closed.
package hatvp

import (
	"context"
	"fmt"

	"mandata/internal/source"
	id "mandata/pkg/domain"
)

// Adapter fetches and parses the declarations list.
type Adapter struct {
	client  *source.Client
	feedURL string
}

// New builds the adapter for the given export URL.
func New(client *source.Client, feedURL string) *Adapter {
	return &Adapter{client: client, feedURL: feedURL}
}

func (a *Adapter) Source() id.Source { return id.SourceHATVP }

func (a *Adapter) Capability() source.Capability {
	return source.Capability{ClosesDeclarations: true}
}

func (a *Adapter) Fetch(ctx context.Context) ([]source.Record, error) {
	body, err := a.client.Get(ctx, a.feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch declarations: %w", err)
	}
	table, err := source.ParseCSV(body, ';')
	if err != nil {
		return nil, fmt.Errorf("parse declarations: %w", err)
	}

	records := make([]source.Record, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		official := &source.Official{
			Source:     id.SourceHATVP,
			ExternalID: row.Get("id_declarant"),
			FirstName:  row.Get("prenom"),
			LastName:   row.Get("nom"),
		}
		if birth, err := source.ParseDate(row.Get("date_naissance")); err == nil {
			official.BirthDate = birth
		}

		decl := &source.DeclarationInfo{
			Kind:       row.Get("type_document"),
			ExternalID: row.Get("id_document"),
		}
		if published, err := source.ParseDate(row.Get("date_publication")); err == nil && published != nil {
			decl.PublishedAt = *published
		}
		official.Declaration = decl
		records = append(records, source.OfficialRecord(official))
	}
	return records, nil
}
