// Package gouvernement ingests the flat JSON list of current government
// members. The feed is a complete snapshot of sitting ministers, so it is
// authoritative for closing minister mandates.
package gouvernement

import (
	"context"
	"encoding/json"
	"fmt"

	"mandata/internal/domain"
	"mandata/internal/source"
	id "mandata/pkg/domain"
)

// Adapter fetches and parses the government members feed.
type Adapter struct {
	client  *source.Client
	feedURL string
}

// New builds the adapter for the given feed URL.
func New(client *source.Client, feedURL string) *Adapter {
	return &Adapter{client: client, feedURL: feedURL}
}

func (a *Adapter) Source() id.Source { return id.SourceGouvernement }

func (a *Adapter) Capability() source.Capability {
	return source.Capability{ClosesMandates: domain.MandateMinistre}
}

// member is the feed's row shape. Absent keys decode to zero values.
type member struct {
	ID            string `json:"id"`
	Prenom        string `json:"prenom"`
	Nom           string `json:"nom"`
	Fonction      string `json:"fonction"`
	Ministere     string `json:"ministere"`
	DateNaissance string `json:"date_naissance"`
	DateDebut     string `json:"date_nomination"`
	PhotoURL      string `json:"photo_url"`
}

func (a *Adapter) Fetch(ctx context.Context) ([]source.Record, error) {
	body, err := a.client.Get(ctx, a.feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch government: %w", err)
	}
	var members []member
	if err := json.Unmarshal(body, &members); err != nil {
		return nil, fmt.Errorf("parse government: %w", err)
	}

	records := make([]source.Record, 0, len(members))
	for _, m := range members {
		official := &source.Official{
			Source:     id.SourceGouvernement,
			ExternalID: m.ID,
			FirstName:  m.Prenom,
			LastName:   m.Nom,
			PhotoURL:   m.PhotoURL,
		}
		if birth, err := source.ParseDate(m.DateNaissance); err == nil {
			official.BirthDate = birth
		}
		mandate := &source.MandateInfo{
			Kind:        domain.MandateMinistre,
			Institution: "Gouvernement",
			Title:       m.Fonction,
		}
		if m.Ministere != "" {
			mandate.Title = m.Fonction + ", " + m.Ministere
		}
		if start, err := source.ParseDate(m.DateDebut); err == nil && start != nil {
			mandate.StartDate = *start
		}
		official.Mandate = mandate
		records = append(records, source.OfficialRecord(official))
	}
	return records, nil
}
