// Package assemblee ingests two Assemblée nationale feeds: the JSON roster
// of sitting deputies (a full snapshot, authoritative for closing deputy
// mandates) and the roll-call vote feed, which pairs an HTML index page with
// a JSON per-scrutin ballot companion.
package assemblee

import (
	"context"
	"encoding/json"
	"fmt"

	"mandata/internal/domain"
	"mandata/internal/source"
	id "mandata/pkg/domain"
)

// Deputies fetches and parses the deputy roster.
type Deputies struct {
	client  *source.Client
	feedURL string
}

// NewDeputies builds the roster adapter.
func NewDeputies(client *source.Client, feedURL string) *Deputies {
	return &Deputies{client: client, feedURL: feedURL}
}

func (a *Deputies) Source() id.Source { return id.SourceAssemblee }

func (a *Deputies) Capability() source.Capability {
	return source.Capability{ClosesMandates: domain.MandateDepute}
}

type depute struct {
	UID           string `json:"uid"`
	Prenom        string `json:"prenom"`
	Nom           string `json:"nom"`
	DateNaissance string `json:"dateNaissance"`
	LieuNaissance string `json:"lieuNaissance"`
	Departement   string `json:"departement"`
	Email         string `json:"email"`
	Profession    string `json:"profession"`
	URLPhoto      string `json:"urlPhoto"`
	DateDebut     string `json:"dateDebutMandat"`
	Groupe        struct {
		Libelle string `json:"libelle"`
		Sigle   string `json:"sigle"`
	} `json:"groupe"`
}

func (a *Deputies) Fetch(ctx context.Context) ([]source.Record, error) {
	body, err := a.client.Get(ctx, a.feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch deputies: %w", err)
	}
	var deputes []depute
	if err := json.Unmarshal(body, &deputes); err != nil {
		return nil, fmt.Errorf("parse deputies: %w", err)
	}

	records := make([]source.Record, 0, len(deputes))
	for _, d := range deputes {
		official := &source.Official{
			Source:     id.SourceAssemblee,
			ExternalID: d.UID,
			FirstName:  d.Prenom,
			LastName:   d.Nom,
			BirthPlace: d.LieuNaissance,
			Department: d.Departement,
			Email:      d.Email,
			Profession: d.Profession,
			PhotoURL:   d.URLPhoto,
		}
		if birth, err := source.ParseDate(d.DateNaissance); err == nil {
			official.BirthDate = birth
		}
		mandate := &source.MandateInfo{
			Kind:        domain.MandateDepute,
			Institution: "Assemblée nationale",
			Department:  d.Departement,
			Title:       "Député",
		}
		if start, err := source.ParseDate(d.DateDebut); err == nil && start != nil {
			mandate.StartDate = *start
		}
		official.Mandate = mandate
		if d.Groupe.Libelle != "" {
			official.Party = &source.PartyInfo{
				Name:    d.Groupe.Libelle,
				Acronym: d.Groupe.Sigle,
			}
		}
		records = append(records, source.OfficialRecord(official))
	}
	return records, nil
}
