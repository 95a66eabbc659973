// Package judilibre ingests the paginated case-law search export. Each hit
// carries the name of the official it was matched to upstream; the engine
// links it to an existing person or skips it, never minting a person from a
// court record. Classification of the decision (status/category labels) is a
// separate moderation concern; the raw solution label is stored untouched.
package judilibre

import (
	"context"
	"encoding/json"
	"fmt"

	"mandata/internal/source"
	id "mandata/pkg/domain"
)

// Adapter pages through the search export.
type Adapter struct {
	client   *source.Client
	feedURL  string
	pageSize int
}

// New builds the adapter. pageSize <= 0 falls back to the API default of 25.
func New(client *source.Client, feedURL string, pageSize int) *Adapter {
	if pageSize <= 0 {
		pageSize = 25
	}
	return &Adapter{client: client, feedURL: feedURL, pageSize: pageSize}
}

func (a *Adapter) Source() id.Source { return id.SourceJudilibre }

// Capability is empty: a search export is never a roster.
func (a *Adapter) Capability() source.Capability { return source.Capability{} }

type hit struct {
	ID           string `json:"id"`
	Jurisdiction string `json:"jurisdiction"`
	DecisionDate string `json:"decision_date"`
	Summary      string `json:"summary"`
	Solution     string `json:"solution"`
	Names        struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"names"`
}

type page struct {
	Total   int   `json:"total"`
	Results []hit `json:"results"`
}

func (a *Adapter) Fetch(ctx context.Context) ([]source.Record, error) {
	var records []source.Record
	for pageNum := 0; ; pageNum++ {
		u := fmt.Sprintf("%s?page=%d&page_size=%d", a.feedURL, pageNum, a.pageSize)
		body, err := a.client.Get(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", pageNum, err)
		}
		var p page
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("parse page %d: %w", pageNum, err)
		}
		for _, h := range p.Results {
			d := &source.Decision{
				Source:       id.SourceJudilibre,
				ExternalID:   h.ID,
				Jurisdiction: h.Jurisdiction,
				Summary:      h.Summary,
				RawStatus:    h.Solution,
				FirstName:    h.Names.First,
				LastName:     h.Names.Last,
			}
			if decided, err := source.ParseDate(h.DecisionDate); err == nil && decided != nil {
				d.DecidedAt = *decided
			}
			records = append(records, source.DecisionRecord(d))
		}
		if len(p.Results) == 0 || (pageNum+1)*a.pageSize >= p.Total {
			return records, nil
		}
	}
}
