package assemblee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mandata/internal/domain"
	"mandata/internal/source"
	id "mandata/pkg/domain"
)

// RollCalls serves the scrutin feed. The index is an HTML page (date, title
// and tallies are only available as text there), while the per-scrutin voter
// breakdown comes from a JSON companion endpoint.
type RollCalls struct {
	client   *source.Client
	indexURL string
	// ballotURL is a printf template with one %d verb for the scrutin number.
	ballotURL string
}

// NewRollCalls builds the roll-call adapter.
func NewRollCalls(client *source.Client, indexURL, ballotURL string) *RollCalls {
	return &RollCalls{client: client, indexURL: indexURL, ballotURL: ballotURL}
}

func (a *RollCalls) Source() id.Source { return id.SourceAssemblee }

var tallyRe = regexp.MustCompile(`Pour\s*:\s*(\d+).*?Contre\s*:\s*(\d+).*?Abstention\s*:\s*(\d+)`)

// List scrapes the index page. Rows that cannot be parsed are skipped: the
// index mixes announcement rows into the table and those carry no number.
func (a *RollCalls) List(ctx context.Context) ([]source.RollCallMeta, error) {
	body, err := a.client.Get(ctx, a.indexURL)
	if err != nil {
		return nil, fmt.Errorf("fetch scrutin index: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse scrutin index: %w", err)
	}

	var metas []source.RollCallMeta
	doc.Find("table.scrutins tr").Each(func(_ int, row *goquery.Selection) {
		numText := strings.TrimSpace(row.Find("td.numero").Text())
		number, err := strconv.Atoi(numText)
		if err != nil {
			return
		}
		meta := source.RollCallMeta{
			Number: number,
			Title:  strings.TrimSpace(row.Find("td.titre").Text()),
		}
		if date, err := source.ParseDate(strings.TrimSpace(row.Find("td.date").Text())); err == nil && date != nil {
			meta.Date = *date
		}
		if m := tallyRe.FindStringSubmatch(row.Find("td.resultat").Text()); m != nil {
			meta.CountFor, _ = strconv.Atoi(m[1])
			meta.CountAgainst, _ = strconv.Atoi(m[2])
			meta.CountAbstain, _ = strconv.Atoi(m[3])
		}
		metas = append(metas, meta)
	})
	return metas, nil
}

// scrutinDetail is the JSON companion's shape: actor references grouped by
// parliamentary group, then by position.
type scrutinDetail struct {
	Numero  int `json:"numero"`
	Groupes []struct {
		Sigle string `json:"sigle"`
		Votes struct {
			Pour       []string `json:"pour"`
			Contre     []string `json:"contre"`
			Abstention []string `json:"abstention"`
			NonVotant  []string `json:"nonVotant"`
		} `json:"votes"`
	} `json:"groupes"`
}

func (a *RollCalls) Ballots(ctx context.Context, number int) ([]source.BallotRecord, error) {
	body, err := a.client.Get(ctx, fmt.Sprintf(a.ballotURL, number))
	if err != nil {
		return nil, fmt.Errorf("fetch scrutin %d: %w", number, err)
	}
	var detail scrutinDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("parse scrutin %d: %w", number, err)
	}

	var ballots []source.BallotRecord
	for _, g := range detail.Groupes {
		for _, ref := range g.Votes.Pour {
			ballots = append(ballots, source.BallotRecord{VoterExternalID: ref, Position: domain.VotePour})
		}
		for _, ref := range g.Votes.Contre {
			ballots = append(ballots, source.BallotRecord{VoterExternalID: ref, Position: domain.VoteContre})
		}
		for _, ref := range g.Votes.Abstention {
			ballots = append(ballots, source.BallotRecord{VoterExternalID: ref, Position: domain.VoteAbstention})
		}
		for _, ref := range g.Votes.NonVotant {
			ballots = append(ballots, source.BallotRecord{VoterExternalID: ref, Position: domain.VoteAbsent})
		}
	}
	return ballots, nil
}
