package domain

import (
	dErrors "mandata/pkg/domain-errors"
)

// Source identifies one integrated external feed. The enumeration is closed:
// an ExternalIdentifier is meaningless without a known source, so unknown
// values are rejected at trust boundaries.
type Source string

const (
	SourceAssemblee    Source = "assemblee"
	SourceSenat        Source = "senat"
	SourceGouvernement Source = "gouvernement"
	SourceRNE          Source = "rne"
	SourceHATVP        Source = "hatvp"
	SourceWikidata     Source = "wikidata"
	SourceJudilibre    Source = "judilibre"
	SourceManual       Source = "manual"
)

// validSources is the single source of truth for the closed enumeration.
var validSources = map[Source]bool{
	SourceAssemblee:    true,
	SourceSenat:        true,
	SourceGouvernement: true,
	SourceRNE:          true,
	SourceHATVP:        true,
	SourceWikidata:     true,
	SourceJudilibre:    true,
	SourceManual:       true,
}

// Sources lists every syncable source in a stable order. SourceManual is
// excluded: it never has a feed, it only tags hand-entered values.
func Sources() []Source {
	return []Source{
		SourceAssemblee,
		SourceSenat,
		SourceGouvernement,
		SourceRNE,
		SourceHATVP,
		SourceWikidata,
		SourceJudilibre,
	}
}

// ParseSource constructs a Source from external input.
func ParseSource(s string) (Source, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "source cannot be empty")
	}
	src := Source(s)
	if !validSources[src] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown source %q", s)
	}
	return src, nil
}

func (s Source) IsValid() bool {
	return validSources[s]
}

func (s Source) String() string {
	return string(s)
}
