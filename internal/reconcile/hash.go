package reconcile

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"mandata/internal/source"
)

// BallotHash fingerprints a ballot set independent of feed order. Comparing
// it against the stored hash lets a revisit skip the delete+reinsert of tens
// of thousands of ballot rows when nothing changed.
func BallotHash(ballots []source.BallotRecord) string {
	lines := make([]string, 0, len(ballots))
	for _, b := range ballots {
		lines = append(lines, b.VoterExternalID+"="+string(b.Position))
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
