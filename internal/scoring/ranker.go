package scoring

import (
	"sort"

	"github.com/MikeSquared-Agency/Compass/internal/store"
)

// Rank orders snapshots by overall score descending and assigns ranks 1..N
// in place. Ties break on initiative id ascending so repeated passes over
// the same population always produce the same ranking.
func Rank(snapshots []*store.ScoreSnapshot) {
	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].OverallScore != snapshots[j].OverallScore {
			return snapshots[i].OverallScore > snapshots[j].OverallScore
		}
		return snapshots[i].InitiativeID.String() < snapshots[j].InitiativeID.String()
	})
	for i, s := range snapshots {
		rank := i + 1
		s.Rank = &rank
	}
}
