package recompute

import (
	"encoding/json"
	"fmt"

	"github.com/albapepper/league-data/internal/ranking"
	"github.com/albapepper/league-data/internal/snapshot"
	"github.com/albapepper/league-data/internal/stats"
)

// StandingsDocument is the body of a cached standings document.
type StandingsDocument struct {
	SeasonID  string                  `json:"seasonId"`
	Standings []ranking.StandingEntry `json:"standings"`
}

// LeadersDocument is the body of a cached player or team leaders
// document. Categories is keyed by category key; encoding/json writes map
// keys sorted, so the bytes are stable.
type LeadersDocument struct {
	SeasonID   string                           `json:"seasonId"`
	Categories map[string][]ranking.LeaderEntry `json:"categories"`
}

// BuildPayload ranks agg for one document kind and encodes it.
func BuildPayload(kind snapshot.Kind, agg stats.Result) ([]byte, error) {
	var body any
	switch kind {
	case snapshot.KindStandings:
		body = StandingsDocument{
			SeasonID:  agg.SeasonID,
			Standings: ranking.RankStandings(agg.Teams),
		}
	case snapshot.KindPlayerLeaders:
		body = LeadersDocument{
			SeasonID:   agg.SeasonID,
			Categories: ranking.AllPlayerLeaders(agg.Players),
		}
	case snapshot.KindTeamLeaders:
		body = LeadersDocument{
			SeasonID:   agg.SeasonID,
			Categories: ranking.AllTeamLeaders(agg.Teams),
		}
	default:
		return nil, fmt.Errorf("build payload: unknown kind %q", kind)
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	return data, nil
}
