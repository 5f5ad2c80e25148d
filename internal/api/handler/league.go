package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/albapepper/league-data/internal/api/respond"
	"github.com/albapepper/league-data/internal/cache"
	"github.com/albapepper/league-data/internal/ranking"
	"github.com/albapepper/league-data/internal/recompute"
	"github.com/albapepper/league-data/internal/snapshot"
	"github.com/albapepper/league-data/internal/stats"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// LeaderBoard is one category's leader list.
type LeaderBoard struct {
	SeasonID      string                `json:"seasonId"`
	Category      string                `json:"category"`
	Label         string                `json:"label"`
	LowerIsBetter bool                  `json:"lowerIsBetter,omitempty"`
	Leaders       []ranking.LeaderEntry `json:"leaders"`
}

// TeamRef identifies a team in nested responses.
type TeamRef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

// TeamDetail is a team's season figures, its place in the standings and
// its roster.
type TeamDetail struct {
	SeasonID    string              `json:"seasonId"`
	Rank        int                 `json:"rank"`
	GamesBehind float64             `json:"gamesBehind"`
	Team        stats.TeamStats     `json:"team"`
	Roster      []stats.PlayerStats `json:"roster"`
}

// PlayerDetail is a player's season figures.
type PlayerDetail struct {
	SeasonID string            `json:"seasonId"`
	Player   stats.PlayerStats `json:"player"`
	Team     *TeamRef          `json:"team,omitempty"`
}

// PlayerSearch is the result of a player name search.
type PlayerSearch struct {
	SeasonID string              `json:"seasonId"`
	Query    string              `json:"query"`
	Players  []stats.PlayerStats `json:"players"`
}

// GetActiveSeason returns the active season.
// @Summary Active season
// @Description Returns the season currently marked active.
// @Tags seasons
// @Produce json
// @Success 200 {object} league.Season
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/season [get]
func (h *Handler) GetActiveSeason(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "seasons:active", cache.TTLSeasonList, func() ([]byte, string, error) {
		season, err := h.src.ActiveSeason(r.Context())
		if err != nil {
			return nil, "", err
		}
		data, err := json.Marshal(season)
		return data, respond.CacheComputed, err
	})
}

// ListSeasons returns every season, newest first.
// @Summary List seasons
// @Tags seasons
// @Produce json
// @Success 200 {array} league.Season
// @Router /api/v1/seasons [get]
func (h *Handler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "seasons:all", cache.TTLSeasonList, func() ([]byte, string, error) {
		seasons, err := h.src.Seasons(r.Context())
		if err != nil {
			return nil, "", err
		}
		data, err := json.Marshal(seasons)
		return data, respond.CacheComputed, err
	})
}

// GetStandings returns the season's standings table.
// @Summary Season standings
// @Description Serves the cached standings document. When none has been written yet the table is computed for this request (X-Cache: COMPUTED) and a recompute is queued.
// @Tags standings
// @Produce json
// @Param seasonID path string true "Season ID"
// @Success 200 {object} recompute.StandingsDocument
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/seasons/{seasonID}/standings [get]
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonID")
	h.serveCached(w, r, seasonKey(seasonID, "standings"), h.ttlFor(r.Context(), seasonID), func() ([]byte, string, error) {
		return h.document(r.Context(), seasonID, snapshot.KindStandings)
	})
}

// GetPlayerLeaders returns every player leader list for a season.
// @Summary All player leader lists
// @Tags leaders
// @Produce json
// @Param seasonID path string true "Season ID"
// @Success 200 {object} recompute.LeadersDocument
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/seasons/{seasonID}/leaders/players [get]
func (h *Handler) GetPlayerLeaders(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonID")
	h.serveCached(w, r, seasonKey(seasonID, "leaders:players"), h.ttlFor(r.Context(), seasonID), func() ([]byte, string, error) {
		return h.document(r.Context(), seasonID, snapshot.KindPlayerLeaders)
	})
}

// GetPlayerCategoryLeaders returns the top five players in one category.
// @Summary Player leaders by category
// @Description Turnovers (tov) rank fewest first; shooting percentages require minimum attempts.
// @Tags leaders
// @Produce json
// @Param seasonID path string true "Season ID"
// @Param category path string true "Category" Enums(ppg, rpg, apg, 3pm, ftm, spg, bpg, tov, fg_pct, 3p_pct, ft_pct)
// @Success 200 {object} LeaderBoard
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/seasons/{seasonID}/leaders/players/{category} [get]
func (h *Handler) GetPlayerCategoryLeaders(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonID")
	cat, err := ranking.LookupPlayerCategory(chi.URLParam(r, "category"))
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_CATEGORY", "Unknown player category", err.Error())
		return
	}
	board := LeaderBoard{SeasonID: seasonID, Category: cat.Key, Label: cat.Label, LowerIsBetter: cat.LowerIsBetter}
	h.serveCached(w, r, seasonKey(seasonID, "leaders:players:", cat.Key), h.ttlFor(r.Context(), seasonID), func() ([]byte, string, error) {
		return h.leaderBoard(r.Context(), snapshot.KindPlayerLeaders, board)
	})
}

// GetTeamLeaders returns every team leader list for a season.
// @Summary All team leader lists
// @Tags leaders
// @Produce json
// @Param seasonID path string true "Season ID"
// @Success 200 {object} recompute.LeadersDocument
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/seasons/{seasonID}/leaders/teams [get]
func (h *Handler) GetTeamLeaders(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonID")
	h.serveCached(w, r, seasonKey(seasonID, "leaders:teams"), h.ttlFor(r.Context(), seasonID), func() ([]byte, string, error) {
		return h.document(r.Context(), seasonID, snapshot.KindTeamLeaders)
	})
}

// GetTeamCategoryLeaders returns the top five teams in one category.
// @Summary Team leaders by category
// @Tags leaders
// @Produce json
// @Param seasonID path string true "Season ID"
// @Param category path string true "Category" Enums(ppg, rpg, apg, spg, bpg)
// @Success 200 {object} LeaderBoard
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/seasons/{seasonID}/leaders/teams/{category} [get]
func (h *Handler) GetTeamCategoryLeaders(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonID")
	cat, err := ranking.LookupTeamCategory(chi.URLParam(r, "category"))
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_CATEGORY", "Unknown team category", err.Error())
		return
	}
	board := LeaderBoard{SeasonID: seasonID, Category: cat.Key, Label: cat.Label}
	h.serveCached(w, r, seasonKey(seasonID, "leaders:teams:", cat.Key), h.ttlFor(r.Context(), seasonID), func() ([]byte, string, error) {
		return h.leaderBoard(r.Context(), snapshot.KindTeamLeaders, board)
	})
}

// GetTeam returns a team's season detail.
// @Summary Team detail
// @Description Season record, averages, standings position and roster with per-game averages.
// @Tags teams
// @Produce json
// @Param seasonID path string true "Season ID"
// @Param teamID path string true "Team ID"
// @Success 200 {object} TeamDetail
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/seasons/{seasonID}/teams/{teamID} [get]
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonID")
	teamID := chi.URLParam(r, "teamID")
	h.serveCached(w, r, seasonKey(seasonID, "team:", teamID), h.ttlFor(r.Context(), seasonID), func() ([]byte, string, error) {
		agg, err := h.orch.Aggregate(r.Context(), seasonID)
		if err != nil {
			return nil, "", err
		}
		team, ok := agg.Team(teamID)
		if !ok {
			return nil, "", fmt.Errorf("team %s: %w", teamID, errNotFound)
		}

		detail := TeamDetail{SeasonID: seasonID, Team: team, Roster: []stats.PlayerStats{}}
		for _, e := range ranking.RankStandings(agg.Teams) {
			if e.TeamID == teamID {
				detail.Rank, detail.GamesBehind = e.Rank, e.GamesBehind
				break
			}
		}
		for _, p := range agg.Players {
			if p.TeamID == teamID {
				detail.Roster = append(detail.Roster, p)
			}
		}
		sort.SliceStable(detail.Roster, func(i, j int) bool {
			return detail.Roster[i].Number < detail.Roster[j].Number
		})

		data, err := json.Marshal(detail)
		return data, respond.CacheComputed, err
	})
}

// GetPlayer returns a player's season detail.
// @Summary Player detail
// @Tags players
// @Produce json
// @Param seasonID path string true "Season ID"
// @Param playerID path string true "Player ID"
// @Success 200 {object} PlayerDetail
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/seasons/{seasonID}/players/{playerID} [get]
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonID")
	playerID := chi.URLParam(r, "playerID")
	h.serveCached(w, r, seasonKey(seasonID, "player:", playerID), h.ttlFor(r.Context(), seasonID), func() ([]byte, string, error) {
		agg, err := h.orch.Aggregate(r.Context(), seasonID)
		if err != nil {
			return nil, "", err
		}
		player, ok := agg.Player(playerID)
		if !ok {
			return nil, "", fmt.Errorf("player %s: %w", playerID, errNotFound)
		}
		detail := PlayerDetail{SeasonID: seasonID, Player: player}
		if team, ok := agg.Team(player.TeamID); ok {
			detail.Team = &TeamRef{ID: team.TeamID, Name: team.Name, ShortName: team.ShortName}
		}
		data, err := json.Marshal(detail)
		return data, respond.CacheComputed, err
	})
}

// SearchPlayers finds players by approximate name.
// @Summary Search players
// @Description Case-insensitive fuzzy match on player names, best matches first. An empty query lists every player by name.
// @Tags players
// @Produce json
// @Param seasonID path string true "Season ID"
// @Param q query string false "Name query"
// @Param limit query int false "Maximum results (default 20, max 100)"
// @Success 200 {object} PlayerSearch
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/seasons/{seasonID}/players [get]
func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonID")
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	limit := defaultSearchLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		limit = min(n, maxSearchLimit)
	}

	agg, err := h.orch.Aggregate(r.Context(), seasonID)
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, PlayerSearch{
		SeasonID: seasonID,
		Query:    query,
		Players:  MatchPlayers(agg.Players, query, limit),
	})
}

// MatchPlayers ranks players by how closely their name matches query.
// Ties keep name order.
func MatchPlayers(players []stats.PlayerStats, query string, limit int) []stats.PlayerStats {
	byName := make([]stats.PlayerStats, len(players))
	copy(byName, players)
	sort.SliceStable(byName, func(i, j int) bool { return byName[i].Name < byName[j].Name })

	out := []stats.PlayerStats{}
	if query == "" {
		out = append(out, byName...)
	} else {
		names := make([]string, len(byName))
		for i, p := range byName {
			names[i] = p.Name
		}
		ranks := fuzzy.RankFindNormalizedFold(query, names)
		sort.Stable(ranks)
		for _, rk := range ranks {
			out = append(out, byName[rk.OriginalIndex])
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// document returns a cached document's bytes, or computes them when no
// document exists yet. A miss also queues a recompute so the next reader
// gets the stored copy.
func (h *Handler) document(ctx context.Context, seasonID string, kind snapshot.Kind) ([]byte, string, error) {
	doc, err := h.docs.Get(ctx, seasonID, kind)
	if err == nil {
		return doc.Payload, respond.CacheStored, nil
	}
	if !errors.Is(err, snapshot.ErrNotFound) {
		h.logger.Warn("cached document read failed, computing", "season", seasonID, "kind", kind, "error", err)
	}

	agg, aggErr := h.orch.Aggregate(ctx, seasonID)
	if aggErr != nil {
		return nil, "", aggErr
	}
	payload, buildErr := recompute.BuildPayload(kind, agg)
	if buildErr != nil {
		return nil, "", buildErr
	}

	if errors.Is(err, snapshot.ErrNotFound) && h.dispatcher != nil {
		if _, err := h.dispatcher.Submit(context.WithoutCancel(ctx), seasonID, "cache-miss"); err != nil {
			h.logger.Warn("queue recompute after cache miss failed", "season", seasonID, "error", err)
		}
	}
	return payload, respond.CacheComputed, nil
}

func (h *Handler) leaderBoard(ctx context.Context, kind snapshot.Kind, board LeaderBoard) ([]byte, string, error) {
	payload, status, err := h.document(ctx, board.SeasonID, kind)
	if err != nil {
		return nil, "", err
	}
	var doc recompute.LeadersDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, "", fmt.Errorf("decode %s document: %w", kind, err)
	}
	board.Leaders = doc.Categories[board.Category]
	if board.Leaders == nil {
		board.Leaders = []ranking.LeaderEntry{}
	}
	data, err := json.Marshal(board)
	return data, status, err
}
