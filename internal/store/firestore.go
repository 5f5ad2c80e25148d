package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/albapepper/league-data/internal/league"
)

// Firestore reads records laid out as seasons/{season} with teams, players
// and games subcollections. Document IDs are authoritative; an "id" field
// stored in the document body is overwritten by the document ID.
type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (f *Firestore) seasonRef(seasonID string) *firestore.DocumentRef {
	return f.client.Collection("seasons").Doc(seasonID)
}

func (f *Firestore) ActiveSeason(ctx context.Context) (league.Season, error) {
	iter := f.client.Collection("seasons").Where("isActive", "==", true).Documents(ctx)
	seasons, err := collect(iter, func(snap *firestore.DocumentSnapshot, s *league.Season) { s.ID = snap.Ref.ID })
	if err != nil {
		return league.Season{}, fmt.Errorf("query active season: %w", err)
	}
	return activeOf(seasons)
}

func (f *Firestore) Season(ctx context.Context, seasonID string) (league.Season, error) {
	snap, err := f.seasonRef(seasonID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return league.Season{}, fmt.Errorf("season %s: %w", seasonID, ErrNotFound)
	}
	if err != nil {
		return league.Season{}, fmt.Errorf("get season %s: %w", seasonID, err)
	}
	var s league.Season
	if err := snap.DataTo(&s); err != nil {
		return league.Season{}, fmt.Errorf("decode season %s: %w", seasonID, err)
	}
	s.ID = snap.Ref.ID
	return s, nil
}

func (f *Firestore) Seasons(ctx context.Context) ([]league.Season, error) {
	seasons, err := collect(f.client.Collection("seasons").Documents(ctx),
		func(snap *firestore.DocumentSnapshot, s *league.Season) { s.ID = snap.Ref.ID })
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	sortSeasons(seasons)
	return seasons, nil
}

func (f *Firestore) Teams(ctx context.Context, seasonID string) ([]league.Team, error) {
	teams, err := collect(f.seasonRef(seasonID).Collection("teams").Documents(ctx),
		func(snap *firestore.DocumentSnapshot, t *league.Team) { t.ID = snap.Ref.ID })
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

func (f *Firestore) Players(ctx context.Context, seasonID string) ([]league.Player, error) {
	players, err := collect(f.seasonRef(seasonID).Collection("players").Documents(ctx),
		func(snap *firestore.DocumentSnapshot, p *league.Player) { p.ID = snap.Ref.ID })
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

func (f *Firestore) Games(ctx context.Context, seasonID string) ([]league.Game, error) {
	iter := f.seasonRef(seasonID).Collection("games").OrderBy("date", firestore.Asc).Documents(ctx)
	games, err := collect(iter, func(snap *firestore.DocumentSnapshot, g *league.Game) {
		g.ID = snap.Ref.ID
		if g.SeasonID == "" {
			g.SeasonID = seasonID
		}
	})
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

func (f *Firestore) PutSeason(ctx context.Context, s league.Season) error {
	if _, err := f.seasonRef(s.ID).Set(ctx, s); err != nil {
		return fmt.Errorf("set season %s: %w", s.ID, err)
	}
	return nil
}

func (f *Firestore) PutTeam(ctx context.Context, seasonID string, t league.Team) error {
	if _, err := f.seasonRef(seasonID).Collection("teams").Doc(t.ID).Set(ctx, t); err != nil {
		return fmt.Errorf("set team %s: %w", t.ID, err)
	}
	return nil
}

func (f *Firestore) PutPlayer(ctx context.Context, seasonID string, p league.Player) error {
	if _, err := f.seasonRef(seasonID).Collection("players").Doc(p.ID).Set(ctx, p); err != nil {
		return fmt.Errorf("set player %s: %w", p.ID, err)
	}
	return nil
}

func (f *Firestore) PutGame(ctx context.Context, g league.Game) error {
	if _, err := f.seasonRef(g.SeasonID).Collection("games").Doc(g.ID).Set(ctx, g); err != nil {
		return fmt.Errorf("set game %s: %w", g.ID, err)
	}
	return nil
}

// collect drains a document iterator into typed values. fix runs after
// decoding so callers can copy the document ID into the value.
func collect[T any](iter *firestore.DocumentIterator, fix func(*firestore.DocumentSnapshot, *T)) ([]T, error) {
	defer iter.Stop()
	var out []T
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var v T
		if err := snap.DataTo(&v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", snap.Ref.Path, err)
		}
		if fix != nil {
			fix(snap, &v)
		}
		out = append(out, v)
	}
	return out, nil
}
