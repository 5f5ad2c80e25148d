// Package snapshot persists derived season documents (standings, player
// leaders, team leaders). A document is always replaced whole; there is no
// merge and no incremental patching. Every backend keys documents by
// (season, kind) at the same logical path, seasons/{season}/cached/{kind}.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no document exists for a key.
var ErrNotFound = errors.New("cached document not found")

// Kind names one of the derived document types.
type Kind string

const (
	KindStandings     Kind = "standings"
	KindPlayerLeaders Kind = "playerLeaders"
	KindTeamLeaders   Kind = "teamLeaders"
)

// Kinds lists every document kind in recompute order.
var Kinds = []Kind{KindStandings, KindPlayerLeaders, KindTeamLeaders}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown document kind %q", s)
}

// Path returns the deterministic storage path for a (season, kind) pair.
func Path(seasonID string, kind Kind) string {
	return "seasons/" + seasonID + "/cached/" + string(kind)
}

// Document is one cached projection. Payload is the JSON body served to
// readers; it carries no timestamps so identical inputs produce identical
// bytes. UpdatedAt is backend metadata.
type Document struct {
	SeasonID  string
	Kind      Kind
	Payload   []byte
	UpdatedAt time.Time
}

// Path returns the document's storage path.
func (d Document) Path() string {
	return Path(d.SeasonID, d.Kind)
}

// Writer replaces a document wholesale.
type Writer interface {
	Put(ctx context.Context, doc Document) error
}

// Reader fetches a document, returning ErrNotFound when absent.
type Reader interface {
	Get(ctx context.Context, seasonID string, kind Kind) (Document, error)
}

// Store is a backend that can both read and write documents.
type Store interface {
	Reader
	Writer
}
