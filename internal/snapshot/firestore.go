package snapshot

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// firestoreDoc is the stored shape. The payload is kept as a string so the
// served bytes do not depend on Firestore's map encoding.
type firestoreDoc struct {
	SeasonID  string    `firestore:"seasonId"`
	Kind      string    `firestore:"kind"`
	Payload   string    `firestore:"payload"`
	UpdatedAt time.Time `firestore:"updatedAt,serverTimestamp"`
}

// Firestore stores documents at seasons/{season}/cached/{kind}.
type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (f *Firestore) Put(ctx context.Context, doc Document) error {
	// Set without MergeAll overwrites the whole document.
	_, err := f.client.Doc(doc.Path()).Set(ctx, firestoreDoc{
		SeasonID: doc.SeasonID,
		Kind:     string(doc.Kind),
		Payload:  string(doc.Payload),
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", doc.Path(), err)
	}
	return nil
}

func (f *Firestore) Get(ctx context.Context, seasonID string, kind Kind) (Document, error) {
	path := Path(seasonID, kind)
	snap, err := f.client.Doc(path).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s: %w", path, err)
	}
	var stored firestoreDoc
	if err := snap.DataTo(&stored); err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return Document{
		SeasonID:  seasonID,
		Kind:      kind,
		Payload:   []byte(stored.Payload),
		UpdatedAt: stored.UpdatedAt,
	}, nil
}
