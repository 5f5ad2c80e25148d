package snapshot

import (
	"context"
	"errors"
)

// Publisher is implemented by stores whose documents are reachable at a
// public URL.
type Publisher interface {
	PublicURL(seasonID string, kind Kind) string
}

// Mirrored writes every document to a primary store and then to each
// mirror. A mirror failure fails the Put, so the caller reports that kind
// as failed, but the primary copy is already in place.
//
// Reads go to the primary. On a primary miss, mirrors that can read are
// tried in order and a hit is copied back into the primary, so a fresh
// instance with an empty local store serves the last published documents.
type Mirrored struct {
	primary Store
	mirrors []Writer
}

// NewMirrored wraps primary with zero or more mirrors.
func NewMirrored(primary Store, mirrors ...Writer) *Mirrored {
	return &Mirrored{primary: primary, mirrors: mirrors}
}

func (m *Mirrored) Put(ctx context.Context, doc Document) error {
	if err := m.primary.Put(ctx, doc); err != nil {
		return err
	}
	var errs []error
	for _, w := range m.mirrors {
		if err := w.Put(ctx, doc); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Mirrored) Get(ctx context.Context, seasonID string, kind Kind) (Document, error) {
	doc, err := m.primary.Get(ctx, seasonID, kind)
	if !errors.Is(err, ErrNotFound) {
		return doc, err
	}
	for _, w := range m.mirrors {
		r, ok := w.(Reader)
		if !ok {
			continue
		}
		mdoc, merr := r.Get(ctx, seasonID, kind)
		if merr != nil {
			continue
		}
		// Best effort; the mirror copy is served either way.
		_ = m.primary.Put(ctx, mdoc)
		return mdoc, nil
	}
	return doc, err
}

// PublicURL returns the first public URL a mirror publishes the document
// at, or "".
func (m *Mirrored) PublicURL(seasonID string, kind Kind) string {
	for _, w := range m.mirrors {
		if p, ok := w.(Publisher); ok {
			if u := p.PublicURL(seasonID, kind); u != "" {
				return u
			}
		}
	}
	return ""
}
