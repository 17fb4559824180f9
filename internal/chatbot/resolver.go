package chatbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Resolution is the outcome of resolving a category name.
type Resolution struct {
	ID      int64
	Created bool
}

// CategoryResolver finds a user's category by (lower(name), type) or creates it.
//
// The resolver holds no lock: two requests racing on the same new name can both miss the
// lookup. Stores that must not duplicate rows enforce it themselves.
type CategoryResolver struct {
	store CategoryStore
	log   zerolog.Logger
}

func NewCategoryResolver(store CategoryStore, log zerolog.Logger) *CategoryResolver {
	return &CategoryResolver{store: store, log: log}
}

// Resolve returns the id of the user's category called name with type typ, creating it when
// the user has none.
func (r *CategoryResolver) Resolve(ctx context.Context, userID int64, name string, typ TransactionType) (Resolution, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Resolution{}, fmt.Errorf("category name is empty")
	}
	if !typ.Valid() {
		return Resolution{}, fmt.Errorf("invalid category type %q", typ)
	}

	existing, err := r.store.FindCategoriesForUser(ctx, userID)
	if err != nil {
		return Resolution{}, fmt.Errorf("listing categories for user %d: %w", userID, err)
	}
	for _, c := range existing {
		if c.Type == typ && strings.EqualFold(c.Name, name) {
			r.log.Debug().Int64("category_id", c.ID).Str("name", c.Name).Msg("found existing category")
			return Resolution{ID: c.ID}, nil
		}
	}

	id, err := r.store.CreateCategory(ctx, userID, name, typ)
	if err != nil {
		return Resolution{}, fmt.Errorf("creating category %q: %w", name, err)
	}
	r.log.Info().Int64("user_id", userID).Int64("category_id", id).Str("name", name).
		Str("type", string(typ)).Msg("created category")
	return Resolution{ID: id, Created: true}, nil
}
