package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	database "play4peace-server/internal/db"
	"play4peace-server/internal/entities"
)

const DefaultMaxAttempts = 3

// RosterStore is the storage a Roster needs. WriteAttendees must fail with
// database.ErrVersionConflict when the stored version is not expectedVersion.
type RosterStore interface {
	ReadGame(ctx context.Context, id uuid.UUID) (entities.Game, error)
	WriteAttendees(ctx context.Context, id uuid.UUID, expectedVersion uint64, attendees entities.Attendees) (entities.Game, error)
}

// Roster manages who attends a game. Every change is a read-modify-write
// guarded by the game version and retried on conflict, so the capacity
// check always holds against the roster that is actually written.
type Roster struct {
	store       RosterStore
	hub         *Hub
	maxAttempts int
	template    []SeatSlot
}

func NewRoster(store RosterStore, hub *Hub, maxAttempts int) *Roster {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Roster{store: store, hub: hub, maxAttempts: maxAttempts, template: Formation442}
}

// change computes the next roster from a snapshot. An empty action means
// nothing to write.
type change func(game entities.Game, userID string) (entities.Attendees, Action, error)

func join(game entities.Game, userID string) (entities.Attendees, Action, error) {
	if game.Has(userID) {
		return nil, "", nil
	}
	// >= rather than ==: a capacity lowered below the roster size keeps joins blocked.
	if len(game.Attendees) >= game.Capacity {
		return nil, "", ErrCapacityExceeded
	}
	return game.Attendees.With(userID), Joined, nil
}

func leave(game entities.Game, userID string) (entities.Attendees, Action, error) {
	if !game.Has(userID) {
		return nil, "", nil
	}
	return game.Attendees.Without(userID), Left, nil
}

func toggle(game entities.Game, userID string) (entities.Attendees, Action, error) {
	if game.Has(userID) {
		return leave(game, userID)
	}
	return join(game, userID)
}

func (r *Roster) Join(ctx context.Context, gameID uuid.UUID, userID string) (entities.Game, error) {
	return r.apply(ctx, gameID, userID, join)
}

func (r *Roster) Leave(ctx context.Context, gameID uuid.UUID, userID string) (entities.Game, error) {
	return r.apply(ctx, gameID, userID, leave)
}

// Toggle leaves if userID attends, joins otherwise, deciding on the same
// snapshot it writes.
func (r *Roster) Toggle(ctx context.Context, gameID uuid.UUID, userID string) (entities.Game, error) {
	return r.apply(ctx, gameID, userID, toggle)
}

// Roster returns the game with its seat assignment.
func (r *Roster) Roster(ctx context.Context, gameID uuid.UUID) (entities.Game, []RosterEntry, error) {
	game, err := r.store.ReadGame(ctx, gameID)
	if err != nil {
		return entities.Game{}, nil, err
	}
	return game, RosterEntries(game.Attendees, r.template), nil
}

func (r *Roster) Seats(game entities.Game) []RosterEntry {
	return RosterEntries(game.Attendees, r.template)
}

func (r *Roster) apply(ctx context.Context, gameID uuid.UUID, userID string, fn change) (entities.Game, error) {
	for attempt := 1; ; attempt++ {
		game, err := r.store.ReadGame(ctx, gameID)
		if err != nil {
			return entities.Game{}, err
		}

		next, action, err := fn(game, userID)
		if err != nil {
			return entities.Game{}, err
		}
		if action == "" {
			return game, nil
		}

		updated, err := r.store.WriteAttendees(ctx, gameID, game.Version, next)
		if err == nil {
			r.publish(updated, action, userID)
			return updated, nil
		}
		if !errors.Is(err, database.ErrVersionConflict) {
			return entities.Game{}, err
		}
		if attempt >= r.maxAttempts {
			return entities.Game{}, fmt.Errorf("%w: %d attempts: %w", ErrContention, attempt, err)
		}
		log.Debug().Str("game", gameID.String()).Int("attempt", attempt).Msg("roster write conflict, retrying")
	}
}

func (r *Roster) publish(game entities.Game, action Action, userID string) {
	if r.hub == nil {
		return
	}
	r.hub.Publish(RosterEvent{
		GameID:    game.ID,
		Action:    action,
		UserID:    userID,
		Attendees: game.Attendees,
		Version:   game.Version,
	})
}
