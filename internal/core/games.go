package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"play4peace-server/internal/entities"
)

const DefaultCapacity = 22

// GameRepository is the full game storage used by the admin side.
type GameRepository interface {
	RosterStore
	CreateGame(ctx context.Context, game entities.Game) (entities.Game, error)
	ListGames(ctx context.Context) ([]entities.Game, error)
	UpdateGame(ctx context.Context, id uuid.UUID, update entities.GameUpdate) (entities.Game, error)
	DeleteGame(ctx context.Context, id uuid.UUID) error
	CountGames(ctx context.Context) (int64, error)
}

type NewGame struct {
	Date     string
	Time     string
	Location string
	Capacity int
}

type Games struct {
	store GameRepository
}

func NewGames(store GameRepository) *Games {
	return &Games{store: store}
}

func (g *Games) Create(ctx context.Context, in NewGame) (entities.Game, error) {
	in.Location = strings.TrimSpace(in.Location)
	if in.Capacity == 0 {
		in.Capacity = DefaultCapacity
	}
	if err := validateGame(in.Date, in.Time, in.Location, in.Capacity); err != nil {
		return entities.Game{}, err
	}
	return g.store.CreateGame(ctx, entities.Game{
		Date:      in.Date,
		Time:      in.Time,
		Location:  in.Location,
		Capacity:  in.Capacity,
		Attendees: entities.Attendees{},
	})
}

// Update edits game details. Lowering the capacity below the current roster
// size is allowed; nobody is removed, joins just stay blocked.
func (g *Games) Update(ctx context.Context, id uuid.UUID, update entities.GameUpdate) (entities.Game, error) {
	if err := ValidateGameUpdate(update); err != nil {
		return entities.Game{}, err
	}
	if update.Location != nil {
		loc := strings.TrimSpace(*update.Location)
		update.Location = &loc
	}
	return g.store.UpdateGame(ctx, id, update)
}

func (g *Games) Delete(ctx context.Context, id uuid.UUID) error {
	return g.store.DeleteGame(ctx, id)
}

func (g *Games) Get(ctx context.Context, id uuid.UUID) (entities.Game, error) {
	return g.store.ReadGame(ctx, id)
}

// List returns games in date order.
func (g *Games) List(ctx context.Context) ([]entities.Game, error) {
	return g.store.ListGames(ctx)
}

// ValidateGameUpdate checks every field the update sets.
func ValidateGameUpdate(u entities.GameUpdate) error {
	if u.Empty() {
		return ErrEmptyUpdate
	}
	if u.Date != nil {
		if err := validateDate(*u.Date); err != nil {
			return err
		}
	}
	if u.Time != nil {
		if _, err := time.Parse("15:04", *u.Time); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTime, *u.Time)
		}
	}
	if u.Location != nil && strings.TrimSpace(*u.Location) == "" {
		return ErrInvalidLocation
	}
	if u.Capacity != nil && *u.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	return nil
}

func validateGame(date, clock, location string, capacity int) error {
	return ValidateGameUpdate(entities.GameUpdate{
		Date:     &date,
		Time:     &clock,
		Location: &location,
		Capacity: &capacity,
	})
}

func validateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}

// SpotsLeft is never negative, even for a game whose capacity was lowered
// under its roster size.
func SpotsLeft(game entities.Game) int {
	if n := game.Capacity - len(game.Attendees); n > 0 {
		return n
	}
	return 0
}

func IsFull(game entities.Game) bool {
	return SpotsLeft(game) == 0
}
