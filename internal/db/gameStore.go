package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"play4peace-server/internal/entities"
)

// GameStore keeps games in sqlite. Roster writes are conditional on the
// row version, so concurrent writers of the same game cannot both win.
type GameStore struct {
	db *gorm.DB
}

func NewGameStore(db *gorm.DB) *GameStore {
	return &GameStore{db: db}
}

func (s *GameStore) CreateGame(ctx context.Context, game entities.Game) (entities.Game, error) {
	if game.ID == uuid.Nil {
		game.ID = uuid.New()
	}
	if game.Attendees == nil {
		game.Attendees = entities.Attendees{}
	}
	tx := s.db.WithContext(ctx).Create(&game)
	return game, translate(tx.Error)
}

func (s *GameStore) ReadGame(ctx context.Context, id uuid.UUID) (entities.Game, error) {
	var game entities.Game
	tx := s.db.WithContext(ctx).First(&game, "id = ?", id)
	return game, translate(tx.Error)
}

func (s *GameStore) ListGames(ctx context.Context) ([]entities.Game, error) {
	var games []entities.Game
	tx := s.db.WithContext(ctx).Order("date asc").Order("time asc").Find(&games)
	return games, translate(tx.Error)
}

func (s *GameStore) WriteAttendees(ctx context.Context, id uuid.UUID, expectedVersion uint64, attendees entities.Attendees) (entities.Game, error) {
	return s.conditionalUpdate(ctx, id, expectedVersion, map[string]interface{}{"attendees": attendees})
}

// UpdateGame applies the update unconditionally but still bumps the version,
// so an in-flight roster write made against the old details is rejected.
func (s *GameStore) UpdateGame(ctx context.Context, id uuid.UUID, update entities.GameUpdate) (entities.Game, error) {
	cols := update.Columns()
	cols["version"] = gorm.Expr("version + 1")

	tx := s.db.WithContext(ctx).Model(&entities.Game{}).Where("id = ?", id).Updates(cols)
	if tx.Error != nil {
		return entities.Game{}, translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return entities.Game{}, ErrNotFound
	}
	return s.ReadGame(ctx, id)
}

func (s *GameStore) DeleteGame(ctx context.Context, id uuid.UUID) error {
	tx := s.db.WithContext(ctx).Delete(&entities.Game{}, "id = ?", id)
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GameStore) CountGames(ctx context.Context) (int64, error) {
	var n int64
	tx := s.db.WithContext(ctx).Model(&entities.Game{}).Count(&n)
	return n, translate(tx.Error)
}

func (s *GameStore) conditionalUpdate(ctx context.Context, id uuid.UUID, expectedVersion uint64, cols map[string]interface{}) (entities.Game, error) {
	cols["version"] = gorm.Expr("version + 1")

	tx := s.db.WithContext(ctx).Model(&entities.Game{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(cols)
	if tx.Error != nil {
		return entities.Game{}, translate(tx.Error)
	}

	if tx.RowsAffected == 0 {
		var n int64
		if err := s.db.WithContext(ctx).Model(&entities.Game{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return entities.Game{}, translate(err)
		}
		if n == 0 {
			return entities.Game{}, ErrNotFound
		}
		return entities.Game{}, ErrVersionConflict
	}

	return s.ReadGame(ctx, id)
}
