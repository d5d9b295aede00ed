package database

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
	"play4peace-server/internal/entities"
)

const gamesTable = "games"

type gameRow struct {
	Key  string
	Game entities.Game
}

var memorySchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		gamesTable: {
			Name: gamesTable,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Key"},
				},
			},
		},
	},
}

// MemoryGameStore is a process-local game store. go-memdb allows a single
// write transaction at a time, which makes the version check and the write
// one atomic step.
type MemoryGameStore struct {
	db *memdb.MemDB
}

func NewMemoryGameStore() (*MemoryGameStore, error) {
	db, err := memdb.NewMemDB(memorySchema)
	if err != nil {
		return nil, err
	}
	return &MemoryGameStore{db: db}, nil
}

func (s *MemoryGameStore) CreateGame(ctx context.Context, game entities.Game) (entities.Game, error) {
	if err := ctx.Err(); err != nil {
		return entities.Game{}, translate(err)
	}
	if game.ID == uuid.Nil {
		game.ID = uuid.New()
	}
	now := time.Now()
	game.CreatedAt, game.UpdatedAt = now, now
	game.Attendees = append(entities.Attendees{}, game.Attendees...)

	txn := s.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(gamesTable, &gameRow{Key: game.ID.String(), Game: game}); err != nil {
		return entities.Game{}, err
	}
	txn.Commit()
	return game, nil
}

func (s *MemoryGameStore) ReadGame(ctx context.Context, id uuid.UUID) (entities.Game, error) {
	if err := ctx.Err(); err != nil {
		return entities.Game{}, translate(err)
	}
	txn := s.db.Txn(false)
	defer txn.Abort()
	row, err := first(txn, id)
	if err != nil {
		return entities.Game{}, err
	}
	return clone(row.Game), nil
}

func (s *MemoryGameStore) ListGames(ctx context.Context) ([]entities.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, translate(err)
	}
	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(gamesTable, "id")
	if err != nil {
		return nil, err
	}
	var games []entities.Game
	for obj := it.Next(); obj != nil; obj = it.Next() {
		games = append(games, clone(obj.(*gameRow).Game))
	}
	sort.SliceStable(games, func(i, j int) bool {
		if games[i].Date != games[j].Date {
			return games[i].Date < games[j].Date
		}
		return games[i].Time < games[j].Time
	})
	return games, nil
}

func (s *MemoryGameStore) WriteAttendees(ctx context.Context, id uuid.UUID, expectedVersion uint64, attendees entities.Attendees) (entities.Game, error) {
	return s.modify(ctx, id, func(g entities.Game) (entities.Game, error) {
		if g.Version != expectedVersion {
			return g, ErrVersionConflict
		}
		g.Attendees = append(entities.Attendees{}, attendees...)
		return g, nil
	})
}

func (s *MemoryGameStore) UpdateGame(ctx context.Context, id uuid.UUID, update entities.GameUpdate) (entities.Game, error) {
	return s.modify(ctx, id, func(g entities.Game) (entities.Game, error) {
		return update.Apply(g), nil
	})
}

func (s *MemoryGameStore) DeleteGame(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return translate(err)
	}
	txn := s.db.Txn(true)
	defer txn.Abort()
	row, err := first(txn, id)
	if err != nil {
		return err
	}
	if err := txn.Delete(gamesTable, row); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (s *MemoryGameStore) CountGames(ctx context.Context) (int64, error) {
	games, err := s.ListGames(ctx)
	return int64(len(games)), err
}

func (s *MemoryGameStore) modify(ctx context.Context, id uuid.UUID, fn func(entities.Game) (entities.Game, error)) (entities.Game, error) {
	if err := ctx.Err(); err != nil {
		return entities.Game{}, translate(err)
	}
	txn := s.db.Txn(true)
	defer txn.Abort()

	row, err := first(txn, id)
	if err != nil {
		return entities.Game{}, err
	}
	game, err := fn(clone(row.Game))
	if err != nil {
		return entities.Game{}, err
	}
	game.Version = row.Game.Version + 1
	game.UpdatedAt = time.Now()

	if err := txn.Insert(gamesTable, &gameRow{Key: row.Key, Game: game}); err != nil {
		return entities.Game{}, err
	}
	txn.Commit()
	return clone(game), nil
}

func first(txn *memdb.Txn, id uuid.UUID) (*gameRow, error) {
	obj, err := txn.First(gamesTable, "id", id.String())
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, ErrNotFound
	}
	return obj.(*gameRow), nil
}

// clone detaches the roster slice from the stored row.
func clone(g entities.Game) entities.Game {
	g.Attendees = append(entities.Attendees{}, g.Attendees...)
	return g
}
