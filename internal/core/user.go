package core

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"
	"play4peace-server/internal/entities"
)

const (
	UnknownUser  = "Unknown User"
	UsersPerPage = 10
)

type UserRepository interface {
	CreateUser(ctx context.Context, user entities.User) (entities.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (entities.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, update entities.UserUpdate) (entities.User, error)
	TouchUser(ctx context.Context, id uuid.UUID, at time.Time) error
	PageUsers(ctx context.Context, search string, offset, limit int) ([]entities.User, int64, error)
}

type GameLister interface {
	ListGames(ctx context.Context) ([]entities.Game, error)
}

type Users struct {
	store  UserRepository
	games  GameLister
	names  *lru.Cache
	admins map[string]struct{}
}

func NewUsers(store UserRepository, games GameLister, cacheSize int) (*Users, error) {
	names, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Users{store: store, games: games, names: names, admins: map[string]struct{}{}}, nil
}

// GrantAdmin marks names that become admins when they register.
// Matching ignores case and surrounding space.
func (u *Users) GrantAdmin(names ...string) {
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			u.admins[n] = struct{}{}
		}
	}
}

func (u *Users) Register(ctx context.Context, name string) (entities.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return entities.User{}, ErrInvalidName
	}
	_, admin := u.admins[strings.ToLower(name)]
	user, err := u.store.CreateUser(ctx, entities.User{Name: name, IsAdmin: admin, LastActive: time.Now()})
	if err != nil {
		return entities.User{}, err
	}
	u.names.Add(user.ID.String(), user.Name)
	return user, nil
}

func (u *Users) Get(ctx context.Context, id uuid.UUID) (entities.User, error) {
	return u.store.GetUser(ctx, id)
}

func (u *Users) Update(ctx context.Context, id uuid.UUID, update entities.UserUpdate) (entities.User, error) {
	if update.Name == nil && update.IsAdmin == nil && update.PhotoURL == nil {
		return entities.User{}, ErrEmptyUpdate
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return entities.User{}, ErrInvalidName
		}
		update.Name = &name
	}
	user, err := u.store.UpdateUser(ctx, id, update)
	if err != nil {
		return entities.User{}, err
	}
	u.names.Add(user.ID.String(), user.Name)
	return user, nil
}

// Touch records activity; failures are only logged.
func (u *Users) Touch(ctx context.Context, id uuid.UUID) {
	if err := u.store.TouchUser(ctx, id, time.Now()); err != nil {
		log.Warn().Err(err).Str("user", id.String()).Msg("touch user")
	}
}

// DisplayNames resolves user ids to names, looking uncached ids up
// concurrently. Ids that do not resolve map to UnknownUser.
func (u *Users) DisplayNames(ctx context.Context, ids []string) map[string]string {
	names := iter.Map(ids, func(id *string) string {
		return u.displayName(ctx, *id)
	})

	out := make(map[string]string, len(ids))
	for i, id := range ids {
		out[id] = names[i]
	}
	return out
}

func (u *Users) displayName(ctx context.Context, id string) string {
	if name, ok := u.names.Get(id); ok {
		return name.(string)
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return UnknownUser
	}
	user, err := u.store.GetUser(ctx, uid)
	if err != nil {
		return UnknownUser
	}
	u.names.Add(id, user.Name)
	return user.Name
}

type UserPage struct {
	Users      []entities.User
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// Page lists users newest first, filtered by a name search. Pages are 1-indexed.
func (u *Users) Page(ctx context.Context, search string, page int) (UserPage, error) {
	if page < 1 {
		page = 1
	}
	users, total, err := u.store.PageUsers(ctx, search, (page-1)*UsersPerPage, UsersPerPage)
	if err != nil {
		return UserPage{}, err
	}
	return UserPage{
		Users:      users,
		Page:       page,
		PerPage:    UsersPerPage,
		Total:      int(total),
		TotalPages: int((total + UsersPerPage - 1) / UsersPerPage),
	}, nil
}

// GamesAttended counts the games whose roster includes userID.
func (u *Users) GamesAttended(ctx context.Context, userID string) (int, error) {
	games, err := u.games.ListGames(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, g := range games {
		if g.Has(userID) {
			n++
		}
	}
	return n, nil
}
