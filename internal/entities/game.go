package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Game struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Date      string `gorm:"index"`
	Time      string
	Location  string
	Capacity  int
	Attendees Attendees `gorm:"type:text"`
	Version   uint64    `gorm:"not null;default:0"`
}

// Has reports whether userID is on the roster.
func (g Game) Has(userID string) bool {
	return g.Attendees.Index(userID) >= 0
}

// Attendees is the ordered roster of a game. Order is join order.
type Attendees []string

func (a Attendees) Index(userID string) int {
	for i, id := range a {
		if id == userID {
			return i
		}
	}
	return -1
}

// Without returns a copy of a with userID removed.
func (a Attendees) Without(userID string) Attendees {
	out := make(Attendees, 0, len(a))
	for _, id := range a {
		if id != userID {
			out = append(out, id)
		}
	}
	return out
}

// With returns a copy of a with userID appended.
func (a Attendees) With(userID string) Attendees {
	out := make(Attendees, len(a), len(a)+1)
	copy(out, a)
	return append(out, userID)
}

func (a Attendees) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *Attendees) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = Attendees{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("attendees: unsupported column type %T", src)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return err
	}
	*a = ids
	return nil
}

// GameUpdate is a partial edit of a game's details. Nil fields are left untouched.
type GameUpdate struct {
	Date     *string
	Time     *string
	Location *string
	Capacity *int
}

func (u GameUpdate) Empty() bool {
	return u.Date == nil && u.Time == nil && u.Location == nil && u.Capacity == nil
}

// Columns maps the set fields to their column names.
func (u GameUpdate) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if u.Date != nil {
		cols["date"] = *u.Date
	}
	if u.Time != nil {
		cols["time"] = *u.Time
	}
	if u.Location != nil {
		cols["location"] = *u.Location
	}
	if u.Capacity != nil {
		cols["capacity"] = *u.Capacity
	}
	return cols
}

// Apply returns g with the set fields of u copied over.
func (u GameUpdate) Apply(g Game) Game {
	if u.Date != nil {
		g.Date = *u.Date
	}
	if u.Time != nil {
		g.Time = *u.Time
	}
	if u.Location != nil {
		g.Location = *u.Location
	}
	if u.Capacity != nil {
		g.Capacity = *u.Capacity
	}
	return g
}
