package core

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"
	"play4peace-server/internal/entities"
)

type Action string

const (
	Joined Action = "joined"
	Left   Action = "left"
)

type RosterEvent struct {
	GameID    uuid.UUID
	Action    Action
	UserID    string
	Attendees entities.Attendees
	Version   uint64
}

const subscriberBuffer = 16

// Hub fans roster events out to the subscribers of each game.
type Hub struct {
	mu      sync.Mutex
	rooms   map[uuid.UUID]map[chan RosterEvent]struct{}
	dropped *atomic.Int64
}

func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[uuid.UUID]map[chan RosterEvent]struct{}),
		dropped: atomic.NewInt64(0),
	}
}

// Subscribe returns a channel of events for gameID and a function that
// unsubscribes and closes it.
func (h *Hub) Subscribe(gameID uuid.UUID) (<-chan RosterEvent, func()) {
	c := make(chan RosterEvent, subscriberBuffer)

	h.mu.Lock()
	subs, ok := h.rooms[gameID]
	if !ok {
		subs = make(map[chan RosterEvent]struct{})
		h.rooms[gameID] = subs
	}
	subs[c] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return c, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.rooms[gameID], c)
			if len(h.rooms[gameID]) == 0 {
				delete(h.rooms, gameID)
			}
			close(c)
		})
	}
}

// Publish never blocks: a subscriber whose buffer is full misses the event.
func (h *Hub) Publish(ev RosterEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.rooms[ev.GameID] {
		select {
		case c <- ev:
		default:
			h.dropped.Inc()
			log.Warn().Str("game", ev.GameID.String()).Msg("roster subscriber too slow, event dropped")
		}
	}

	if e := log.Debug(); e.Enabled() {
		jj, err := json.Marshal(ev)
		if err != nil {
			log.Err(err).Send()
			return
		}
		e.Bytes("event", jj).Send()
	}
}

func (h *Hub) Subscribers(gameID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[gameID])
}

func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
