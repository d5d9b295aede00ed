package core

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"
	"go.uber.org/multierr"
)

type SeedAnnouncement struct {
	Title   string
	Content string
	Author  string
}

type SeedData struct {
	Games         []NewGame
	Announcements []SeedAnnouncement
}

// DefaultSeed is what a fresh install starts with: the next two Saturday
// morning games and a welcome note.
func DefaultSeed(now time.Time) SeedData {
	daysToSaturday := (int(time.Saturday) - int(now.Weekday()) + 7) % 7
	next := now.AddDate(0, 0, daysToSaturday)

	return SeedData{
		Games: []NewGame{
			{Date: next.Format("2006-01-02"), Time: "10:00", Location: "Community Football Pitch", Capacity: DefaultCapacity},
			{Date: next.AddDate(0, 0, 7).Format("2006-01-02"), Time: "10:00", Location: "Community Football Pitch", Capacity: DefaultCapacity},
		},
		Announcements: []SeedAnnouncement{{
			Title:   "Welcome to Play4Peace!",
			Content: "Thanks for joining our football community. Book your spot for upcoming games and stay tuned for announcements!",
			Author:  "Admin",
		}},
	}
}

func LoadSeed(path string) (SeedData, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return SeedData{}, err
	}
	var data SeedData
	if err := json.Unmarshal(bytes, &data); err != nil {
		return SeedData{}, err
	}
	return data, nil
}

// Seed fills empty tables from data. Tables that already hold rows are left alone.
func Seed(ctx context.Context, games *Games, announcements *Announcements, data SeedData) error {
	var (
		mu   sync.Mutex
		errs error
	)
	collect := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		errs = multierr.Append(errs, err)
		mu.Unlock()
	}

	n, err := games.store.CountGames(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		iter.ForEach(data.Games, func(g *NewGame) {
			_, err := games.Create(ctx, *g)
			collect(err)
		})
		log.Info().Int("games", len(data.Games)).Msg("seeded games")
	}

	n, err = announcements.store.CountAnnouncements(ctx)
	if err != nil {
		return multierr.Append(errs, err)
	}
	if n == 0 {
		iter.ForEach(data.Announcements, func(a *SeedAnnouncement) {
			_, err := announcements.Create(ctx, a.Title, a.Content, a.Author)
			collect(err)
		})
		log.Info().Int("announcements", len(data.Announcements)).Msg("seeded announcements")
	}

	return errs
}
