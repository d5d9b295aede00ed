package core

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmcvetta/randutil"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"golang.org/x/exp/maps"
	"play4peace-server/internal/entities"
)

const photoPrefix = "photos/"

type PhotoRepository interface {
	CreatePhoto(ctx context.Context, p entities.Photo) (entities.Photo, error)
	GetPhoto(ctx context.Context, id uuid.UUID) (entities.Photo, error)
	ListPhotos(ctx context.Context, visibleOnly bool) ([]entities.Photo, error)
	SetWeekVisible(ctx context.Context, weekDate string) (int64, error)
	DeletePhoto(ctx context.Context, id uuid.UUID) error
}

// Photos stores photo objects in fs and their metadata in the repository.
// Uploads stay hidden until their week is made visible.
type Photos struct {
	store   PhotoRepository
	fs      afero.Fs
	baseURL string
	now     func() time.Time
}

func NewPhotos(store PhotoRepository, fs afero.Fs, baseURL string) *Photos {
	return &Photos{store: store, fs: fs, baseURL: strings.TrimSuffix(baseURL, "/"), now: time.Now}
}

func (p *Photos) Upload(ctx context.Context, filename, weekDate, uploadedBy string, r io.Reader) (entities.Photo, error) {
	if err := validateDate(weekDate); err != nil {
		return entities.Photo{}, err
	}
	base := filepath.Base(filepath.Clean("/" + filename))
	if base == "/" || base == "." {
		return entities.Photo{}, fmt.Errorf("%w: %q", ErrInvalidObject, filename)
	}

	suffix, err := randutil.AlphaString(6)
	if err != nil {
		return entities.Photo{}, err
	}
	now := p.now()
	key := fmt.Sprintf("%s%d_%s_%s", photoPrefix, now.UnixNano(), suffix, base)

	if err := afero.WriteReader(p.fs, key, r); err != nil {
		return entities.Photo{}, fmt.Errorf("store object: %w", err)
	}

	photo, err := p.store.CreatePhoto(ctx, entities.Photo{
		ObjectKey:  key,
		URL:        p.baseURL + "/" + key,
		WeekDate:   weekDate,
		UploadedBy: uploadedBy,
		UploadedAt: now,
		Visible:    false,
	})
	if err != nil {
		return entities.Photo{}, multierr.Append(err, p.fs.Remove(key))
	}
	return photo, nil
}

func (p *Photos) MakeWeekVisible(ctx context.Context, weekDate string) (int64, error) {
	if err := validateDate(weekDate); err != nil {
		return 0, err
	}
	return p.store.SetWeekVisible(ctx, weekDate)
}

// Delete removes the object and then the record. A failed object removal is
// logged and does not keep the record.
func (p *Photos) Delete(ctx context.Context, id uuid.UUID) error {
	photo, err := p.store.GetPhoto(ctx, id)
	if err != nil {
		return err
	}
	if err := p.fs.Remove(photo.ObjectKey); err != nil {
		log.Warn().Err(err).Str("key", photo.ObjectKey).Msg("delete photo object")
	}
	return p.store.DeletePhoto(ctx, id)
}

func (p *Photos) ListVisible(ctx context.Context) ([]entities.Photo, error) {
	return p.store.ListPhotos(ctx, true)
}

func (p *Photos) ListAll(ctx context.Context) ([]entities.Photo, error) {
	return p.store.ListPhotos(ctx, false)
}

// Open returns the stored object for key.
func (p *Photos) Open(key string) (afero.File, error) {
	clean := path.Clean(key)
	if !strings.HasPrefix(clean, photoPrefix) || clean != key {
		return nil, fmt.Errorf("%w: %q", ErrInvalidObject, key)
	}
	return p.fs.Open(clean)
}

type PhotoWeek struct {
	WeekDate string
	Photos   []entities.Photo
}

// GroupByWeek buckets photos by week, newest week first. Photo order within a
// week is kept.
func GroupByWeek(photos []entities.Photo) []PhotoWeek {
	byWeek := make(map[string][]entities.Photo)
	for _, ph := range photos {
		byWeek[ph.WeekDate] = append(byWeek[ph.WeekDate], ph)
	}

	weeks := maps.Keys(byWeek)
	sort.Sort(sort.Reverse(sort.StringSlice(weeks)))

	out := make([]PhotoWeek, 0, len(weeks))
	for _, w := range weeks {
		out = append(out, PhotoWeek{WeekDate: w, Photos: byWeek[w]})
	}
	return out
}
