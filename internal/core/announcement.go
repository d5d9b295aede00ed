package core

import (
	"bytes"
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"play4peace-server/internal/entities"
)

type AnnouncementRepository interface {
	CreateAnnouncement(ctx context.Context, a entities.Announcement) (entities.Announcement, error)
	ListAnnouncements(ctx context.Context) ([]entities.Announcement, error)
	UpdateAnnouncement(ctx context.Context, id uuid.UUID, update entities.AnnouncementUpdate) (entities.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id uuid.UUID) error
	CountAnnouncements(ctx context.Context) (int64, error)
}

// Raw HTML in the source is dropped, goldmark's default.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

type Announcements struct {
	store AnnouncementRepository
}

func NewAnnouncements(store AnnouncementRepository) *Announcements {
	return &Announcements{store: store}
}

func (a *Announcements) Create(ctx context.Context, title, content, author string) (entities.Announcement, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" {
		return entities.Announcement{}, ErrEmptyTitle
	}
	if content == "" {
		return entities.Announcement{}, ErrEmptyContent
	}
	if author = strings.TrimSpace(author); author == "" {
		author = "Admin"
	}
	return a.store.CreateAnnouncement(ctx, entities.Announcement{Title: title, Content: content, Author: author})
}

func (a *Announcements) Update(ctx context.Context, id uuid.UUID, update entities.AnnouncementUpdate) (entities.Announcement, error) {
	if update.Title == nil && update.Content == nil {
		return entities.Announcement{}, ErrEmptyUpdate
	}
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return entities.Announcement{}, ErrEmptyTitle
	}
	if update.Content != nil && strings.TrimSpace(*update.Content) == "" {
		return entities.Announcement{}, ErrEmptyContent
	}
	return a.store.UpdateAnnouncement(ctx, id, update)
}

func (a *Announcements) Delete(ctx context.Context, id uuid.UUID) error {
	return a.store.DeleteAnnouncement(ctx, id)
}

// List returns announcements newest first.
func (a *Announcements) List(ctx context.Context) ([]entities.Announcement, error) {
	return a.store.ListAnnouncements(ctx)
}

// RenderContent converts Markdown content to HTML.
func RenderContent(content string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
