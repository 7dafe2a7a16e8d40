package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/authorsite/internal/domain/model"
	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
	"github.com/ericfisherdev/authorsite/internal/htmlcontent"
)

// ErrShowNotFound is returned when no media show has the requested slug.
var ErrShowNotFound = errors.New("media show not found")

const (
	// WordPress caps per_page at 100.
	maxPerPage = 100
	// tagLookupLimit bounds concurrent tag requests.
	tagLookupLimit = 4
	// colorSampleLimit bounds concurrent image downloads.
	colorSampleLimit = 4
)

// MediaService lists the shows under the media menu and their episodes,
// caching both for the cache TTL.
type MediaService struct {
	cms    driven.CMSClient
	cache  *Cache
	colors *ColorSampler
	logger *slog.Logger
}

// NewMediaService creates a MediaService.
func NewMediaService(cms driven.CMSClient, cache *Cache, colors *ColorSampler, logger *slog.Logger) *MediaService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaService{cms: cms, cache: cache, colors: colors, logger: logger}
}

// Shows returns every show, each linked to the tag its episodes carry.
func (s *MediaService) Shows(ctx context.Context) ([]model.MediaShow, error) {
	return Cached(ctx, s.cache, MediaItemsKey, s.fetchShows)
}

// ShowBySlug returns the show with the given slug.
func (s *MediaService) ShowBySlug(ctx context.Context, slug string) (*model.MediaShow, error) {
	shows, err := s.Shows(ctx)
	if err != nil {
		return nil, err
	}
	for i := range shows {
		if shows[i].Slug == slug {
			return &shows[i], nil
		}
	}
	return nil, ErrShowNotFound
}

// Episodes returns the episodes tagged with tagID, newest first. A show
// without a tag has no episodes.
func (s *MediaService) Episodes(ctx context.Context, tagID int64) ([]model.MediaEpisode, error) {
	if tagID == 0 {
		return []model.MediaEpisode{}, nil
	}
	return Cached(ctx, s.cache, EpisodesKey(tagID), func(ctx context.Context) ([]model.MediaEpisode, error) {
		return s.fetchEpisodes(ctx, model.PostQuery{
			Category: CategoryEpisodes,
			TagID:    tagID,
			Page:     1,
			PerPage:  maxPerPage,
			OrderBy:  "date",
			Order:    "desc",
		})
	})
}

// LatestEpisodes returns the n newest episodes across every show.
func (s *MediaService) LatestEpisodes(ctx context.Context, n int) ([]model.MediaEpisode, error) {
	episodes, err := Cached(ctx, s.cache, LatestEpisodesKey, func(ctx context.Context) ([]model.MediaEpisode, error) {
		return s.fetchEpisodes(ctx, model.PostQuery{
			Category: CategoryEpisodes,
			Page:     1,
			PerPage:  n,
			OrderBy:  "date",
			Order:    "desc",
		})
	})
	if err != nil {
		return nil, err
	}
	if len(episodes) > n {
		episodes = episodes[:n]
	}
	return episodes, nil
}

// Refresh drops every cached media entry and reloads the show list.
func (s *MediaService) Refresh(ctx context.Context) error {
	if _, err := s.cache.Purge(ctx, MediaKeyPrefix); err != nil {
		return err
	}
	if _, err := s.Shows(ctx); err != nil {
		return err
	}
	return nil
}

func (s *MediaService) fetchShows(ctx context.Context) ([]model.MediaShow, error) {
	page, err := s.cms.ListPosts(ctx, model.PostQuery{
		Category: CategoryShows,
		Page:     1,
		PerPage:  maxPerPage,
		OrderBy:  "date",
		Order:    "desc",
	})
	if err != nil {
		return nil, fmt.Errorf("listing media shows: %w", err)
	}

	shows := make([]model.MediaShow, len(page.Posts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tagLookupLimit)
	for i, post := range page.Posts {
		g.Go(func() error {
			tag, err := s.cms.FindTagBySlug(gctx, post.Slug)
			if err != nil {
				return fmt.Errorf("resolving tag for show %q: %w", post.Slug, err)
			}
			show := model.MediaShow{
				Title: htmlcontent.DecodeEntities(post.Title),
				URL:   "/media/" + post.Slug,
				Slug:  post.Slug,
				Link:  post.Link,
			}
			if tag != nil {
				show.TagID = tag.ID
			}
			shows[i] = show
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("media shows loaded", "count", len(shows))
	return shows, nil
}

func (s *MediaService) fetchEpisodes(ctx context.Context, q model.PostQuery) ([]model.MediaEpisode, error) {
	page, err := s.cms.ListPosts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing episodes: %w", err)
	}

	episodes := make([]model.MediaEpisode, len(page.Posts))
	for i, post := range page.Posts {
		imageURL, rest := htmlcontent.ExtractAndRemoveImage(post.Content)
		episodes[i] = model.MediaEpisode{
			ID:         post.ID,
			Title:      htmlcontent.DecodeEntities(post.Title),
			Content:    rest,
			Date:       post.Date,
			Link:       post.Link,
			ImageURL:   imageURL,
			YouTubeURL: htmlcontent.ExtractYouTubeURL(rest),
		}
	}

	// Colors never fail; a failed sample falls back to a derived hue.
	var g errgroup.Group
	g.SetLimit(colorSampleLimit)
	for i := range episodes {
		g.Go(func() error {
			ep := &episodes[i]
			if s.colors == nil {
				ep.Color = FallbackColor(ep.ID)
				return nil
			}
			ep.Color = s.colors.DominantColor(ctx, ep.ImageURL, ep.ID)
			return nil
		})
	}
	_ = g.Wait()

	return episodes, nil
}
