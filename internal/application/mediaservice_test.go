package application_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/authorsite/internal/application"
	"github.com/ericfisherdev/authorsite/internal/domain/model"
)

const episodeBody = `<figure class="wp-block-image size-large"><img src="https://cdn.example.com/ep.jpg" alt=""/></figure>` +
	`<p>This week on the show.</p><iframe src="https://www.youtube.com/embed/abc123"></iframe>`

func mediaCMS() *mockCMS {
	return &mockCMS{
		listPosts: func(_ context.Context, q model.PostQuery) (model.PostPage, error) {
			switch q.Category {
			case application.CategoryShows:
				return model.PostPage{Posts: []model.Post{
					{ID: 1, Slug: "the-author-show", Title: "THE AUTHOR SHOW"},
					{ID: 2, Slug: "guest-hour", Title: "Guest &amp; Friends"},
				}}, nil
			case application.CategoryEpisodes:
				return model.PostPage{Posts: []model.Post{
					{ID: 50, Title: "Episode 50", Content: episodeBody, Date: submitNow},
					{ID: 49, Title: "Episode 49", Content: "<p>No art.</p>", Date: submitNow.AddDate(0, 0, -7)},
				}}, nil
			}
			return model.PostPage{}, nil
		},
		findTag: func(_ context.Context, slug string) (*model.Tag, error) {
			if slug == "the-author-show" {
				return &model.Tag{ID: 11, Slug: slug}, nil
			}
			return nil, nil
		},
	}
}

func newMediaService(cms *mockCMS, clock *fakeClock) *application.MediaService {
	cache := application.NewCache(newMockCacheStore(), 24*time.Hour, clock.Now, discardLogger())
	colors := application.NewColorSampler(&mockImageFetcher{images: map[string]image.Image{
		"https://cdn.example.com/ep.jpg": solidImage(4, 4, color.RGBA{R: 100, G: 150, B: 200, A: 255}),
	}}, discardLogger())
	return application.NewMediaService(cms, cache, colors, discardLogger())
}

func TestMediaService_ShowsResolveTags(t *testing.T) {
	cms := mediaCMS()
	svc := newMediaService(cms, newFakeClock(submitNow))

	shows, err := svc.Shows(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []model.MediaShow{
		{Title: "THE AUTHOR SHOW", URL: "/media/the-author-show", TagID: 11, Slug: "the-author-show"},
		{Title: "Guest & Friends", URL: "/media/guest-hour", Slug: "guest-hour"},
	}, shows)
	assert.ElementsMatch(t, []string{"the-author-show", "guest-hour"}, cms.tagLookups)
}

func TestMediaService_ShowsCachedForTTL(t *testing.T) {
	cms := mediaCMS()
	clock := newFakeClock(submitNow)
	svc := newMediaService(cms, clock)
	ctx := context.Background()

	_, err := svc.Shows(ctx)
	require.NoError(t, err)
	_, err = svc.Shows(ctx)
	require.NoError(t, err)
	assert.Len(t, cms.postQueries, 1)

	clock.Advance(25 * time.Hour)
	_, err = svc.Shows(ctx)
	require.NoError(t, err)
	assert.Len(t, cms.postQueries, 2)
}

func TestMediaService_ShowBySlug(t *testing.T) {
	svc := newMediaService(mediaCMS(), newFakeClock(submitNow))

	show, err := svc.ShowBySlug(context.Background(), "guest-hour")
	require.NoError(t, err)
	assert.Equal(t, "Guest & Friends", show.Title)

	_, err = svc.ShowBySlug(context.Background(), "nope")
	assert.ErrorIs(t, err, application.ErrShowNotFound)
}

func TestMediaService_Episodes(t *testing.T) {
	cms := mediaCMS()
	svc := newMediaService(cms, newFakeClock(submitNow))

	episodes, err := svc.Episodes(context.Background(), 11)
	require.NoError(t, err)
	require.Len(t, episodes, 2)

	ep := episodes[0]
	assert.Equal(t, "https://cdn.example.com/ep.jpg", ep.ImageURL)
	assert.Equal(t, "https://www.youtube.com/embed/abc123", ep.YouTubeURL)
	assert.NotContains(t, ep.Content, "<figure")
	assert.Equal(t, "rgb(100, 150, 200)", ep.Color)
	assert.Equal(t, application.FallbackColor(49), episodes[1].Color)

	require.Len(t, cms.postQueries, 1)
	assert.Equal(t, int64(11), cms.postQueries[0].TagID)
	assert.Equal(t, application.CategoryEpisodes, cms.postQueries[0].Category)

	_, err = svc.Episodes(context.Background(), 11)
	require.NoError(t, err)
	assert.Len(t, cms.postQueries, 1, "served from cache")
}

func TestMediaService_EpisodesWithoutTag(t *testing.T) {
	cms := mediaCMS()
	svc := newMediaService(cms, newFakeClock(submitNow))

	episodes, err := svc.Episodes(context.Background(), 0)

	require.NoError(t, err)
	assert.Empty(t, episodes)
	assert.Empty(t, cms.postQueries)
}

func TestMediaService_LatestEpisodes(t *testing.T) {
	svc := newMediaService(mediaCMS(), newFakeClock(submitNow))

	episodes, err := svc.LatestEpisodes(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, episodes, 1)
	assert.Equal(t, int64(50), episodes[0].ID)
}

func TestMediaService_RefreshPurgesCache(t *testing.T) {
	cms := mediaCMS()
	svc := newMediaService(cms, newFakeClock(submitNow))
	ctx := context.Background()

	_, err := svc.Episodes(ctx, 11)
	require.NoError(t, err)
	_, err = svc.Shows(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Refresh(ctx))
	_, err = svc.Episodes(ctx, 11)
	require.NoError(t, err)

	assert.Len(t, cms.postQueries, 4, "shows and episodes refetched")
}

func TestMediaService_TagLookupFailure(t *testing.T) {
	cms := mediaCMS()
	cms.findTag = func(context.Context, string) (*model.Tag, error) {
		return nil, errors.New("cms down")
	}
	svc := newMediaService(cms, newFakeClock(submitNow))

	_, err := svc.Shows(context.Background())

	assert.ErrorContains(t, err, "cms down")
}
