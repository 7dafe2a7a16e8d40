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

// CMS category ids.
const (
	CategoryBlog     = 1
	CategoryBooks    = 31
	CategoryShows    = 205
	CategoryEpisodes = 206
)

// Home page sizes.
const (
	homeBlogFetch    = 12
	homeBlogCount    = 3
	homeEpisodeCount = 2
)

// ErrPostNotFound is returned when a requested post does not exist or does not
// belong to the expected category.
var ErrPostNotFound = errors.New("post not found")

// BookPage is one page of the books listing.
type BookPage struct {
	Books      []model.Book
	Total      int
	TotalPages int
}

// HomePage is the content shown on the landing page.
type HomePage struct {
	Blogs    []model.Post
	Episodes []model.MediaEpisode
}

// ContentService serves blog and book posts from the CMS.
type ContentService struct {
	cms    driven.CMSClient
	media  *MediaService
	logger *slog.Logger
}

// NewContentService creates a ContentService. media may be nil, in which case
// the home page carries no episodes.
func NewContentService(cms driven.CMSClient, media *MediaService, logger *slog.Logger) *ContentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentService{cms: cms, media: media, logger: logger}
}

// Blogs returns one page of blog posts, newest first.
func (s *ContentService) Blogs(ctx context.Context, page, perPage int) (model.PostPage, error) {
	result, err := s.cms.ListPosts(ctx, model.PostQuery{
		Category: CategoryBlog,
		Page:     normalizePage(page),
		PerPage:  perPage,
		OrderBy:  "date",
		Order:    "desc",
	})
	if err != nil {
		return model.PostPage{}, fmt.Errorf("listing blog posts: %w", err)
	}
	return result, nil
}

// Post returns a single post by id.
func (s *ContentService) Post(ctx context.Context, id int64) (*model.Post, error) {
	post, err := s.cms.GetPost(ctx, id)
	if errors.Is(err, driven.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting post %d: %w", id, err)
	}
	return post, nil
}

// Books returns one page of books. When the CMS omits the total header the
// count of returned books is used.
func (s *ContentService) Books(ctx context.Context, page, perPage int) (BookPage, error) {
	result, err := s.cms.ListPosts(ctx, model.PostQuery{
		Category: CategoryBooks,
		Page:     normalizePage(page),
		PerPage:  perPage,
		OrderBy:  "date",
		Order:    "desc",
	})
	if err != nil {
		return BookPage{}, fmt.Errorf("listing books: %w", err)
	}

	books := make([]model.Book, 0, len(result.Posts))
	for _, p := range result.Posts {
		books = append(books, bookFromPost(p))
	}

	total := result.Total
	if total == 0 {
		total = len(books)
	}

	return BookPage{Books: books, Total: total, TotalPages: result.TotalPages}, nil
}

// Book returns a single book with its cover and store link extracted.
func (s *ContentService) Book(ctx context.Context, id int64) (*model.Book, error) {
	post, err := s.Post(ctx, id)
	if err != nil {
		return nil, err
	}
	book := bookFromPost(*post)
	return &book, nil
}

// Home loads the latest blog posts and podcast episodes concurrently. A
// failure of either half fails the page.
func (s *ContentService) Home(ctx context.Context) (HomePage, error) {
	var home HomePage

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.Blogs(gctx, 1, homeBlogFetch)
		if err != nil {
			return err
		}
		blogs := page.Posts
		if len(blogs) > homeBlogCount {
			blogs = blogs[:homeBlogCount]
		}
		home.Blogs = blogs
		return nil
	})
	if s.media != nil {
		g.Go(func() error {
			episodes, err := s.media.LatestEpisodes(gctx, homeEpisodeCount)
			if err != nil {
				return err
			}
			home.Episodes = episodes
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return HomePage{}, fmt.Errorf("loading home page: %w", err)
	}
	return home, nil
}

func bookFromPost(p model.Post) model.Book {
	formatted := htmlcontent.FormatBookContent(p.Content)
	book := model.Book{
		Post:      p,
		ImageURL:  formatted.ImageURL,
		AmazonURL: formatted.AmazonURL,
	}
	book.Content = formatted.Content
	if book.AmazonURL == "" {
		book.AmazonURL = htmlcontent.ExtractAmazonURL(p.Content)
	}
	return book
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
