package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/authorsite/internal/domain/model"
	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

var (
	// ErrFetchInFlight is returned when a pagination request arrives while
	// another one is still outstanding. The request is dropped, not queued.
	ErrFetchInFlight = errors.New("comment fetch already in flight")

	// ErrFeedNotLoaded is returned by SeeMore before the first page has loaded.
	ErrFeedNotLoaded = errors.New("comment feed not loaded")

	// ErrFeedClosed is returned by every fetch after Close.
	ErrFeedClosed = errors.New("comment feed closed")

	// ErrStaleResult is returned when a response arrives after a newer fetch
	// was started; the response is discarded.
	ErrStaleResult = errors.New("comment fetch superseded")
)

// FeedSnapshot is a point-in-time view of a CommentFeed. Roots holds every
// assembled root; Displayed is the window the page should render.
type FeedSnapshot struct {
	PostID     int64
	State      model.FeedState
	Cursor     model.PaginationCursor
	Roots      []*model.CommentNode
	Displayed  []*model.CommentNode
	ShowingAll bool
	Err        error
}

// CommentFeed manages the comments of one post across server-side pages.
// Pages fetched with SeeMore accumulate into one flat record set that is
// re-assembled after every fetch; Load and ShowLess start over from page 1.
//
// Only one pagination fetch (Load, SeeMore, ShowLess) runs at a time. Refresh,
// used after a submission, is not blocked by the guard; instead every fetch
// takes a generation number and a response from an older generation is
// discarded, so the most recently requested fetch decides the tree.
type CommentFeed struct {
	cms     driven.CMSClient
	postID  int64
	timeout time.Duration
	logger  *slog.Logger

	mu         sync.Mutex
	state      model.FeedState
	cursor     model.PaginationCursor
	records    []model.CommentRecord
	roots      []*model.CommentNode
	showingAll bool
	err        error
	paging     bool
	generation uint64
	cancels    map[uint64]context.CancelFunc
	closed     bool
}

// NewCommentFeed creates an idle feed for postID. timeout bounds each CMS call;
// zero disables the bound.
func NewCommentFeed(cms driven.CMSClient, postID int64, perPage int, timeout time.Duration, logger *slog.Logger) *CommentFeed {
	if perPage <= 0 {
		perPage = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentFeed{
		cms:     cms,
		postID:  postID,
		timeout: timeout,
		logger:  logger,
		state:   model.FeedStateIdle,
		cursor:  model.NewPaginationCursor(perPage),
		roots:   []*model.CommentNode{},
		cancels: make(map[uint64]context.CancelFunc),
	}
}

// PostID returns the post this feed belongs to.
func (f *CommentFeed) PostID() int64 {
	return f.postID
}

// Load fetches page 1 and replaces whatever was loaded before. It is used on
// first view and for explicit refreshes.
func (f *CommentFeed) Load(ctx context.Context) error {
	return f.fetch(ctx, 1, fetchReplace, true)
}

// SeeMore fetches the page after the current one and merges it into the
// loaded set. When no further page exists it only widens the display window
// to everything already loaded.
func (f *CommentFeed) SeeMore(ctx context.Context) error {
	f.mu.Lock()
	switch {
	case f.closed:
		f.mu.Unlock()
		return ErrFeedClosed
	case f.paging:
		f.mu.Unlock()
		return ErrFetchInFlight
	case f.state != model.FeedStateLoaded:
		f.mu.Unlock()
		return ErrFeedNotLoaded
	case !f.cursor.HasMore():
		f.showingAll = true
		f.mu.Unlock()
		return nil
	}
	next := f.cursor.CurrentPage + 1
	f.mu.Unlock()

	return f.fetch(ctx, next, fetchMerge, true)
}

// ShowLess drops every page but the first by refetching page 1, and caps the
// display window back to one page.
func (f *CommentFeed) ShowLess(ctx context.Context) error {
	return f.fetch(ctx, 1, fetchReplace, true)
}

// Refresh refetches page after a submission. Page 1 starts over as Load does;
// any other page is merged so earlier pages stay visible.
func (f *CommentFeed) Refresh(ctx context.Context, page int) error {
	if page <= 1 {
		return f.fetch(ctx, 1, fetchReplace, false)
	}
	return f.fetch(ctx, page, fetchMerge, false)
}

// CurrentPage returns the cursor's current page.
func (f *CommentFeed) CurrentPage() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor.CurrentPage
}

// Snapshot returns the current state. The returned nodes are never mutated by
// later fetches; each fetch builds a new tree.
func (f *CommentFeed) Snapshot() FeedSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	displayed := f.roots
	if !f.showingAll && len(displayed) > f.cursor.PerPage {
		displayed = displayed[:f.cursor.PerPage]
	}

	return FeedSnapshot{
		PostID:     f.postID,
		State:      f.state,
		Cursor:     f.cursor,
		Roots:      f.roots,
		Displayed:  displayed,
		ShowingAll: f.showingAll,
		Err:        f.err,
	}
}

// Close cancels outstanding fetches and makes later fetches fail with
// ErrFeedClosed. Responses arriving after Close are discarded.
func (f *CommentFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	for gen, cancel := range f.cancels {
		cancel()
		delete(f.cancels, gen)
	}
}

type fetchMode int

const (
	fetchReplace fetchMode = iota
	fetchMerge
)

func (f *CommentFeed) fetch(ctx context.Context, page int, mode fetchMode, guarded bool) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrFeedClosed
	}
	if guarded {
		if f.paging {
			f.mu.Unlock()
			return ErrFetchInFlight
		}
		f.paging = true
	}
	f.generation++
	gen := f.generation
	f.state = model.FeedStateFetching
	perPage := f.cursor.PerPage

	fetchCtx, cancel := context.WithCancel(ctx)
	if f.timeout > 0 {
		var cancelTimeout context.CancelFunc
		fetchCtx, cancelTimeout = context.WithTimeout(fetchCtx, f.timeout)
		parentCancel := cancel
		cancel = func() {
			cancelTimeout()
			parentCancel()
		}
	}
	f.cancels[gen] = cancel
	f.mu.Unlock()

	result, err := f.cms.ListComments(fetchCtx, f.postID, page, perPage)
	cancel()

	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.cancels, gen)
	if guarded {
		f.paging = false
	}
	if f.closed {
		return ErrFeedClosed
	}
	if gen != f.generation {
		f.logger.Debug("discarding superseded comment page",
			"post_id", f.postID,
			"page", page,
			"generation", gen,
			"latest", f.generation,
		)
		return ErrStaleResult
	}

	if err != nil {
		f.state = model.FeedStateError
		f.err = fmt.Errorf("fetching comments for post %d (page %d): %w", f.postID, page, err)
		f.logger.Warn("comment fetch failed", "post_id", f.postID, "page", page, "error", err)
		return f.err
	}

	switch mode {
	case fetchReplace:
		f.records = append([]model.CommentRecord(nil), result.Records...)
		f.showingAll = false
	case fetchMerge:
		f.records = mergeRecords(f.records, result.Records)
		f.showingAll = true
	}

	f.cursor = model.PaginationCursor{
		CurrentPage:   page,
		TotalPages:    result.TotalPages,
		TotalComments: result.Total,
		PerPage:       perPage,
	}.Clamp()
	f.roots = AssembleComments(f.records)
	f.state = model.FeedStateLoaded
	f.err = nil

	f.logger.Debug("comment page loaded",
		"post_id", f.postID,
		"page", page,
		"records", len(result.Records),
		"accumulated", len(f.records),
		"total_pages", result.TotalPages,
	)

	return nil
}

// mergeRecords appends incoming records to existing, replacing any record
// whose id is already present in place so ordering stays stable.
func mergeRecords(existing, incoming []model.CommentRecord) []model.CommentRecord {
	merged := make([]model.CommentRecord, len(existing), len(existing)+len(incoming))
	copy(merged, existing)

	index := make(map[int64]int, len(merged))
	for i, r := range merged {
		index[r.ID] = i
	}

	for _, r := range incoming {
		if i, ok := index[r.ID]; ok {
			merged[i] = r
			continue
		}
		index[r.ID] = len(merged)
		merged = append(merged, r)
	}

	return merged
}
