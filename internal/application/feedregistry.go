package application

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

// feedKey identifies one visitor's view of one post's comments.
type feedKey struct {
	visitor string
	postID  int64
}

type feedEntry struct {
	feed     *CommentFeed
	lastUsed time.Time
}

// FeedRegistry holds the live CommentFeed of every visitor/post pair. Feeds
// idle for longer than the configured TTL are closed and dropped by Sweep.
type FeedRegistry struct {
	cms     driven.CMSClient
	perPage int
	timeout time.Duration
	idleTTL time.Duration
	now     func() time.Time
	logger  *slog.Logger

	mu    sync.Mutex
	feeds map[feedKey]*feedEntry
}

// NewFeedRegistry creates an empty registry. now may be nil to use time.Now.
func NewFeedRegistry(
	cms driven.CMSClient,
	perPage int,
	timeout time.Duration,
	idleTTL time.Duration,
	now func() time.Time,
	logger *slog.Logger,
) *FeedRegistry {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedRegistry{
		cms:     cms,
		perPage: perPage,
		timeout: timeout,
		idleTTL: idleTTL,
		now:     now,
		logger:  logger,
		feeds:   make(map[feedKey]*feedEntry),
	}
}

// Get returns the feed for visitor and postID, creating an idle one on first
// use. The returned feed may not be loaded yet.
func (r *FeedRegistry) Get(visitor string, postID int64) *CommentFeed {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := feedKey{visitor: visitor, postID: postID}
	entry, ok := r.feeds[key]
	if !ok {
		entry = &feedEntry{
			feed: NewCommentFeed(r.cms, postID, r.perPage, r.timeout, r.logger),
		}
		r.feeds[key] = entry
	}
	entry.lastUsed = r.now()
	return entry.feed
}

// Peek returns the feed for visitor and postID without creating one.
func (r *FeedRegistry) Peek(visitor string, postID int64) (*CommentFeed, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.feeds[feedKey{visitor: visitor, postID: postID}]
	if !ok {
		return nil, false
	}
	return entry.feed, true
}

// Drop closes and removes every feed belonging to visitor.
func (r *FeedRegistry) Drop(visitor string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, entry := range r.feeds {
		if key.visitor == visitor {
			entry.feed.Close()
			delete(r.feeds, key)
		}
	}
}

// Sweep closes feeds not used within the idle TTL and returns how many were
// removed.
func (r *FeedRegistry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idleTTL)
	var removed int
	for key, entry := range r.feeds {
		if entry.lastUsed.Before(cutoff) {
			entry.feed.Close()
			delete(r.feeds, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live feeds.
func (r *FeedRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.feeds)
}

// Close closes every feed and empties the registry.
func (r *FeedRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, entry := range r.feeds {
		entry.feed.Close()
		delete(r.feeds, key)
	}
}
