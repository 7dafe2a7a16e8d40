package web

import (
	"fmt"
	"time"

	vm "github.com/ericfisherdev/authorsite/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/authorsite/internal/application"
	"github.com/ericfisherdev/authorsite/internal/domain/model"
	"github.com/ericfisherdev/authorsite/internal/htmlcontent"
)

const (
	dateLayout     = "January 2, 2006"
	excerptRunes   = 160
	msgFeedFailed  = "Failed to load comments. Please try again."
	msgPageFailed  = "Failed to load content. Please try again later."
	msgNotFound    = "The page you were looking for could not be found."
	msgBadRequest  = "The request could not be understood."
	msgForbidden   = "Your session token is missing or invalid. Reload the page and try again."
	msgMailerUnset = "The contact form is unavailable right now. Please try again later."
)

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func toPostCard(p model.Post) vm.PostCard {
	return vm.PostCard{
		ID:      p.ID,
		Title:   htmlcontent.DecodeEntities(p.Title),
		Excerpt: htmlcontent.Truncate(htmlcontent.TextContent(p.Excerpt), excerptRunes),
		Date:    formatDate(p.Date),
		Path:    fmt.Sprintf("/blog/%d", p.ID),
	}
}

func toPostCards(posts []model.Post) []vm.PostCard {
	cards := make([]vm.PostCard, 0, len(posts))
	for _, p := range posts {
		cards = append(cards, toPostCard(p))
	}
	return cards
}

// toComments converts assembled nodes to view models, descending at most
// depthLeft levels.
func toComments(nodes []*model.CommentNode, depth, depthLeft int) []vm.Comment {
	out := make([]vm.Comment, 0, len(nodes))
	for _, n := range nodes {
		author := htmlcontent.DecodeEntities(n.AuthorName)
		c := vm.Comment{
			ID:          n.ID,
			Author:      author,
			Initials:    htmlcontent.Initials(author),
			AvatarClass: htmlcontent.AvatarClass(author),
			Date:        formatDate(n.Date),
			ContentHTML: SanitizeHTML(n.Content),
			Depth:       depth,
		}
		if len(n.Children) > 0 {
			if depthLeft > 1 {
				c.Replies = toComments(n.Children, depth+1, depthLeft-1)
			} else {
				c.Truncated = true
			}
		}
		out = append(out, c)
	}
	return out
}

func toCommentFeed(snap application.FeedSnapshot, csrf string) vm.CommentFeed {
	base := fmt.Sprintf("/blog/%d/comments", snap.PostID)
	feed := vm.CommentFeed{
		PostID:      snap.PostID,
		Comments:    toComments(snap.Displayed, 0, application.DefaultMaxDepth),
		Total:       snap.Cursor.TotalComments,
		Shown:       application.CountComments(snap.Displayed),
		HasMore:     snap.Cursor.HasMore() || len(snap.Displayed) < len(snap.Roots),
		CanShowLess: snap.Cursor.CurrentPage > 1 || snap.ShowingAll,
		Loading:     snap.State == model.FeedStateFetching,
		MorePath:    base + "/more",
		LessPath:    base + "/less",
		CSRFToken:   csrf,
	}
	if snap.State == model.FeedStateError {
		feed.Error = msgFeedFailed
	}
	return feed
}

func toBookCard(b model.Book) vm.BookCard {
	return vm.BookCard{
		ID:        b.ID,
		Title:     htmlcontent.DecodeEntities(b.Title),
		ImageURL:  b.ImageURL,
		AmazonURL: b.AmazonURL,
		Path:      fmt.Sprintf("/books/%d", b.ID),
	}
}

func toBookDetail(b model.Book) vm.BookDetail {
	return vm.BookDetail{
		Title:       htmlcontent.DecodeEntities(b.Title),
		ImageURL:    b.ImageURL,
		AmazonURL:   b.AmazonURL,
		ContentHTML: SanitizeHTML(b.Content),
	}
}

func toEpisode(ep model.MediaEpisode) vm.Episode {
	return vm.Episode{
		ID:          ep.ID,
		Title:       ep.Title,
		Date:        formatDate(ep.Date),
		Link:        ep.Link,
		ImageURL:    ep.ImageURL,
		YouTubeURL:  ep.YouTubeURL,
		Color:       ep.Color,
		ContentHTML: SanitizeHTML(ep.Content),
	}
}

func toEpisodes(episodes []model.MediaEpisode) []vm.Episode {
	out := make([]vm.Episode, 0, len(episodes))
	for _, ep := range episodes {
		out = append(out, toEpisode(ep))
	}
	return out
}

func toShow(show model.MediaShow, episodes []model.MediaEpisode, banners []string) vm.Show {
	s := vm.Show{
		Title:    show.Title,
		Slug:     show.Slug,
		Episodes: toEpisodes(episodes),
	}
	if len(banners) > 0 {
		s.BannerURL = banners[show.ImageSetIndex(len(banners))]
	}
	return s
}
