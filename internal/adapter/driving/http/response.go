package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/authorsite/internal/application"
	"github.com/ericfisherdev/authorsite/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON body of the health endpoint.
type HealthResponse struct {
	Status string          `json:"status"`
	Time   string          `json:"time"`
	Checks []CheckResponse `json:"checks"`
}

// CheckResponse is the outcome of one dependency check.
type CheckResponse struct {
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// CommentResponse is one comment with its replies.
type CommentResponse struct {
	ID        int64             `json:"id"`
	Author    string            `json:"author"`
	Content   string            `json:"content"`
	Date      string            `json:"date"`
	Parent    int64             `json:"parent"`
	Replies   []CommentResponse `json:"replies"`
	Truncated bool              `json:"truncated,omitempty"`
}

// CommentPageResponse is one server page of comments as a reply tree.
type CommentPageResponse struct {
	PostID     int64             `json:"post_id"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	Total      int               `json:"total"`
	Comments   []CommentResponse `json:"comments"`
}

// ShowResponse is the JSON representation of a media show.
type ShowResponse struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
	URL   string `json:"url"`
	Link  string `json:"link"`
	TagID int64  `json:"tag_id"`
}

// EpisodeResponse is the JSON representation of a show episode.
type EpisodeResponse struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	Link       string `json:"link"`
	ImageURL   string `json:"image_url,omitempty"`
	YouTubeURL string `json:"youtube_url,omitempty"`
	Color      string `json:"color"`
}

func toHealthResponse(report application.HealthReport) HealthResponse {
	resp := HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
		Checks: make([]CheckResponse, 0, len(report.Checks)),
	}
	if !report.Healthy() {
		resp.Status = "degraded"
	}
	for _, c := range report.Checks {
		cr := CheckResponse{Name: c.Name, OK: c.OK(), DurationMS: c.Duration.Milliseconds()}
		if c.Err != nil {
			cr.Error = c.Err.Error()
		}
		resp.Checks = append(resp.Checks, cr)
	}
	return resp
}

// toCommentResponses converts nodes to responses, descending at most
// depthLeft levels. A node whose replies were cut off is marked truncated.
func toCommentResponses(nodes []*model.CommentNode, depthLeft int) []CommentResponse {
	resp := make([]CommentResponse, 0, len(nodes))
	for _, n := range nodes {
		cr := CommentResponse{
			ID:      n.ID,
			Author:  n.AuthorName,
			Content: n.Content,
			Date:    formatTime(n.Date),
			Parent:  n.Parent,
			Replies: []CommentResponse{},
		}
		if len(n.Children) > 0 {
			if depthLeft > 1 {
				cr.Replies = toCommentResponses(n.Children, depthLeft-1)
			} else {
				cr.Truncated = true
			}
		}
		resp = append(resp, cr)
	}
	return resp
}

func toShowResponse(s model.MediaShow) ShowResponse {
	return ShowResponse{Title: s.Title, Slug: s.Slug, URL: s.URL, Link: s.Link, TagID: s.TagID}
}

func toEpisodeResponse(ep model.MediaEpisode) EpisodeResponse {
	return EpisodeResponse{
		ID:         ep.ID,
		Title:      ep.Title,
		Date:       formatTime(ep.Date),
		Link:       ep.Link,
		ImageURL:   ep.ImageURL,
		YouTubeURL: ep.YouTubeURL,
		Color:      ep.Color,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
