package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/Salat-Tamas/whitespac3/pkg/models"
)

const DefaultPostsLimit = 10

var ErrPostNotFound = errors.New("post not found")

// StatusError reports a non-2xx response from the content backend.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Status)
}

// Client is the typed accessor for the content backend. Read operations are
// bounded by the configured timeout and fall back to the fixed sample
// dataset on any failure, so a network outage degrades the UI instead of
// breaking it. Write operations surface their errors to the caller.
type Client struct {
	cfg Config
	hc  *http.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{cfg: cfg, hc: &http.Client{}}
}

func (c *Client) ChatURL() string {
	return c.cfg.ChatURL
}

func (c *Client) CSRFToken() string {
	return c.cfg.CSRFToken
}

// get performs a read request with the client timeout applied. The request
// is cancelled when the deadline expires.
func (c *Client) get(ctx context.Context, path, userID string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req, userID)

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) setHeaders(req *http.Request, userID string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("csrf-token", c.cfg.CSRFToken)
	if userID != "" {
		req.Header.Set("user-id", userID)
	}
}

// logFallback classifies a read failure for diagnostics. All classes lead
// to the same sample-data outcome.
func logFallback(op string, err error) {
	var statusErr *StatusError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		log.Warnf("[%s] request timed out, using sample data: %v", op, err)
	case errors.As(err, &statusErr):
		log.Warnf("[%s] backend returned error status, using sample data: %v", op, err)
	default:
		log.Warnf("[%s] network error, using sample data: %v", op, err)
	}
}

type TopicsResult struct {
	Topics          []models.Topic
	Err             error
	UsingSampleData bool
}

// TopicsWithCourses lists all topics with their courses. Favorite flags are
// per requesting user, supplied by the backend.
func (c *Client) TopicsWithCourses(ctx context.Context, userID string) TopicsResult {
	var topics []models.Topic
	if err := c.get(ctx, "/topics_with_courses", userID, &topics); err != nil {
		logFallback("TopicsWithCourses", err)
		return TopicsResult{Topics: SampleTopics(), UsingSampleData: true}
	}

	return TopicsResult{Topics: topics}
}

type PostsQuery struct {
	SortByLikes bool
	Limit       int
}

type PostsResult struct {
	Posts           []models.Post
	Err             error
	UsingSampleData bool
}

// Posts lists posts with optional like-count ordering and a limit. The
// fallback applies the same sorting and slicing the backend would, so
// callers never branch on the data source.
func (c *Client) Posts(ctx context.Context, userID string, q PostsQuery) PostsResult {
	if q.Limit <= 0 {
		q.Limit = DefaultPostsLimit
	}

	params := url.Values{}
	if q.SortByLikes {
		params.Set("sort_by_likes", "true")
	}
	params.Set("limit", strconv.Itoa(q.Limit))

	var posts []models.Post
	if err := c.get(ctx, "/posts?"+params.Encode(), userID, &posts); err != nil {
		logFallback("Posts", err)
		sample := SamplePosts()
		if q.SortByLikes {
			sortPostsByLikes(sample)
		}
		return PostsResult{Posts: capPosts(sample, q.Limit), UsingSampleData: true}
	}

	return PostsResult{Posts: posts}
}

// sortPostsByLikes orders descending by like count. Ties retain their
// original order.
func sortPostsByLikes(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].LikeCount > posts[j].LikeCount
	})
}

func capPosts(posts []models.Post, limit int) []models.Post {
	if limit < len(posts) {
		return posts[:limit]
	}
	return posts
}

type PostResult struct {
	Post            *models.Post
	Err             error
	UsingSampleData bool
}

// Post fetches a single post by id. When the backend is unreachable and no
// sample post matches, Err is set to ErrPostNotFound.
func (c *Client) Post(ctx context.Context, userID, postID string) PostResult {
	var post models.Post
	if err := c.get(ctx, "/posts/"+url.PathEscape(postID), userID, &post); err != nil {
		logFallback("Post", err)
		sample, ok := SamplePost(postID)
		if !ok {
			return PostResult{Err: ErrPostNotFound, UsingSampleData: true}
		}
		return PostResult{Post: &sample, UsingSampleData: true}
	}

	return PostResult{Post: &post}
}

type CommentsResult struct {
	Comments        []models.Comment
	Err             error
	UsingSampleData bool
}

// Comments lists the comments of a post.
func (c *Client) Comments(ctx context.Context, userID, postID string) CommentsResult {
	var comments []models.Comment
	if err := c.get(ctx, "/comments?post_id="+url.QueryEscape(postID), userID, &comments); err != nil {
		logFallback("Comments", err)
		return CommentsResult{Comments: SampleComments(postID), UsingSampleData: true}
	}

	return CommentsResult{Comments: comments}
}

// drain discards a response body so the connection can be reused.
func drain(body io.Reader) {
	io.Copy(io.Discard, body)
}
