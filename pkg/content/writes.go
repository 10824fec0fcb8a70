package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Salat-Tamas/whitespac3/pkg/models"
)

var (
	ErrAuthRequired = errors.New("authentication required")
	ErrEmptyContent = errors.New("empty content")
)

// do performs a write request. Writes carry no client-side timeout and are
// never retried; failures go back to the caller untouched.
func (c *Client) do(ctx context.Context, method, path, userID string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
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
		drain(resp.Body)
		return &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	if out == nil {
		drain(resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

type NewPost struct {
	CourseID  int    `json:"course_id"`
	AuthorID  string `json:"author_id"`
	Title     string `json:"title"`
	PreviewMD string `json:"preview_md"`
	ContentMD string `json:"content_md"`
}

// CreatePost publishes a new post authored by userID.
func (c *Client) CreatePost(ctx context.Context, userID string, p NewPost) (models.Post, error) {
	if userID == "" {
		return models.Post{}, ErrAuthRequired
	}
	p.AuthorID = userID

	var created models.Post
	if err := c.do(ctx, http.MethodPost, "/create_post", "", p, &created); err != nil {
		return models.Post{}, fmt.Errorf("create post: %w", err)
	}
	log.Debugf("[CreatePost] created post %s for user %s", created.ID, userID)

	return created, nil
}

type NewCourse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	TopicID     int    `json:"topic_id"`
}

func (c *Client) CreateCourse(ctx context.Context, nc NewCourse) (models.Course, error) {
	var created models.Course
	if err := c.do(ctx, http.MethodPost, "/create_course", "", nc, &created); err != nil {
		return models.Course{}, fmt.Errorf("create course: %w", err)
	}

	return created, nil
}

type LikeUpdate struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// TogglePostLike likes or unlikes a post depending on the current state.
// The returned count prefers the backend-confirmed value; when the backend
// does not supply one it is computed from currentCount. A missing user id
// is rejected before any network dispatch.
func (c *Client) TogglePostLike(ctx context.Context, postID, userID string, currentlyLiked bool, currentCount int) (LikeUpdate, error) {
	if userID == "" {
		return LikeUpdate{}, ErrAuthRequired
	}

	method := http.MethodPost
	path := "/like_post?post_id=" + url.QueryEscape(postID)
	if currentlyLiked {
		method = http.MethodDelete
		path = "/remove_like?post_id=" + url.QueryEscape(postID)
	}

	var body struct {
		LikeCount *int `json:"like_count"`
	}
	if err := c.do(ctx, method, path, userID, nil, &body); err != nil {
		return LikeUpdate{}, fmt.Errorf("toggle like for post %s: %w", postID, err)
	}

	upd := LikeUpdate{Liked: !currentlyLiked}
	switch {
	case body.LikeCount != nil:
		upd.LikeCount = *body.LikeCount
	case currentlyLiked:
		upd.LikeCount = currentCount - 1
	default:
		upd.LikeCount = currentCount + 1
	}

	return upd, nil
}

func (c *Client) AddFavorite(ctx context.Context, courseID int, userID string) error {
	if userID == "" {
		return ErrAuthRequired
	}
	path := "/add_favorite_course?course_id=" + strconv.Itoa(courseID)
	if err := c.do(ctx, http.MethodPost, path, userID, nil, nil); err != nil {
		return fmt.Errorf("add favorite course %d: %w", courseID, err)
	}

	return nil
}

func (c *Client) RemoveFavorite(ctx context.Context, courseID int, userID string) error {
	if userID == "" {
		return ErrAuthRequired
	}
	path := "/remove_favorite_course?course_id=" + strconv.Itoa(courseID)
	if err := c.do(ctx, http.MethodDelete, path, userID, nil, nil); err != nil {
		return fmt.Errorf("remove favorite course %d: %w", courseID, err)
	}

	return nil
}

// AddComment posts a comment authored by userID. Content must be non-empty.
func (c *Client) AddComment(ctx context.Context, postID, userID, content string) (models.Comment, error) {
	if userID == "" {
		return models.Comment{}, ErrAuthRequired
	}
	if strings.TrimSpace(content) == "" {
		return models.Comment{}, ErrEmptyContent
	}

	body := struct {
		PostID   string `json:"post_id"`
		AuthorID string `json:"author_id"`
		Content  string `json:"content"`
	}{PostID: postID, AuthorID: userID, Content: content}

	var created models.Comment
	if err := c.do(ctx, http.MethodPost, "/create_comment", userID, body, &created); err != nil {
		return models.Comment{}, fmt.Errorf("add comment to post %s: %w", postID, err)
	}

	return created, nil
}

// CreateUser mirrors the identity provider record into the backend after
// sign-in. The backend answers 400 when the user already exists, which is
// success from the caller's point of view.
func (c *Client) CreateUser(ctx context.Context, u models.User) error {
	err := c.do(ctx, http.MethodPost, "/create_user", "", u, nil)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusBadRequest {
			log.Debugf("[CreateUser] user %s already exists", u.ID)
			return nil
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}
