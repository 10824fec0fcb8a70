package models

import "time"

type Topic struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Courses []Course `json:"courses"`
}

type Course struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	IsFavorite  bool   `json:"is_favorite"`
}

// Label returns the display name of a course. Some backend responses carry
// the name in the title field instead.
func (c Course) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Title
}

type Post struct {
	ID          string    `json:"id"`
	CourseID    int       `json:"course_id"`
	AuthorID    string    `json:"author_id"`
	Title       string    `json:"title"`
	PreviewMD   string    `json:"preview_md"`
	ContentMD   string    `json:"content_md"`
	CreatedAt   time.Time `json:"created_at"`
	LikeCount   int       `json:"like_count"`
	LikedByUser bool      `json:"liked_by_user"`
}

type Comment struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"author_id"`
	CreatedAt  time.Time `json:"created_at"`
	AuthorName string    `json:"author_name,omitempty"`
	UserName   string    `json:"user_name,omitempty"`
}

// Author resolves the display name of a comment author. The backend fills
// either author_name or user_name depending on the endpoint.
func (c Comment) Author() string {
	if c.AuthorName != "" {
		return c.AuthorName
	}
	if c.UserName != "" {
		return c.UserName
	}
	return c.AuthorID
}

const (
	SenderAI  = "AI"
	SenderYou = "You"
)

// ChatMessage is a single transcript entry of an AI chat session. Messages
// live only in the session, nothing is persisted.
type ChatMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// User mirrors the identity provider record into the content backend.
type User struct {
	ID       string `json:"id"`
	ImageURL string `json:"imageUrl"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}
