package api

import (
	"time"

	"github.com/Salat-Tamas/whitespac3/pkg/models"
)

type PostDetail struct {
	models.Post
	Comments []models.Comment `json:"comments,omitempty"`
}

type LikeRequest struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

type FavoriteResponse struct {
	CourseID   int  `json:"course_id"`
	IsFavorite bool `json:"is_favorite"`
}

type CourseDetail struct {
	models.Course
	Posts []models.Post `json:"posts"`
}

type LogEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	IP         string    `json:"ip"`
	StatusCode int       `json:"status_code"`
	RequestID  string    `json:"request_id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Duration   float64   `json:"duration_sec"`
	Service    string    `json:"service"`
}
