// Package state keeps the per-user view of topic groupings and favorites
// between requests, mirroring flags the backend owns. It can be dropped at
// any time and rebuilt from the next load.
package state

import (
	"context"
	"errors"
	"sync"

	"github.com/Salat-Tamas/whitespac3/pkg/content"
	"github.com/Salat-Tamas/whitespac3/pkg/models"
)

var ErrCourseNotFound = errors.New("course not found")

// Session holds one user's topic list plus the parallel favorites list.
// The two representations are always updated in the same critical section.
// Favorite toggles are serialized by the mutex, so two rapid toggles on the
// same course observe each other instead of both reading stale state.
type Session struct {
	mu     sync.Mutex
	client *content.Client
	userID string

	topics    []models.Topic
	favorites []models.Course
	sample    bool
}

func NewSession(client *content.Client, userID string) *Session {
	return &Session{client: client, userID: userID}
}

// LoadTopics refreshes the topic list from the backend and rebuilds the
// favorites list from the returned flags. Reports whether sample data was
// substituted.
func (s *Session) LoadTopics(ctx context.Context) ([]models.Topic, bool) {
	res := s.client.TopicsWithCourses(ctx, s.userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.topics = res.Topics
	s.sample = res.UsingSampleData
	s.rebuildFavorites()

	return copyTopics(s.topics), res.UsingSampleData
}

func (s *Session) Topics() []models.Topic {
	s.mu.Lock()
	defer s.mu.Unlock()

	return copyTopics(s.topics)
}

func (s *Session) Favorites() []models.Course {
	s.mu.Lock()
	defer s.mu.Unlock()

	favorites := make([]models.Course, len(s.favorites))
	copy(favorites, s.favorites)

	return favorites
}

func (s *Session) UsingSampleData() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sample
}

// ToggleFavorite flips the favorite flag of a course. The current state is
// looked up from the cached topic list, the matching add or remove request
// is issued, and on success the flag is flipped across all topic groupings
// together with the favorites list. On failure nothing changes locally.
func (s *Session) ToggleFavorite(ctx context.Context, courseID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.favoriteState(courseID)
	if !ok {
		return false, ErrCourseNotFound
	}

	var err error
	if current {
		err = s.client.RemoveFavorite(ctx, courseID, s.userID)
	} else {
		err = s.client.AddFavorite(ctx, courseID, s.userID)
	}
	if err != nil {
		return current, err
	}

	s.setFavorite(courseID, !current)

	return !current, nil
}

// AddCourse appends a freshly created course to its topic grouping.
func (s *Session) AddCourse(topicID int, course models.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.topics {
		if s.topics[i].ID == topicID {
			s.topics[i].Courses = append(s.topics[i].Courses, course)
			return
		}
	}
}

// Course looks up a course by id across all topic groupings.
func (s *Session) Course(courseID int) (models.Course, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, topic := range s.topics {
		for _, course := range topic.Courses {
			if course.ID == courseID {
				return course, true
			}
		}
	}

	return models.Course{}, false
}

func (s *Session) favoriteState(courseID int) (favorite, found bool) {
	for _, topic := range s.topics {
		for _, course := range topic.Courses {
			if course.ID == courseID {
				return course.IsFavorite, true
			}
		}
	}

	return false, false
}

// setFavorite flips the flag in every grouping the course appears in and
// keeps the favorites list in step. Caller holds the mutex.
func (s *Session) setFavorite(courseID int, favorite bool) {
	var flipped models.Course
	for ti := range s.topics {
		for ci := range s.topics[ti].Courses {
			if s.topics[ti].Courses[ci].ID == courseID {
				s.topics[ti].Courses[ci].IsFavorite = favorite
				flipped = s.topics[ti].Courses[ci]
			}
		}
	}

	if favorite {
		for _, course := range s.favorites {
			if course.ID == courseID {
				return
			}
		}
		s.favorites = append(s.favorites, flipped)
		return
	}

	for i, course := range s.favorites {
		if course.ID == courseID {
			s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
			return
		}
	}
}

func (s *Session) rebuildFavorites() {
	s.favorites = s.favorites[:0]
	seen := make(map[int]bool)
	for _, topic := range s.topics {
		for _, course := range topic.Courses {
			if course.IsFavorite && !seen[course.ID] {
				seen[course.ID] = true
				s.favorites = append(s.favorites, course)
			}
		}
	}
}

func copyTopics(topics []models.Topic) []models.Topic {
	out := make([]models.Topic, len(topics))
	copy(out, topics)
	for i, topic := range out {
		courses := make([]models.Course, len(topic.Courses))
		copy(courses, topic.Courses)
		out[i].Courses = courses
	}

	return out
}

// Registry hands out one session per user id. Sessions are never evicted;
// the map grows with the number of distinct user ids seen since startup,
// and each entry is a few cached slices at most. All anonymous requests
// share the "" session, which carries no favorites because the backend
// never flags courses for an empty user id.
type Registry struct {
	mu       sync.Mutex
	client   *content.Client
	sessions map[string]*Session
}

func NewRegistry(client *content.Client) *Registry {
	return &Registry{
		client:   client,
		sessions: make(map[string]*Session),
	}
}

func (r *Registry) Session(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	if !ok {
		s = NewSession(r.client, userID)
		r.sessions[userID] = s
	}

	return s
}
