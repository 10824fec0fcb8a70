package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/h2non/gock"

	"github.com/Salat-Tamas/whitespac3/pkg/models"
)

const testBaseURL = "http://backend.test"

func newTestClient(timeout time.Duration) *Client {
	return New(Config{
		BaseURL:   testBaseURL,
		CSRFToken: "test-token",
		Timeout:   timeout,
	})
}

func TestClient_TopicsWithCourses(t *testing.T) {
	defer gock.Off()

	wantTopics := []models.Topic{
		{ID: 1, Name: "Programming", Courses: []models.Course{
			{ID: 101, Name: "JavaScript Basics", IsFavorite: true},
		}},
	}

	gock.New(testBaseURL).
		Get("/topics_with_courses").
		MatchHeader("csrf-token", "test-token").
		MatchHeader("user-id", "user-1").
		Reply(200).
		JSON(wantTopics)

	c := newTestClient(0)
	res := c.TopicsWithCourses(context.Background(), "user-1")

	if res.UsingSampleData {
		t.Error("want live data, got sample data")
	}
	if res.Err != nil {
		t.Errorf("unexpected error: %v", res.Err)
	}
	if len(res.Topics) != 1 || res.Topics[0].Name != "Programming" {
		t.Errorf("want topics %+v, got %+v", wantTopics, res.Topics)
	}
	if !res.Topics[0].Courses[0].IsFavorite {
		t.Error("want favorite flag preserved from backend response")
	}
}

func TestClient_TopicsWithCoursesStatusFallback(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).Get("/topics_with_courses").Reply(500)

	c := newTestClient(0)
	res := c.TopicsWithCourses(context.Background(), "")

	if !res.UsingSampleData {
		t.Error("want sample data on backend error status")
	}
	if res.Err != nil {
		t.Errorf("want nil error on read fallback, got %v", res.Err)
	}
	if len(res.Topics) != 3 {
		t.Errorf("want 3 sample topics, got %d", len(res.Topics))
	}
	if res.Topics[0].Name != "Programming" {
		t.Errorf("want first sample topic %q, got %q", "Programming", res.Topics[0].Name)
	}
}

func TestClient_TopicsWithCoursesNetworkFallback(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).
		Get("/topics_with_courses").
		ReplyError(errors.New("connection refused"))

	c := newTestClient(0)
	res := c.TopicsWithCourses(context.Background(), "")

	if !res.UsingSampleData {
		t.Error("want sample data on network error")
	}
	if res.Err != nil {
		t.Errorf("want nil error on read fallback, got %v", res.Err)
	}
}

func TestClient_PostsTimeoutFallback(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).
		Get("/posts").
		Reply(200).
		Delay(200 * time.Millisecond).
		JSON([]models.Post{})

	c := newTestClient(50 * time.Millisecond)
	res := c.Posts(context.Background(), "", PostsQuery{})

	if !res.UsingSampleData {
		t.Error("want sample data when the request exceeds the timeout")
	}
	if res.Err != nil {
		t.Errorf("want nil error on timeout fallback, got %v", res.Err)
	}
}

func TestClient_PostsFallbackLimit(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).Get("/posts").Reply(500)

	c := newTestClient(0)
	res := c.Posts(context.Background(), "", PostsQuery{Limit: 2})

	if !res.UsingSampleData {
		t.Fatal("want sample data on backend error status")
	}
	if len(res.Posts) != 2 {
		t.Fatalf("want 2 posts, got %d", len(res.Posts))
	}
	if res.Posts[0].ID != "1" || res.Posts[1].ID != "2" {
		t.Errorf("want original relative order [1 2], got [%s %s]", res.Posts[0].ID, res.Posts[1].ID)
	}
}

func TestClient_PostsFallbackSortByLikes(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).Get("/posts").Reply(500)

	c := newTestClient(0)
	res := c.Posts(context.Background(), "", PostsQuery{SortByLikes: true})

	if !res.UsingSampleData {
		t.Fatal("want sample data on backend error status")
	}
	// Sample data is already descending by like count; the stable sort must
	// not reorder it.
	wantOrder := []string{"1", "2", "3"}
	for i, want := range wantOrder {
		if res.Posts[i].ID != want {
			t.Errorf("position %d: want post %s, got %s", i, want, res.Posts[i].ID)
		}
	}
}

func Test_sortPostsByLikes(t *testing.T) {
	posts := []models.Post{
		{ID: "a", LikeCount: 3},
		{ID: "b", LikeCount: 28},
		{ID: "c", LikeCount: 42},
		{ID: "d", LikeCount: 28},
	}

	sortPostsByLikes(posts)

	wantOrder := []string{"c", "b", "d", "a"}
	for i, want := range wantOrder {
		if posts[i].ID != want {
			t.Errorf("position %d: want post %s, got %s", i, want, posts[i].ID)
		}
	}
	// b before d checks tie stability: equal counts keep original order.
}

func TestClient_PostFallback(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).Get("/posts/1").Reply(500)

	c := newTestClient(0)
	res := c.Post(context.Background(), "", "1")

	if !res.UsingSampleData {
		t.Error("want sample data on backend error status")
	}
	if res.Err != nil {
		t.Errorf("want nil error for known sample post, got %v", res.Err)
	}
	if res.Post == nil || res.Post.Title != "Introduction to JavaScript Arrays" {
		t.Errorf("want sample post 1, got %+v", res.Post)
	}
}

func TestClient_PostFallbackNotFound(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).Get("/posts/999").Reply(500)

	c := newTestClient(0)
	res := c.Post(context.Background(), "", "999")

	if !res.UsingSampleData {
		t.Error("want sample data on backend error status")
	}
	if !errors.Is(res.Err, ErrPostNotFound) {
		t.Errorf("want ErrPostNotFound, got %v", res.Err)
	}
	if res.Post != nil {
		t.Errorf("want nil post, got %+v", res.Post)
	}
}

func TestClient_CommentsFallback(t *testing.T) {
	defer gock.Off()

	gock.New(testBaseURL).Get("/comments").Reply(500)

	c := newTestClient(0)
	res := c.Comments(context.Background(), "", "1")

	if !res.UsingSampleData {
		t.Error("want sample data on backend error status")
	}
	if len(res.Comments) != 2 {
		t.Errorf("want 2 sample comments for post 1, got %d", len(res.Comments))
	}
}

func TestClient_SampleDataIsCopied(t *testing.T) {
	topics := SampleTopics()
	topics[0].Courses[0].IsFavorite = true

	again := SampleTopics()
	if again[0].Courses[0].IsFavorite {
		t.Error("mutating a returned sample topic must not affect later calls")
	}
}
