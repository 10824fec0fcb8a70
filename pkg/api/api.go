// Package api is the HTTP surface of the content gateway. Each route
// composes the remote accessor the way a page of the original front end
// composed its fetch calls: read routes tolerate a dead backend by serving
// the sample dataset, write routes surface failures.
package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"github.com/Salat-Tamas/whitespac3/pkg/content"
	"github.com/Salat-Tamas/whitespac3/pkg/models"
	"github.com/Salat-Tamas/whitespac3/pkg/moderate"
	"github.com/Salat-Tamas/whitespac3/pkg/state"
)

const maxPostsLimit = 100

// sampleDataHeader tells clients a response was served from the fallback
// dataset, the HTTP analog of the degraded-mode banner.
const sampleDataHeader = "X-Sample-Data"

type API struct {
	ServiceName string

	r        *mux.Router
	kw       *kafka.Writer
	content  *content.Client
	sessions *state.Registry
	filter   *moderate.Filter
	upgrader websocket.Upgrader
}

func New(name string, cfg content.Config, filter *moderate.Filter, kafkaWriter *kafka.Writer) *API {
	client := content.New(cfg)
	api := API{
		ServiceName: name,
		r:           mux.NewRouter(),
		kw:          kafkaWriter,
		content:     client,
		sessions:    state.NewRegistry(client),
		filter:      filter,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	api.endpoints()

	return &api
}

func (api *API) Router() *mux.Router {
	return api.r
}

func (api *API) endpoints() {
	api.r.Use(api.requestIDMiddleware)
	api.r.Use(api.headerMiddleware)

	if api.kw != nil {
		api.r.Use(api.loggingMiddleware(api.kw))
	}

	api.r.HandleFunc("/courses", api.coursesHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/courses", api.createCourseHandler).Methods(http.MethodPost)
	api.r.HandleFunc("/courses/{id:[0-9]+}", api.courseDetailHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/courses/{id:[0-9]+}/favorite", api.toggleFavoriteHandler).Methods(http.MethodPost)
	api.r.HandleFunc("/favorites", api.favoritesHandler).Methods(http.MethodGet)

	api.r.HandleFunc("/posts", api.postsHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/posts", api.createPostHandler).Methods(http.MethodPost)
	api.r.HandleFunc("/posts/{id}", api.postDetailHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/posts/{id}/like", api.toggleLikeHandler).Methods(http.MethodPost)
	api.r.HandleFunc("/posts/{id}/comments", api.commentsHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/posts/{id}/comments", api.addCommentHandler).Methods(http.MethodPost)

	api.r.HandleFunc("/signin-callback", api.signinCallbackHandler).Methods(http.MethodPost)
	api.r.HandleFunc("/chat", api.chatHandler).Methods(http.MethodGet)
}

// userID returns the authenticated user id the identity layer put on the
// request. Empty for anonymous visitors.
func userID(r *http.Request) string {
	return r.Header.Get("user-id")
}

func markSampleData(w http.ResponseWriter) {
	w.Header().Set(sampleDataHeader, "true")
}

func (api *API) coursesHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	sess := api.sessions.Session(userID(r))
	topics, sample := sess.LoadTopics(r.Context())
	if sample {
		markSampleData(w)
	}

	if err := json.NewEncoder(w).Encode(topics); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		log.Errorf("[coursesHandler][%s] failed to encode response data: %v", sID, err)
		return
	}
	log.Debugf("[coursesHandler][%s] response sent to: %v", sID, r.RemoteAddr)
}

func (api *API) courseDetailHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	courseID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid course id", http.StatusBadRequest)
		return
	}

	sess := api.sessions.Session(userID(r))
	course, ok := sess.Course(courseID)
	if !ok {
		// Session may be cold, refresh the topic list once.
		sess.LoadTopics(r.Context())
		course, ok = sess.Course(courseID)
	}
	if !ok {
		http.Error(w, "Course not found", http.StatusNotFound)
		log.Debugf("[courseDetailHandler][%s] unknown course %d", sID, courseID)
		return
	}

	res := api.content.Posts(r.Context(), userID(r), content.PostsQuery{Limit: maxPostsLimit})
	if res.UsingSampleData {
		markSampleData(w)
	}

	detail := CourseDetail{Course: course, Posts: make([]models.Post, 0)}
	for _, post := range res.Posts {
		if post.CourseID == courseID {
			detail.Posts = append(detail.Posts, post)
		}
	}

	if err := json.NewEncoder(w).Encode(detail); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		log.Errorf("[courseDetailHandler][%s] failed to encode response data: %v", sID, err)
	}
}

func (api *API) favoritesHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	sess := api.sessions.Session(userID(r))
	if err := json.NewEncoder(w).Encode(sess.Favorites()); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		log.Errorf("[favoritesHandler][%s] failed to encode response data: %v", sID, err)
	}
}

func (api *API) postsHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	sortByLikes, _ := strconv.ParseBool(r.URL.Query().Get("sort_by_likes"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = content.DefaultPostsLimit
	}
	if limit > maxPostsLimit {
		http.Error(w, "Limit parameter is too big", http.StatusBadRequest)
		log.Debugf("[postsHandler][%s] request with too big limit parameter", sID)
		return
	}

	res := api.content.Posts(r.Context(), userID(r), content.PostsQuery{
		SortByLikes: sortByLikes,
		Limit:       limit,
	})
	if res.UsingSampleData {
		markSampleData(w)
	}

	if err := json.NewEncoder(w).Encode(res.Posts); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		log.Errorf("[postsHandler][%s] failed to encode response data: %v", sID, err)
		return
	}
	log.Debugf("[postsHandler][%s] response sent to: %v", sID, r.RemoteAddr)
}

// postDetailHandler merges the post and its comments, fetched concurrently.
func (api *API) postDetailHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))
	postID := mux.Vars(r)["id"]
	uid := userID(r)

	numSubRequests := 2
	respChan := make(chan any, numSubRequests)
	wg := &sync.WaitGroup{}
	wg.Add(numSubRequests)

	go func() {
		defer wg.Done()
		respChan <- api.content.Post(r.Context(), uid, postID)
	}()

	go func() {
		defer wg.Done()
		respChan <- api.content.Comments(r.Context(), uid, postID)
	}()

	wg.Wait()
	close(respChan)

	var postRes content.PostResult
	var commentsRes content.CommentsResult

	for msg := range respChan {
		switch v := msg.(type) {
		case content.PostResult:
			postRes = v
		case content.CommentsResult:
			commentsRes = v
		}
	}

	if postRes.Err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		log.Infof("[postDetailHandler][%s] %v", sID, postRes.Err)
		return
	}

	if postRes.UsingSampleData || commentsRes.UsingSampleData {
		markSampleData(w)
	}

	detail := PostDetail{Post: *postRes.Post, Comments: commentsRes.Comments}
	sortCommentsNewestFirst(detail.Comments)

	if err := json.NewEncoder(w).Encode(detail); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		log.Errorf("[postDetailHandler][%s] failed to encode response data: %v", sID, err)
	}
}

func (api *API) commentsHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))
	postID := mux.Vars(r)["id"]

	res := api.content.Comments(r.Context(), userID(r), postID)
	if res.UsingSampleData {
		markSampleData(w)
	}
	sortCommentsNewestFirst(res.Comments)

	if err := json.NewEncoder(w).Encode(res.Comments); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		log.Errorf("[commentsHandler][%s] failed to encode response data: %v", sID, err)
	}
}

func sortCommentsNewestFirst(comments []models.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
}
