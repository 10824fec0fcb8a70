package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/Salat-Tamas/whitespac3/pkg/content"
	"github.com/Salat-Tamas/whitespac3/pkg/models"
	"github.com/Salat-Tamas/whitespac3/pkg/state"
)

// writeError maps accessor write failures onto gateway responses. Backend
// rejections keep their status, transport failures become a 502.
func writeError(w http.ResponseWriter, tag, sID string, err error) {
	switch {
	case errors.Is(err, content.ErrAuthRequired):
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		log.Debugf("[%s][%s] unauthenticated request rejected", tag, sID)
	case errors.Is(err, content.ErrEmptyContent):
		http.Error(w, "Content must not be empty", http.StatusBadRequest)
	default:
		var statusErr *content.StatusError
		if errors.As(err, &statusErr) {
			http.Error(w, "Content backend rejected request", statusErr.Code)
			log.Warnf("[%s][%s] backend rejected request: %v", tag, sID, err)
			return
		}
		http.Error(w, "Content Backend Unavailable", http.StatusBadGateway)
		log.Errorf("[%s][%s] backend call failed: %v", tag, sID, err)
	}
}

func (api *API) createPostHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	uid := userID(r)
	if uid == "" {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		log.Debugf("[createPostHandler][%s] missing user-id header", sID)
		return
	}

	var p content.NewPost
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "Bad Request: invalid JSON", http.StatusBadRequest)
		log.Errorf("[createPostHandler][%s] failed to decode request body: %v", sID, err)
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.ContentMD) == "" {
		http.Error(w, "Title and content must not be empty", http.StatusBadRequest)
		return
	}

	if api.filter.Blocked(p.Title) || api.filter.Blocked(p.PreviewMD) || api.filter.Blocked(p.ContentMD) {
		http.Error(w, "Content rejected by moderation", http.StatusBadRequest)
		log.Infof("[createPostHandler][%s] post from user %s rejected by moderation", sID, uid)
		return
	}

	created, err := api.content.CreatePost(r.Context(), uid, p)
	if err != nil {
		writeError(w, "createPostHandler", sID, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		log.Errorf("[createPostHandler][%s] failed to encode response data: %v", sID, err)
	}
}

func (api *API) createCourseHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	var nc content.NewCourse
	if err := json.NewDecoder(r.Body).Decode(&nc); err != nil {
		http.Error(w, "Bad Request: invalid JSON", http.StatusBadRequest)
		log.Errorf("[createCourseHandler][%s] failed to decode request body: %v", sID, err)
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(nc.Name) == "" {
		http.Error(w, "Course name must not be empty", http.StatusBadRequest)
		return
	}

	created, err := api.content.CreateCourse(r.Context(), nc)
	if err != nil {
		writeError(w, "createCourseHandler", sID, err)
		return
	}

	// Mirror the new course into the requester's topic grouping so the next
	// course list shows it without a refetch.
	api.sessions.Session(userID(r)).AddCourse(nc.TopicID, created)

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		log.Errorf("[createCourseHandler][%s] failed to encode response data: %v", sID, err)
	}
}

// toggleLikeHandler flips the like state of a post. The client reports the
// state it rendered; the response carries the backend-confirmed count,
// which may differ from the local arithmetic under concurrent likes.
func (api *API) toggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))
	postID := mux.Vars(r)["id"]

	var req LikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request: invalid JSON", http.StatusBadRequest)
		log.Errorf("[toggleLikeHandler][%s] failed to decode request body: %v", sID, err)
		return
	}
	defer r.Body.Close()

	upd, err := api.content.TogglePostLike(r.Context(), postID, userID(r), req.Liked, req.LikeCount)
	if err != nil {
		writeError(w, "toggleLikeHandler", sID, err)
		return
	}

	if err := json.NewEncoder(w).Encode(upd); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		log.Errorf("[toggleLikeHandler][%s] failed to encode response data: %v", sID, err)
	}
}

func (api *API) toggleFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	uid := userID(r)
	if uid == "" {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	courseID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid course id", http.StatusBadRequest)
		return
	}

	sess := api.sessions.Session(uid)
	nowFavorite, err := sess.ToggleFavorite(r.Context(), courseID)
	if err != nil {
		if errors.Is(err, state.ErrCourseNotFound) {
			http.Error(w, "Course not found", http.StatusNotFound)
			log.Debugf("[toggleFavoriteHandler][%s] unknown course %d", sID, courseID)
			return
		}
		writeError(w, "toggleFavoriteHandler", sID, err)
		return
	}

	resp := FavoriteResponse{CourseID: courseID, IsFavorite: nowFavorite}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		log.Errorf("[toggleFavoriteHandler][%s] failed to encode response data: %v", sID, err)
	}
}

func (api *API) addCommentHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))
	postID := mux.Vars(r)["id"]

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request: invalid JSON", http.StatusBadRequest)
		log.Errorf("[addCommentHandler][%s] failed to decode request body: %v", sID, err)
		return
	}
	defer r.Body.Close()

	if api.filter.Blocked(req.Content) {
		http.Error(w, "Content rejected by moderation", http.StatusBadRequest)
		log.Infof("[addCommentHandler][%s] comment on post %s rejected by moderation", sID, postID)
		return
	}

	created, err := api.content.AddComment(r.Context(), postID, userID(r), req.Content)
	if err != nil {
		writeError(w, "addCommentHandler", sID, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		log.Errorf("[addCommentHandler][%s] failed to encode response data: %v", sID, err)
	}
}

// signinCallbackHandler mirrors a freshly signed-in user into the backend.
// An already-existing user is not an error.
func (api *API) signinCallbackHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	var u models.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, "Bad Request: invalid JSON", http.StatusBadRequest)
		log.Errorf("[signinCallbackHandler][%s] failed to decode request body: %v", sID, err)
		return
	}
	defer r.Body.Close()

	if u.ID == "" {
		http.Error(w, "Bad Request: missing user id", http.StatusBadRequest)
		return
	}

	if err := api.content.CreateUser(r.Context(), u); err != nil {
		writeError(w, "signinCallbackHandler", sID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	log.Debugf("[signinCallbackHandler][%s] user %s synced", sID, u.ID)
}
