package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/Salat-Tamas/whitespac3/pkg/chat"
)

// chatHandler upgrades the request and relays the conversation to the AI
// assistant backend through a chat session. One upstream socket per client
// connection, torn down with it; a dropped upstream is reported to the
// client by closing, there is no reconnection.
func (api *API) chatHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))
	uid := userID(r)

	conn, err := api.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("[chatHandler][%s] upgrade failed: %v", sID, err)
		return
	}
	defer conn.Close()

	sess, err := chat.Dial(r.Context(), api.content.ChatURL(), map[string]string{
		"csrf-token": api.content.CSRFToken(),
		"user-id":    uid,
	})
	if err != nil {
		log.Errorf("[chatHandler][%s] failed to reach assistant: %v", sID, err)
		msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "assistant unavailable")
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		return
	}
	defer sess.Close()

	// Assistant replies flow back as transcript events.
	go func() {
		for msg := range sess.Events() {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debugf("[chatHandler][%s] client write failed: %v", sID, err)
				conn.Close()
				return
			}
		}
		// Upstream closed; unblock the client read loop.
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Debugf("[chatHandler][%s] client disconnected: %v", sID, err)
			return
		}

		var p struct {
			Markdown string `json:"markdown"`
			Prompt   string `json:"prompt"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			log.Debugf("[chatHandler][%s] dropping malformed frame: %v", sID, err)
			continue
		}

		if !sess.SendMessage(p.Markdown, p.Prompt) {
			log.Debugf("[chatHandler][%s] assistant session is gone", sID)
			return
		}
	}
}
