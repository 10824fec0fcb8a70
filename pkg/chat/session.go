// Package chat maintains a single websocket conversation with the AI
// assistant backend. One session maps to one socket; there is no
// reconnection, a closed session stays closed.
package chat

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/Salat-Tamas/whitespac3/pkg/models"
)

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// payload is the outbound wire format. There is no correlation id; replies
// arrive in whatever order the assistant produces them.
type payload struct {
	Markdown string `json:"markdown"`
	Prompt   string `json:"prompt"`
}

type Session struct {
	mu       sync.Mutex
	conn     *websocket.Conn
	state    State
	messages []models.ChatMessage

	events chan models.ChatMessage
}

// Dial opens the socket. Extra headers are encoded as query parameters,
// which is what the assistant endpoint expects instead of HTTP headers.
func Dial(ctx context.Context, rawURL string, headers map[string]string) (*Session, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	for k, v := range headers {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	s := &Session{
		state:  Connecting,
		events: make(chan models.ChatMessage, 16),
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		s.state = Disconnected
		return nil, err
	}

	s.conn = conn
	s.state = Connected
	log.Debugf("[chat] connected to %s", u.Host)

	go s.readLoop()

	return s, nil
}

// readLoop appends every inbound frame to the transcript as an AI entry
// until the socket dies.
func (s *Session) readLoop() {
	defer close(s.events)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			s.state = Disconnected
			s.mu.Unlock()
			log.Debugf("[chat] disconnected: %v", err)
			return
		}

		msg := models.ChatMessage{Sender: models.SenderAI, Text: decodeFrame(data)}

		s.mu.Lock()
		s.messages = append(s.messages, msg)
		s.mu.Unlock()

		select {
		case s.events <- msg:
		default:
			// Slow consumer; the transcript still has the entry.
		}
	}
}

// decodeFrame unwraps a JSON string frame, falling back to the raw bytes.
// Malformed JSON is delivered verbatim, never an error.
func decodeFrame(data []byte) string {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		return text
	}
	return string(data)
}

// SendMessage ships a prompt together with the markdown the user is
// reading. It reports false without side effects unless the session is
// connected; on success the prompt is appended to the transcript as a
// "You" entry. Fire and forget, no acknowledgement is awaited.
func (s *Session) SendMessage(markdown, prompt string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Connected {
		return false
	}

	if err := s.conn.WriteJSON(payload{Markdown: markdown, Prompt: prompt}); err != nil {
		log.Warnf("[chat] send failed: %v", err)
		s.state = Disconnected
		return false
	}

	s.messages = append(s.messages, models.ChatMessage{Sender: models.SenderYou, Text: prompt})

	return true
}

// Messages returns a snapshot of the transcript.
func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)

	return out
}

// Events streams inbound AI entries for callers that forward them. The
// stream is lossy: when the consumer falls behind the buffer, frames are
// dropped from the stream but kept in the transcript, so Messages always
// has the full conversation. The channel closes when the session
// disconnects.
func (s *Session) Events() <-chan models.ChatMessage {
	return s.events
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *Session) IsConnected() bool {
	return s.State() == Connected
}

// Close releases the socket. The session cannot be reused afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Disconnected
	if s.conn != nil {
		return s.conn.Close()
	}

	return nil
}
