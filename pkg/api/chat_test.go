package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/segmentio/kafka-go"

	"github.com/Salat-Tamas/whitespac3/pkg/content"
	"github.com/Salat-Tamas/whitespac3/pkg/models"
	"github.com/Salat-Tamas/whitespac3/pkg/moderate"
)

// newAssistantServer runs a fake assistant that reads one prompt frame and
// echoes it back as a JSON string reply.
func newAssistantServer(t *testing.T) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("user-id"); got != "user-1" {
			t.Errorf("want user-id query param user-1, got %q", got)
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("assistant upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		var p struct {
			Markdown string `json:"markdown"`
			Prompt   string `json:"prompt"`
		}
		if err := conn.ReadJSON(&p); err != nil {
			return
		}
		conn.WriteJSON("echo: " + p.Prompt)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func relayOnce(t *testing.T, gatewayURL string) models.ChatMessage {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(gatewayURL, "http") + "/chat"
	header := http.Header{}
	header.Set("user-id", "user-1")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("failed to dial gateway: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{
		"markdown": "# Slices",
		"prompt":   "what is a slice?",
	}); err != nil {
		t.Fatalf("failed to send prompt: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply models.ChatMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("failed to read relayed reply: %v", err)
	}

	return reply
}

// TestAPI_chatHandlerRelay runs a fake assistant behind a real websocket
// server and checks that a prompt sent to the gateway comes back as an AI
// reply on the same client socket.
func TestAPI_chatHandlerRelay(t *testing.T) {
	assistant := newAssistantServer(t)

	cfg := content.Config{
		BaseURL:   testBackendURL,
		CSRFToken: "test-token",
		ChatURL:   "ws" + strings.TrimPrefix(assistant.URL, "http"),
	}
	api := New("test-gateway", cfg, moderate.New(), nil)

	gateway := httptest.NewServer(api.Router())
	defer gateway.Close()

	reply := relayOnce(t, gateway.URL)

	if reply.Sender != models.SenderAI {
		t.Errorf("want sender %q, got %q", models.SenderAI, reply.Sender)
	}
	if want := "echo: what is a slice?"; reply.Text != want {
		t.Errorf("want reply %q, got %q", want, reply.Text)
	}
}

// TestAPI_chatHandlerRelayWithAccessLog upgrades through the access-log
// middleware, whose recording writer must pass hijacking through to the
// server connection for the upgrade to succeed.
func TestAPI_chatHandlerRelayWithAccessLog(t *testing.T) {
	assistant := newAssistantServer(t)

	// Async writer against an unreachable broker: log delivery fails in the
	// background without stalling the request path.
	kw := &kafka.Writer{
		Addr:  kafka.TCP("127.0.0.1:1"),
		Topic: "test-access-log",
		Async: true,
	}
	defer kw.Close()

	cfg := content.Config{
		BaseURL:   testBackendURL,
		CSRFToken: "test-token",
		ChatURL:   "ws" + strings.TrimPrefix(assistant.URL, "http"),
	}
	api := New("test-gateway", cfg, moderate.New(), kw)

	gateway := httptest.NewServer(api.Router())
	defer gateway.Close()

	reply := relayOnce(t, gateway.URL)

	if want := "echo: what is a slice?"; reply.Text != want {
		t.Errorf("want reply %q, got %q", want, reply.Text)
	}
}

func TestAPI_chatHandlerAssistantUnavailable(t *testing.T) {
	cfg := content.Config{
		BaseURL:   testBackendURL,
		CSRFToken: "test-token",
		ChatURL:   "ws://127.0.0.1:1/chat",
	}
	api := New("test-gateway", cfg, moderate.New(), nil)

	gateway := httptest.NewServer(api.Router())
	defer gateway.Close()

	wsURL := "ws" + strings.TrimPrefix(gateway.URL, "http") + "/chat"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial gateway: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	if !ok {
		t.Fatalf("want close error, got %v", err)
	}
	if closeErr.Code != websocket.CloseTryAgainLater {
		t.Errorf("want close code %d, got %d", websocket.CloseTryAgainLater, closeErr.Code)
	}
}
