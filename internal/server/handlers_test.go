package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/roomchat/internal/protocol"
	"github.com/Tyrowin/roomchat/internal/server"
)

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHealthHandler(t *testing.T) {
	req := require.New(t)
	rec := httptest.NewRecorder()

	server.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	req.Equal(http.StatusOK, rec.Code)
	req.Equal("text/plain", rec.Header().Get("Content-Type"))
	req.Equal("Room chat server is running!", rec.Body.String())
}

func TestTestPageHandler(t *testing.T) {
	req := require.New(t)
	rec := httptest.NewRecorder()

	server.TestPageHandler(rec, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))

	req.Equal(http.StatusOK, rec.Code)
	req.Equal("text/html", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	req.Contains(body, "'join'")
	req.Contains(body, "'sendMessage'")
	req.Contains(body, "'locationMessage'")
}

func TestWebSocketHandler_MethodValidation(t *testing.T) {
	srv := startChatServer(t, nil)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			r, err := http.NewRequest(method, srv.url+"/ws", strings.NewReader("x"))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(r)
			require.NoError(t, err)
			_ = resp.Body.Close()
			require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		})
	}
}

func TestWebSocketHandler_GETWithoutUpgrade(t *testing.T) {
	srv := startChatServer(t, nil)

	resp, _ := get(t, srv.url+"/ws")

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRoomHandler(t *testing.T) {
	req := require.New(t)
	srv := startChatServer(t, nil)
	srv.join(t, "Alice", "Lobby")
	srv.join(t, "Bob", "lobby")
	srv.join(t, "Carol", "kitchen")

	// When the lobby roster is requested in any case
	resp, body := get(t, srv.url+"/rooms/LOBBY")

	// Then it lists the lobby members in join order
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal("application/json", resp.Header.Get("Content-Type"))
	var payload protocol.RoomDataPayload
	req.NoError(json.Unmarshal([]byte(body), &payload))
	req.Equal("lobby", payload.Room)
	req.Equal([]protocol.RosterEntry{{Username: "Alice"}, {Username: "Bob"}}, payload.Users)
}

func TestRoomHandler_EmptyRoom(t *testing.T) {
	srv := startChatServer(t, nil)

	resp, body := get(t, srv.url+"/rooms/nobody-here")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"room":"nobody-here","users":[]}`, body)
}

func TestCreateServer(t *testing.T) {
	req := require.New(t)
	mux := http.NewServeMux()

	httpServer := server.CreateServer(":0", mux)

	req.Equal(":0", httpServer.Addr)
	req.Equal(mux, httpServer.Handler)
	req.Equal(15*time.Second, httpServer.ReadTimeout)
	req.Equal(15*time.Second, httpServer.WriteTimeout)
	req.Equal(60*time.Second, httpServer.IdleTimeout)
}
