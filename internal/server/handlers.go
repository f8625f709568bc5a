// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, room snapshots, and the built-in test page.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Tyrowin/roomchat/internal/presence"
	"github.com/Tyrowin/roomchat/internal/protocol"
	"github.com/gorilla/websocket"
)

// WebSocketHandler upgrades GET requests to WebSocket connections and hands
// each new Client to the hub, which launches its pumps and session.
func WebSocketHandler(hub *Hub) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(hub.log),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.log.Warn("WebSocket upgrade failed", "addr", r.RemoteAddr, "error", err)
			return
		}

		client := NewClient(conn, hub, r.RemoteAddr)
		if !hub.Register(client) {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			_ = conn.Close()
		}
	}
}

// HealthHandler provides a simple health check endpoint that returns server status.
// It responds with a plain text message indicating the server is running.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Room chat server is running!")
}

// RoomHandler returns the current roster of the room named in the path, in
// the same shape as the roomData event.
func RoomHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := presence.NormalizeRoom(r.PathValue("room"))
		if room == "" {
			http.Error(w, "room is required", http.StatusBadRequest)
			return
		}

		payload := protocol.RoomData(room, hub.Directory().UsersInRoom(room))
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			hub.log.Warn("Error writing room response", "room", room, "error", err)
		}
	}
}

// TestPageHandler serves an HTML page that joins a room over the WebSocket
// endpoint, sends messages and shares a location.
func TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if _, err := fmt.Fprint(w, testPage); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

const testPage = `<!DOCTYPE html>
<html>
<head>
    <title>Room Chat Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages {
            border: 1px solid #ccc;
            height: 300px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
        }
        #sidebar { float: right; width: 200px; }
        input[type="text"] { width: 200px; padding: 5px; margin-right: 10px; }
        button { padding: 5px 15px; background-color: #007cba; color: white; border: none; cursor: pointer; }
        button:disabled { background-color: #999; }
        .error { color: #721c24; }
    </style>
</head>
<body>
    <h1>Room Chat Test</h1>
    <div>
        <input type="text" id="username" placeholder="Display name">
        <input type="text" id="room" placeholder="Room">
        <button id="joinButton" onclick="join()">Join</button>
    </div>
    <div id="sidebar"></div>
    <div id="messages"></div>
    <div>
        <input type="text" id="messageInput" placeholder="Type a message..." disabled>
        <button id="sendButton" onclick="sendMessage()" disabled>Send</button>
        <button id="locationButton" onclick="sendLocation()" disabled>Send location</button>
    </div>

    <script>
        let ws = null;
        let nextAck = 1;
        const pending = {};
        const messagesDiv = document.getElementById('messages');

        function addLine(html, cls) {
            const el = document.createElement('div');
            if (cls) { el.className = cls; }
            el.innerHTML = html;
            messagesDiv.appendChild(el);
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function escapeHtml(s) {
            const d = document.createElement('div');
            d.textContent = s;
            return d.innerHTML;
        }

        function emit(event, data, callback) {
            const frame = { event: event, data: data };
            if (callback) {
                frame.ack = nextAck++;
                pending[frame.ack] = callback;
            }
            ws.send(JSON.stringify(frame));
        }

        function setJoined(joined) {
            document.getElementById('messageInput').disabled = !joined;
            document.getElementById('sendButton').disabled = !joined;
            document.getElementById('locationButton').disabled = !joined;
            document.getElementById('joinButton').disabled = joined;
        }

        function join() {
            const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
            ws = new WebSocket(proto + location.host + '/ws');
            ws.onopen = function() {
                emit('join', {
                    username: document.getElementById('username').value,
                    room: document.getElementById('room').value
                }, function(error) {
                    if (error) {
                        addLine(escapeHtml(error), 'error');
                        ws.close();
                        return;
                    }
                    setJoined(true);
                });
            };
            ws.onmessage = function(event) {
                const frame = JSON.parse(event.data);
                const time = frame.data && frame.data.createdAt ? new Date(frame.data.createdAt).toLocaleTimeString() : '';
                switch (frame.event) {
                case 'ack':
                    const cb = pending[frame.ack];
                    delete pending[frame.ack];
                    if (cb) { cb(frame.error); }
                    break;
                case 'message':
                    addLine('<strong>' + escapeHtml(frame.data.username) + '</strong> ' + time + ': ' + escapeHtml(frame.data.text));
                    break;
                case 'locationMessage':
                    addLine('<strong>' + escapeHtml(frame.data.username) + '</strong> ' + time + ': <a target="_blank" href="' + escapeHtml(frame.data.location) + '">My current location</a>');
                    break;
                case 'roomData':
                    document.getElementById('sidebar').innerHTML = '<h3>' + escapeHtml(frame.data.room) + '</h3><ul>' +
                        frame.data.users.map(function(u) { return '<li>' + escapeHtml(u.username) + '</li>'; }).join('') + '</ul>';
                    break;
                }
            };
            ws.onclose = function() {
                addLine('<em>Connection closed</em>');
                setJoined(false);
            };
        }

        function sendMessage() {
            const input = document.getElementById('messageInput');
            emit('sendMessage', input.value, function(error) {
                if (error) { addLine(escapeHtml(error), 'error'); }
                input.value = '';
                input.focus();
            });
        }

        function sendLocation() {
            if (!navigator.geolocation) {
                addLine('Geolocation is not supported by your browser.', 'error');
                return;
            }
            navigator.geolocation.getCurrentPosition(function(position) {
                emit('locationMessage', {
                    latitude: position.coords.latitude,
                    longitude: position.coords.longitude
                }, function() { addLine('<em>Location shared</em>'); });
            });
        }

        document.getElementById('messageInput').addEventListener('keypress', function(e) {
            if (e.key === 'Enter') { sendMessage(); }
        });
    </script>
</body>
</html>`
