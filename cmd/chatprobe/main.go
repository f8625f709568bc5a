// Command chatprobe joins a room on a running chat server and relays the
// terminal: each stdin line is sent as a message and room events are printed
// as they arrive.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Tyrowin/roomchat/internal/protocol"
	"github.com/Tyrowin/roomchat/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// probe owns the socket writes and the table of pending acks.
type probe struct {
	conn    *websocket.Conn
	out     printer
	mu      sync.Mutex
	nextAck int
	pending map[int]string
}

func (p *probe) emit(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextAck++
	id := p.nextAck
	p.pending[id] = event
	return p.conn.WriteJSON(server.ClientFrame{Event: event, Data: raw, Ack: &id})
}

// settle resolves an ack and reports a rejected event.
func (p *probe) settle(frame inbound) (event string, ok bool) {
	p.mu.Lock()
	event = p.pending[frame.Ack]
	delete(p.pending, frame.Ack)
	p.mu.Unlock()

	if frame.Error != "" {
		p.out.failure(event+" rejected:", frame.Error)
		return event, false
	}
	return event, true
}

func run() error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	header := http.Header{}
	header.Set("Origin", cfg.Origin)
	conn, _, err := websocket.DefaultDialer.Dial(cfg.ServerURL, header)
	if err != nil {
		return fmt.Errorf("dial %s: %w", cfg.ServerURL, err)
	}
	defer conn.Close()

	p := &probe{
		conn:    conn,
		out:     printer{out: os.Stdout, colours: cfg.Colours},
		pending: make(map[int]string),
	}

	if err := p.emit(protocol.EventJoin, protocol.JoinPayload{Username: cfg.Username, Room: cfg.Room}); err != nil {
		return fmt.Errorf("join: %w", err)
	}

	readErr := make(chan error, 1)
	go func() {
		readErr <- p.readLoop()
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case err := <-readErr:
			return err
		case line, ok := <-lines:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			}
			if line == "" {
				continue
			}
			event, data, err := parseLine(line)
			if err != nil {
				p.out.failure("input:", err.Error())
				continue
			}
			if err := p.emit(event, data); err != nil {
				return fmt.Errorf("send: %w", err)
			}
		}
	}
}

func (p *probe) readLoop() error {
	for {
		var frame inbound
		if err := p.conn.ReadJSON(&frame); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		if frame.Event == server.EventAck {
			if event, ok := p.settle(frame); !ok && event == protocol.EventJoin {
				return fmt.Errorf("join refused: %s", frame.Error)
			}
			continue
		}

		if err := p.out.render(frame); err != nil {
			p.out.failure("decode:", err.Error())
		}
	}
}
