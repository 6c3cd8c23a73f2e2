// Package feed serves a small WebSocket endpoint on the loopback
// interface. It publishes the monitor state and fired actions to local
// clients (keycap overlays, status bars) and accepts fire commands from
// them, which go through the same dispatcher gate as physical presses.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fnrow/fnrow/internal/action"
	"github.com/fnrow/fnrow/internal/keymap"
)

const writeDeadline = 5 * time.Second

var upgrader = websocket.Upgrader{
	// The feed binds to loopback; an origin check adds nothing there.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type stateMessage struct {
	Type    string `json:"type"`
	Monitor string `json:"monitor"`
	Pressed []int  `json:"pressed"`
}

type firedMessage struct {
	Type   string `json:"type"`
	Key    int    `json:"key"`
	Action string `json:"action"`
}

type commandMessage struct {
	Type string `json:"type"`
	Key  int    `json:"key"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// client pairs a connection with the write lock gorilla requires.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) send(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Server broadcasts daemon state over WebSocket. Broadcast calls never
// block the caller: messages pass through a buffered outbox drained by
// one pump goroutine, and a full outbox drops the message rather than
// stalling key handling.
type Server struct {
	stateFn func() (string, []keymap.Key)
	fireFn  func(keymap.Key)

	mu      sync.Mutex
	clients map[*client]bool

	listener  net.Listener
	server    *http.Server
	url       string
	outbox    chan interface{}
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewServer builds a feed. stateFn supplies the snapshot sent to new
// clients and on BroadcastState; fireFn receives fire commands.
func NewServer(stateFn func() (string, []keymap.Key), fireFn func(keymap.Key)) *Server {
	return &Server{
		stateFn: stateFn,
		fireFn:  fireFn,
		clients: make(map[*client]bool),
		outbox:  make(chan interface{}, 32),
		done:    make(chan struct{}),
	}
}

// Start listens on addr and serves the /ws endpoint. Use port 0 to let
// the OS pick one.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %v", addr, err)
	}
	s.listener = ln
	s.url = fmt.Sprintf("ws://%s/ws", ln.Addr().String())

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.server = &http.Server{Handler: mux}

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("[FEED] Server error: %v", err)
		}
	}()

	s.wg.Add(1)
	go s.pump()

	log.Printf("[FEED] Listening on %s", s.url)
	return nil
}

// URL returns the ws:// endpoint, empty before Start.
func (s *Server) URL() string {
	return s.url
}

// Stop disconnects all clients and shuts the server down. Idempotent.
func (s *Server) Stop() error {
	var stopErr error
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()

		s.mu.Lock()
		clients := make([]*client, 0, len(s.clients))
		for c := range s.clients {
			clients = append(clients, c)
		}
		s.clients = make(map[*client]bool)
		s.mu.Unlock()
		for _, c := range clients {
			c.conn.Close()
		}

		if s.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.server.Shutdown(ctx); err != nil {
				stopErr = fmt.Errorf("failed to shut down feed: %v", err)
			}
		}
		log.Println("[FEED] Stopped")
	})
	return stopErr
}

// BroadcastState queues the current snapshot for all clients.
func (s *Server) BroadcastState() {
	s.enqueue(s.snapshot())
}

// BroadcastFired queues a fired notification.
func (s *Server) BroadcastFired(k keymap.Key, act action.Action) {
	s.enqueue(firedMessage{Type: "fired", Key: int(k), Action: string(act.Type)})
}

func (s *Server) snapshot() stateMessage {
	monitorState, pressed := s.stateFn()
	keys := make([]int, 0, len(pressed))
	for _, k := range pressed {
		keys = append(keys, int(k))
	}
	return stateMessage{Type: "state", Monitor: monitorState, Pressed: keys}
}

func (s *Server) enqueue(v interface{}) {
	select {
	case s.outbox <- v:
	default:
		// The feed is best effort; a stalled client never backs up the
		// key path.
	}
}

func (s *Server) pump() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case v := <-s.outbox:
			s.deliver(v)
		}
	}
}

func (s *Server) deliver(v interface{}) {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		if err := c.send(v); err != nil {
			log.Printf("[FEED] Dropping client: %v", err)
			s.drop(c)
		}
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.conn.Close()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[FEED] Upgrade failed: %v", err)
		return
	}
	c := &client{conn: conn}

	s.mu.Lock()
	s.clients[c] = true
	count := len(s.clients)
	s.mu.Unlock()
	log.Printf("[FEED] Client connected (%d total)", count)

	// New clients get the current state right away.
	if err := c.send(s.snapshot()); err != nil {
		s.drop(c)
		return
	}

	s.readPump(c)
}

func (s *Server) readPump(c *client) {
	defer func() {
		s.drop(c)
		log.Println("[FEED] Client disconnected")
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd commandMessage
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.send(errorMessage{Type: "error", Message: "invalid JSON"})
			continue
		}
		switch cmd.Type {
		case "fire":
			// Key validation happens at the dispatcher boundary.
			s.fireFn(keymap.Key(cmd.Key))
		default:
			c.send(errorMessage{Type: "error", Message: fmt.Sprintf("unknown command %q", cmd.Type)})
		}
	}
}
