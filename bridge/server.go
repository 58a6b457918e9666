package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Handler processes inbound messages of one connection. Handle is called from
// the connection's read loop, in arrival order, so it must not block for the
// length of an AI request.
type Handler interface {
	Handle(ctx context.Context, msg Inbound)
}

// HandlerFactory builds the handler for a new connection. The connection is
// the handler's Poster and Confirmer.
type HandlerFactory func(conn *Conn) Handler

// Server serves the view protocol over websockets. Every connection is an
// independent chat.
type Server struct {
	newHandler HandlerFactory
	upgrader   websocket.Upgrader

	mu    sync.Mutex
	conns map[*Conn]struct{}
}

func NewServer(newHandler HandlerFactory) *Server {
	return &Server{
		newHandler: newHandler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:    1024,
			WriteBufferSize:   1024,
			HandshakeTimeout:  10 * time.Second,
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		conns: make(map[*Conn]struct{}),
	}
}

// Routes returns the HTTP routes: /ws for the protocol, /healthz for probes.
func (s *Server) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Get("/ws", s.handleWS)
	return router
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("bridge listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.closeAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("bridge shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := newConn(ws)
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	log.Info().Str("remote", r.RemoteAddr).Msg("view connected")

	h := s.newHandler(conn)
	go conn.writeLoop()
	conn.readLoop(h)

	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	log.Info().Str("remote", r.RemoteAddr).Msg("view disconnected")
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.Close()
	}
}

// Conn is one connected view.
type Conn struct {
	ws     *websocket.Conn
	send   chan Outbound
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending map[string]chan bool
}

func newConn(ws *websocket.Conn) *Conn {
	ctx, cancel := context.WithCancel(context.Background())
	return &Conn{
		ws:      ws,
		send:    make(chan Outbound, 256),
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[string]chan bool),
	}
}

// Context is cancelled when the connection closes.
func (c *Conn) Context() context.Context {
	return c.ctx
}

// Post queues msg for the view. Messages are never dropped while the
// connection is open; after close they are discarded.
func (c *Conn) Post(msg Outbound) {
	select {
	case c.send <- msg:
	case <-c.ctx.Done():
	}
}

// Confirm asks the view to approve prompt and waits for its answer.
func (c *Conn) Confirm(ctx context.Context, prompt string) (bool, error) {
	id := uuid.NewString()
	answer := make(chan bool, 1)

	c.mu.Lock()
	c.pending[id] = answer
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	c.Post(ConfirmRequest(id, prompt))

	select {
	case ok := <-answer:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-c.ctx.Done():
		return false, errors.New("view disconnected")
	}
}

func (c *Conn) resolve(id string, accepted bool) {
	c.mu.Lock()
	answer, ok := c.pending[id]
	c.mu.Unlock()
	if !ok {
		log.Warn().Str("id", id).Msg("confirmation response for unknown request")
		return
	}
	select {
	case answer <- accepted:
	default:
	}
}

func (c *Conn) Close() {
	c.cancel()
	c.ws.Close()
}

func (c *Conn) readLoop(h Handler) {
	defer c.Close()

	for {
		var msg Inbound
		if err := c.ws.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("websocket read ended")
			}
			return
		}

		log.Debug().Str("type", msg.Type).Msg("received message from view")
		if msg.Type == TypeConfirmResponse {
			c.resolve(msg.ID, msg.Accepted)
			continue
		}
		h.Handle(c.ctx, msg)
	}
}

func (c *Conn) writeLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case msg := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.ws.WriteJSON(msg); err != nil {
				log.Warn().Err(err).Str("type", msg.Type).Msg("failed to post message to view")
				c.Close()
				return
			}
		}
	}
}
