// HTTP and websocket surface for the chat UI.
//
// Information Hiding:
// - Route registration hidden
// - Websocket upgrade and message loop hidden
package web

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/stridewise/stridewise/agent"
)

// AgentFactory builds a fresh agent for each websocket connection.
type AgentFactory func() (*agent.Agent, error)

// Server serves the chat UI endpoints.
type Server struct {
	engine        *gin.Engine
	newAgent      AgentFactory
	historyWindow int
	upgrader      websocket.Upgrader
}

// NewServer creates a server. Each connection gets its own agent and
// session from the factory; historyWindow caps per-session history.
func NewServer(newAgent AgentFactory, historyWindow int) *Server {
	s := &Server{
		engine:        gin.Default(),
		newAgent:      newAgent,
		historyWindow: historyWindow,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/ws", s.handleWebSocket)
	return s
}

// Run starts the HTTP server on the given address.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Handler exposes the underlying handler for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	a, err := s.newAgent()
	if err != nil {
		log.Printf("agent setup failed: %v", err)
		_ = conn.WriteJSON(Event{Type: EventError, Content: "Service unavailable."})
		return
	}

	session := NewSession(a, s.historyWindow)
	log.Printf("session %s connected", session.ID)

	send := func(ev Event) error {
		return conn.WriteJSON(ev)
	}

	if err := send(Event{Type: EventToken, Content: WelcomeMessage}); err != nil {
		return
	}
	if err := send(Event{Type: EventDone}); err != nil {
		return
	}

	for {
		var req Incoming
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("session %s read error: %v", session.ID, err)
			}
			break
		}

		if err := session.HandleTurn(c.Request.Context(), req.Message, send); err != nil {
			log.Printf("session %s write error: %v", session.ID, err)
			break
		}
	}

	log.Printf("session %s ended", session.ID)
}

// Serve is a convenience that builds a server and blocks on it.
func Serve(ctx context.Context, addr string, newAgent AgentFactory, historyWindow int) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: NewServer(newAgent, historyWindow).Handler(),
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
