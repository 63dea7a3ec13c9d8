// Package preview serves the live-preview endpoint: a small host page and
// a websocket that receives every recompiled document as JSON.
package preview

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Document is the payload pushed to connected clients after each compile.
type Document struct {
	Backend     string            `json:"backend"`
	Fingerprint string            `json:"fingerprint"`
	Texts       map[string]string `json:"texts"`
}

// Server broadcasts compiled documents to websocket subscribers. A client
// connecting after a compile immediately receives the latest document.
type Server struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	latest  []byte
}

// client pairs a subscriber connection with its write lock; the websocket
// package allows at most one concurrent writer per connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// New creates a preview server that logs through the given logger.
func New(logger *slog.Logger) *Server {
	return &Server{
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Handler returns the HTTP handler serving the host page and the
// websocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.indexHandler)
	mux.HandleFunc("/ws", s.wsHandler)
	return mux
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexPage))
}

func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Websocket upgrade failed.", "error", err)
		return
	}
	s.logger.Debug("Preview client connected.", "remote_addr", r.RemoteAddr)

	cl := &client{conn: conn}

	// Hold the client's write lock across registration and the catch-up
	// send, so a broadcast racing with the connect neither interleaves a
	// write nor lands before the latest document.
	cl.mu.Lock()
	s.mu.Lock()
	s.clients[cl] = struct{}{}
	latest := s.latest
	s.mu.Unlock()

	if latest != nil {
		if err := conn.WriteMessage(websocket.TextMessage, latest); err != nil {
			cl.mu.Unlock()
			s.drop(cl)
			return
		}
	}
	cl.mu.Unlock()

	// Read loop only exists to observe the close.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.drop(cl)
				return
			}
		}
	}()
}

// Broadcast marshals a document and pushes it to every connected client.
func (s *Server) Broadcast(doc *Document) {
	payload, err := json.Marshal(doc)
	if err != nil {
		s.logger.Error("Failed to marshal preview document.", "error", err)
		return
	}

	s.mu.Lock()
	s.latest = payload
	targets := make([]*client, 0, len(s.clients))
	for cl := range s.clients {
		targets = append(targets, cl)
	}
	s.mu.Unlock()

	for _, cl := range targets {
		if err := cl.send(payload); err != nil {
			s.drop(cl)
		}
	}
	s.logger.Debug("Preview document broadcast.", "clients", len(targets))
}

func (s *Server) drop(cl *client) {
	s.mu.Lock()
	delete(s.clients, cl)
	s.mu.Unlock()
	_ = cl.conn.Close()
}

// indexPage is a minimal host page that renders the latest document texts.
const indexPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>shadegrid preview</title>
<style>
body { font-family: monospace; background: #111; color: #ddd; margin: 1rem; }
h1 { font-size: 1rem; }
pre { background: #1b1b1b; padding: 1rem; overflow: auto; }
</style>
</head>
<body>
<h1>shadegrid live source</h1>
<div id="docs">waiting for first compile…</div>
<script>
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (ev) => {
  const doc = JSON.parse(ev.data);
  const root = document.getElementById("docs");
  root.innerHTML = "";
  const title = document.createElement("h1");
  title.textContent = doc.backend + " · " + doc.fingerprint.slice(0, 12);
  root.appendChild(title);
  for (const [stage, text] of Object.entries(doc.texts)) {
    const h = document.createElement("h1");
    h.textContent = "· " + stage;
    const pre = document.createElement("pre");
    pre.textContent = text;
    root.appendChild(h);
    root.appendChild(pre);
  }
};
</script>
</body>
</html>
`
