package adbframe

import (
	"log"
	"net/http"
	"time"

	"github.com/LeJamon/binform/internal/encoder"
	"github.com/LeJamon/binform/internal/stream"
	"github.com/gorilla/websocket"
)

// Server accepts adbframe messages over a WebSocket connection, one binary
// message per chunk, and echoes back every complete frame it decodes. It
// exists to exercise stream.Parser's incrementality against a real
// transport: a client can split one frame across any number of WebSocket
// messages and the server's Parser resumes exactly where it left off.
type Server struct {
	upgrader websocket.Upgrader
}

// NewServer builds a Server that accepts connections from any origin, the
// same permissive policy the peer WebSocket endpoint uses for this demo.
func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("adbframe: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	p := stream.New(Spec())
	log.Printf("adbframe: connection %s opened", p.ID())

	for {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		msgType, chunk, err := conn.ReadMessage()
		if err != nil {
			log.Printf("adbframe: connection %s closed: %v", p.ID(), err)
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		p.Supply(chunk)
		out := p.Next()
		if !out.Done {
			log.Printf("adbframe: connection %s needs %d more bytes", p.ID(), out.NeedMore)
			continue
		}

		frame := ValueOf(out.Value)
		if err := s.respond(conn, frame); err != nil {
			log.Printf("adbframe: connection %s write failed: %v", p.ID(), err)
			return
		}
		p.Reset()
	}
}

func (s *Server) respond(conn *websocket.Conn, frame Frame) error {
	reply := encoder.Encode(Spec(), frame.ToValue())
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteMessage(websocket.BinaryMessage, reply.Bytes())
}
