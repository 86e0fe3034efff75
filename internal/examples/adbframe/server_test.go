package adbframe

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LeJamon/binform/internal/encoder"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestServerEchoesCompleteFrame(t *testing.T) {
	srv := httptest.NewServer(NewServer())
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	f := Frame{Algorithm: AlgorithmNone, Payload: []byte("ping over the wire")}
	wire := frameWire(t, f)

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, wire))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	msgType, reply, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, msgType)
	require.Equal(t, wire, reply)
}

func TestServerResumesAcrossMultipleWebSocketMessages(t *testing.T) {
	srv := httptest.NewServer(NewServer())
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	f := Frame{Algorithm: AlgorithmNone, Payload: []byte("split across frames")}
	wire := frameWire(t, f)

	mid := len(wire) / 2
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, wire[:mid]))

	// The server has not seen a complete frame yet; it must not reply until
	// the rest arrives.
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, wire[mid:]))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	msgType, reply, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, msgType)
	require.Equal(t, wire, reply)
}

func frameWire(t *testing.T, f Frame) []byte {
	t.Helper()
	return encoder.Encode(Spec(), f.ToValue()).Bytes()
}
