package notify

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestHandlerSendsHello(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dialHub(t, srv)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Contains(t, string(msg), "server_msg")

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		5*time.Second, 10*time.Millisecond)
}

func TestPublishReachesClient(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dialHub(t, srv)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage() // hello
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		5*time.Second, 10*time.Millisecond)
	hub.Publish(EventLeaderboardUpdate, nil)

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Contains(t, string(msg), EventLeaderboardUpdate)
}

// Disconnecting clients must never make Publish panic: a client leaves
// the set under the hub lock before its channel closes, so a publisher
// holding the lock can never send on a closed channel.
func TestPublishDuringDisconnectChurn(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				hub.Publish(EventAuctionUpdate, map[string]string{"type": "bid"})
			}
		}
	}()

	for i := 0; i < 200; i++ {
		conn := dialHub(t, srv)
		// Drop the connection immediately so the close races the
		// publisher loop.
		conn.Close()
	}

	close(stop)
	wg.Wait()

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		5*time.Second, 10*time.Millisecond)
}
