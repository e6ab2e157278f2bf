package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{}

func TestConn_SendsHandshakeFramesInOrderAndDispatchesMessages(t *testing.T) {
	var received [][]byte
	var mu sync.Mutex

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		for i := 0; i < 2; i++ {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			mu.Lock()
			received = append(received, data)
			mu.Unlock()
		}

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"status":"auth_success"}`)))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"sym":"AAPL","p":190.5}`)))

		// Block until the client disconnects rather than closing immediately,
		// so the handler goroutine has time to run.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	var handled []json.RawMessage
	handler := func(raw json.RawMessage) {
		mu.Lock()
		defer mu.Unlock()
		handled = append(handled, raw)
	}

	build := func(tickers []string) [][]byte {
		auth, _ := json.Marshal(map[string]string{"action": "auth", "params": "test-token"})
		sub, _ := json.Marshal(map[string]string{"action": "subscribe", "params": strings.Join(tickers, ",")})
		return [][]byte{auth, sub}
	}

	conn := NewConn("test-vendor", wsURL, build, handler)
	conn.SetTickers([]string{"AAPL"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		conn.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(handled) >= 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)
	require.Contains(t, string(received[0]), `"auth"`)
	require.Contains(t, string(received[1]), `"subscribe"`)
	require.Len(t, handled, 1)
	require.Contains(t, string(handled[0]), "AAPL")
}

func TestExtractStatus_ParsesAndLowercases(t *testing.T) {
	status, ok := extractStatus([]byte(`{"status":"AUTH_SUCCESS"}`))
	require.True(t, ok)
	require.Equal(t, "auth_success", status)

	_, ok = extractStatus([]byte(`{"sym":"AAPL"}`))
	require.False(t, ok)

	_, ok = extractStatus([]byte(`not json`))
	require.False(t, ok)
}

func TestConn_CurrentTickers_ReturnsIndependentCopy(t *testing.T) {
	conn := NewConn("v", "ws://example.invalid", func([]string) [][]byte { return nil }, func(json.RawMessage) {})
	conn.SetTickers([]string{"AAPL", "MSFT"})

	got := conn.currentTickers()
	got[0] = "TSLA"

	require.Equal(t, []string{"AAPL", "MSFT"}, conn.currentTickers())
}
