package broadcast

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/tradesignal/internal/model"
	"github.com/sawpanic/tradesignal/internal/state"
)

func newTestServer() *Server {
	s := &Server{router: mux.NewRouter(), hub: NewHub(), store: state.New()}
	s.setupRoutes()
	return s
}

func TestServer_HealthReportsSubscriberCount(t *testing.T) {
	srv := newTestServer()

	req, _ := http.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	srv.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
	require.Equal(t, float64(0), body["subscribers"])
}

func TestServer_SubscribeUpgradesAndDeliversSnapshot(t *testing.T) {
	srv := newTestServer()
	srv.store.Mutate(func(s state.Snapshot) state.Snapshot {
		return s.SetQuote(model.Quote{Ticker: "AAPL", Last: 190})
	})

	httpSrv := httptest.NewServer(srv.router)
	defer httpSrv.Close()

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, FullState, msg.Type)
	require.Contains(t, msg.Snapshot.Quotes, "AAPL")
}

func TestServer_SnapshotServesStoreWithoutCache(t *testing.T) {
	srv := newTestServer()
	srv.store.Mutate(func(s state.Snapshot) state.Snapshot {
		return s.SetQuote(model.Quote{Ticker: "AAPL", Last: 190})
	})

	req, _ := http.NewRequest("GET", "/snapshot", nil)
	rr := httptest.NewRecorder()
	srv.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var snap state.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	require.Contains(t, snap.Quotes, "AAPL")
}

func TestServer_NotFoundReturns404JSON(t *testing.T) {
	srv := newTestServer()

	req, _ := http.NewRequest("GET", "/nope", nil)
	rr := httptest.NewRecorder()
	srv.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
}
