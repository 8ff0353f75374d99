package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{}

// feedServer upgrades to websocket and plays back frames after the subscribe.
func feedServer(t *testing.T, frames []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		// consume the subscribe frame
		var sub feedSubscribe
		require.NoError(t, conn.ReadJSON(&sub))
		assert.Equal(t, "subscribe", sub.Type)

		for _, f := range frames {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(f)))
		}
		time.Sleep(50 * time.Millisecond)
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestFetchTicker_FirstPrice(t *testing.T) {
	srv := feedServer(t, []string{
		`{"type":"subscriptions","channels":[{"name":"ticker"}]}`,
		`{"type":"ticker","product_id":"BTC-USD","price":"43210.55"}`,
	})
	defer srv.Close()

	price, err := FetchTicker(context.Background(), zap.NewNop(), wsURL(srv), "BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, "43210.55", price.String())
}

func TestFetchTicker_FeedError(t *testing.T) {
	srv := feedServer(t, []string{
		`{"type":"error","message":"Failed to subscribe"}`,
	})
	defer srv.Close()

	_, err := FetchTicker(context.Background(), zap.NewNop(), wsURL(srv), "BTC-USD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to subscribe")
}

func TestFetchTicker_BadPrice(t *testing.T) {
	srv := feedServer(t, []string{
		`{"type":"ticker","product_id":"BTC-USD","price":"not-a-number"}`,
	})
	defer srv.Close()

	_, err := FetchTicker(context.Background(), zap.NewNop(), wsURL(srv), "BTC-USD")
	require.Error(t, err)
}

func TestFetchTicker_DialFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := FetchTicker(ctx, zap.NewNop(), "ws://127.0.0.1:1/", "BTC-USD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial feed")
}
