package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	notification "anoa.com/boardinghouse/internal/modules/notification/service"
	"anoa.com/boardinghouse/pkg/broadcast"
	"anoa.com/boardinghouse/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newServer(t *testing.T, sub broadcast.Subscriber, middleware ...gin.HandlerFunc) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware...)
	r.GET("/ws/notifications/", NewNotificationHandler(sub, []string{"*"}).HandleWebSocket)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func read(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if kind != websocket.TextMessage {
		t.Fatalf("frame type = %d, want text", kind)
	}
	return string(msg)
}

func TestRelaysToEveryClientInOrder(t *testing.T) {
	hub := broadcast.NewHub()
	defer hub.Close()
	srv := newServer(t, hub)

	a, b := dial(t, srv), dial(t, srv)
	waitFor(t, func() bool { return hub.Subscribers(notification.Channel) == 2 })

	// Inbound frames are ignored and do not break the relay.
	if err := a.WriteMessage(websocket.TextMessage, []byte(`{"model":"bill"}`)); err != nil {
		t.Fatal(err)
	}

	payloads := []string{
		`{"model":"payment","action":"created","data":{"id":1}}`,
		`{"model":"payment","action":"deleted","data":{"id":1}}`,
	}
	for _, p := range payloads {
		if err := hub.Publish(context.Background(), notification.Channel, []byte(p)); err != nil {
			t.Fatal(err)
		}
	}

	for _, conn := range []*websocket.Conn{a, b} {
		for _, want := range payloads {
			if got := read(t, conn); got != want {
				t.Fatalf("got %s, want %s", got, want)
			}
		}
	}
}

func TestLargeInboundFrameKeepsClientSubscribed(t *testing.T) {
	hub := broadcast.NewHub()
	defer hub.Close()
	srv := newServer(t, hub)

	conn := dial(t, srv)
	waitFor(t, func() bool { return hub.Subscribers(notification.Channel) == 1 })

	for _, size := range []int{1024, 256 * 1024} {
		frame := `{"note":"` + strings.Repeat("x", size) + `"}`
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			t.Fatal(err)
		}
	}

	want := `{"model":"payment","action":"created","data":{"id":7}}`
	// Publish only once the hub has settled, so a dropped subscription shows up.
	time.Sleep(100 * time.Millisecond)
	if n := hub.Subscribers(notification.Channel); n != 1 {
		t.Fatalf("subscribers = %d, want 1", n)
	}
	if err := hub.Publish(context.Background(), notification.Channel, []byte(want)); err != nil {
		t.Fatal(err)
	}
	if got := read(t, conn); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestLogsConnectionLifecycle(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	withLogger := func(c *gin.Context) {
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), zap.New(core)))
		c.Next()
	}

	hub := broadcast.NewHub()
	defer hub.Close()
	srv := newServer(t, hub, withLogger)

	conn := dial(t, srv)
	waitFor(t, func() bool { return hub.Subscribers(notification.Channel) == 1 })
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	states := func() []string {
		var out []string
		for _, e := range logs.FilterMessage("websocket state changed").All() {
			out = append(out, e.ContextMap()["state"].(string))
		}
		return out
	}
	waitFor(t, func() bool { return len(states()) == 3 })

	want := []string{"connecting", "subscribed", "closed"}
	for i, s := range states() {
		if s != want[i] {
			t.Fatalf("states = %v, want %v", states(), want)
		}
	}
}

func TestClientCloseUnsubscribes(t *testing.T) {
	hub := broadcast.NewHub()
	defer hub.Close()
	srv := newServer(t, hub)

	conn := dial(t, srv)
	waitFor(t, func() bool { return hub.Subscribers(notification.Channel) == 1 })

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
	waitFor(t, func() bool { return hub.Subscribers(notification.Channel) == 0 })
}

func TestUnavailableWithoutSubscriber(t *testing.T) {
	srv := newServer(t, nil)

	resp, err := http.Get(srv.URL + "/ws/notifications/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
}
