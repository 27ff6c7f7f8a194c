package scale

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"almacen-front/internal/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("development"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// scaleServer accepts one websocket connection and plays back frames on
// demand.
type scaleServer struct {
	*httptest.Server
	frames    chan string
	closeOnce sync.Once
}

// disconnect ends the playback, making the handler close the socket with
// a normal close frame. Safe to call more than once.
func (s *scaleServer) disconnect() {
	s.closeOnce.Do(func() { close(s.frames) })
}

func newScaleServer(t *testing.T) *scaleServer {
	t.Helper()
	srv := &scaleServer{frames: make(chan string, 16)}
	upgrader := websocket.Upgrader{}

	srv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for frame := range srv.frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(srv.disconnect)
	return srv
}

func (s *scaleServer) wsURL() string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestFeedReceivesReadings(t *testing.T) {
	srv := newScaleServer(t)
	feed := NewFeed("kg")
	defer feed.Close()

	feed.SetAddress(srv.wsURL())
	waitFor(t, func() bool { return feed.Reading().Connected }, "feed never connected")

	srv.frames <- `{"weight": 12.5, "unit": "kg"}`
	waitFor(t, func() bool { return feed.Reading().Weight == 12.5 }, "reading never arrived")

	got := feed.Reading()
	if got.Unit != "kg" || !got.Connected {
		t.Errorf("reading = %+v, want weight 12.5 kg connected", got)
	}
}

func TestFeedIgnoresMalformedFrames(t *testing.T) {
	srv := newScaleServer(t)
	feed := NewFeed("kg")
	defer feed.Close()

	feed.SetAddress(srv.wsURL())
	waitFor(t, func() bool { return feed.Reading().Connected }, "feed never connected")

	srv.frames <- `{"weight": 3.2}`
	waitFor(t, func() bool { return feed.Reading().Weight == 3.2 }, "baseline reading never arrived")

	srv.frames <- `not json at all`
	srv.frames <- `{"weight": "heavy"}`
	srv.frames <- `{"unit": "g"}`
	srv.frames <- `{"weight": 7.7}`
	waitFor(t, func() bool { return feed.Reading().Weight == 7.7 }, "follow-up reading never arrived")

	got := feed.Reading()
	if got.Unit != "kg" {
		t.Errorf("unit = %q, malformed frames must not change it", got.Unit)
	}
}

func TestFeedFrameUnitSticks(t *testing.T) {
	srv := newScaleServer(t)
	feed := NewFeed("kg")
	defer feed.Close()

	feed.SetAddress(srv.wsURL())
	waitFor(t, func() bool { return feed.Reading().Connected }, "feed never connected")

	srv.frames <- `{"weight": 500, "unit": "g"}`
	waitFor(t, func() bool { return feed.Reading().Unit == "g" }, "unit never switched")

	srv.frames <- `{"weight": 510}`
	waitFor(t, func() bool { return feed.Reading().Weight == 510 }, "second reading never arrived")

	if got := feed.Reading(); got.Unit != "g" {
		t.Errorf("unit = %q, want the last reported unit to persist", got.Unit)
	}
}

func TestFeedDisconnectOnClose(t *testing.T) {
	srv := newScaleServer(t)
	feed := NewFeed("kg")
	defer feed.Close()

	feed.SetAddress(srv.wsURL())
	waitFor(t, func() bool { return feed.Reading().Connected }, "feed never connected")

	srv.frames <- `{"weight": 1.0}`
	waitFor(t, func() bool { return feed.Reading().Weight == 1.0 }, "reading never arrived")

	srv.disconnect()
	waitFor(t, func() bool { return !feed.Reading().Connected }, "feed never noticed disconnect")

	got := feed.Reading()
	if got.Weight != 1.0 {
		t.Errorf("last reading must survive disconnect, got %+v", got)
	}
	if got.Error != "" {
		t.Errorf("a normal close must not record an error, got %q", got.Error)
	}
}

func TestFeedEmptyAddressDisconnects(t *testing.T) {
	srv := newScaleServer(t)
	feed := NewFeed("kg")
	defer feed.Close()

	feed.SetAddress(srv.wsURL())
	waitFor(t, func() bool { return feed.Reading().Connected }, "feed never connected")

	srv.frames <- `{"weight": 2.5}`
	waitFor(t, func() bool { return feed.Reading().Weight == 2.5 }, "reading never arrived")

	feed.SetAddress("")
	waitFor(t, func() bool { return !feed.Reading().Connected }, "feed never disconnected")

	if got := feed.Reading(); got.Weight != 2.5 {
		t.Errorf("clearing the address must keep the last reading, got %+v", got)
	}
}

func TestFeedDialFailure(t *testing.T) {
	feed := NewFeed("kg")
	defer feed.Close()

	feed.SetAddress("ws://127.0.0.1:1/scale")
	waitFor(t, func() bool { return feed.Reading().Error != "" }, "dial failure never surfaced")

	if feed.Reading().Connected {
		t.Error("a failed dial must not report connected")
	}
}
