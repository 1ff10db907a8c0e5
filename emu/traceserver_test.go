package emu

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/sergi/go-diff/diffmatchpatch"

	"nesapu/hw/audio"
)

func fileTrace(t *testing.T, s *Script) string {
	t.Helper()

	var buf bytes.Buffer
	tr := NewTracer(&buf)
	c := NewConsole(tr.Sink(audio.Null{Rate: 44100}))
	tr.Attach(c)
	if err := c.Run(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestTraceHandler(t *testing.T) {
	s, err := LoadScript("testdata/irq.toml")
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(TraceHandler(s, 44100))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	defer ws.Close()

	var sb strings.Builder
	for {
		typ, msg, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				t.Fatalf("ReadMessage() error = %v, want normal closure", err)
			}
			break
		}
		if typ != websocket.TextMessage {
			t.Fatalf("message type = %d, want text", typ)
		}
		sb.Write(msg)
		sb.WriteByte('\n')
	}

	got, want := sb.String(), fileTrace(t, s)
	if got != want {
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(want, got, false)
		t.Errorf("streamed trace differs from file trace:\n%s", dmp.DiffPrettyText(diffs))
	}

	if lines := parseTrace(t, []byte(got)); len(lines) == 0 {
		t.Error("empty trace")
	}
}

func TestTraceDeterministic(t *testing.T) {
	s, err := LoadScript("testdata/pulse.toml")
	if err != nil {
		t.Fatal(err)
	}

	first, second := fileTrace(t, s), fileTrace(t, s)
	if first != second {
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(first, second, false)
		t.Errorf("traces of identical runs differ:\n%s", dmp.DiffPrettyText(diffs))
	}
}
