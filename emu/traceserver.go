package emu

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"nesapu/emu/log"
	"nesapu/hw/audio"
)

// TraceHandler returns the websocket handler streaming the trace of script.
// Each client gets its own console running the whole script, every trace
// line being sent as a text message. The connection is closed normally once
// the script is over.
func TraceHandler(script *Script, sampleRate int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.ModEmu.ErrorZ("websocket handshake failed").Error("err", err).End()
			return
		}
		defer ws.Close()

		log.ModEmu.InfoZ("trace client connected").
			String("remote", r.RemoteAddr).
			String("script", script.Name).
			End()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		tr := NewTracer(wsWriter{ws})
		c := NewConsole(tr.Sink(audio.Null{Rate: sampleRate}))
		tr.Attach(c)
		c.SetThrottle(func() {
			// Stop at the next frame once the client is gone.
			if tr.Err() != nil {
				cancel()
			}
		})

		err = c.Run(ctx, script)
		if terr := tr.Err(); terr != nil {
			log.ModEmu.WarnZ("trace client gone").Error("err", terr).End()
			return
		}
		if err != nil {
			log.ModEmu.WarnZ("trace run interrupted").Error("err", err).End()
			return
		}

		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := ws.WriteMessage(websocket.CloseMessage, msg); err != nil {
			log.ModEmu.WarnZ("failed to close trace stream").Error("err", err).End()
		}
	}
}

// wsWriter sends each Write as one text message. The tracer writes one line
// at a time.
type wsWriter struct{ ws *websocket.Conn }

func (w wsWriter) Write(p []byte) (int, error) {
	if err := w.ws.WriteMessage(websocket.TextMessage, bytes.TrimSuffix(p, []byte{'\n'})); err != nil {
		return 0, err
	}
	return len(p), nil
}
