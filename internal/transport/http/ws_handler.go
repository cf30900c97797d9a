package http

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"classquiz/internal/domain"
	"classquiz/internal/notify"
)

// WSHandler streams refresh notifications to connected viewers. A client
// connects with ?quizId= to follow one quiz (plus global quiz-created
// events), or without it to follow everything. The stream is a latency
// optimization only: clients re-fetch the leaderboard on a timer anyway.
type WSHandler struct {
	hub      *notify.Hub
	upgrader websocket.Upgrader
	log      *logrus.Logger
}

func NewWSHandler(hub *notify.Hub, log *logrus.Logger) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

type wsMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	events, cancel := h.hub.Subscribe(quizID)
	defer cancel()

	if err := conn.WriteJSON(wsMessage{Type: "subscribed", Payload: map[string]string{"quizId": quizID}}); err != nil {
		return
	}

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		// Clients send nothing meaningful; the read loop only notices
		// disconnects and control frames.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(wsMessage{Type: "event", Payload: eventView(ev)}); err != nil {
				h.log.WithError(err).Debug("ws write failed")
				return
			}
		case <-readerDone:
			return
		}
	}
}

type eventPayload struct {
	Kind   string `json:"kind"`
	QuizID string `json:"quizId"`
	IsLive *bool  `json:"isLive,omitempty"`
}

func eventView(ev domain.Event) eventPayload {
	return eventPayload{Kind: string(ev.Kind), QuizID: ev.QuizID, IsLive: ev.IsLive}
}
