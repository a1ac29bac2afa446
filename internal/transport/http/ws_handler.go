package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"quiz-runner/internal/app"
	"quiz-runner/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type answerPayload struct {
	QuestionID int `json:"questionId"`
	// Selection is a number for indexed options, a string for keyed ones,
	// or null to clear the answer.
	Selection *domain.Choice `json:"selection"`
}

type clearPayload struct {
	QuestionID int `json:"questionId"`
}

type gotoPayload struct {
	Index int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets. Every session change is
// pushed as a "state" message; completion also pushes a "result".
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.service.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// only the writer goroutine touches conn for writing
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		set, duration := h.service.Questions(), h.service.Duration()
		completed := false
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				msgs := []outboundMessage[any]{{Type: "state", Payload: buildView(set, duration, snap)}}
				if snap.Phase == app.PhaseCompleted && !completed {
					msgs = append(msgs, outboundMessage[any]{Type: "result", Payload: buildResult(app.ResultOf(set, duration, snap))})
				}
				completed = snap.Phase == app.PhaseCompleted
				for _, msg := range msgs {
					select {
					case send <- msg:
					case <-closeSignals:
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(inbound); err != nil {
			select {
			case send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}:
			case <-writerDone:
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

var errUnsupportedMessage = errors.New("unsupported message type")

func (h *WSHandler) dispatch(msg inboundMessage) error {
	switch msg.Type {
	case "start":
		var p startPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return err
		}
		return h.service.Start(domain.User{FirstName: p.FirstName, LastName: p.LastName})
	case "answer":
		var p answerPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return err
		}
		if p.Selection == nil {
			return h.service.ClearAnswer(p.QuestionID)
		}
		return h.service.Answer(p.QuestionID, *p.Selection)
	case "clear":
		var p clearPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return err
		}
		return h.service.ClearAnswer(p.QuestionID)
	case "goto":
		var p gotoPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return err
		}
		return h.service.GoTo(p.Index)
	case "next":
		return h.service.Next()
	case "previous":
		return h.service.Previous()
	case "skip":
		return h.service.Skip()
	case "submit":
		return h.service.Submit()
	case "reset":
		h.service.Reset()
		return nil
	default:
		return errUnsupportedMessage
	}
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("missing payload")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.New("invalid payload")
	}
	return nil
}

func originChecker(allowed []string) func(r *http.Request) bool {
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		for _, allowedOrigin := range allowed {
			if strings.EqualFold(origin, allowedOrigin) {
				return true
			}
		}
		return false
	}
}
