package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"ChatHive/internal/models"
	"ChatHive/pkg/logger"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	topicPrefix = "/topic/room."
	sendPrefix  = "/app/room."

	stompVersion = "1.2"
	writeWait    = 10 * time.Second
)

type TokenVerifier interface {
	Authenticate(ctx context.Context, accessToken string) (*models.Identity, error)
}

type MessageSender interface {
	SendMessage(ctx context.Context, msg models.ChatMessage) (*models.ChatMessage, error)
}

// Session is one websocket connection speaking STOMP. Each websocket message
// carries exactly one STOMP frame. The bearer token travels in the CONNECT
// frame headers; a failed CONNECT leaves the session unauthenticated rather
// than closing it, and SEND/SUBSCRIBE are refused until a CONNECT succeeds.
type Session struct {
	id       string
	conn     *websocket.Conn
	hub      *Hub
	log      logger.Log
	verifier TokenVerifier
	chat     MessageSender

	identity *models.Identity
	subs     map[string]string // subscription id -> destination

	writeMu sync.Mutex
}

func NewSession(conn *websocket.Conn, hub *Hub, l logger.Log, verifier TokenVerifier, chat MessageSender) *Session {
	return &Session{
		id:       uuid.New().String(),
		conn:     conn,
		hub:      hub,
		log:      l,
		verifier: verifier,
		chat:     chat,
		subs:     make(map[string]string),
	}
}

func (s *Session) Run(ctx context.Context) {
	defer func() {
		s.hub.Remove(s)
		s.conn.Close()
	}()

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}
		// STOMP heart-beats are a bare newline, not a frame.
		if len(bytes.TrimRight(data, "\r\n")) == 0 {
			continue
		}

		f, err := frame.NewReader(bytes.NewReader(data)).Read()
		if err != nil || f == nil {
			s.sendError("malformed frame")
			continue
		}

		switch f.Command {
		case frame.CONNECT, frame.STOMP:
			s.handleConnect(ctx, f)
		case frame.SUBSCRIBE:
			s.handleSubscribe(f)
		case frame.UNSUBSCRIBE:
			s.handleUnsubscribe(f)
		case frame.SEND:
			s.handleSend(ctx, f)
		case frame.DISCONNECT:
			s.handleDisconnect(f)
			return
		default:
			s.sendError("unsupported command: " + f.Command)
		}
	}
}

func (s *Session) handleConnect(ctx context.Context, f *frame.Frame) {
	token := connectToken(f)
	if token != "" {
		ident, err := s.verifier.Authenticate(ctx, token)
		if err != nil {
			s.log.Info("ws connect with unusable token", "session", s.id, logger.Err(err))
		} else {
			s.identity = ident
		}
	}

	connected := frame.New(frame.CONNECTED,
		frame.Version, stompVersion,
		frame.Session, s.id,
	)
	if err := s.send(connected); err != nil {
		s.log.Error("ws connected frame write failed", "session", s.id, logger.Err(err))
	}
}

func (s *Session) handleSubscribe(f *frame.Frame) {
	if s.identity == nil {
		s.sendError("not authenticated")
		return
	}
	subID := f.Header.Get(frame.Id)
	destination := f.Header.Get(frame.Destination)
	if subID == "" || destination == "" || !strings.HasPrefix(destination, topicPrefix) {
		s.sendError("bad subscription")
		return
	}
	s.subs[subID] = destination
	s.hub.Subscribe(destination, s, subID)
}

func (s *Session) handleUnsubscribe(f *frame.Frame) {
	subID := f.Header.Get(frame.Id)
	destination, ok := s.subs[subID]
	if !ok {
		return
	}
	delete(s.subs, subID)
	s.hub.Unsubscribe(destination, s)
}

type inboundMessage struct {
	Content string `json:"content"`
	FileKey string `json:"file_key"`
}

type outboundMessage struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	FileKey   string    `json:"file_key,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) handleSend(ctx context.Context, f *frame.Frame) {
	if s.identity == nil {
		s.sendError("not authenticated")
		return
	}
	destination := f.Header.Get(frame.Destination)
	if !strings.HasPrefix(destination, sendPrefix) {
		s.sendError("bad destination")
		return
	}
	roomID, err := uuid.Parse(strings.TrimPrefix(destination, sendPrefix))
	if err != nil {
		s.sendError("bad destination")
		return
	}

	var in inboundMessage
	if err := json.Unmarshal(f.Body, &in); err != nil {
		s.sendError("bad message body")
		return
	}

	saved, err := s.chat.SendMessage(ctx, models.ChatMessage{
		RoomID:  roomID,
		Sender:  s.identity.Subject,
		Content: in.Content,
		FileKey: in.FileKey,
	})
	if err != nil {
		s.sendError("message rejected")
		return
	}

	body, err := json.Marshal(outboundMessage{
		ID:        saved.ID.String(),
		RoomID:    saved.RoomID.String(),
		Sender:    saved.Sender,
		Content:   saved.Content,
		FileKey:   saved.FileKey,
		CreatedAt: saved.CreatedAt,
	})
	if err != nil {
		s.log.Error("ws message marshal failed", "session", s.id, logger.Err(err))
		return
	}
	s.hub.Publish(topicPrefix+roomID.String(), "application/json", body)
}

func (s *Session) handleDisconnect(f *frame.Frame) {
	if receipt := f.Header.Get(frame.Receipt); receipt != "" {
		s.send(frame.New(frame.RECEIPT, frame.ReceiptId, receipt))
	}
}

func (s *Session) send(f *frame.Frame) error {
	var buf bytes.Buffer
	if err := frame.NewWriter(&buf).Write(f); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, buf.Bytes())
}

func (s *Session) sendError(msg string) {
	errFrame := frame.New(frame.ERROR, frame.Message, msg)
	errFrame.Body = []byte(msg)
	if err := s.send(errFrame); err != nil {
		s.log.Info("ws error frame write failed", "session", s.id, logger.Err(err))
	}
}

// connectToken pulls the bearer token out of a CONNECT frame. The standard
// Authorization header wins; an access-token header is accepted as a fallback
// for clients that cannot set Authorization.
func connectToken(f *frame.Frame) string {
	if v := f.Header.Get("Authorization"); v != "" {
		return strings.TrimPrefix(v, "Bearer ")
	}
	return f.Header.Get("access-token")
}
