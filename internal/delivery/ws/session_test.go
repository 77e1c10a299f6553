package ws

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ChatHive/internal/app_errors"
	"ChatHive/internal/models"
	"ChatHive/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-stomp/stomp/v3/frame"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	identities map[string]*models.Identity
	errs       map[string]error
	calls      int
}

func (v *fakeVerifier) Authenticate(_ context.Context, token string) (*models.Identity, error) {
	v.calls++
	if err, ok := v.errs[token]; ok {
		return nil, err
	}
	if ident, ok := v.identities[token]; ok {
		return ident, nil
	}
	return nil, app_errors.ErrTokenInvalid
}

type fakeChat struct {
	sent []models.ChatMessage
}

func (c *fakeChat) SendMessage(_ context.Context, msg models.ChatMessage) (*models.ChatMessage, error) {
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now()
	c.sent = append(c.sent, msg)
	return &msg, nil
}

type wsFixture struct {
	verifier *fakeVerifier
	chat     *fakeChat
	server   *httptest.Server
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier := &fakeVerifier{
		identities: map[string]*models.Identity{
			"good-token": {Subject: "alice@example.com", Roles: []string{models.RoleUser}},
		},
		errs: map[string]error{
			"expired-token": app_errors.ErrTokenExpired,
		},
	}
	chat := &fakeChat{}

	r := gin.New()
	h := NewHandler(logger.New("local"), NewHub(), verifier, chat, nil)
	r.GET("/ws", h.Serve)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &wsFixture{verifier: verifier, chat: chat, server: srv}
}

func (f *wsFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func writeFrame(t *testing.T, conn *websocket.Conn, f *frame.Frame) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, frame.NewWriter(&buf).Write(f))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, buf.Bytes()))
}

func readFrame(t *testing.T, conn *websocket.Conn) *frame.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	f, err := frame.NewReader(bytes.NewReader(data)).Read()
	require.NoError(t, err)
	return f
}

func connect(t *testing.T, conn *websocket.Conn, token string) *frame.Frame {
	t.Helper()
	c := frame.New(frame.CONNECT, frame.AcceptVersion, "1.2")
	if token != "" {
		c.Header.Add("Authorization", "Bearer "+token)
	}
	writeFrame(t, conn, c)
	return readFrame(t, conn)
}

func TestSessionConnectAndSend(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t)

	connected := connect(t, conn, "good-token")
	assert.Equal(t, frame.CONNECTED, connected.Command)
	assert.Equal(t, "1.2", connected.Header.Get(frame.Version))

	roomID := uuid.New()

	sub := frame.New(frame.SUBSCRIBE,
		frame.Id, "sub-0",
		frame.Destination, topicPrefix+roomID.String(),
	)
	writeFrame(t, conn, sub)

	send := frame.New(frame.SEND,
		frame.Destination, sendPrefix+roomID.String(),
		frame.ContentType, "application/json",
	)
	send.Body = []byte(`{"content":"hello"}`)
	writeFrame(t, conn, send)

	// The sender is subscribed, so the broadcast comes straight back.
	msg := readFrame(t, conn)
	assert.Equal(t, frame.MESSAGE, msg.Command)
	assert.Equal(t, topicPrefix+roomID.String(), msg.Header.Get(frame.Destination))
	assert.Equal(t, "sub-0", msg.Header.Get(frame.Subscription))
	assert.Contains(t, string(msg.Body), `"content":"hello"`)
	assert.Contains(t, string(msg.Body), "alice@example.com")

	require.Len(t, f.chat.sent, 1)
	assert.Equal(t, "alice@example.com", f.chat.sent[0].Sender)
	assert.Equal(t, roomID, f.chat.sent[0].RoomID)
}

func TestSessionExpiredTokenStaysAnonymous(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t)

	// The socket stays open, but no identity is bound and nothing renews.
	connected := connect(t, conn, "expired-token")
	assert.Equal(t, frame.CONNECTED, connected.Command)
	assert.Equal(t, 1, f.verifier.calls)

	send := frame.New(frame.SEND, frame.Destination, sendPrefix+uuid.New().String())
	send.Body = []byte(`{"content":"hello"}`)
	writeFrame(t, conn, send)

	errFrame := readFrame(t, conn)
	assert.Equal(t, frame.ERROR, errFrame.Command)
	assert.Contains(t, errFrame.Header.Get(frame.Message), "not authenticated")
	assert.Empty(t, f.chat.sent)
	assert.Equal(t, 1, f.verifier.calls)
}

func TestSessionSendBeforeConnect(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t)

	send := frame.New(frame.SEND, frame.Destination, sendPrefix+uuid.New().String())
	send.Body = []byte(`{"content":"hello"}`)
	writeFrame(t, conn, send)

	errFrame := readFrame(t, conn)
	assert.Equal(t, frame.ERROR, errFrame.Command)
	assert.Empty(t, f.chat.sent)
}

func TestSessionRejectsForeignDestinations(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t)

	connected := connect(t, conn, "good-token")
	require.Equal(t, frame.CONNECTED, connected.Command)

	send := frame.New(frame.SEND, frame.Destination, "/queue/other")
	send.Body = []byte(`{"content":"hello"}`)
	writeFrame(t, conn, send)

	errFrame := readFrame(t, conn)
	assert.Equal(t, frame.ERROR, errFrame.Command)
	assert.Empty(t, f.chat.sent)
}
