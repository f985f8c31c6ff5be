package chathub

import (
	"context"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"foodhub/internal/domain/entity"
	"foodhub/pkg/errors"
	"foodhub/pkg/logger"
)

// State is the connection lifecycle state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
)

const (
	defaultHandshakeTimeout = 30 * time.Second
	serverTimeout           = 30 * time.Second
	pingInterval            = 15 * time.Second
)

type Options struct {
	HubURL               string
	HandshakeTimeout     time.Duration
	MaxReconnectAttempts int
	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration
}

// SendMessageParams is the payload for SendMessage.
type SendMessageParams struct {
	ChatID      string `json:"chat_id" validate:"required"`
	Content     string `json:"content" validate:"required"`
	MessageType string `json:"message_type"`
}

// Client owns exactly one duplex connection to the chat hub per session.
// Hub-pushed frames fan out through the typed topics; client-initiated
// actions are the invocation methods, which require a connected state.
//
// Reconnection is handled by a single client-owned loop: on transport
// failure the client enters Reconnecting and retries with doubling,
// jittered delays up to MaxReconnectAttempts, then settles in Disconnected.
type Client struct {
	opts     Options
	dialer   *websocket.Dialer
	validate *validator.Validate

	mu     sync.Mutex
	conn   *websocket.Conn
	state  State
	token  string
	stopCh chan struct{} // closed to cancel the current session's pumps

	writeMu sync.Mutex

	MessageReceived   Topic[entity.Message]
	MessageRead       Topic[ReadReceiptEvent]
	ChatRead          Topic[ChatReadEvent]
	UserTyping        Topic[TypingEvent]
	UserStoppedTyping Topic[TypingEvent]
	UserOnline        Topic[PresenceEvent]
	UserOffline       Topic[PresenceEvent]
	NewChat           Topic[ChatEvent]
	JoinedChat        Topic[ChatEvent]
	LeftChat          Topic[ChatEvent]
	UnreadCount       Topic[UnreadCountEvent]
	ConnectionState   Topic[ConnectionStateEvent]
}

func NewClient(opts Options) *Client {
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = defaultHandshakeTimeout
	}
	if opts.MaxReconnectAttempts <= 0 {
		opts.MaxReconnectAttempts = 5
	}
	if opts.ReconnectBaseDelay <= 0 {
		opts.ReconnectBaseDelay = time.Second
	}
	if opts.ReconnectMaxDelay <= 0 {
		opts.ReconnectMaxDelay = 30 * time.Second
	}
	return &Client{
		opts:     opts,
		dialer:   &websocket.Dialer{HandshakeTimeout: opts.HandshakeTimeout},
		validate: validator.New(),
		state:    StateDisconnected,
	}
}

// Connect establishes a new connection authenticated by token. Any existing
// connection is fully torn down first. A connect failure is emitted on
// ConnectionState and returned to the caller.
func (c *Client) Connect(ctx context.Context, token string) error {
	c.Disconnect()

	c.mu.Lock()
	c.state = StateConnecting
	c.token = token
	c.mu.Unlock()

	conn, err := c.dial(ctx, token)
	if err != nil {
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
		c.ConnectionState.Emit(ConnectionStateEvent{Connected: false, State: StateDisconnected, Err: err})
		return errors.Unavailable("failed to connect to chat hub", err)
	}

	stop := make(chan struct{})
	c.mu.Lock()
	c.conn = conn
	c.state = StateConnected
	c.stopCh = stop
	c.mu.Unlock()

	logger.Info("connected to chat hub")
	go c.readPump(conn, stop)
	go c.keepAlive(conn, stop)
	c.ConnectionState.Emit(ConnectionStateEvent{Connected: true, State: StateConnected})
	return nil
}

// Disconnect tears down the current connection. Idempotent.
func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	hadConn := conn != nil || c.state != StateDisconnected
	if c.stopCh != nil {
		close(c.stopCh)
		c.stopCh = nil
	}
	c.conn = nil
	c.state = StateDisconnected
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if hadConn {
		c.ConnectionState.Emit(ConnectionStateEvent{Connected: false, State: StateDisconnected})
	}
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Invocations

func (c *Client) JoinChat(chatID string) error {
	if chatID == "" {
		return errors.BadRequest("missing chat id", nil)
	}
	return c.writeFrame(outboundFrame{Type: FrameTypeJoinChatRoom, ChatID: chatID})
}

func (c *Client) LeaveChat(chatID string) error {
	if chatID == "" {
		return errors.BadRequest("missing chat id", nil)
	}
	return c.writeFrame(outboundFrame{Type: FrameTypeLeaveChatRoom, ChatID: chatID})
}

// SendMessage sends a chat message and returns the client-assigned temp id
// the hub echoes back on the stored message.
func (c *Client) SendMessage(params SendMessageParams) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.BadRequest("invalid message data", err)
	}
	if params.MessageType == "" {
		params.MessageType = "text"
	}

	tempID := uuid.NewString()
	err := c.writeFrame(outboundFrame{
		Type: FrameTypeSendMessage,
		Data: sendMessageData{
			TempID:      tempID,
			ChatID:      params.ChatID,
			Content:     params.Content,
			MessageType: params.MessageType,
			Timestamp:   time.Now().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", err
	}
	return tempID, nil
}

func (c *Client) MarkMessageAsRead(chatID, messageID string) error {
	if chatID == "" || messageID == "" {
		return errors.BadRequest("missing chat or message id", nil)
	}
	return c.writeFrame(outboundFrame{
		Type:   FrameTypeMarkMessageRead,
		ChatID: chatID,
		Data:   markReadData{MessageID: messageID},
	})
}

func (c *Client) MarkChatAsRead(chatID string) error {
	if chatID == "" {
		return errors.BadRequest("missing chat id", nil)
	}
	return c.writeFrame(outboundFrame{Type: FrameTypeMarkChatRead, ChatID: chatID})
}

// StartTyping is best-effort: failures are swallowed.
func (c *Client) StartTyping(chatID string) {
	if err := c.writeFrame(outboundFrame{Type: FrameTypeTypingStart, ChatID: chatID}); err != nil {
		logger.Debug("typing signal dropped: %v", err)
	}
}

// StopTyping is best-effort: failures are swallowed.
func (c *Client) StopTyping(chatID string) {
	if err := c.writeFrame(outboundFrame{Type: FrameTypeTypingStop, ChatID: chatID}); err != nil {
		logger.Debug("typing signal dropped: %v", err)
	}
}

// connection plumbing

func (c *Client) dial(ctx context.Context, token string) (*websocket.Conn, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, _, err := c.dialer.DialContext(ctx, c.opts.HubURL, header)
	return conn, err
}

func (c *Client) writeFrame(frame outboundFrame) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == StateConnected && conn != nil
	c.mu.Unlock()

	if !connected {
		return errors.NotConnected()
	}
	if frame.Timestamp == "" {
		frame.Timestamp = time.Now().Format(time.RFC3339)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(frame)
}

func (c *Client) readPump(conn *websocket.Conn, stop chan struct{}) {
	for {
		conn.SetReadDeadline(time.Now().Add(serverTimeout + pingInterval))
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-stop:
				return // deliberate teardown
			default:
			}
			c.handleConnectionLoss(err, stop)
			return
		}
		c.dispatch(data)
	}
}

func (c *Client) keepAlive(conn *websocket.Conn, stop chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := conn.WriteJSON(outboundFrame{
				Type:      FrameTypePing,
				Timestamp: time.Now().Format(time.RFC3339),
			})
			c.writeMu.Unlock()
			if err != nil {
				return // read pump will observe the broken connection
			}
		}
	}
}

func (c *Client) handleConnectionLoss(err error, stop chan struct{}) {
	c.mu.Lock()
	if c.stopCh != stop {
		c.mu.Unlock()
		return // superseded by a newer session
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.state = StateReconnecting
	c.mu.Unlock()

	logger.Warn("chat hub connection lost: %v", err)
	c.ConnectionState.Emit(ConnectionStateEvent{Connected: false, State: StateReconnecting, Err: err})
	go c.reconnectLoop(stop)
}

func (c *Client) reconnectLoop(stop chan struct{}) {
	for attempt := 1; attempt <= c.opts.MaxReconnectAttempts; attempt++ {
		select {
		case <-stop:
			return
		case <-time.After(c.backoffDelay(attempt)):
		}

		c.mu.Lock()
		if c.stopCh != stop {
			c.mu.Unlock()
			return
		}
		token := c.token
		c.mu.Unlock()

		logger.Info("reconnecting to chat hub, attempt %d/%d", attempt, c.opts.MaxReconnectAttempts)
		conn, err := c.dial(context.Background(), token)
		if err != nil {
			logger.Warn("reconnect attempt %d failed: %v", attempt, err)
			continue
		}

		c.mu.Lock()
		if c.stopCh != stop {
			c.mu.Unlock()
			conn.Close()
			return
		}
		c.conn = conn
		c.state = StateConnected
		c.mu.Unlock()

		logger.Info("reconnected to chat hub")
		go c.readPump(conn, stop)
		go c.keepAlive(conn, stop)
		c.ConnectionState.Emit(ConnectionStateEvent{Connected: true, State: StateConnected})
		return
	}

	c.mu.Lock()
	terminal := c.stopCh == stop
	if terminal {
		c.state = StateDisconnected
	}
	c.mu.Unlock()

	if terminal {
		logger.Error("giving up on chat hub after %d reconnect attempts", c.opts.MaxReconnectAttempts)
		c.ConnectionState.Emit(ConnectionStateEvent{Connected: false, State: StateDisconnected})
	}
}

// backoffDelay doubles per attempt, capped, with +-20% jitter.
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.opts.ReconnectBaseDelay << (attempt - 1)
	if delay > c.opts.ReconnectMaxDelay || delay <= 0 {
		delay = c.opts.ReconnectMaxDelay
	}
	jitter := 0.8 + 0.4*rand.Float64()
	return time.Duration(float64(delay) * jitter)
}
