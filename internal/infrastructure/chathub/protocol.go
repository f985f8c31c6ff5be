package chathub

import (
	"encoding/json"
)

// Frame types pushed by the hub.
const (
	FrameTypePong            = "pong"
	FrameTypeMessage         = "message"
	FrameTypeReadReceipt     = "read_receipt"
	FrameTypeChatRead        = "chat_read"
	FrameTypeTypingIndicator = "typing_indicator"
	FrameTypeUserPresence    = "user_presence"
	FrameTypeNewChat         = "new_chat"
	FrameTypeJoinedChat      = "joined_chat"
	FrameTypeLeftChat        = "left_chat"
	FrameTypeUnreadCount     = "unread_count"
	FrameTypeError           = "error"
)

// Frame types sent by the client.
const (
	FrameTypePing            = "ping"
	FrameTypeSendMessage     = "send_message"
	FrameTypeJoinChatRoom    = "join_chat_room"
	FrameTypeLeaveChatRoom   = "leave_chat_room"
	FrameTypeMarkMessageRead = "mark_message_read"
	FrameTypeMarkChatRead    = "mark_chat_read"
	FrameTypeTypingStart     = "typing_start"
	FrameTypeTypingStop      = "typing_stop"
)

// Frame is one websocket message in either direction.
type Frame struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	ChatID    string          `json:"chat_id,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

type outboundFrame struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	ChatID    string      `json:"chat_id,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
}

type sendMessageData struct {
	TempID      string `json:"temp_id"`
	ChatID      string `json:"chat_id"`
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
	Timestamp   string `json:"timestamp"`
}

type markReadData struct {
	MessageID string `json:"message_id"`
}

// ReadReceiptEvent reports a single message read by a participant.
type ReadReceiptEvent struct {
	ChatID     string `json:"chat_id"`
	MessageID  string `json:"message_id"`
	ReaderID   string `json:"reader_id"`
	ReaderName string `json:"reader_name"`
}

// ChatReadEvent reports a whole conversation marked read.
type ChatReadEvent struct {
	ChatID string `json:"chat_id"`
	UserID string `json:"user_id"`
}

type TypingEvent struct {
	ChatID    string `json:"chat_id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Typing    bool   `json:"typing"`
	ExpiresAt string `json:"expires_at"`
}

type PresenceEvent struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsOnline bool   `json:"is_online"`
	LastSeen string `json:"last_seen"`
	ChatID   string `json:"chat_id,omitempty"`
}

// ChatEvent carries the chat id for new/joined/left notifications.
type ChatEvent struct {
	ChatID string `json:"chat_id"`
}

type UnreadCountEvent struct {
	Count int `json:"count"`
}

// ConnectionStateEvent is emitted on every connection state transition.
// Err is set when the transition was caused by a failure.
type ConnectionStateEvent struct {
	Connected bool
	State     State
	Err       error
}
