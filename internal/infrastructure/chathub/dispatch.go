package chathub

import (
	"encoding/json"
	"time"

	"foodhub/internal/domain/entity"
	"foodhub/pkg/logger"
)

type messageFrameData struct {
	ID          string `json:"id"`
	TempID      string `json:"temp_id,omitempty"`
	ChatID      string `json:"chat_id"`
	SenderID    string `json:"sender_id"`
	SenderName  string `json:"sender_name"`
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
}

// dispatch routes one hub-pushed frame to its topic. Delivery is
// fire-and-forget and may duplicate across a reconnect boundary; consumers
// are expected to be idempotent.
func (c *Client) dispatch(raw []byte) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		logger.Warn("failed to parse hub frame: %v", err)
		return
	}

	switch frame.Type {
	case FrameTypePong:
		// keepalive reply, deadline already reset by the read

	case FrameTypeMessage:
		var data messageFrameData
		if !decodeData(frame, &data) {
			return
		}
		createdAt, _ := time.Parse(time.RFC3339, data.Timestamp)
		c.MessageReceived.Emit(entity.Message{
			ID:          data.ID,
			TempID:      data.TempID,
			ChatID:      data.ChatID,
			SenderID:    data.SenderID,
			SenderName:  data.SenderName,
			Content:     data.Content,
			MessageType: data.MessageType,
			Status:      data.Status,
			CreatedAt:   createdAt,
		})

	case FrameTypeReadReceipt:
		var data ReadReceiptEvent
		if decodeData(frame, &data) {
			c.MessageRead.Emit(data)
		}

	case FrameTypeChatRead:
		var data ChatReadEvent
		if decodeData(frame, &data) {
			c.ChatRead.Emit(data)
		}

	case FrameTypeTypingIndicator:
		var data TypingEvent
		if !decodeData(frame, &data) {
			return
		}
		if data.Typing {
			c.UserTyping.Emit(data)
		} else {
			c.UserStoppedTyping.Emit(data)
		}

	case FrameTypeUserPresence:
		var data PresenceEvent
		if !decodeData(frame, &data) {
			return
		}
		if data.IsOnline {
			c.UserOnline.Emit(data)
		} else {
			c.UserOffline.Emit(data)
		}

	case FrameTypeNewChat:
		c.NewChat.Emit(chatEventFrom(frame))

	case FrameTypeJoinedChat:
		c.JoinedChat.Emit(chatEventFrom(frame))

	case FrameTypeLeftChat:
		c.LeftChat.Emit(chatEventFrom(frame))

	case FrameTypeUnreadCount:
		var data UnreadCountEvent
		if decodeData(frame, &data) {
			c.UnreadCount.Emit(data)
		}

	case FrameTypeError:
		logger.Warn("chat hub error frame: %s", string(frame.Data))

	default:
		logger.Debug("unknown hub frame type %q", frame.Type)
	}
}

func decodeData(frame Frame, out interface{}) bool {
	if len(frame.Data) == 0 {
		logger.Warn("hub frame %q without data", frame.Type)
		return false
	}
	if err := json.Unmarshal(frame.Data, out); err != nil {
		logger.Warn("failed to parse %q frame data: %v", frame.Type, err)
		return false
	}
	return true
}

func chatEventFrom(frame Frame) ChatEvent {
	var data ChatEvent
	if len(frame.Data) > 0 {
		json.Unmarshal(frame.Data, &data)
	}
	if data.ChatID == "" {
		data.ChatID = frame.ChatID
	}
	return data
}
