package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"foodhub/internal/domain/entity"
	"foodhub/internal/infrastructure/chathub"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Realtime chat with sellers",
}

var (
	chatID      string
	chatMessage string
)

var chatListenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Join a conversation and print incoming events",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		token, err := a.sessions.Token()
		if err != nil {
			return err
		}
		if token == "" {
			return fmt.Errorf("chat requires a session, run 'foodhub login' first")
		}

		a.chat.MessageReceived.Subscribe(func(msg entity.Message) {
			fmt.Printf("[%s] %s: %s\n", msg.ChatID, msg.SenderName, msg.Content)
		})
		a.chat.UserTyping.Subscribe(func(ev chathub.TypingEvent) {
			fmt.Printf("[%s] %s is typing...\n", ev.ChatID, ev.UserName)
		})
		a.chat.UserOnline.Subscribe(func(ev chathub.PresenceEvent) {
			fmt.Printf("[%s] %s is online\n", ev.ChatID, ev.Username)
		})
		a.chat.UserOffline.Subscribe(func(ev chathub.PresenceEvent) {
			fmt.Printf("[%s] %s went offline\n", ev.ChatID, ev.Username)
		})
		a.chat.UnreadCount.Subscribe(func(ev chathub.UnreadCountEvent) {
			fmt.Printf("Unread messages: %d\n", ev.Count)
		})
		a.chat.ConnectionState.Subscribe(func(ev chathub.ConnectionStateEvent) {
			if ev.Connected {
				fmt.Println("(connected)")
			} else {
				fmt.Printf("(%s)\n", ev.State)
			}
		})

		if err := a.chat.Connect(cmd.Context(), token); err != nil {
			return err
		}
		if chatID != "" {
			if err := a.chat.JoinChat(chatID); err != nil {
				return err
			}
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		return nil
	},
}

var chatSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send one message to a conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		token, err := a.sessions.Token()
		if err != nil {
			return err
		}
		if token == "" {
			return fmt.Errorf("chat requires a session, run 'foodhub login' first")
		}

		if err := a.chat.Connect(cmd.Context(), token); err != nil {
			return err
		}
		if err := a.chat.JoinChat(chatID); err != nil {
			return err
		}

		tempID, err := a.chat.SendMessage(chathub.SendMessageParams{
			ChatID:  chatID,
			Content: chatMessage,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Sent (%s).\n", tempID)
		return nil
	},
}

func init() {
	chatListenCmd.Flags().StringVar(&chatID, "chat", "", "chat id to join")

	chatSendCmd.Flags().StringVar(&chatID, "chat", "", "chat id")
	chatSendCmd.Flags().StringVar(&chatMessage, "message", "", "message content")
	chatSendCmd.MarkFlagRequired("chat")
	chatSendCmd.MarkFlagRequired("message")

	chatCmd.AddCommand(chatListenCmd, chatSendCmd)
}
