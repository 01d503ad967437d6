// Package messenger wraps the LINE Messaging API outbound channels:
// reply (single-use token), push (no token), and the chat loading
// indicator.
package messenger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/mamamansion/line-edge-go/internal/config"
	"github.com/mamamansion/line-edge-go/internal/logger"
)

// Messenger is the outbound channel surface the dispatcher depends on.
// Reply consumes a single-use reply token; Push targets a conversation
// id and has no token constraint; StartLoading shows the typing
// indicator for a clamped number of seconds.
type Messenger interface {
	Reply(replyToken string, messages []messaging_api.MessageInterface) error
	Push(to string, messages []messaging_api.MessageInterface) error
	StartLoading(chatID string, seconds int) error
}

// MetricsRecorder records outbound channel calls.
type MetricsRecorder interface {
	RecordOutbound(channel string, ok bool)
}

// LineMessenger implements Messenger against the LINE Messaging API.
type LineMessenger struct {
	client  *messaging_api.MessagingApiAPI
	log     *logger.Logger
	metrics MetricsRecorder
}

// NewLine creates a Messenger backed by the LINE Messaging API.
func NewLine(channelToken string, log *logger.Logger, metrics MetricsRecorder) (*LineMessenger, error) {
	client, err := messaging_api.NewMessagingApiAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("create messaging API client: %w", err)
	}
	return &LineMessenger{
		client:  client,
		log:     log.WithModule("messenger"),
		metrics: metrics,
	}, nil
}

// Reply sends messages against a single-use reply token.
// An empty token is an error before any network call: the token is the
// platform's one-shot permission to answer this event.
func (m *LineMessenger) Reply(replyToken string, messages []messaging_api.MessageInterface) error {
	if replyToken == "" {
		return fmt.Errorf("reply: missing reply token")
	}
	if len(messages) == 0 {
		return nil
	}

	_, err := m.client.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	})
	m.record("reply", err)
	if err != nil {
		return fmt.Errorf("reply: %w", err)
	}
	return nil
}

// Push sends messages to a conversation id (user, group, or room).
func (m *LineMessenger) Push(to string, messages []messaging_api.MessageInterface) error {
	if to == "" {
		return fmt.Errorf("push: missing conversation id")
	}
	if len(messages) == 0 {
		return nil
	}

	_, err := m.client.PushMessage(&messaging_api.PushMessageRequest{
		To:       to,
		Messages: messages,
	}, uuid.NewString())
	m.record("push", err)
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}
	return nil
}

// StartLoading shows the chat loading indicator. seconds is clamped to
// the range the LINE API accepts.
func (m *LineMessenger) StartLoading(chatID string, seconds int) error {
	if chatID == "" {
		return nil
	}

	if seconds < config.LoadingSecondsMin {
		seconds = config.LoadingSecondsMin
	}
	if seconds > config.LoadingSecondsMax {
		seconds = config.LoadingSecondsMax
	}

	_, err := m.client.ShowLoadingAnimation(&messaging_api.ShowLoadingAnimationRequest{
		ChatId:         chatID,
		LoadingSeconds: int32(seconds),
	})
	m.record("loading", err)
	if err != nil {
		return fmt.Errorf("start loading: %w", err)
	}
	return nil
}

func (m *LineMessenger) record(channel string, err error) {
	if m.metrics != nil {
		m.metrics.RecordOutbound(channel, err == nil)
	}
}
