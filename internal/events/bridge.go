package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/sibarconnect/inbox-service/internal/domain"
)

// Sink receives fanned-out events. Satisfied by realtime.Hub; tests plug in
// recording fakes.
type Sink interface {
	BroadcastToChat(companyID, chatID int64, event string, data any)
	BroadcastToCompany(companyID int64, event string, data any)
}

type job struct {
	event     string
	companyID int64
	chatID    int64 // zero for company-scoped delivery
	data      any
}

// Bridge decouples write paths from websocket fanout. Enqueue never blocks:
// when the queue is full the event is dropped and logged, so a slow consumer
// can delay delivery but never a message write. A single drain goroutine
// preserves enqueue order per process.
type Bridge struct {
	sink   Sink
	queue  chan job
	logger *zap.Logger
}

// NewBridge builds a bridge with a bounded queue. Run must be started for
// events to flow.
func NewBridge(sink Sink, queueSize int, logger *zap.Logger) *Bridge {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &Bridge{
		sink:   sink,
		queue:  make(chan job, queueSize),
		logger: logger,
	}
}

// Run drains the queue until ctx is cancelled. Intended to be started once
// as a background goroutine from main.
func (b *Bridge) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-b.queue:
			b.dispatch(j)
		}
	}
}

func (b *Bridge) dispatch(j job) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event dispatch panicked",
				zap.String("event", j.event),
				zap.Any("panic", r))
		}
	}()
	if j.chatID != 0 {
		b.sink.BroadcastToChat(j.companyID, j.chatID, j.event, j.data)
		return
	}
	b.sink.BroadcastToCompany(j.companyID, j.event, j.data)
}

// MessageCreated publishes the event pair for a newly stored message:
// message.created to the chat's subscribers and chat.updated to the
// company's, in that order.
func (b *Bridge) MessageCreated(companyID int64, msg *domain.Message) {
	payload := NewMessagePayload(companyID, msg)
	b.enqueue(job{
		event:     EventMessageCreated,
		companyID: companyID,
		chatID:    msg.ChatID,
		data:      payload,
	})
	b.enqueue(job{
		event:     EventChatUpdated,
		companyID: companyID,
		data: ChatUpdatedPayload{
			ChatID:      msg.ChatID,
			CompanyID:   companyID,
			LastMessage: &payload,
		},
	})
}

// ChatUpdated publishes a chat.updated event carrying the chat's current
// last message, for lifecycle changes that do not create a message.
func (b *Bridge) ChatUpdated(companyID, chatID int64, last *domain.Message) {
	payload := ChatUpdatedPayload{ChatID: chatID, CompanyID: companyID}
	if last != nil {
		lm := NewMessagePayload(companyID, last)
		payload.LastMessage = &lm
	}
	b.enqueue(job{
		event:     EventChatUpdated,
		companyID: companyID,
		data:      payload,
	})
}

func (b *Bridge) enqueue(j job) {
	select {
	case b.queue <- j:
	default:
		b.logger.Warn("event queue full, dropping event",
			zap.String("event", j.event),
			zap.Int64("company_id", j.companyID),
			zap.Int64("chat_id", j.chatID))
	}
}
