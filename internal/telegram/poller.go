package telegram

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/iudanet/bundlegate/internal/controlplane"
)

const (
	pollTimeout    = 30 * time.Second
	pollRetryDelay = 3 * time.Second
)

// Dispatcher is the control-plane machine as seen by the poller
type Dispatcher interface {
	HandleStart(ctx context.Context, msg controlplane.Message) error
	HandleCancel(ctx context.Context, msg controlplane.Message) error
	HandleMessage(ctx context.Context, msg controlplane.Message) error
	HandleCallback(ctx context.Context, call controlplane.Callback) error
	HandleInline(ctx context.Context, query controlplane.InlineQuery) error
}

// Poller long-polls Bot API updates and feeds them to the machine
type Poller struct {
	logger     *slog.Logger
	client     *Client
	dispatcher Dispatcher
}

// NewPoller creates a new update poller
func NewPoller(logger *slog.Logger, client *Client, dispatcher Dispatcher) *Poller {
	return &Poller{
		logger:     logger,
		client:     client,
		dispatcher: dispatcher,
	}
}

// Run polls until ctx is cancelled. Каждое обновление обрабатывается в своей
// горутине: глобальной блокировки между диалогами и gate-запросами нет,
// корректность обеспечивает хранилище.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64

	for {
		updates, err := p.client.GetUpdates(ctx, offset, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			p.logger.Error("failed to get updates", slog.Any("error", err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollRetryDelay):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}

			go p.dispatch(ctx, update)
		}
	}
}

// dispatch маршрутизирует одно обновление в машину
func (p *Poller) dispatch(ctx context.Context, update Update) {
	var err error

	switch {
	case update.Message != nil:
		err = p.dispatchMessage(ctx, update.Message)

	case update.CallbackQuery != nil:
		err = p.dispatchCallback(ctx, update.CallbackQuery)

	case update.InlineQuery != nil:
		err = p.dispatcher.HandleInline(ctx, controlplane.InlineQuery{
			ID:       update.InlineQuery.ID,
			SenderID: update.InlineQuery.From.ID,
			Query:    update.InlineQuery.Query,
			Private:  update.InlineQuery.ChatType == "sender",
		})
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("failed to handle update",
			slog.Int64("update_id", update.UpdateID),
			slog.Any("error", err))
	}
}

func (p *Poller) dispatchMessage(ctx context.Context, msg *Message) error {
	event := controlplane.Message{
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
	}
	if msg.Text != nil {
		event.Text = *msg.Text
		event.HasText = true
	}

	switch event.Text {
	case "/start":
		return p.dispatcher.HandleStart(ctx, event)
	case "/cancel":
		return p.dispatcher.HandleCancel(ctx, event)
	default:
		return p.dispatcher.HandleMessage(ctx, event)
	}
}

func (p *Poller) dispatchCallback(ctx context.Context, call *CallbackQuery) error {
	// Callback без исходного сообщения нечего редактировать
	if call.Message == nil {
		return nil
	}

	return p.dispatcher.HandleCallback(ctx, controlplane.Callback{
		ID:        call.ID,
		ChatID:    call.Message.Chat.ID,
		MessageID: call.Message.MessageID,
		Data:      call.Data,
	})
}
