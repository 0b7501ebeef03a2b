package telegram

import (
	"context"
	"fmt"

	"github.com/iudanet/bundlegate/internal/controlplane"
)

// SendMessage implements controlplane.Responder
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup *controlplane.Markup) (int, error) {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if rm := replyMarkup(markup); rm != nil {
		payload["reply_markup"] = rm
	}

	var sent Message
	if err := c.call(ctx, "sendMessage", payload, &sent); err != nil {
		return 0, fmt.Errorf("sendMessage failed: %w", err)
	}
	return sent.MessageID, nil
}

// EditMessageText implements controlplane.Responder
func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, markup *controlplane.Markup) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	}
	if rm := replyMarkup(markup); rm != nil {
		payload["reply_markup"] = rm
	}

	if err := c.call(ctx, "editMessageText", payload, nil); err != nil {
		return fmt.Errorf("editMessageText failed: %w", err)
	}
	return nil
}

// EditMessageMarkup implements controlplane.Responder
func (c *Client) EditMessageMarkup(ctx context.Context, chatID int64, messageID int, markup *controlplane.Markup) error {
	payload := map[string]any{
		"chat_id":      chatID,
		"message_id":   messageID,
		"reply_markup": replyMarkup(markup),
	}

	if err := c.call(ctx, "editMessageReplyMarkup", payload, nil); err != nil {
		return fmt.Errorf("editMessageReplyMarkup failed: %w", err)
	}
	return nil
}

// AnswerCallback implements controlplane.Responder
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	payload := map[string]any{
		"callback_query_id": callbackID,
	}
	if text != "" {
		payload["text"] = text
	}

	if err := c.call(ctx, "answerCallbackQuery", payload, nil); err != nil {
		return fmt.Errorf("answerCallbackQuery failed: %w", err)
	}
	return nil
}

// AnswerInline implements controlplane.Responder
func (c *Client) AnswerInline(ctx context.Context, queryID string, results []controlplane.InlineResult) error {
	articles := make([]map[string]any, 0, len(results))
	for _, r := range results {
		articles = append(articles, map[string]any{
			"type":  "article",
			"id":    r.ID,
			"title": r.Title,
			"input_message_content": map[string]any{
				"message_text": r.Text,
			},
		})
	}

	payload := map[string]any{
		"inline_query_id": queryID,
		"results":         articles,
		"cache_time":      1,
	}

	if err := c.call(ctx, "answerInlineQuery", payload, nil); err != nil {
		return fmt.Errorf("answerInlineQuery failed: %w", err)
	}
	return nil
}

// DeleteMessages implements controlplane.Responder
func (c *Client) DeleteMessages(ctx context.Context, chatID int64, messageIDs []int) error {
	payload := map[string]any{
		"chat_id":     chatID,
		"message_ids": messageIDs,
	}

	if err := c.call(ctx, "deleteMessages", payload, nil); err != nil {
		return fmt.Errorf("deleteMessages failed: %w", err)
	}
	return nil
}

// replyMarkup переводит клавиатуру машины в формат Bot API
func replyMarkup(markup *controlplane.Markup) any {
	if markup == nil {
		return nil
	}

	switch {
	case markup.RemoveReply:
		return map[string]any{"remove_keyboard": true}

	case len(markup.Inline) > 0:
		rows := make([][]map[string]string, 0, len(markup.Inline))
		for _, row := range markup.Inline {
			buttons := make([]map[string]string, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, map[string]string{
					"text":          b.Text,
					"callback_data": b.CallbackData,
				})
			}
			rows = append(rows, buttons)
		}
		return map[string]any{"inline_keyboard": rows}

	case len(markup.Reply) > 0:
		rows := make([][]map[string]string, 0, len(markup.Reply))
		for _, row := range markup.Reply {
			buttons := make([]map[string]string, 0, len(row))
			for _, text := range row {
				buttons = append(buttons, map[string]string{"text": text})
			}
			rows = append(rows, buttons)
		}
		return map[string]any{"keyboard": rows, "resize_keyboard": true}

	default:
		return nil
	}
}
