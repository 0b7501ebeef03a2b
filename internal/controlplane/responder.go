package controlplane

import "context"

// Message is an inbound chat message
type Message struct {
	ChatID    int64
	MessageID int
	Text      string
	HasText   bool // false для стикеров, фото и прочего не-текста
}

// Callback is an inbound button press; Data carries an action@argument pair
type Callback struct {
	ID        string
	ChatID    int64
	MessageID int
	Data      string
}

// InlineQuery is an inbound inline search query
type InlineQuery struct {
	ID       string
	SenderID int64
	Query    string
	Private  bool // true только в личном чате с ботом
}

// Button is one inline keyboard button
type Button struct {
	Text         string
	CallbackData string
}

// Markup describes the keyboard attached to an outgoing message.
// Either Inline or Reply is set; RemoveReply drops the reply keyboard.
type Markup struct {
	Inline      [][]Button
	Reply       [][]string
	RemoveReply bool
}

// InlineResult is one answer to an inline query
type InlineResult struct {
	ID    string
	Title string
	Text  string // текст сообщения, которое отправится при выборе результата
}

// Responder renders machine output back into the chat. The Telegram client
// implements it; tests substitute a fake.
type Responder interface {
	// SendMessage returns the id of the sent message
	SendMessage(ctx context.Context, chatID int64, text string, markup *Markup) (int, error)
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string, markup *Markup) error
	EditMessageMarkup(ctx context.Context, chatID int64, messageID int, markup *Markup) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	AnswerInline(ctx context.Context, queryID string, results []InlineResult) error
	DeleteMessages(ctx context.Context, chatID int64, messageIDs []int) error
}
