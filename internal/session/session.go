// Package session defines the conversation-scoped state of the control-plane:
// which step of the login flow a chat is on, the login collected so far, and
// the session token issued after authentication. State is keyed by chat id
// and never shared across conversations.
package session

import (
	"context"
	"errors"
)

// ErrNotFound indicates that no state is stored for the conversation
var ErrNotFound = errors.New("session not found")

// State является шагом диалога администратора
type State string

const (
	// StateAwaitingLogin — бот ждет логин
	StateAwaitingLogin State = "awaiting_login"
	// StateAwaitingPassword — бот ждет пароль
	StateAwaitingPassword State = "awaiting_password"
	// StateMain — администратор в главном меню
	StateMain State = "main"
)

// Data is the per-conversation state value object
type Data struct {
	State        State  `json:"state"`
	PendingLogin string `json:"pending_login,omitempty"` // логин, введенный на первом шаге
	LoginMsgID   int    `json:"login_msg_id,omitempty"`  // сообщение с логином, удаляется после входа
	Token        string `json:"token,omitempty"`         // session token; пустая строка = не аутентифицирован
	ListPage     int    `json:"list_page"`               // страница списка, отображаемая сейчас
	ListMsgID    int    `json:"list_msg_id,omitempty"`   // сообщение, в котором отрисован список
}

// Store persists conversation state keyed by chat id
type Store interface {
	// Get returns the stored state
	// Returns ErrNotFound if the conversation has no state
	Get(ctx context.Context, chatID int64) (*Data, error)

	// Put stores the state, replacing any previous value
	Put(ctx context.Context, chatID int64, data *Data) error

	// Clear removes the state; clearing an unknown conversation is a no-op
	Clear(ctx context.Context, chatID int64) error
}
