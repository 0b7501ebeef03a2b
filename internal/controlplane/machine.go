// Package controlplane implements the per-conversation session machine of the
// administrator panel: the login flow, the authorization guard in front of
// every privileged action, and the registry views (list, detail, search).
// Rendering goes through the Responder interface, so the Telegram transport
// stays presentation glue.
package controlplane

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/bundlegate/internal/auth"
	"github.com/iudanet/bundlegate/internal/session"
	"github.com/iudanet/bundlegate/internal/storage"
	"github.com/iudanet/bundlegate/internal/token"
)

// searchLimit ограничивает число результатов inline-поиска
const searchLimit = 50

// lastAccessFormat — формат времени последней проверки в карточке приложения
const lastAccessFormat = "02/01/2006, 15:04:05"

// Config holds presentation settings of the machine
type Config struct {
	PageSize int            // приложений на странице списка
	Location *time.Location // часовой пояс для отображения времени
	BotName  string         // username бота для подсказки про inline-поиск
}

// Machine drives administrator conversations
type Machine struct {
	logger   *slog.Logger
	creds    *auth.Service
	tokens   *token.Authority
	bundles  storage.BundleStorage
	sessions session.Store
	resp     Responder
	cfg      Config

	// now подменяется в тестах
	now func() time.Time
}

// NewMachine creates a new control-plane session machine
func NewMachine(
	logger *slog.Logger,
	creds *auth.Service,
	tokens *token.Authority,
	bundles storage.BundleStorage,
	sessions session.Store,
	resp Responder,
	cfg Config,
) *Machine {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	return &Machine{
		logger:   logger,
		creds:    creds,
		tokens:   tokens,
		bundles:  bundles,
		sessions: sessions,
		resp:     resp,
		cfg:      cfg,
		now:      time.Now,
	}
}

// HandleStart begins the login flow for the conversation. The stored token is
// kept as-is: /start only moves the dialog, logout is explicit.
func (m *Machine) HandleStart(ctx context.Context, msg Message) error {
	data := m.loadOrNew(ctx, msg.ChatID)
	return m.loginPage(ctx, msg.ChatID, data)
}

// HandleCancel clears all conversation state unconditionally; idempotent
func (m *Machine) HandleCancel(ctx context.Context, msg Message) error {
	if err := m.sessions.Clear(ctx, msg.ChatID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	_, err := m.resp.SendMessage(ctx, msg.ChatID, promptCancelled, removeReplyMarkup())
	return err
}

// HandleMessage routes a free-text message by the conversation's state
func (m *Machine) HandleMessage(ctx context.Context, msg Message) error {
	data, err := m.sessions.Get(ctx, msg.ChatID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			// Диалог не начат, ждем /start
			return nil
		}
		return fmt.Errorf("failed to load session: %w", err)
	}

	switch data.State {
	case session.StateAwaitingLogin:
		return m.handleLogin(ctx, msg, data)
	case session.StateAwaitingPassword:
		return m.handlePassword(ctx, msg, data)
	case session.StateMain:
		return m.handleMainText(ctx, msg, data)
	default:
		return nil
	}
}

// handleLogin собирает логин; не-текст отклоняется без смены состояния
func (m *Machine) handleLogin(ctx context.Context, msg Message, data *session.Data) error {
	if !msg.HasText {
		_, err := m.resp.SendMessage(ctx, msg.ChatID, promptLoginMustBeText, nil)
		return err
	}

	data.State = session.StateAwaitingPassword
	data.PendingLogin = msg.Text
	data.LoginMsgID = msg.MessageID
	if err := m.sessions.Put(ctx, msg.ChatID, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	_, err := m.resp.SendMessage(ctx, msg.ChatID, promptEnterPassword, nil)
	return err
}

// handlePassword завершает аутентификацию. При неверных учетных данных вся
// последовательность начинается заново с логина: пароль никогда не
// проверяется повторно против того же логина.
func (m *Machine) handlePassword(ctx context.Context, msg Message, data *session.Data) error {
	if !msg.HasText {
		_, err := m.resp.SendMessage(ctx, msg.ChatID, promptPassMustBeText, nil)
		return err
	}

	ok, err := m.creds.Validate(ctx, data.PendingLogin, msg.Text)
	if err != nil {
		return fmt.Errorf("failed to validate credentials: %w", err)
	}

	if !ok {
		m.logger.WarnContext(ctx, "authentication failed", slog.Int64("chat_id", msg.ChatID))
		if _, err := m.resp.SendMessage(ctx, msg.ChatID, promptAuthFailure, nil); err != nil {
			return err
		}
		return m.loginPage(ctx, msg.ChatID, data)
	}

	tok, err := m.tokens.Issue(m.now())
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	loginMsgID := data.LoginMsgID
	data.State = session.StateMain
	data.Token = tok
	data.PendingLogin = ""
	data.LoginMsgID = 0
	if err := m.sessions.Put(ctx, msg.ChatID, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	m.logger.InfoContext(ctx, "administrator authenticated", slog.Int64("chat_id", msg.ChatID))

	if err := m.sendMainMenu(ctx, msg.ChatID); err != nil {
		return err
	}

	// Убираем логин и пароль из чата; неудача не критична
	if err := m.resp.DeleteMessages(ctx, msg.ChatID, []int{loginMsgID, msg.MessageID}); err != nil {
		m.logger.WarnContext(ctx, "failed to delete credential messages", slog.Any("error", err))
	}

	return nil
}

// handleMainText обрабатывает текстовые команды главного меню
func (m *Machine) handleMainText(ctx context.Context, msg Message, data *session.Data) error {
	if !msg.HasText {
		return nil
	}

	switch {
	case msg.Text == buttonApplications:
		if ok, err := m.authorize(ctx, msg.ChatID, data); err != nil || !ok {
			return err
		}
		return m.sendBundleList(ctx, msg.ChatID, data)

	case msg.Text == buttonLogout:
		if ok, err := m.authorize(ctx, msg.ChatID, data); err != nil || !ok {
			return err
		}
		return m.logout(ctx, msg.ChatID, data)

	case strings.HasPrefix(msg.Text, editTextTrigger):
		if ok, err := m.authorize(ctx, msg.ChatID, data); err != nil || !ok {
			return err
		}
		return m.jumpToEdit(ctx, msg.ChatID, strings.TrimSpace(strings.TrimPrefix(msg.Text, editTextTrigger)))

	default:
		return nil
	}
}

// HandleCallback routes a button press; every action here is privileged
func (m *Machine) HandleCallback(ctx context.Context, call Callback) error {
	data := m.loadOrNew(ctx, call.ChatID)

	if ok, err := m.authorize(ctx, call.ChatID, data); err != nil || !ok {
		if err != nil {
			return err
		}
		return m.resp.AnswerCallback(ctx, call.ID, "")
	}

	action, arg, found := strings.Cut(call.Data, "@")
	if !found {
		m.logger.WarnContext(ctx, "malformed callback data", slog.String("data", call.Data))
		return m.resp.AnswerCallback(ctx, call.ID, "")
	}

	switch action {
	case actionControlBundle:
		if err := m.forgetListMessage(ctx, call, data); err != nil {
			return err
		}
		if err := m.showBundleDetail(ctx, call, arg); err != nil {
			return err
		}

	case actionViewApps:
		page, err := strconv.Atoi(arg)
		if err != nil {
			m.logger.WarnContext(ctx, "malformed page number", slog.String("data", call.Data))
			break
		}
		return m.showBundleListPage(ctx, call, page, data)

	case actionBlockBundle:
		if err := m.bundles.SetExecution(ctx, arg, false, m.now().Unix()); err != nil {
			return fmt.Errorf("failed to block bundle: %w", err)
		}
		if err := m.forgetListMessage(ctx, call, data); err != nil {
			return err
		}
		// Перечитываем карточку из реестра, никакого оптимистичного состояния
		if err := m.showBundleDetail(ctx, call, arg); err != nil {
			return err
		}

	case actionAllowBundle:
		if err := m.bundles.SetExecution(ctx, arg, true, m.now().Unix()); err != nil {
			return fmt.Errorf("failed to allow bundle: %w", err)
		}
		if err := m.forgetListMessage(ctx, call, data); err != nil {
			return err
		}
		if err := m.showBundleDetail(ctx, call, arg); err != nil {
			return err
		}

	case actionRemoveBundle:
		if err := m.bundles.Remove(ctx, arg); err != nil {
			return fmt.Errorf("failed to remove bundle: %w", err)
		}
		if err := m.resp.EditMessageText(ctx, call.ChatID, call.MessageID, promptBundleRemoved, nil); err != nil {
			return err
		}
		if err := m.sendBundleList(ctx, call.ChatID, data); err != nil {
			return err
		}

	default:
		m.logger.WarnContext(ctx, "unknown callback action", slog.String("action", action))
	}

	return m.resp.AnswerCallback(ctx, call.ID, "")
}

// HandleInline answers an inline search query. Доступ проверяется по тому же
// токену, что и остальные привилегированные действия.
func (m *Machine) HandleInline(ctx context.Context, query InlineQuery) error {
	if !query.Private {
		return m.answerInlineNotice(ctx, query.ID, inlineOnlyDirectChat)
	}

	data, err := m.sessions.Get(ctx, query.SenderID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return m.answerInlineNotice(ctx, query.ID, inlineAccessDenied)
		}
		return fmt.Errorf("failed to load session: %w", err)
	}

	if _, ok := m.tokens.Validate(data.Token, m.now()); !ok {
		return m.answerInlineNotice(ctx, query.ID, inlineAccessDenied)
	}

	bundles, err := m.bundles.Search(ctx, query.Query, searchLimit)
	if err != nil {
		return fmt.Errorf("failed to search bundles: %w", err)
	}

	if len(bundles) == 0 {
		return m.answerInlineNotice(ctx, query.ID, fmt.Sprintf(inlineNotFound, query.Query))
	}

	results := make([]InlineResult, 0, len(bundles))
	for _, b := range bundles {
		text := fmt.Sprintf(inlineEditPrompt, b.BundleID)
		results = append(results, InlineResult{
			ID:    uuid.New().String(),
			Title: text,
			Text:  text,
		})
	}

	return m.resp.AnswerInline(ctx, query.ID, results)
}

// authorize is the guard in front of every privileged action: it re-validates
// the stored token and, on any failure, emits access-denied and routes the
// conversation back to the login prompt.
func (m *Machine) authorize(ctx context.Context, chatID int64, data *session.Data) (bool, error) {
	if _, ok := m.tokens.Validate(data.Token, m.now()); ok {
		return true, nil
	}

	m.logger.InfoContext(ctx, "token rejected, forcing re-login", slog.Int64("chat_id", chatID))

	if _, err := m.resp.SendMessage(ctx, chatID, promptAccessDenied, removeReplyMarkup()); err != nil {
		return false, err
	}

	return false, m.loginPage(ctx, chatID, data)
}

// logout забывает токен локально и возвращает диалог к вводу логина. Сам
// токен остается криптографически валидным до истечения TTL: отзыв слабый,
// это документированное поведение.
func (m *Machine) logout(ctx context.Context, chatID int64, data *session.Data) error {
	data.Token = ""
	if err := m.sessions.Put(ctx, chatID, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if _, err := m.resp.SendMessage(ctx, chatID, promptLogout, removeReplyMarkup()); err != nil {
		return err
	}

	return m.loginPage(ctx, chatID, data)
}

// jumpToEdit открывает карточку приложения по сообщению от inline-результата
func (m *Machine) jumpToEdit(ctx context.Context, chatID int64, bundleID string) error {
	bundle, err := m.bundles.Get(ctx, bundleID)
	if err != nil {
		if errors.Is(err, storage.ErrBundleNotFound) {
			if _, err := m.resp.SendMessage(ctx, chatID, promptBundleNotFound, nil); err != nil {
				return err
			}
			return m.sendMainMenu(ctx, chatID)
		}
		return fmt.Errorf("failed to get bundle: %w", err)
	}

	_, err = m.resp.SendMessage(ctx, chatID, m.bundleInfoText(bundle.BundleID, bundle.AllowExecution, bundle.LastAccessTime),
		bundleDetailMarkup(bundle.BundleID, bundle.AllowExecution))
	return err
}

// showBundleDetail редактирует сообщение в карточку приложения
func (m *Machine) showBundleDetail(ctx context.Context, call Callback, bundleID string) error {
	bundle, err := m.bundles.Get(ctx, bundleID)
	if err != nil {
		if errors.Is(err, storage.ErrBundleNotFound) {
			return m.resp.EditMessageText(ctx, call.ChatID, call.MessageID, promptBundleNotFound, nil)
		}
		return fmt.Errorf("failed to get bundle: %w", err)
	}

	return m.resp.EditMessageText(ctx, call.ChatID, call.MessageID,
		m.bundleInfoText(bundle.BundleID, bundle.AllowExecution, bundle.LastAccessTime),
		bundleDetailMarkup(bundle.BundleID, bundle.AllowExecution))
}

// sendBundleList отправляет первую страницу списка новым сообщением
func (m *Machine) sendBundleList(ctx context.Context, chatID int64, data *session.Data) error {
	count, bundles, err := m.bundles.List(ctx, m.cfg.PageSize, 0)
	if err != nil {
		return fmt.Errorf("failed to list bundles: %w", err)
	}

	if count == 0 {
		_, err := m.resp.SendMessage(ctx, chatID, promptNoBundles, nil)
		return err
	}

	pages := pageCount(count, m.cfg.PageSize)
	msgID, err := m.resp.SendMessage(ctx, chatID, promptBundlesList, bundleListMarkup(bundles, 0, pages))
	if err != nil {
		return err
	}

	data.ListPage = 0
	data.ListMsgID = msgID
	if err := m.sessions.Put(ctx, chatID, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// forgetListMessage инвалидирует запись о сообщении со списком, когда оно
// перерисовывается в карточку приложения. Без этого кнопка возврата к списку
// на той же странице приняла бы правку за no-op.
func (m *Machine) forgetListMessage(ctx context.Context, call Callback, data *session.Data) error {
	if call.MessageID != data.ListMsgID {
		return nil
	}

	data.ListMsgID = 0
	if err := m.sessions.Put(ctx, call.ChatID, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// showBundleListPage перерисовывает список на запрошенной странице. Если
// запрошена уже отображаемая страница, правка была бы no-op — вместо нее
// показывается безвредное уведомление.
func (m *Machine) showBundleListPage(ctx context.Context, call Callback, page int, data *session.Data) error {
	count, bundles, err := m.bundles.List(ctx, m.cfg.PageSize, page*m.cfg.PageSize)
	if err != nil {
		return fmt.Errorf("failed to list bundles: %w", err)
	}

	if count == 0 {
		if err := m.resp.EditMessageText(ctx, call.ChatID, call.MessageID, promptNoBundles, nil); err != nil {
			return err
		}
		return m.resp.AnswerCallback(ctx, call.ID, "")
	}

	pages := pageCount(count, m.cfg.PageSize)
	if page < 0 || page >= pages {
		return m.resp.AnswerCallback(ctx, call.ID, promptNoSuchPage)
	}

	if call.MessageID == data.ListMsgID && page == data.ListPage {
		return m.resp.AnswerCallback(ctx, call.ID, promptNoSuchPage)
	}

	markup := bundleListMarkup(bundles, page, pages)
	if call.MessageID == data.ListMsgID {
		// Сообщение уже показывает список, текст не меняется
		if err := m.resp.EditMessageMarkup(ctx, call.ChatID, call.MessageID, markup); err != nil {
			return err
		}
	} else {
		if err := m.resp.EditMessageText(ctx, call.ChatID, call.MessageID, promptBundlesList, markup); err != nil {
			return err
		}
	}

	data.ListPage = page
	data.ListMsgID = call.MessageID
	if err := m.sessions.Put(ctx, call.ChatID, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return m.resp.AnswerCallback(ctx, call.ID, "")
}

// loginPage переводит диалог к вводу логина
func (m *Machine) loginPage(ctx context.Context, chatID int64, data *session.Data) error {
	data.State = session.StateAwaitingLogin
	data.PendingLogin = ""
	data.LoginMsgID = 0
	if err := m.sessions.Put(ctx, chatID, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	_, err := m.resp.SendMessage(ctx, chatID, promptEnterLogin, removeReplyMarkup())
	return err
}

// sendMainMenu показывает главное меню с reply-клавиатурой
func (m *Machine) sendMainMenu(ctx context.Context, chatID int64) error {
	_, err := m.resp.SendMessage(ctx, chatID, fmt.Sprintf(promptMainPage, m.cfg.BotName), mainMenuMarkup())
	return err
}

// answerInlineNotice отвечает на inline-запрос единственным результатом-заглушкой
func (m *Machine) answerInlineNotice(ctx context.Context, queryID, title string) error {
	return m.resp.AnswerInline(ctx, queryID, []InlineResult{{
		ID:    uuid.New().String(),
		Title: title,
		Text:  inlineNopeText,
	}})
}

// loadOrNew возвращает состояние диалога или пустое значение
func (m *Machine) loadOrNew(ctx context.Context, chatID int64) *session.Data {
	data, err := m.sessions.Get(ctx, chatID)
	if err != nil {
		return &session.Data{}
	}
	return data
}

// bundleInfoText форматирует карточку приложения
func (m *Machine) bundleInfoText(bundleID string, allowed bool, lastAccess int64) string {
	status := executionDenied
	if allowed {
		status = executionAllowed
	}

	return fmt.Sprintf(bundleInfo, bundleID, status,
		time.Unix(lastAccess, 0).In(m.cfg.Location).Format(lastAccessFormat))
}

// pageCount вычисляет ceil(count / pageSize)
func pageCount(count, pageSize int) int {
	return (count + pageSize - 1) / pageSize
}
