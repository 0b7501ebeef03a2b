package gate

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/bundlegate/internal/storage/sqlite"
)

func setupTestHandler(t *testing.T) (*Handler, *sqlite.Storage) {
	ctx := context.Background()

	store, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return NewHandler(slog.Default(), store, "APP_ID", "OK", "BLOCKED"), store
}

func doCheck(t *testing.T, h *Handler, bundleID string) (int, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if bundleID != "" {
		req.Header.Set("APP_ID", bundleID)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestHandler_UnknownBundle_FailOpen(t *testing.T) {
	h, store := setupTestHandler(t)

	// Первый контакт: разрешено и зарегистрировано
	code, body := doCheck(t, h, "com.example.app")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body)

	bundle, err := store.Get(context.Background(), "com.example.app")
	require.NoError(t, err)
	assert.True(t, bundle.AllowExecution)
}

func TestHandler_DeniedBundle(t *testing.T) {
	h, store := setupTestHandler(t)

	require.NoError(t, store.SetExecution(context.Background(), "com.example.app", false, 1000))

	code, body := doCheck(t, h, "com.example.app")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "BLOCKED", body)
}

func TestHandler_MissingHeader(t *testing.T) {
	h, store := setupTestHandler(t)

	// Без заголовка идентификатора: blocked без деталей и без регистрации
	code, body := doCheck(t, h, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "BLOCKED", body)

	count, _, err := store.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestHandler_UpdatesLastAccess(t *testing.T) {
	h, store := setupTestHandler(t)
	ctx := context.Background()

	_, _ = doCheck(t, h, "com.example.app")

	first, err := store.Get(ctx, "com.example.app")
	require.NoError(t, err)

	// Проверка отмечается даже для заблокированного приложения
	require.NoError(t, store.SetExecution(ctx, "com.example.app", false, first.LastAccessTime))
	_, body := doCheck(t, h, "com.example.app")
	assert.Equal(t, "BLOCKED", body)

	second, err := store.Get(ctx, "com.example.app")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, second.LastAccessTime, first.LastAccessTime)
}

func TestHandler_StorageFailure(t *testing.T) {
	ctx := context.Background()

	store, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	h := NewHandler(slog.Default(), store, "APP_ID", "OK", "BLOCKED")

	// Закрытое хранилище: фатальный класс, 500 на транспортном уровне
	require.NoError(t, store.Close())

	code, _ := doCheck(t, h, "com.example.app")
	assert.Equal(t, http.StatusInternalServerError, code)
}
