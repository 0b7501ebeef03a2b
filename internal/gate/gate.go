// Package gate implements the always-on authorization endpoint polled by
// client applications. It is deliberately unauthenticated: any caller
// presenting a bundle identifier gets registered fail-open unless an
// administrator has denied it.
package gate

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/bundlegate/internal/storage"
)

// Handler answers yes/no execution checks
type Handler struct {
	logger      *slog.Logger
	bundles     storage.BundleStorage
	headerName  string
	okBody      string
	blockedBody string

	// now подменяется в тестах
	now func() time.Time
}

// NewHandler creates a new gate handler. headerName names the request header
// carrying the bundle identifier; okBody and blockedBody are the two literal
// response tokens.
func NewHandler(logger *slog.Logger, bundles storage.BundleStorage, headerName, okBody, blockedBody string) *Handler {
	return &Handler{
		logger:      logger,
		bundles:     bundles,
		headerName:  headerName,
		okBody:      okBody,
		blockedBody: blockedBody,
		now:         time.Now,
	}
}

// ServeHTTP обрабатывает GET /
// Запрос без заголовка идентификатора получает "blocked" без деталей
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bundleID := r.Header.Get(h.headerName)
	if bundleID == "" {
		h.write(w, h.blockedBody)
		return
	}

	allowed, err := h.bundles.CheckOrCreate(ctx, bundleID, h.now().Unix())
	if err != nil {
		// Недоступность хранилища — единственный фатальный класс,
		// он уходит на транспортный уровень как 500
		h.logger.ErrorContext(ctx, "failed to check bundle", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if allowed {
		h.write(w, h.okBody)
	} else {
		h.write(w, h.blockedBody)
	}
}

func (h *Handler) write(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(body)); err != nil {
		h.logger.Error("failed to write gate response", slog.Any("error", err))
	}
}
