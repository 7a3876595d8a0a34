package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) ListLocks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLocks")
	defer span.End()

	locks, err := h.lockService.List(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list locks failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]lockDTO, 0, len(locks))
	for _, l := range locks {
		items = append(items, lockToDTO(l))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLock(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLock")
	defer span.End()

	ident, _ := identityFromContext(ctx)
	dectCode := strings.TrimSpace(r.PathValue("dectCode"))

	writeSuccess(ctx, w, http.StatusOK, h.lockStateDTO(dectCode, ident.UserID))
}

func (h *Handler) AcquireLock(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AcquireLock")
	defer span.End()

	ident, _ := identityFromContext(ctx)
	dectCode := strings.TrimSpace(r.PathValue("dectCode"))

	acquired, err := h.lockService.Lock(ctx, dectCode, ident.UserID, ident.UserName)
	if err != nil {
		h.logger.WarnContext(ctx, "acquire lock failed", "dect_code", dectCode, "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if !acquired {
		status = http.StatusConflict
	}
	writeSuccess(ctx, w, status, acquireLockResponse{
		Acquired: acquired,
		State:    h.lockStateDTO(dectCode, ident.UserID),
	})
}

func (h *Handler) ReleaseLock(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReleaseLock")
	defer span.End()

	ident, _ := identityFromContext(ctx)
	dectCode := strings.TrimSpace(r.PathValue("dectCode"))

	if err := h.lockService.Unlock(ctx, dectCode, ident.UserID); err != nil {
		h.logger.WarnContext(ctx, "release lock failed", "dect_code", dectCode, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.lockStateDTO(dectCode, ident.UserID))
}

func (h *Handler) lockStateDTO(dectCode, userID string) lockStateDTO {
	dto := lockStateDTO{
		DECTCode: dectCode,
		State:    string(h.lockService.State(dectCode, userID)),
	}
	if lock, ok := h.lockService.Info(dectCode); ok {
		item := lockToDTO(lock)
		dto.Lock = &item
	}
	return dto
}
