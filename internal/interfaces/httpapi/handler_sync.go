package httpapi

import "net/http"

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSyncStatus")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, syncStatusToDTO(h.syncService.Status()))
}

// RetrySync forces a probe-and-drain cycle outside the monitor's cadence.
func (h *Handler) RetrySync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RetrySync")
	defer span.End()

	h.syncService.CheckConnection(ctx)
	writeSuccess(ctx, w, http.StatusOK, syncStatusToDTO(h.syncService.Status()))
}
