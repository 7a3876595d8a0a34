package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/departments", handler.ListDepartments)
	mux.HandleFunc("GET /v1/departments/{dectCode}/templates", handler.ListTemplates)
	mux.HandleFunc("GET /v1/dashboard", handler.GetDashboard)
	mux.HandleFunc("GET /v1/sync/status", handler.GetSyncStatus)
}

func registerIdentityRoutes(mux *http.ServeMux, handler *Handler) {
	mux.Handle("GET /v1/tasks", RequireIdentity(http.HandlerFunc(handler.ListTasks)))
	mux.Handle("POST /v1/tasks", RequireIdentity(http.HandlerFunc(handler.CreateTask)))
	mux.Handle("GET /v1/tasks/{taskID}", RequireIdentity(http.HandlerFunc(handler.GetTask)))
	mux.Handle("PUT /v1/tasks/{taskID}", RequireIdentity(http.HandlerFunc(handler.UpdateTask)))
	mux.Handle("DELETE /v1/tasks/{taskID}", RequireIdentity(http.HandlerFunc(handler.DeleteTask)))

	mux.Handle("GET /v1/departments/{dectCode}/snapshot", RequireIdentity(http.HandlerFunc(handler.GetSnapshot)))
	mux.Handle("PUT /v1/departments/{dectCode}/snapshot", RequireIdentity(http.HandlerFunc(handler.SaveSnapshot)))
	mux.Handle("POST /v1/departments/{dectCode}/snapshot/toggle", RequireIdentity(http.HandlerFunc(handler.ToggleTask)))

	mux.Handle("GET /v1/locks", RequireIdentity(http.HandlerFunc(handler.ListLocks)))
	mux.Handle("GET /v1/locks/{dectCode}", RequireIdentity(http.HandlerFunc(handler.GetLock)))
	mux.Handle("POST /v1/locks/{dectCode}", RequireIdentity(http.HandlerFunc(handler.AcquireLock)))
	mux.Handle("DELETE /v1/locks/{dectCode}", RequireIdentity(http.HandlerFunc(handler.ReleaseLock)))

	mux.Handle("POST /v1/sync/retry", RequireIdentity(http.HandlerFunc(handler.RetrySync)))
}
