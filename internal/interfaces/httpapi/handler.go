package httpapi

import (
	"github.com/go-playground/validator/v10"

	"github.com/bringolino/bringolino/internal/platform/logging"
	"github.com/bringolino/bringolino/internal/usecase"
)

type Handler struct {
	syncService      *usecase.SyncService
	lockService      *usecase.LockService
	taskService      *usecase.TaskService
	dashboardService *usecase.DashboardService
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	syncService *usecase.SyncService,
	lockService *usecase.LockService,
	taskService *usecase.TaskService,
	dashboardService *usecase.DashboardService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Handler{
		syncService:      syncService,
		lockService:      lockService,
		taskService:      taskService,
		dashboardService: dashboardService,
		logger:           logger,
		validator:        validator.New(),
	}
}
