package jobs

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dErrors "avgverzoek/pkg/domain-errors"
	"avgverzoek/pkg/platform/httputil"
	"avgverzoek/pkg/requestcontext"
)

type reminderRunner interface {
	RunDeadlineReminders(ctx context.Context) (ReminderReport, error)
}

// AdminHandler lets an operator trigger a sweep outside the schedule.
type AdminHandler struct {
	runner reminderRunner
	logger *slog.Logger
}

func NewAdminHandler(runner reminderRunner, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{runner: runner, logger: logger}
}

// Register mounts the admin routes. The caller applies the admin middleware.
func (h *AdminHandler) Register(r chi.Router) {
	r.Post("/admin/jobs/reminders", h.HandleRunReminders)
}

// HandleRunReminders handles POST /admin/jobs/reminders.
func (h *AdminHandler) HandleRunReminders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.runner.RunDeadlineReminders(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "manual reminder sweep failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "reminder sweep failed"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}
