package attendance

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campuscore/campuscore/internal/platform/httpx"
	"github.com/campuscore/campuscore/internal/shared"
	"github.com/campuscore/campuscore/report"
)

// Handler manages attendance endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	reports   *report.Client
	validator *validator.Validate
}

// NewHandler builds Handler instance. reports may be nil; the PDF endpoint
// then responds 503.
func NewHandler(logger *slog.Logger, service *Service, reports *report.Client) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, reports: reports, validator: validator.New()}
}

// MountRoutes registers attendance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listByDate)
	r.Post("/mark", h.mark)
	r.Post("/clock", h.clock)
	r.Get("/summary", h.summary)
	r.Get("/export.csv", h.exportCSV)
	r.Get("/export.pdf", h.exportPDF)
}

type markRequest struct {
	StudentID int64  `json:"studentId" validate:"required,gt=0"`
	Date      string `json:"date,omitempty"`
	Status    string `json:"status" validate:"required"`
	Note      string `json:"note"`
}

type clockRequest struct {
	EmployeeID int64      `json:"employeeId" validate:"required,gt=0"`
	DeviceID   string     `json:"deviceId"`
	Direction  string     `json:"direction" validate:"required,oneof=in out"`
	At         *time.Time `json:"at,omitempty"`
}

func (h *Handler) mark(w http.ResponseWriter, r *http.Request) {
	var req markRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var date time.Time
	if req.Date != "" {
		var err error
		date, err = time.Parse(time.DateOnly, req.Date)
		if err != nil {
			httpx.RespondError(w, httpx.ErrValidation)
			return
		}
	}
	record, err := h.service.Mark(r.Context(), shared.IdentityFromContext(r.Context()), MarkInput{
		StudentID: req.StudentID,
		Date:      date,
		Status:    req.Status,
		Note:      req.Note,
	})
	if err != nil {
		h.respondError(w, "mark attendance", err)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func (h *Handler) clock(w http.ResponseWriter, r *http.Request) {
	var req clockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var at time.Time
	if req.At != nil {
		at = *req.At
	}
	event, err := h.service.RecordClock(r.Context(), req.EmployeeID, req.DeviceID, req.Direction, at)
	if err != nil {
		h.respondError(w, "record clock event", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, event)
}

func (h *Handler) listByDate(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date", h.service.now())
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	records, err := h.service.ListByDate(r.Context(), date)
	if err != nil {
		h.respondError(w, "list attendance", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"records": records})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.rangeParams(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	summary, err := h.service.Summary(r.Context(), from, to)
	if err != nil {
		h.respondError(w, "attendance summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"from": from.Format(time.DateOnly), "to": to.Format(time.DateOnly), "summary": summary})
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.rangeParams(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance.csv"`)
	if err := h.service.WriteCSV(r.Context(), w, from, to); err != nil {
		h.logger.Error("export attendance csv", slog.Any("error", err))
	}
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	from, to, err := h.rangeParams(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	records, err := h.service.ListRange(r.Context(), from, to)
	if err != nil {
		h.respondError(w, "export attendance pdf", err)
		return
	}
	pdf, err := h.reports.RenderHTML(r.Context(), registerHTML(from, to, records))
	if err != nil {
		h.logger.Error("render attendance pdf", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance.pdf"`)
	_, _ = w.Write(pdf)
}

func (h *Handler) rangeParams(r *http.Request) (time.Time, time.Time, error) {
	today := DateOnly(h.service.now())
	from, err := dateParam(r, "from", today)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := dateParam(r, "to", today)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func dateParam(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return time.Parse(time.DateOnly, raw)
}

func registerHTML(from, to time.Time, records []Record) string {
	var buf bytes.Buffer
	buf.WriteString("<html><head><title>Attendance Register</title></head><body>")
	buf.WriteString("<h1>Attendance Register</h1>")
	buf.WriteString("<p>" + from.Format(time.DateOnly) + " to " + to.Format(time.DateOnly) + "</p>")
	buf.WriteString("<table border=\"1\" cellspacing=\"0\"><tr><th>Date</th><th>Student</th><th>Status</th><th>Source</th></tr>")
	for _, record := range records {
		buf.WriteString("<tr><td>" + record.Date.Format(time.DateOnly) + "</td><td>" +
			strconv.FormatInt(record.StudentID, 10) + "</td><td>" + record.Status + "</td><td>" + record.Source + "</td></tr>")
	}
	buf.WriteString("</table></body></html>")
	return buf.String()
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrInvalid):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
