package evidence

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/evidence-atlas/pkg/models/api"
	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/models/store"
	evidencestore "github.com/de-tools/evidence-atlas/pkg/store/duckdb/evidence"
)

// Reader is the read side of the evidence snapshot.
type Reader interface {
	ListReports(ctx context.Context, group string) ([]store.ReportSummary, error)
	GetReport(ctx context.Context, group, check string) (*domain.Report, error)
}

type Handler struct {
	reader Reader
}

func NewHandler(reader Reader) *Handler {
	return &Handler{reader: reader}
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	group := chi.URLParam(r, "group")

	reports, err := h.reader.ListReports(ctx, group)
	if err != nil {
		logger.Error().Err(err).Str("group", group).Msg("failed to list reports")
		writeJSON(ctx, w, http.StatusInternalServerError, api.Error{Error: "failed to list reports"})
		return
	}
	if len(reports) == 0 {
		writeJSON(ctx, w, http.StatusNotFound, api.Error{Error: "no evidence for group " + group})
		return
	}

	response := api.GroupReports{Group: group, Reports: make([]api.ReportSummary, 0, len(reports))}
	for _, rep := range reports {
		response.Reports = append(response.Reports, api.ReportSummary{
			Name:         rep.Check,
			Control:      rep.Control,
			Passed:       rep.Passed,
			NonCompliant: rep.NonCompliant,
			Note:         rep.Note,
			CollectedAt:  rep.CollectedAt,
		})
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	group := chi.URLParam(r, "group")
	check := chi.URLParam(r, "check")

	report, err := h.reader.GetReport(ctx, group, check)
	if errors.Is(err, evidencestore.ErrReportNotFound) {
		writeJSON(ctx, w, http.StatusNotFound, api.Error{Error: "report not found"})
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("group", group).Str("check", check).Msg("failed to get report")
		writeJSON(ctx, w, http.StatusInternalServerError, api.Error{Error: "failed to get report"})
		return
	}
	writeJSON(ctx, w, http.StatusOK, report)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}
