package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/mastry-api/internal/docstore"
	"github.com/wolfman30/mastry-api/internal/observability/metrics"
	"github.com/wolfman30/mastry-api/pkg/logging"
)

const maxBodyBytes = 64 << 10

var tracer = otel.Tracer("mastry.internal.leads")

// Notifier is told about every lead that was stored.
type Notifier interface {
	NotifyNewLead(ctx context.Context, lead *Lead) error
}

// Handler handles HTTP requests for leads
type Handler struct {
	store    docstore.Store
	notifier Notifier
	metrics  *metrics.LeadMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// NewHandler creates a new leads handler. store may be nil when no database
// is configured; submissions then fail with docstore.ErrUnavailable.
func NewHandler(store docstore.Store, notifier Notifier, m *metrics.LeadMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		store:    store,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates req and persists it as a new lead, returning its id.
// Nothing is written when validation fails.
func (h *Handler) Submit(ctx context.Context, req CreateLeadRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "leads.submit")
	defer span.End()

	lead, err := Validate(req)
	if err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return "", err
	}
	if h.store == nil {
		span.SetStatus(codes.Error, "store unavailable")
		return "", docstore.ErrUnavailable
	}

	lead.CreatedAt = h.now()
	start := time.Now()
	id, err := h.store.Insert(ctx, Collection, lead)
	h.metrics.ObserveStoreLatency(h.store.Backend(), outcomeFor(err), time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return "", fmt.Errorf("leads: insert: %w", err)
	}
	lead.ID = id
	span.SetAttributes(attribute.String("lead.id", id))

	if h.notifier != nil {
		if err := h.notifier.NotifyNewLead(ctx, lead); err != nil {
			h.logger.Warn("lead notification failed", "error", err, "lead_id", id)
		}
	}
	return id, nil
}

// CreateLead handles POST /api/leads requests
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLeadRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn("failed to decode lead request", "error", err)
		var verr *ValidationError
		if errors.As(err, &verr) {
			h.metrics.ObserveSubmission(metrics.OutcomeInvalid)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: verr.Error()})
			return
		}
		h.metrics.ObserveSubmission(metrics.OutcomeBadRequest)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "invalid request body"})
		return
	}

	id, err := h.Submit(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		h.metrics.ObserveSubmission(outcomeFor(err))
		if status >= http.StatusInternalServerError {
			h.logger.Error("failed to create lead", "error", err)
		} else {
			h.logger.Info("lead rejected", "error", err)
		}
		writeJSON(w, status, ErrorResponse{Detail: detailFor(err)})
		return
	}

	h.metrics.ObserveSubmission(metrics.OutcomeCreated)
	h.logger.Info("lead created", "id", id)
	writeJSON(w, http.StatusOK, CreateLeadResponse{Status: "ok", ID: id})
}

// decodeLeadRequest reads exactly one JSON object from body. A value of the
// wrong JSON type for a known field is reported as a *ValidationError naming it.
func decodeLeadRequest(body io.Reader) (CreateLeadRequest, error) {
	var req CreateLeadRequest
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return req, &ValidationError{Fields: []FieldError{{
				Field:   typeErr.Field,
				Message: "must be a " + jsonTypeName(typeErr.Type),
			}}}
		}
		return req, fmt.Errorf("leads: decode: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return req, errors.New("leads: decode: unexpected data after JSON object")
	}
	return req, nil
}

func jsonTypeName(t reflect.Type) string {
	if t == nil {
		return "valid value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "list"
	default:
		return "object"
	}
}

// statusFor maps submission errors onto HTTP statuses. Store failures are
// the server's problem, not the client's.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidLead):
		return http.StatusBadRequest
	case errors.Is(err, docstore.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeCreated
	case errors.Is(err, ErrInvalidLead):
		return metrics.OutcomeInvalid
	case errors.Is(err, docstore.ErrUnavailable):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeFailed
	}
}

func detailFor(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	if errors.Is(err, docstore.ErrUnavailable) {
		return "database not available"
	}
	return "failed to store lead"
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
