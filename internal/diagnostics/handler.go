package diagnostics

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/wolfman30/mastry-api/internal/observability/metrics"
	"github.com/wolfman30/mastry-api/pkg/logging"
)

const (
	backendRunning = "✅ Running"
	flagSet        = "✅ Set"
	flagNotSet     = "❌ Not Set"
)

// Report is the JSON body of GET /test.
type Report struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

// ConfigFlags records which database settings were provided, independent of connectivity.
type ConfigFlags struct {
	DatabaseURLSet  bool
	DatabaseNameSet bool
}

// Handler serves the diagnostics report.
type Handler struct {
	prober  *Prober
	flags   ConfigFlags
	metrics *metrics.LeadMetrics
	logger  *logging.Logger
}

func NewHandler(prober *Prober, flags ConfigFlags, m *metrics.LeadMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{prober: prober, flags: flags, metrics: m, logger: logger}
}

// Build probes the store and assembles the report.
func (h *Handler) Build(ctx context.Context) Report {
	res := h.prober.Probe(ctx)
	h.metrics.ObserveProbe(res.Status.String())
	if res.Status == StatusConnectedWithError {
		h.logger.Warn("database probe failed", "backend", res.Backend, "detail", res.Detail)
	}

	report := Report{
		Backend:          backendRunning,
		Database:         res.Text(),
		DatabaseURL:      presence(h.flags.DatabaseURLSet),
		DatabaseName:     presence(h.flags.DatabaseNameSet),
		ConnectionStatus: "Not Connected",
		Collections:      res.Collections,
	}
	if res.Connected() {
		report.ConnectionStatus = "Connected"
	}
	if report.Collections == nil {
		report.Collections = []string{}
	}
	return report
}

// ServeTest handles GET /test requests
func (h *Handler) ServeTest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.Build(r.Context()))
}

func presence(set bool) string {
	if set {
		return flagSet
	}
	return flagNotSet
}
