// Package queryapi exposes the read-only query layer (internal/query)
// as a thin JSON/HTTP interface. It is the boundary the out-of-scope web
// UI is expected to call across -- no session handling, auth, or HTML
// rendering lives here, per spec §1's explicit non-goal.
package queryapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/netreveal/topolink/internal/query"
	"github.com/netreveal/topolink/pkg/model"
)

// Handler adapts a *query.Querier to net/http.
type Handler struct {
	q *query.Querier
}

// New builds a Handler over q.
func New(q *query.Querier) *Handler {
	return &Handler{q: q}
}

// Routes registers every query endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/status", h.handleStatus)
	mux.HandleFunc("GET /api/switchport", h.handleSwitchport)
	mux.HandleFunc("GET /api/search/ip", h.handleIPSearch)
	mux.HandleFunc("GET /api/search/mac", h.handleMACSearch)
	mux.HandleFunc("GET /api/topology", h.handleTopology)
	mux.HandleFunc("GET /api/report", h.handleReport)
	mux.HandleFunc("GET /api/netflow/global", h.handleNetflowGlobal)
	mux.HandleFunc("GET /api/netflow/host", h.handleNetflowHost)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.q.Status(r.Context(), r.URL.Query().Get("switch"))
	writeResult(w, status, err)
}

func (h *Handler) handleSwitchport(w http.ResponseWriter, r *http.Request) {
	ip := r.URL.Query().Get("switch")
	port, err := strconv.Atoi(r.URL.Query().Get("port"))
	if ip == "" || err != nil {
		writeError(w, http.StatusBadRequest, "switch and numeric port are required")
		return
	}
	info, hosts, err := h.q.Switchport(r.Context(), ip, port)
	writeResult(w, struct {
		Port  query.PortInfo     `json:"port"`
		Hosts []query.AccessHost `json:"hosts"`
	}{info, hosts}, err)
}

func (h *Handler) handleIPSearch(w http.ResponseWriter, r *http.Request) {
	ip := r.URL.Query().Get("ip")
	if ip == "" {
		writeError(w, http.StatusBadRequest, "ip is required")
		return
	}
	hosts, err := h.q.IPSearch(r.Context(), ip)
	writeResult(w, hosts, err)
}

func (h *Handler) handleMACSearch(w http.ResponseWriter, r *http.Request) {
	mac := r.URL.Query().Get("mac")
	if mac == "" {
		writeError(w, http.StatusBadRequest, "mac is required")
		return
	}
	if r.URL.Query().Get("partial") == "true" {
		hosts, err := h.q.MacSearchPartial(r.Context(), mac)
		writeResult(w, hosts, err)
		return
	}
	hosts, err := h.q.MacSearch(r.Context(), mac)
	writeResult(w, hosts, err)
}

func (h *Handler) handleTopology(w http.ResponseWriter, r *http.Request) {
	ip := r.URL.Query().Get("switch")
	if ip == "" {
		writeError(w, http.StatusBadRequest, "switch is required")
		return
	}
	hops, err := h.q.Topology(r.Context(), ip)
	writeResult(w, hops, err)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ip := r.URL.Query().Get("switch")
	if ip == "" {
		writeError(w, http.StatusBadRequest, "switch is required")
		return
	}
	report, err := h.q.Report(r.Context(), ip)
	writeResult(w, report, err)
}

func (h *Handler) handleNetflowGlobal(w http.ResponseWriter, r *http.Request) {
	minutes := minutesParam(r)
	stats, err := h.q.NetflowGlobalStats(r.Context(), minutes)
	writeResult(w, stats, err)
}

func (h *Handler) handleNetflowHost(w http.ResponseWriter, r *http.Request) {
	ip := r.URL.Query().Get("ip")
	if ip == "" {
		writeError(w, http.StatusBadRequest, "ip is required")
		return
	}
	minutes := minutesParam(r)
	stats, err := h.q.NetflowHostStats(r.Context(), ip, minutes)
	writeResult(w, stats, err)
}

func minutesParam(r *http.Request) float64 {
	raw := r.URL.Query().Get("minutes")
	if raw == "" {
		return 1.0
	}
	m, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 1.0
	}
	return m
}

// writeResult mirrors spec §7's "never raise" contract: a query error
// becomes a single JSON error message, never an HTTP 5xx panic.
func writeResult(w http.ResponseWriter, v any, err error) {
	if err != nil {
		writeError(w, http.StatusOK, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.QueryError{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
