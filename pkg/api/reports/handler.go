package reports

import (
	"audit_workpaper/pkg/core/store"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
)

// Handler serves persisted score reports.
type Handler struct {
	Repo store.Repository
}

// NewHandler creates a new reports handler
func NewHandler(repo store.Repository) *Handler {
	return &Handler{
		Repo: repo,
	}
}

// Register mounts the endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/reports", h.HandleGet)
	mux.HandleFunc("/api/reports/latest", h.HandleLatest)
}

func cors(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// HandleGet serves GET /api/reports?id=<report id>.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "id", func(id string) (interface{}, error) {
		return h.Repo.Load(r.Context(), id)
	})
}

// HandleLatest serves GET /api/reports/latest?company=<name>.
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "company", func(company string) (interface{}, error) {
		return h.Repo.Latest(r.Context(), company)
	})
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, param string, load func(string) (interface{}, error)) {
	cors(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := strings.TrimSpace(r.URL.Query().Get(param))
	if key == "" {
		http.Error(w, "missing query parameter: "+param, http.StatusBadRequest)
		return
	}

	rep, err := load(key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("[Handler] report lookup %s=%s failed: %v", param, key, err)
		http.Error(w, "failed to load report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(rep)
}
