package web

import (
	"errors"
	"net/http"

	"avias-service/internal/domain/entity"
	"avias-service/internal/usecase"
	"avias-service/pkg/logger"
	"avias-service/templates"
)

// Handler serves the flight pages. It only renders what the ingestor
// and ranker hand it; no ranking logic lives here.
type Handler struct {
	ingestor   *usecase.Ingestor
	ranker     *usecase.Ranker
	options    *OptionsCache
	dataFolder string
	logger     logger.Logger
}

// NewHandler creates a new web handler
func NewHandler(ingestor *usecase.Ingestor, ranker *usecase.Ranker, options *OptionsCache, dataFolder string, logger logger.Logger) *Handler {
	return &Handler{
		ingestor:   ingestor,
		ranker:     ranker,
		options:    options,
		dataFolder: dataFolder,
		logger:     logger,
	}
}

// Register wires the flight routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /flight_options", h.FlightOptions)
	mux.HandleFunc("POST /flight_variations", h.FlightVariations)
	mux.HandleFunc("POST /flight_time_price", h.FlightTimePrice)
	mux.HandleFunc("POST /reingest", h.Reingest)
}

// FlightOptions renders the two-select flight form from the cached
// route options.
func (h *Handler) FlightOptions(w http.ResponseWriter, r *http.Request) {
	h.render(w, "flight_options", templates.OptionsData{
		Sources:      h.options.Sources(),
		Destinations: h.options.Destinations(),
	})
}

// FlightVariations renders every matching flight of the submitted pair
// with its raw pricing string.
func (h *Handler) FlightVariations(w http.ResponseWriter, r *http.Request) {
	departure, destination, ok := h.routePair(w, r)
	if !ok {
		return
	}
	rows, err := h.ranker.Variations(r.Context(), departure, destination)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, "flight_variations", templates.VariationsData{
		Departure:   departure,
		Destination: destination,
		Rows:        rows,
	})
}

// FlightTimePrice renders the five ranked tables for the submitted
// pair. An empty match renders empty tables; a failed query renders an
// error page, so the two stay distinguishable.
func (h *Handler) FlightTimePrice(w http.ResponseWriter, r *http.Request) {
	departure, destination, ok := h.routePair(w, r)
	if !ok {
		return
	}
	result, err := h.ranker.Rank(r.Context(), departure, destination)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, "flight_time_price", templates.TimePriceData{
		Departure:   departure,
		Destination: destination,
		Result:      result,
	})
}

// Reingest rebuilds the snapshot and the cached route options from the
// data folder.
func (h *Handler) Reingest(w http.ResponseWriter, r *http.Request) {
	options := h.ingestor.Ingest(r.Context(), h.dataFolder)
	h.options.Set(options)
	http.Redirect(w, r, "/flight_options", http.StatusSeeOther)
}

func (h *Handler) routePair(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return "", "", false
	}
	departure := r.PostFormValue("departure")
	destination := r.PostFormValue("destination")
	if departure == "" || destination == "" {
		http.Error(w, "departure and destination are required", http.StatusBadRequest)
		return "", "", false
	}
	return departure, destination, true
}

func (h *Handler) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Pages.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("Template rendering failed", "template", name, "error", err)
	}
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("Flight query failed", "path", r.URL.Path, "error", err)
	status := http.StatusInternalServerError
	if errors.Is(err, entity.ErrSnapshotMissing) {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.Pages.ExecuteTemplate(w, "error", templates.ErrorData{Message: err.Error()})
}
