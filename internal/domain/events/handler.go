package events

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"farm-husbandry/internal/domain/animals"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/events", func(er chi.Router) {
		er.Post("/", recordEventHandler(svc))
		er.Get("/", listEventsHandler(svc))
		er.Get("/{eventID}", getEventHandler(svc))
	})
}

// recordEventRequest es el cuerpo para registrar un evento de manejo.
type recordEventRequest struct {
	Category    Category        `json:"category" enums:"MAINTENANCE,VITAMINS,FENCING,OTHER"`
	Description string          `json:"description"`
	Date        string          `json:"date"` // RFC3339, opcional (default: ahora)
	Scope       Scope           `json:"scope" enums:"INDIVIDUAL,GROUP"`
	Species     animals.Species `json:"species" enums:"RABBIT,COW,SHEEP,CHICKEN,OTHER"`
	SubType     SubType         `json:"sub_type"`
	AnimalID    string          `json:"animal_id"`
	CorralID    string          `json:"corral_id"`
}

type eventResponse struct {
	ID          string          `json:"id"`
	Category    Category        `json:"category,omitempty"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Scope       Scope           `json:"scope"`
	Species     animals.Species `json:"species"`
	SubType     SubType         `json:"sub_type,omitempty"`
	AnimalID    string          `json:"animal_id,omitempty"`
	CorralID    string          `json:"corral_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// recordEventHandler godoc
// @Summary Registrar evento de manejo
// @Description Registra un evento individual (animal) o grupal (corral). Los sub-tipos de preñez y desparasitación programan automáticamente los recordatorios futuros de la especie.
// @Tags events
// @Accept json
// @Produce json
// @Param payload body recordEventRequest true "Datos del evento; date en formato RFC3339"
// @Success 201 {object} eventResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Router /events [post]
func recordEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var date time.Time
		if req.Date != "" {
			t, err := time.Parse(time.RFC3339, req.Date)
			if err != nil {
				http.Error(w, "date must be RFC3339", http.StatusBadRequest)
				return
			}
			date = t
		}

		e, err := svc.Record(r.Context(), RecordInput{
			Category:    req.Category,
			Description: req.Description,
			Date:        date,
			Scope:       req.Scope,
			Species:     req.Species,
			SubType:     req.SubType,
			AnimalID:    req.AnimalID,
			CorralID:    req.CorralID,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toEventResponse(e))
	}
}

// listEventsHandler godoc
// @Summary Listar eventos de manejo
// @Description Lista eventos con filtros opcionales por especie, scope, animal, corral y rango de fechas.
// @Tags events
// @Produce json
// @Param species query string false "Especie (RABBIT, COW, SHEEP, CHICKEN, OTHER)"
// @Param scope query string false "INDIVIDUAL o GROUP"
// @Param animal_id query string false "ID del animal"
// @Param corral_id query string false "ID del corral"
// @Param from query string false "Fecha mínima (RFC3339)"
// @Param to query string false "Fecha máxima (RFC3339)"
// @Param limit query int false "Máximo de eventos a devolver (1-200). Por defecto 50"
// @Success 200 {array} eventResponse
// @Failure 400 {string} string "Parámetros de filtro inválidos"
// @Failure 500 {string} string "internal error"
// @Router /events [get]
func listEventsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.List(r.Context(), filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]eventResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEventResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getEventHandler godoc
// @Summary Obtener evento
// @Tags events
// @Produce json
// @Param eventID path string true "ID del evento"
// @Success 200 {object} eventResponse
// @Failure 404 {string} string "event not found"
// @Router /events/{eventID} [get]
func getEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := svc.GetByID(r.Context(), chi.URLParam(r, "eventID"))
		if err != nil {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(e))
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	filter := ListFilter{Limit: limit}

	filter.Species = animals.Species(strings.TrimSpace(r.URL.Query().Get("species")))
	filter.Scope = Scope(strings.TrimSpace(r.URL.Query().Get("scope")))
	filter.AnimalID = strings.TrimSpace(r.URL.Query().Get("animal_id"))
	filter.CorralID = strings.TrimSpace(r.URL.Query().Get("corral_id"))

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC3339")
		}
		filter.To = &t
	}

	return filter, nil
}

func toEventResponse(e Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date,
		Scope:       e.Scope,
		Species:     e.Species,
		SubType:     e.SubType,
		AnimalID:    e.AnimalID,
		CorralID:    e.CorralID,
		CreatedAt:   e.CreatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
