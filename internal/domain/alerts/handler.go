package alerts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"farm-husbandry/internal/domain/animals"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/alerts", func(ar chi.Router) {
		ar.Get("/", listAlertsHandler(svc))
		ar.Post("/verify", verifyAlertsHandler(svc))
		ar.Post("/{alertID}/complete", completeAlertHandler(svc))
		ar.Post("/{alertID}/decline", declineAlertHandler(svc))
		ar.Get("/{alertID}/members", alertMembersHandler(svc))
	})
}

type alertResponse struct {
	ID          string `json:"id"`
	Kind        Kind   `json:"kind"`
	Description string `json:"description"`

	InitDate time.Time `json:"init_date"`
	MaxDate  time.Time `json:"max_date"`

	Status   Status   `json:"status"`
	Priority Priority `json:"priority"`

	Species animals.Species `json:"species"`

	AnimalID string `json:"animal_id,omitempty"`
	CorralID string `json:"corral_id,omitempty"`
	EventID  string `json:"event_id,omitempty"`

	DeclinedReason string   `json:"declined_reason,omitempty"`
	MemberIDs      []string `json:"member_ids,omitempty"`

	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// listAlertsHandler godoc
// @Summary Listar alertas
// @Description Lista alertas por estado (PENDING por defecto), más urgentes primero. Antes de listar corre el pase de reconciliación: expira ventanas vencidas y re-resuelve la membresía de las alertas agrupadas de sacrificio.
// @Tags alerts
// @Produce json
// @Param status query string false "PENDING, DONE o EXPIRED. Por defecto PENDING"
// @Success 200 {array} alertResponse
// @Failure 500 {string} string "internal error"
// @Router /alerts [get]
func listAlertsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := Status(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))

		items, err := svc.List(r.Context(), st)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]alertResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAlertResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// verifyAlertsHandler godoc
// @Summary Verificar y actualizar alertas
// @Description Dispara el pase de reconciliación de forma explícita: expira alertas vencidas, sana la membresía de registros históricos y encoge o completa las alertas agrupadas de sacrificio.
// @Tags alerts
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 500 {string} string "internal error"
// @Router /alerts/verify [post]
func verifyAlertsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.VerifyAndUpdate(r.Context()); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type completeAlertRequest struct {
	// MemberIDs es obligatorio para alertas agrupadas de sacrificio: indica
	// qué conejos se sacrificaron (puede ser un subconjunto).
	MemberIDs []string `json:"member_ids"`
}

// completeAlertHandler godoc
// @Summary Completar alerta
// @Description Marca la alerta como DONE. Para alertas agrupadas de sacrificio hay que indicar qué miembros se sacrificaron; si es un subconjunto, la alerta se encoge y sigue PENDING para el resto. Completar ciertas alertas registra automáticamente el evento de manejo correspondiente.
// @Tags alerts
// @Accept json
// @Produce json
// @Param alertID path string true "ID de la alerta"
// @Param payload body completeAlertRequest false "Miembros a resolver (solo alertas agrupadas)"
// @Success 200 {object} alertResponse
// @Failure 400 {string} string "member_ids inválidos o faltantes"
// @Failure 404 {string} string "alert not found"
// @Failure 409 {string} string "alert already resolved"
// @Failure 500 {string} string "internal error"
// @Router /alerts/{alertID}/complete [post]
func completeAlertHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req completeAlertRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		a, err := svc.Complete(r.Context(), chi.URLParam(r, "alertID"), req.MemberIDs)
		if err != nil {
			writeAlertError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAlertResponse(a))
	}
}

type declineAlertRequest struct {
	Reason string `json:"reason"`
}

// declineAlertHandler godoc
// @Summary Rechazar alerta
// @Description Marca la alerta como EXPIRED con el motivo dado. Nunca registra eventos de manejo.
// @Tags alerts
// @Accept json
// @Produce json
// @Param alertID path string true "ID de la alerta"
// @Param payload body declineAlertRequest true "Motivo del rechazo (obligatorio)"
// @Success 200 {object} alertResponse
// @Failure 400 {string} string "reason requerido"
// @Failure 404 {string} string "alert not found"
// @Failure 409 {string} string "alert already resolved"
// @Router /alerts/{alertID}/decline [post]
func declineAlertHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req declineAlertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Decline(r.Context(), chi.URLParam(r, "alertID"), req.Reason)
		if err != nil {
			writeAlertError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAlertResponse(a))
	}
}

type memberResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Slaughtered bool       `json:"slaughtered"`
	Discarded   bool       `json:"discarded"`
}

// alertMembersHandler godoc
// @Summary Listar miembros de una alerta agrupada
// @Description Devuelve los animales de la membresía de la alerta. Para registros históricos sin membresía, la recalcula y persiste antes de responder.
// @Tags alerts
// @Produce json
// @Param alertID path string true "ID de la alerta"
// @Success 200 {array} memberResponse
// @Failure 404 {string} string "alert not found"
// @Failure 500 {string} string "internal error"
// @Router /alerts/{alertID}/members [get]
func alertMembersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		members, err := svc.Members(r.Context(), chi.URLParam(r, "alertID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "alert not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]memberResponse, 0, len(members))
		for _, m := range members {
			out = append(out, memberResponse{
				ID:          m.ID,
				Name:        m.Name,
				BirthDate:   m.BirthDate,
				Slaughtered: m.Slaughtered,
				Discarded:   m.Discarded,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeAlertError(w http.ResponseWriter, err error) {
	var membershipErr *MembershipError
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "alert not found", http.StatusNotFound)
	case errors.Is(err, ErrAlreadyResolved):
		http.Error(w, "alert already resolved", http.StatusConflict)
	case errors.Is(err, ErrMissingReason), errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &membershipErr):
		http.Error(w, membershipErr.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toAlertResponse(a Alert) alertResponse {
	return alertResponse{
		ID:             a.ID,
		Kind:           a.Kind,
		Description:    a.Description,
		InitDate:       a.InitDate,
		MaxDate:        a.MaxDate,
		Status:         a.Status,
		Priority:       a.Priority,
		Species:        a.Species,
		AnimalID:       a.AnimalID,
		CorralID:       a.CorralID,
		EventID:        a.EventID,
		DeclinedReason: a.DeclinedReason,
		MemberIDs:      a.MemberIDs,
		ResolvedAt:     a.ResolvedAt,
		CreatedAt:      a.CreatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
