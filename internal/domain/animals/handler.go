package animals

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/animals", func(ar chi.Router) {
		ar.Post("/", registerAnimalHandler(svc))
		ar.Get("/{animalID}", getAnimalHandler(svc))
	})

	r.Route("/rabbits/litters", func(lr chi.Router) {
		lr.Post("/", createLitterHandler(svc))
	})

	r.Route("/rabbits/{motherID}/dead-offspring", func(dr chi.Router) {
		dr.Post("/", registerDeadOffspringHandler(svc))
		dr.Get("/", listDeadOffspringHandler(svc))
	})
}

// registerAnimalRequest es el cuerpo para registrar un animal individual.
type registerAnimalRequest struct {
	Name      string  `json:"name"`
	Species   Species `json:"species" enums:"RABBIT,COW,SHEEP,CHICKEN,OTHER"`
	Gender    Gender  `json:"gender" enums:"MALE,FEMALE"`
	Origin    Origin  `json:"origin" enums:"BORN,PURCHASED"`
	BirthDate string  `json:"birth_date"` // RFC3339, opcional
	IsBreeder bool    `json:"is_breeder"`
	MotherID  string  `json:"mother_id"`
	FatherID  string  `json:"father_id"`
	CorralID  string  `json:"corral_id"`
}

type animalResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Species         Species    `json:"species"`
	Gender          Gender     `json:"gender"`
	Origin          Origin     `json:"origin"`
	BirthDate       *time.Time `json:"birth_date,omitempty"`
	IsBreeder       bool       `json:"is_breeder"`
	MotherID        string     `json:"mother_id,omitempty"`
	FatherID        string     `json:"father_id,omitempty"`
	CorralID        string     `json:"corral_id,omitempty"`
	Discarded       bool       `json:"discarded"`
	Slaughtered     bool       `json:"slaughtered"`
	SlaughteredDate *time.Time `json:"slaughtered_date,omitempty"`
	InFreezer       bool       `json:"in_freezer"`
	CreatedAt       time.Time  `json:"created_at"`
}

// registerAnimalHandler godoc
// @Summary Registrar animal
// @Description Registra un animal individual. Si nació en la granja (origin=BORN) y tiene fecha de nacimiento, se programan automáticamente las alertas de su especie (monta, sacrificio, desparasitación).
// @Tags animals
// @Accept json
// @Produce json
// @Param payload body registerAnimalRequest true "Datos del animal; birth_date en formato RFC3339"
// @Success 201 {object} animalResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 404 {string} string "parent not found"
// @Router /animals [post]
func registerAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerAnimalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var birth *time.Time
		if req.BirthDate != "" {
			t, err := time.Parse(time.RFC3339, req.BirthDate)
			if err != nil {
				http.Error(w, "birth_date must be RFC3339", http.StatusBadRequest)
				return
			}
			birth = &t
		}

		a, err := svc.Register(r.Context(), RegisterInput{
			Name:      req.Name,
			Species:   req.Species,
			Gender:    req.Gender,
			Origin:    req.Origin,
			BirthDate: birth,
			IsBreeder: req.IsBreeder,
			MotherID:  req.MotherID,
			FatherID:  req.FatherID,
			CorralID:  req.CorralID,
		})
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "parent not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toAnimalResponse(a))
	}
}

// getAnimalHandler godoc
// @Summary Obtener animal
// @Tags animals
// @Produce json
// @Param animalID path string true "ID del animal"
// @Success 200 {object} animalResponse
// @Failure 404 {string} string "animal not found"
// @Router /animals/{animalID} [get]
func getAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

// createLitterRequest es el cuerpo para registrar una camada de conejos.
type createLitterRequest struct {
	MotherID  string   `json:"mother_id"`
	FatherID  string   `json:"father_id"`
	BirthDate string   `json:"birth_date"` // RFC3339
	Count     int      `json:"count"`
	Genders   []Gender `json:"genders"`

	NamePrefix string `json:"name_prefix"`
	CorralID   string `json:"corral_id"`

	DeadCount          int    `json:"dead_count"`
	DeadNotes          string `json:"dead_notes"`
	DeadSuspectedCause string `json:"dead_suspected_cause"`
	RecordedBy         string `json:"recorded_by"`
}

type litterResponse struct {
	Offspring     []animalResponse       `json:"offspring"`
	DeadOffspring *deadOffspringResponse `json:"dead_offspring,omitempty"`
}

type deadOffspringResponse struct {
	ID             string    `json:"id"`
	MotherID       string    `json:"mother_id"`
	FatherID       string    `json:"father_id,omitempty"`
	BirthDate      time.Time `json:"birth_date"`
	Count          int       `json:"count"`
	Notes          string    `json:"notes,omitempty"`
	SuspectedCause string    `json:"suspected_cause,omitempty"`
	RecordedBy     string    `json:"recorded_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// createLitterHandler godoc
// @Summary Registrar camada de conejos
// @Description Crea los conejos de una camada en una sola operación y programa las alertas asociadas: separación de camada, descanso de la madre y sacrificio agrupado de las crías no criadoras.
// @Tags animals
// @Accept json
// @Produce json
// @Param payload body createLitterRequest true "Datos de la camada; birth_date en formato RFC3339"
// @Success 201 {object} litterResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 404 {string} string "mother not found"
// @Router /rabbits/litters [post]
func createLitterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createLitterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		birth, err := time.Parse(time.RFC3339, req.BirthDate)
		if err != nil {
			http.Error(w, "birth_date must be RFC3339", http.StatusBadRequest)
			return
		}

		res, err := svc.CreateLitter(r.Context(), LitterInput{
			MotherID:           req.MotherID,
			FatherID:           req.FatherID,
			BirthDate:          birth,
			Count:              req.Count,
			Genders:            req.Genders,
			NamePrefix:         req.NamePrefix,
			CorralID:           req.CorralID,
			DeadCount:          req.DeadCount,
			DeadNotes:          req.DeadNotes,
			DeadSuspectedCause: req.DeadSuspectedCause,
			RecordedBy:         req.RecordedBy,
		})
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "mother not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		out := litterResponse{Offspring: make([]animalResponse, 0, len(res.Offspring))}
		for _, o := range res.Offspring {
			out.Offspring = append(out.Offspring, toAnimalResponse(o))
		}
		if res.DeadOffspring != nil {
			d := toDeadOffspringResponse(*res.DeadOffspring)
			out.DeadOffspring = &d
		}

		writeJSON(w, http.StatusCreated, out)
	}
}

type registerDeadOffspringRequest struct {
	FatherID       string `json:"father_id"`
	BirthDate      string `json:"birth_date"` // RFC3339
	Count          int    `json:"count"`
	Notes          string `json:"notes"`
	SuspectedCause string `json:"suspected_cause"`
	RecordedBy     string `json:"recorded_by"`
}

// registerDeadOffspringHandler godoc
// @Summary Registrar crías nacidas muertas
// @Tags animals
// @Accept json
// @Produce json
// @Param motherID path string true "ID de la madre"
// @Param payload body registerDeadOffspringRequest true "Datos del registro; birth_date en formato RFC3339"
// @Success 201 {object} deadOffspringResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 404 {string} string "mother not found"
// @Router /rabbits/{motherID}/dead-offspring [post]
func registerDeadOffspringHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerDeadOffspringRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		birth, err := time.Parse(time.RFC3339, req.BirthDate)
		if err != nil {
			http.Error(w, "birth_date must be RFC3339", http.StatusBadRequest)
			return
		}

		d, err := svc.RegisterDeadOffspring(r.Context(), DeadOffspringInput{
			MotherID:       chi.URLParam(r, "motherID"),
			FatherID:       req.FatherID,
			BirthDate:      birth,
			Count:          req.Count,
			Notes:          req.Notes,
			SuspectedCause: req.SuspectedCause,
			RecordedBy:     req.RecordedBy,
		})
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "mother not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toDeadOffspringResponse(d))
	}
}

// listDeadOffspringHandler godoc
// @Summary Listar crías nacidas muertas de una madre
// @Tags animals
// @Produce json
// @Param motherID path string true "ID de la madre"
// @Success 200 {array} deadOffspringResponse
// @Failure 400 {string} string "mother_id inválido"
// @Router /rabbits/{motherID}/dead-offspring [get]
func listDeadOffspringHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListDeadOffspring(r.Context(), chi.URLParam(r, "motherID"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		out := make([]deadOffspringResponse, 0, len(list))
		for _, d := range list {
			out = append(out, toDeadOffspringResponse(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toAnimalResponse(a Animal) animalResponse {
	return animalResponse{
		ID:              a.ID,
		Name:            a.Name,
		Species:         a.Species,
		Gender:          a.Gender,
		Origin:          a.Origin,
		BirthDate:       a.BirthDate,
		IsBreeder:       a.IsBreeder,
		MotherID:        a.MotherID,
		FatherID:        a.FatherID,
		CorralID:        a.CorralID,
		Discarded:       a.Discarded,
		Slaughtered:     a.Slaughtered,
		SlaughteredDate: a.SlaughteredDate,
		InFreezer:       a.InFreezer,
		CreatedAt:       a.CreatedAt,
	}
}

func toDeadOffspringResponse(d DeadOffspring) deadOffspringResponse {
	return deadOffspringResponse{
		ID:             d.ID,
		MotherID:       d.MotherID,
		FatherID:       d.FatherID,
		BirthDate:      d.BirthDate,
		Count:          d.Count,
		Notes:          d.Notes,
		SuspectedCause: d.SuspectedCause,
		RecordedBy:     d.RecordedBy,
		CreatedAt:      d.CreatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
