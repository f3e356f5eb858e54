package courrier

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/kdiomande/courrier-registry/internal"
	"github.com/kdiomande/courrier-registry/internal/transport"
)

type ServiceAPI interface {
	CreateCorrespondence(dto CreateCorrespondenceDTO) (*Correspondence, error)
	GetCorrespondence(id int64) (*Correspondence, error)
	ListCorrespondence(filter Filter, offset, limit int) (*Page, error)
	ListRoutingsForUser(userID int64, instructionID *int64, offset, limit int) ([]Routing, error)
	SearchCorrespondence(query string, offset, limit int) (*Page, error)
	ComputeStats(query StatsQuery) (*Stats, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     service,
	}
}

func (h *Handler) CreateCorrespondence(w http.ResponseWriter, r *http.Request) {
	var dto CreateCorrespondenceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateCorrespondence: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	corr, err := h.Service.CreateCorrespondence(dto)
	if err != nil {
		h.Logger.Error("CreateCorrespondence: service error", "error", err, "sender", dto.Sender)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, corr)
}

func (h *Handler) GetCorrespondence(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid correspondence ID")
		return
	}

	corr, err := h.Service.GetCorrespondence(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, corr)
}

func (h *Handler) ListCorrespondence(w http.ResponseWriter, r *http.Request) {
	offset, limit := transport.ParsePagination(r)

	filter := Filter{
		SenderContains:  r.URL.Query().Get("expediteur"),
		SubjectContains: r.URL.Query().Get("objet_contains"),
	}

	if t, ok, bad := parseTimeParam(r, "date_debut"); bad {
		h.WriteError(w, http.StatusBadRequest, "invalid date_debut")
		return
	} else if ok {
		filter.SentAfter = t
	}
	if t, ok, bad := parseTimeParam(r, "date_fin"); bad {
		h.WriteError(w, http.StatusBadRequest, "invalid date_fin")
		return
	} else if ok {
		filter.SentBefore = t
	}
	if id, ok, bad := parseIDParam(r, "departement_id"); bad {
		h.WriteError(w, http.StatusBadRequest, "invalid departement_id")
		return
	} else if ok {
		filter.DepartmentID = id
	}
	if id, ok, bad := parseIDParam(r, "instruction_id"); bad {
		h.WriteError(w, http.StatusBadRequest, "invalid instruction_id")
		return
	} else if ok {
		filter.InstructionID = id
	}

	page, err := h.Service.ListCorrespondence(filter, offset, limit)
	if err != nil {
		h.Logger.Error("ListCorrespondence: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

// ListRoutings returns routed items. Without an explicit utilisateur_id the
// authenticated caller's own routed mail is listed; the engine itself
// always gets an explicit id.
func (h *Handler) ListRoutings(w http.ResponseWriter, r *http.Request) {
	offset, limit := transport.ParsePagination(r)

	userID := internal.UserIDFromContext(r.Context())
	if raw := r.URL.Query().Get("utilisateur_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid utilisateur_id")
			return
		}
		userID = id
	}
	if userID == 0 {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var instructionID *int64
	if id, ok, bad := parseIDParam(r, "instruction_id"); bad {
		h.WriteError(w, http.StatusBadRequest, "invalid instruction_id")
		return
	} else if ok {
		instructionID = id
	}

	routings, err := h.Service.ListRoutingsForUser(userID, instructionID, offset, limit)
	if err != nil {
		h.Logger.Error("ListRoutings: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, routings)
}

func (h *Handler) SearchCorrespondence(w http.ResponseWriter, r *http.Request) {
	offset, limit := transport.ParsePagination(r)

	page, err := h.Service.SearchCorrespondence(r.URL.Query().Get("q"), offset, limit)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	var query StatsQuery

	if t, ok, bad := parseTimeParam(r, "date_debut"); bad {
		h.WriteError(w, http.StatusBadRequest, "invalid date_debut")
		return
	} else if ok {
		query.DateFrom = t
	}
	if t, ok, bad := parseTimeParam(r, "date_fin"); bad {
		h.WriteError(w, http.StatusBadRequest, "invalid date_fin")
		return
	} else if ok {
		query.DateTo = t
	}
	if id, ok, bad := parseIDParam(r, "departement_id"); bad {
		h.WriteError(w, http.StatusBadRequest, "invalid departement_id")
		return
	} else if ok {
		query.DepartmentID = id
	}

	stats, err := h.Service.ComputeStats(query)
	if err != nil {
		h.Logger.Error("GetStats: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}

// parseTimeParam accepts RFC 3339 timestamps or bare dates. Anything else
// present but unparseable flags bad.
func parseTimeParam(r *http.Request, name string) (t *time.Time, ok, bad bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, false, false
	}
	if v, err := time.Parse(time.RFC3339, raw); err == nil {
		return &v, true, false
	}
	if v, err := time.Parse("2006-01-02", raw); err == nil {
		return &v, true, false
	}
	return nil, false, true
}

func parseIDParam(r *http.Request, name string) (id *int64, ok, bad bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, false, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil, false, true
	}
	return &v, true, false
}
