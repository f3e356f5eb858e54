package organization

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kdiomande/courrier-registry/internal/transport"
)

type ServiceAPI interface {
	CreateDepartment(dto CreateDepartmentDTO) (*Department, error)
	ListDepartments(offset, limit int) ([]Department, error)
	CreateService(dto CreateServiceDTO) (*Service, error)
	ListServices(departmentID *int64, offset, limit int) (*ServicePage, error)
	CreateFunction(dto CreateFunctionDTO) (*Function, error)
	ListFunctions(serviceID *int64, offset, limit int) (*FunctionPage, error)
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

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var dto CreateDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateDepartment: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dept, err := h.Service.CreateDepartment(dto)
	if err != nil {
		h.Logger.Error("CreateDepartment: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, dept)
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	offset, limit := transport.ParsePagination(r)

	depts, err := h.Service.ListDepartments(offset, limit)
	if err != nil {
		h.Logger.Error("ListDepartments: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, depts)
}

func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var dto CreateServiceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateService: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svc, err := h.Service.CreateService(dto)
	if err != nil {
		h.Logger.Error("CreateService: service error", "error", err, "department_id", dto.DepartmentID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, svc)
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	offset, limit := transport.ParsePagination(r)

	var departmentID *int64
	if raw := r.URL.Query().Get("departement_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid departement_id")
			return
		}
		departmentID = &id
	}

	page, err := h.Service.ListServices(departmentID, offset, limit)
	if err != nil {
		h.Logger.Error("ListServices: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) CreateFunction(w http.ResponseWriter, r *http.Request) {
	var dto CreateFunctionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateFunction: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fn, err := h.Service.CreateFunction(dto)
	if err != nil {
		h.Logger.Error("CreateFunction: service error", "error", err, "service_id", dto.ServiceID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, fn)
}

func (h *Handler) ListFunctions(w http.ResponseWriter, r *http.Request) {
	offset, limit := transport.ParsePagination(r)

	var serviceID *int64
	if raw := r.URL.Query().Get("service_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid service_id")
			return
		}
		serviceID = &id
	}

	page, err := h.Service.ListFunctions(serviceID, offset, limit)
	if err != nil {
		h.Logger.Error("ListFunctions: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}
