package instruction

import (
	"encoding/json"
	"net/http"

	"github.com/kdiomande/courrier-registry/internal/transport"
)

type ServiceAPI interface {
	ListInstructions() ([]Instruction, error)
	CreateInstruction(dto CreateInstructionDTO) (*Instruction, error)
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

func (h *Handler) ListInstructions(w http.ResponseWriter, r *http.Request) {
	instrs, err := h.Service.ListInstructions()
	if err != nil {
		h.Logger.Error("ListInstructions: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, instrs)
}

func (h *Handler) CreateInstruction(w http.ResponseWriter, r *http.Request) {
	var dto CreateInstructionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateInstruction: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	instr, err := h.Service.CreateInstruction(dto)
	if err != nil {
		h.Logger.Error("CreateInstruction: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, instr)
}
