package etapa

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// Handler encapsula DB e repository
type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
	}
}

type etapaDTO struct {
	Nome  string `json:"nome"`
	Ordem int    `json:"ordem"`
	Ativo *bool  `json:"ativo"`
}

// Criar trata POST /etapas
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var dto etapaDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if dto.Nome == "" {
		http.Error(w, "O campo 'nome' é obrigatório", http.StatusBadRequest)
		return
	}

	ativo := true
	if dto.Ativo != nil {
		ativo = *dto.Ativo
	}
	e := Etapa{Nome: dto.Nome, Ordem: dto.Ordem, Ativo: ativo}
	if err := h.Repository.Salvar(h.DB, &e); err != nil {
		http.Error(w, "Erro ao salvar etapa", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(e)
}

// Listar trata GET /etapas (apenas ativas, em ordem)
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repository.ListarAtivas(h.DB)
	if err != nil {
		http.Error(w, "Erro ao listar etapas", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Atualizar trata PUT /etapas/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	existente, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "Etapa não encontrada", http.StatusNotFound)
		return
	}

	var dto etapaDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	if dto.Nome != "" {
		existente.Nome = dto.Nome
	}
	if dto.Ordem != 0 {
		existente.Ordem = dto.Ordem
	}
	if dto.Ativo != nil {
		existente.Ativo = *dto.Ativo
	}

	if err := h.Repository.Atualizar(h.DB, existente); err != nil {
		http.Error(w, "Erro ao atualizar etapa", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(existente)
}

// Deletar trata DELETE /etapas/{id} (desativação lógica)
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	if err := h.Repository.Desativar(h.DB, uint(id)); err != nil {
		http.Error(w, "Erro ao desativar etapa", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Etapa desativada com sucesso"})
}
