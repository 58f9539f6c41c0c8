package parceiro

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

type parceiroDTO struct {
	Nome     string  `json:"nome"`
	Comissao float64 `json:"comissao"`
	Telefone string  `json:"telefone"`
	Ativo    *bool   `json:"ativo"`
}

// Criar trata POST /parceiros
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var dto parceiroDTO
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
	p := Parceiro{
		Nome:     dto.Nome,
		Comissao: dto.Comissao,
		Telefone: dto.Telefone,
		Ativo:    ativo,
	}
	if err := h.Repository.Salvar(h.DB, &p); err != nil {
		http.Error(w, "Erro ao salvar parceiro", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(p)
}

// Listar trata GET /parceiros
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repository.Listar(h.DB)
	if err != nil {
		http.Error(w, "Erro ao listar parceiros", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Atualizar trata PUT /parceiros/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	existente, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "Parceiro não encontrado", http.StatusNotFound)
		return
	}

	var dto parceiroDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	if dto.Nome != "" {
		existente.Nome = dto.Nome
	}
	existente.Comissao = dto.Comissao
	existente.Telefone = dto.Telefone
	if dto.Ativo != nil {
		existente.Ativo = *dto.Ativo
	}

	if err := h.Repository.Atualizar(h.DB, existente); err != nil {
		http.Error(w, "Erro ao atualizar parceiro", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(existente)
}

// Deletar trata DELETE /parceiros/{id}
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	if err := h.Repository.Deletar(h.DB, uint(id)); err != nil {
		http.Error(w, "Erro ao excluir parceiro", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
