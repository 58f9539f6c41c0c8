// internal/instituicao/handler.go
package instituicao

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	DB *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db}
}

// POST /instituicoes-financeiras
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var inst Instituicao
	if err := json.NewDecoder(r.Body).Decode(&inst); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if inst.Nome == "" {
		http.Error(w, "O campo 'nome' é obrigatório", http.StatusBadRequest)
		return
	}
	inst.Ativo = true
	if err := h.DB.Create(&inst).Error; err != nil {
		http.Error(w, "Erro ao inserir instituição", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(inst)
}

// GET /instituicoes-financeiras
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	var list []Instituicao
	if err := h.DB.Where("ativo = ?", true).Order("nome").Find(&list).Error; err != nil {
		http.Error(w, "Erro ao buscar instituições", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(list)
}

// PUT /instituicoes-financeiras/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	var existing Instituicao
	if err := h.DB.First(&existing, id).Error; err != nil {
		http.Error(w, "Instituição não encontrada", http.StatusNotFound)
		return
	}

	var body Instituicao
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}

	if body.Nome != "" {
		existing.Nome = body.Nome
	}
	existing.Ativo = body.Ativo

	if err := h.DB.Save(&existing).Error; err != nil {
		http.Error(w, "Erro ao atualizar instituição", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(existing)
}

// DELETE /instituicoes-financeiras/{id} (desativação lógica)
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	if err := h.DB.Model(&Instituicao{}).Where("id = ?", id).Update("ativo", false).Error; err != nil {
		http.Error(w, "Erro ao desativar instituição", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
