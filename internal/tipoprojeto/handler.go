// internal/tipoprojeto/handler.go
package tipoprojeto

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

// POST /tipos-projeto
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var t TipoProjeto
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if t.Nome == "" {
		http.Error(w, "O campo 'nome' é obrigatório", http.StatusBadRequest)
		return
	}
	t.Ativo = true
	if err := h.DB.Create(&t).Error; err != nil {
		http.Error(w, "Erro ao inserir tipo de projeto", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(t)
}

// GET /tipos-projeto
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	var tipos []TipoProjeto
	if err := h.DB.Where("ativo = ?", true).Order("nome").Find(&tipos).Error; err != nil {
		http.Error(w, "Erro ao buscar tipos de projeto", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(tipos)
}

// PUT /tipos-projeto/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	var existing TipoProjeto
	if err := h.DB.First(&existing, id).Error; err != nil {
		http.Error(w, "Tipo de projeto não encontrado", http.StatusNotFound)
		return
	}

	var body TipoProjeto
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}

	if body.Nome != "" {
		existing.Nome = body.Nome
	}
	existing.Ativo = body.Ativo

	if err := h.DB.Save(&existing).Error; err != nil {
		http.Error(w, "Erro ao atualizar tipo de projeto", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(existing)
}

// DELETE /tipos-projeto/{id} (desativação lógica)
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	if err := h.DB.Model(&TipoProjeto{}).Where("id = ?", id).Update("ativo", false).Error; err != nil {
		http.Error(w, "Erro ao desativar tipo de projeto", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
