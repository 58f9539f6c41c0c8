package comissao

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/agrolink/api-projetos/internal/erros"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	DB      *gorm.DB
	Service *Service
}

func NewHandler(db *gorm.DB, service *Service) *Handler {
	return &Handler{DB: db, Service: service}
}

// GET /comissoes?parceiroId=&status=
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var parceiroID uint
	if id, err := strconv.Atoi(q.Get("parceiroId")); err == nil {
		parceiroID = uint(id)
	}
	list, err := h.Service.Repo.Listar(h.DB, parceiroID, q.Get("status"))
	if err != nil {
		http.Error(w, "Erro ao buscar comissões", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(list)
}

// GET /comissoes/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	c, err := h.Service.Repo.BuscarPorID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "Comissão não encontrada", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(c)
}

// PUT /comissoes/{id}/pagar
func (h *Handler) MarcarPaga(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	c, err := h.Service.MarcarPaga(r.Context(), uint(id))
	if err != nil {
		erros.ResponderHTTP(w, err)
		return
	}
	json.NewEncoder(w).Encode(c)
}
