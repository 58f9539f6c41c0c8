package alerta

import (
	"encoding/json"
	"net/http"
)

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

// Listar trata GET /alertas, consultando sem consumir.
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	alertas, err := h.Service.Pendentes(r.Context())
	if err != nil {
		http.Error(w, "Erro ao buscar alertas", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(alertas)
}

// Consumir trata POST /alertas/consumir, emitindo os alertas devidos
// e avançando o rastreio de cada alvo.
func (h *Handler) Consumir(w http.ResponseWriter, r *http.Request) {
	alertas, err := h.Service.Consumir(r.Context())
	if err != nil {
		http.Error(w, "Erro ao consumir alertas", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(alertas)
}

// Limpar trata POST /alertas/limpar, silenciando todos os alvos pendentes.
func (h *Handler) Limpar(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.LimparTodos(r.Context()); err != nil {
		http.Error(w, "Erro ao limpar alertas", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
