package relatorio

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

// GET /relatorios/projetos?mes=&ano=&etapaId=&pendencia=&valorMin=&valorMax=
func (h *Handler) ResumoProjetos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filtro{}
	if mes, err := strconv.Atoi(q.Get("mes")); err == nil {
		f.Mes = mes
	}
	if ano, err := strconv.Atoi(q.Get("ano")); err == nil {
		f.Ano = ano
	}
	if etapaID, err := strconv.Atoi(q.Get("etapaId")); err == nil {
		f.EtapaID = uint(etapaID)
	}
	if v := q.Get("pendencia"); v != "" {
		pendencia := v == "true"
		f.Pendencia = &pendencia
	}
	if v, err := strconv.ParseFloat(q.Get("valorMin"), 64); err == nil {
		f.ValorMin = &v
	}
	if v, err := strconv.ParseFloat(q.Get("valorMax"), 64); err == nil {
		f.ValorMax = &v
	}

	resumo, err := h.Service.ResumoProjetos(r.Context(), f)
	if err != nil {
		http.Error(w, "Erro ao gerar relatório", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(resumo)
}

// GET /relatorios/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.Service.PainelDashboard(r.Context())
	if err != nil {
		http.Error(w, "Erro ao gerar painel", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(dash)
}
