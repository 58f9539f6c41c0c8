package proposta

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/agrolink/api-projetos/internal/cliente"
	"github.com/agrolink/api-projetos/internal/erros"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	DB       *gorm.DB
	Service  *Service
	Clientes cliente.Repository
}

func NewHandler(db *gorm.DB, service *Service) *Handler {
	return &Handler{DB: db, Service: service, Clientes: cliente.NewRepository()}
}

// PropostaResposta denormaliza os dados do cliente junto da proposta.
type PropostaResposta struct {
	Proposta
	ClienteNome     string `json:"clienteNome"`
	ClienteCPF      string `json:"clienteCpf"`
	ClienteTelefone string `json:"clienteTelefone"`
}

func (h *Handler) resposta(p *Proposta) PropostaResposta {
	resp := PropostaResposta{Proposta: *p}
	if cli, err := h.Clientes.BuscarPorID(h.DB, p.ClienteID); err == nil {
		resp.ClienteNome = cli.NomeCompleto
		resp.ClienteCPF = cli.CPF
		resp.ClienteTelefone = cli.Telefone
	}
	return resp
}

// POST /propostas
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ClienteID       *uint   `json:"clienteId"`
		ClienteNome     string  `json:"clienteNome"`
		ClienteCPF      string  `json:"clienteCpf"`
		ClienteTelefone string  `json:"clienteTelefone"`
		TipoProjetoID   *uint   `json:"tipoProjetoId"`
		InstituicaoID   *uint   `json:"instituicaoId"`
		ValorCredito    float64 `json:"valorCredito"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}

	input := CriarInput{
		ClienteID:     body.ClienteID,
		TipoProjetoID: body.TipoProjetoID,
		InstituicaoID: body.InstituicaoID,
		ValorCredito:  body.ValorCredito,
	}
	if body.ClienteID == nil {
		input.ClienteNovo = &ClienteNovo{
			Nome:     strings.TrimSpace(body.ClienteNome),
			CPF:      body.ClienteCPF,
			Telefone: body.ClienteTelefone,
		}
	}

	prop, err := h.Service.Criar(r.Context(), input)
	if err != nil {
		erros.ResponderHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(h.resposta(prop))
}

// GET /propostas?status=
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	propostas, err := h.Service.Repo.Listar(h.DB, r.URL.Query().Get("status"))
	if err != nil {
		http.Error(w, "Erro ao buscar propostas", http.StatusInternalServerError)
		return
	}
	respostas := []PropostaResposta{}
	for i := range propostas {
		respostas = append(respostas, h.resposta(&propostas[i]))
	}
	json.NewEncoder(w).Encode(respostas)
}

// GET /propostas/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	prop, err := h.Service.Repo.BuscarPorID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "Proposta não encontrada", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(h.resposta(prop))
}

// POST /propostas/{id}/converter
func (h *Handler) Converter(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	prop, err := h.Service.Converter(r.Context(), uint(id))
	if err != nil {
		erros.ResponderHTTP(w, err)
		return
	}
	json.NewEncoder(w).Encode(h.resposta(prop))
}

// POST /propostas/{id}/desistir
func (h *Handler) Desistir(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	var body struct {
		Motivo string `json:"motivo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	prop, err := h.Service.Desistir(r.Context(), uint(id), strings.TrimSpace(body.Motivo))
	if err != nil {
		erros.ResponderHTTP(w, err)
		return
	}
	json.NewEncoder(w).Encode(h.resposta(prop))
}

// DELETE /propostas/{id}
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	if err := h.Service.Deletar(r.Context(), uint(id)); err != nil {
		erros.ResponderHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
