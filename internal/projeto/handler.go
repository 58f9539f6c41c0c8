package projeto

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/agrolink/api-projetos/internal/auth"
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

// ProjetoResposta denormaliza os dados do cliente junto do projeto,
// poupando o frontend de uma segunda consulta.
type ProjetoResposta struct {
	Projeto
	ClienteNome     string `json:"clienteNome"`
	ClienteCPF      string `json:"clienteCpf"`
	ClienteTelefone string `json:"clienteTelefone"`
	TemPendencia    bool   `json:"temPendencia"`
}

func (h *Handler) resposta(p *Projeto) ProjetoResposta {
	resp := ProjetoResposta{Projeto: *p, TemPendencia: h.Service.TemPendencia(p)}
	if cli, err := h.Clientes.BuscarPorID(h.DB, p.ClienteID); err == nil {
		resp.ClienteNome = cli.NomeCompleto
		resp.ClienteCPF = cli.CPF
		resp.ClienteTelefone = cli.Telefone
	}
	return resp
}

// POST /projetos
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ClienteID     uint    `json:"clienteId"`
		ValorCredito  float64 `json:"valorCredito"`
		TipoProjetoID *uint   `json:"tipoProjetoId"`
		InstituicaoID *uint   `json:"instituicaoId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if body.ClienteID == 0 {
		http.Error(w, "O campo 'clienteId' é obrigatório", http.StatusBadRequest)
		return
	}
	p, err := h.Service.Criar(r.Context(), CriarInput{
		ClienteID:     body.ClienteID,
		ValorCredito:  body.ValorCredito,
		TipoProjetoID: body.TipoProjetoID,
		InstituicaoID: body.InstituicaoID,
	})
	if err != nil {
		erros.ResponderHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(h.resposta(p))
}

// GET /projetos?status=&mes=&ano=&busca=&pendencia=
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filtro{Status: q.Get("status")}
	if mes, err := strconv.Atoi(q.Get("mes")); err == nil {
		f.Mes = mes
	}
	if ano, err := strconv.Atoi(q.Get("ano")); err == nil {
		f.Ano = ano
	}

	projetos, err := h.Service.Repo.Listar(h.DB, f)
	if err != nil {
		http.Error(w, "Erro ao buscar projetos", http.StatusInternalServerError)
		return
	}

	busca := strings.ToLower(q.Get("busca"))
	somentePendentes := q.Get("pendencia") == "true"

	respostas := []ProjetoResposta{}
	for i := range projetos {
		resp := h.resposta(&projetos[i])
		if busca != "" && !strings.Contains(strings.ToLower(resp.ClienteNome), busca) &&
			!strings.Contains(resp.ClienteCPF, busca) {
			continue
		}
		if somentePendentes && !resp.TemPendencia {
			continue
		}
		respostas = append(respostas, resp)
	}
	json.NewEncoder(w).Encode(respostas)
}

// GET /projetos/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	p, err := h.Service.Repo.BuscarPorID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "Projeto não encontrado", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(h.resposta(p))
}

// POST /projetos/{id}/avancar
func (h *Handler) Avancar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	p, err := h.Service.Avancar(r.Context(), uint(id))
	if err != nil {
		erros.ResponderHTTP(w, err)
		return
	}
	json.NewEncoder(w).Encode(h.resposta(p))
}

// POST /projetos/{id}/arquivar
func (h *Handler) Arquivar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	p, err := h.Service.Arquivar(r.Context(), uint(id))
	if err != nil {
		erros.ResponderHTTP(w, err)
		return
	}
	json.NewEncoder(w).Encode(h.resposta(p))
}

// POST /projetos/{id}/cancelar
func (h *Handler) Cancelar(w http.ResponseWriter, r *http.Request) {
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
	p, err := h.Service.Cancelar(r.Context(), uint(id), strings.TrimSpace(body.Motivo))
	if err != nil {
		erros.ResponderHTTP(w, err)
		return
	}
	json.NewEncoder(w).Encode(h.resposta(p))
}

// POST /projetos/{id}/pendencias
func (h *Handler) AdicionarPendencia(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	var body struct {
		Descricao string `json:"descricao"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	p, err := h.Service.AdicionarPendencia(r.Context(), uint(id), strings.TrimSpace(body.Descricao))
	if err != nil {
		erros.ResponderHTTP(w, err)
		return
	}
	json.NewEncoder(w).Encode(h.resposta(p))
}

// PUT /projetos/{id}/pendencias/{indice}/resolver
func (h *Handler) ResolverPendencia(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	indice, err := strconv.Atoi(vars["indice"])
	if err != nil {
		http.Error(w, "Índice inválido", http.StatusBadRequest)
		return
	}
	p, err := h.Service.ResolverPendencia(r.Context(), uint(id), indice)
	if err != nil {
		erros.ResponderHTTP(w, err)
		return
	}
	json.NewEncoder(w).Encode(h.resposta(p))
}

// POST /projetos/{id}/observacoes
func (h *Handler) AdicionarObservacao(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	var body struct {
		Texto string `json:"texto"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	p, err := h.Service.AdicionarObservacao(r.Context(), uint(id), strings.TrimSpace(body.Texto), auth.NomeDoContexto(r))
	if err != nil {
		erros.ResponderHTTP(w, err)
		return
	}
	json.NewEncoder(w).Encode(h.resposta(p))
}

// PUT /projetos/{id}/documentos
func (h *Handler) AtualizarDocumentos(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	var body struct {
		Flags          map[string]bool `json:"documentosCheck"`
		NumeroContrato *string         `json:"numeroContrato"`
		ValorServico   *float64        `json:"valorServico"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	p, err := h.Service.AtualizarDocumentos(r.Context(), uint(id), body.Flags, body.NumeroContrato, body.ValorServico)
	if err != nil {
		erros.ResponderHTTP(w, err)
		return
	}
	json.NewEncoder(w).Encode(h.resposta(p))
}
