package cliente

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/agrolink/api-projetos/internal/parceiro"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// PastaCliente é o colaborador de armazenamento usado ao excluir um cliente.
type PastaCliente interface {
	RemoverPastaCliente(clienteID uint) error
}

// Handler encapsula DB, repository e o armazenamento de arquivos
type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Arquivos   PastaCliente
}

func NewHandler(db *gorm.DB, arquivos PastaCliente) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Arquivos:   arquivos,
	}
}

type clienteDTO struct {
	NomeCompleto   string  `json:"nomeCompleto"`
	CPF            string  `json:"cpf"`
	Telefone       string  `json:"telefone"`
	Endereco       string  `json:"endereco"`
	DataNascimento string  `json:"dataNascimento"`
	ValorCredito   float64 `json:"valorCredito"`
	ParceiroID     *uint   `json:"parceiroId"`
	Estado         string  `json:"estado"`
	Cidade         string  `json:"cidade"`
}

// Criar trata POST /clientes
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var dto clienteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	cpf, err := NormalizarCPF(dto.CPF)
	if err != nil {
		http.Error(w, "CPF inválido", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(dto.NomeCompleto) == "" {
		http.Error(w, "O campo 'nomeCompleto' é obrigatório", http.StatusBadRequest)
		return
	}

	if _, err := h.Repository.BuscarPorCPF(h.DB, cpf); err == nil {
		http.Error(w, "CPF já cadastrado", http.StatusConflict)
		return
	}

	c := Cliente{
		NomeCompleto:   strings.ToUpper(dto.NomeCompleto),
		CPF:            cpf,
		Telefone:       dto.Telefone,
		Endereco:       dto.Endereco,
		DataNascimento: dto.DataNascimento,
		ValorCredito:   dto.ValorCredito,
		ParceiroID:     dto.ParceiroID,
		Estado:         dto.Estado,
		Cidade:         dto.Cidade,
	}
	if dto.ParceiroID != nil {
		var p parceiro.Parceiro
		if err := h.DB.First(&p, *dto.ParceiroID).Error; err == nil {
			c.ParceiroNome = p.Nome
		}
	}

	if err := h.Repository.Salvar(h.DB, &c); err != nil {
		http.Error(w, "Erro ao salvar cliente", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(c)
}

// Listar trata GET /clientes?busca=
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	busca := r.URL.Query().Get("busca")
	list, err := h.Repository.Listar(h.DB, busca)
	if err != nil {
		http.Error(w, "Erro ao listar clientes", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// BuscarPorID trata GET /clientes/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	c, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "Cliente não encontrado", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}

// Atualizar trata PUT /clientes/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	existente, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "Cliente não encontrado", http.StatusNotFound)
		return
	}

	var dto clienteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	if dto.NomeCompleto != "" {
		existente.NomeCompleto = strings.ToUpper(dto.NomeCompleto)
	}
	existente.Telefone = dto.Telefone
	existente.Endereco = dto.Endereco
	existente.DataNascimento = dto.DataNascimento
	existente.ValorCredito = dto.ValorCredito
	existente.Estado = dto.Estado
	existente.Cidade = dto.Cidade
	existente.ParceiroID = dto.ParceiroID
	if dto.ParceiroID != nil {
		var p parceiro.Parceiro
		if err := h.DB.First(&p, *dto.ParceiroID).Error; err == nil {
			existente.ParceiroNome = p.Nome
		}
	} else {
		existente.ParceiroNome = ""
	}

	if err := h.Repository.Atualizar(h.DB, existente); err != nil {
		http.Error(w, "Erro ao atualizar cliente", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(existente)
}

// Deletar trata DELETE /clientes/{id}
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	if _, err := h.Repository.BuscarPorID(h.DB, uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Cliente não encontrado", http.StatusNotFound)
			return
		}
		http.Error(w, "Erro ao buscar cliente", http.StatusInternalServerError)
		return
	}

	ativo, err := h.Repository.TemProjetoAtivo(h.DB, uint(id))
	if err != nil {
		http.Error(w, "Erro ao verificar projetos", http.StatusInternalServerError)
		return
	}
	if ativo {
		http.Error(w, "Cliente possui projeto em andamento", http.StatusConflict)
		return
	}

	if h.Arquivos != nil {
		_ = h.Arquivos.RemoverPastaCliente(uint(id))
	}
	if err := h.Repository.Deletar(h.DB, uint(id)); err != nil {
		http.Error(w, "Erro ao excluir cliente", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
