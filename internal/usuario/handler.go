package usuario

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/agrolink/api-projetos/internal/auth"
	"github.com/agrolink/api-projetos/internal/utils"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// Handler encapsula DB e repository
type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

// NewHandler cria um novo handler de usuários
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
	}
}

type loginRequest struct {
	Login string `json:"login"`
	Senha string `json:"senha"`
}

type loginResponse struct {
	Token   string  `json:"token"`
	Usuario Usuario `json:"usuario"`
}

type criarUsuarioDTO struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Senha string `json:"senha"`
	Role  string `json:"role"`
	Ativo *bool  `json:"ativo"`
}

// Login trata POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	u, err := h.Repository.BuscarPorLogin(h.DB, req.Login)
	if err != nil {
		http.Error(w, "Credenciais inválidas", http.StatusUnauthorized)
		return
	}
	if !utils.CheckSenha(u.Senha, req.Senha) {
		http.Error(w, "Credenciais inválidas", http.StatusUnauthorized)
		return
	}
	if !u.Ativo {
		http.Error(w, "Usuário desativado", http.StatusUnauthorized)
		return
	}

	token, err := auth.GerarToken(u.ID, u.Role, u.Nome)
	if err != nil {
		http.Error(w, "Erro ao gerar token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(loginResponse{Token: token, Usuario: *u})
}

// Me trata GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(auth.CtxUserID).(uint)
	u, err := h.Repository.BuscarPorID(h.DB, userID)
	if err != nil {
		http.Error(w, "Usuário não encontrado", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(u)
}

// Criar trata POST /usuarios
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	role := auth.RoleDoContexto(r)
	if role == auth.RoleAnalista {
		http.Error(w, "Analistas não podem criar usuários", http.StatusForbidden)
		return
	}

	var dto criarUsuarioDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(dto.Nome) == "" || strings.TrimSpace(dto.Email) == "" || dto.Senha == "" {
		http.Error(w, "Nome, email e senha são obrigatórios", http.StatusBadRequest)
		return
	}
	if dto.Role == "" {
		dto.Role = auth.RoleAnalista
	}
	if role == auth.RoleAdmin && (dto.Role == auth.RoleMaster || dto.Role == auth.RoleAdmin) {
		http.Error(w, "Admins não podem criar usuários Master ou Admin", http.StatusForbidden)
		return
	}

	hash, err := utils.HashSenha(dto.Senha)
	if err != nil {
		http.Error(w, "Erro ao processar senha", http.StatusInternalServerError)
		return
	}

	ativo := true
	if dto.Ativo != nil {
		ativo = *dto.Ativo
	}
	u := Usuario{
		Nome:  dto.Nome,
		Email: dto.Email,
		Senha: hash,
		Role:  dto.Role,
		Ativo: ativo,
	}
	if err := h.Repository.Salvar(h.DB, &u); err != nil {
		http.Error(w, "Email já cadastrado", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(u)
}

// Listar trata GET /usuarios
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	if auth.RoleDoContexto(r) == auth.RoleAnalista {
		http.Error(w, "Permissão negada", http.StatusForbidden)
		return
	}
	list, err := h.Repository.Listar(h.DB)
	if err != nil {
		http.Error(w, "Erro ao listar usuários", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Atualizar trata PUT /usuarios/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	role := auth.RoleDoContexto(r)
	if role == auth.RoleAnalista {
		http.Error(w, "Permissão negada", http.StatusForbidden)
		return
	}

	alvo, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "Usuário não encontrado", http.StatusNotFound)
		return
	}
	if role == auth.RoleAdmin && (alvo.Role == auth.RoleMaster || alvo.Role == auth.RoleAdmin) {
		http.Error(w, "Admins não podem alterar Master ou outros Admins", http.StatusForbidden)
		return
	}

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	if v, ok := body["nome"].(string); ok {
		alvo.Nome = v
	}
	if v, ok := body["email"].(string); ok {
		alvo.Email = v
	}
	if v, ok := body["ativo"].(bool); ok {
		alvo.Ativo = v
	}
	if v, ok := body["role"].(string); ok {
		if role != auth.RoleMaster {
			http.Error(w, "Apenas Master pode alterar roles", http.StatusForbidden)
			return
		}
		alvo.Role = v
	}
	if v, ok := body["senha"].(string); ok && v != "" {
		hash, err := utils.HashSenha(v)
		if err != nil {
			http.Error(w, "Erro ao processar senha", http.StatusInternalServerError)
			return
		}
		alvo.Senha = hash
	}

	if err := h.Repository.Atualizar(h.DB, alvo); err != nil {
		http.Error(w, "Erro ao atualizar usuário", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(alvo)
}

// ResetarSenha trata POST /usuarios/{id}/resetar-senha e devolve uma senha temporária
func (h *Handler) ResetarSenha(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	if auth.RoleDoContexto(r) == auth.RoleAnalista {
		http.Error(w, "Permissão negada", http.StatusForbidden)
		return
	}

	alvo, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "Usuário não encontrado", http.StatusNotFound)
		return
	}

	temporaria, err := utils.GerarSenhaTemporaria()
	if err != nil {
		http.Error(w, "Erro ao gerar senha", http.StatusInternalServerError)
		return
	}
	hash, err := utils.HashSenha(temporaria)
	if err != nil {
		http.Error(w, "Erro ao processar senha", http.StatusInternalServerError)
		return
	}
	alvo.Senha = hash
	if err := h.Repository.Atualizar(h.DB, alvo); err != nil {
		http.Error(w, "Erro ao salvar senha", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"senhaTemporaria": temporaria})
}

// Deletar trata DELETE /usuarios/{id}
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	role := auth.RoleDoContexto(r)
	if role == auth.RoleAnalista {
		http.Error(w, "Permissão negada", http.StatusForbidden)
		return
	}

	alvo, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Usuário não encontrado", http.StatusNotFound)
			return
		}
		http.Error(w, "Erro ao buscar usuário", http.StatusInternalServerError)
		return
	}
	if alvo.Role == auth.RoleMaster {
		http.Error(w, "Não é possível excluir usuário Master", http.StatusForbidden)
		return
	}
	if role == auth.RoleAdmin && alvo.Role == auth.RoleAdmin {
		http.Error(w, "Admins não podem excluir outros Admins", http.StatusForbidden)
		return
	}

	if err := h.Repository.Deletar(h.DB, uint(id)); err != nil {
		http.Error(w, "Erro ao excluir usuário", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
