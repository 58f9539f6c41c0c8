package usuario

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agrolink/api-projetos/internal/auth"
	"github.com/agrolink/api-projetos/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Usuario{}))
	return db
}

func criarUsuario(t *testing.T, db *gorm.DB, nome, email, senha, role string, ativo bool) Usuario {
	hash, err := utils.HashSenha(senha)
	require.NoError(t, err)
	u := Usuario{Nome: nome, Email: email, Senha: hash, Role: role, Ativo: ativo}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func fazerLogin(t *testing.T, h *Handler, login, senha string) *httptest.ResponseRecorder {
	body, err := json.Marshal(map[string]string{"login": login, "senha": senha})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	h := NewHandler(db)
	criarUsuario(t, db, "Maria", "maria@agrolink.com", "senha-forte", auth.RoleAnalista, true)

	rec := fazerLogin(t, h, "maria@agrolink.com", "senha-forte")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token   string  `json:"token"`
		Usuario Usuario `json:"usuario"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Maria", resp.Usuario.Nome)

	claims, err := auth.ValidarToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAnalista, claims.Role)
	assert.Equal(t, "Maria", claims.Nome)
}

func TestLoginPorNome(t *testing.T) {
	db := setupTestDB(t)
	h := NewHandler(db)
	criarUsuario(t, db, "Maria", "maria@agrolink.com", "senha-forte", auth.RoleAnalista, true)

	rec := fazerLogin(t, h, "Maria", "senha-forte")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginSenhaErrada(t *testing.T) {
	db := setupTestDB(t)
	h := NewHandler(db)
	criarUsuario(t, db, "Maria", "maria@agrolink.com", "senha-forte", auth.RoleAnalista, true)

	rec := fazerLogin(t, h, "maria@agrolink.com", "outra-senha")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUsuarioDesativado(t *testing.T) {
	db := setupTestDB(t)
	h := NewHandler(db)
	criarUsuario(t, db, "Maria", "maria@agrolink.com", "senha-forte", auth.RoleAnalista, false)

	rec := fazerLogin(t, h, "maria@agrolink.com", "senha-forte")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func comRole(req *http.Request, role string) *http.Request {
	ctx := context.WithValue(req.Context(), auth.CtxRole, role)
	return req.WithContext(ctx)
}

func TestCriarUsuarioMatrizDePermissao(t *testing.T) {
	tests := []struct {
		nome     string
		roleAtor string
		roleNovo string
		status   int
	}{
		{nome: "master cria admin", roleAtor: auth.RoleMaster, roleNovo: auth.RoleAdmin, status: http.StatusCreated},
		{nome: "admin cria analista", roleAtor: auth.RoleAdmin, roleNovo: auth.RoleAnalista, status: http.StatusCreated},
		{nome: "admin não cria admin", roleAtor: auth.RoleAdmin, roleNovo: auth.RoleAdmin, status: http.StatusForbidden},
		{nome: "admin não cria master", roleAtor: auth.RoleAdmin, roleNovo: auth.RoleMaster, status: http.StatusForbidden},
		{nome: "analista não cria ninguém", roleAtor: auth.RoleAnalista, roleNovo: auth.RoleAnalista, status: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.nome, func(t *testing.T) {
			db := setupTestDB(t)
			h := NewHandler(db)

			body, err := json.Marshal(map[string]string{
				"nome":  "Novo Usuário",
				"email": "novo@agrolink.com",
				"senha": "senha-forte",
				"role":  tt.roleNovo,
			})
			require.NoError(t, err)
			req := comRole(httptest.NewRequest(http.MethodPost, "/usuarios", bytes.NewReader(body)), tt.roleAtor)
			rec := httptest.NewRecorder()
			h.Criar(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
