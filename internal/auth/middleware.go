package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const (
	CtxUserID   ctxKey = "usuarioID"
	CtxRole     ctxKey = "role"
	CtxUserNome ctxKey = "usuarioNome"
)

func MiddlewareAutenticacao(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		h := r.Header.Get("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			http.Error(w, "Token ausente", http.StatusUnauthorized)
			return
		}
		raw := strings.TrimPrefix(h, "Bearer ")
		claims, err := ValidarToken(raw)
		if err != nil {
			http.Error(w, "Token inválido", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), CtxUserID, claims.UserID)
		ctx = context.WithValue(ctx, CtxRole, claims.Role)
		ctx = context.WithValue(ctx, CtxUserNome, claims.Nome)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireGestao libera apenas master e admin (analistas não gerenciam cadastros).
func RequireGestao(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _ := r.Context().Value(CtxRole).(string)
		if role != RoleMaster && role != RoleAdmin {
			http.Error(w, "Permissão negada", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RoleDoContexto devolve o papel do usuário autenticado.
func RoleDoContexto(r *http.Request) string {
	role, _ := r.Context().Value(CtxRole).(string)
	return role
}

// NomeDoContexto devolve o nome de exibição do usuário autenticado.
func NomeDoContexto(r *http.Request) string {
	nome, _ := r.Context().Value(CtxUserNome).(string)
	return nome
}
