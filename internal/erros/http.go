package erros

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ResponderHTTP traduz um erro de domínio no status HTTP correspondente.
// ErroPrecondicao vira um corpo JSON com a lista de itens bloqueantes.
func ResponderHTTP(w http.ResponseWriter, err error) {
	var pre *ErroPrecondicao
	if errors.As(err, &pre) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"erro":  "pré-condições não atendidas",
			"itens": pre.Itens,
		})
		return
	}

	switch {
	case errors.Is(err, ErrValidacao):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNaoEncontrado):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrConflito), errors.Is(err, ErrUltimaEtapa):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrConfiguracao):
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, "Erro interno", http.StatusInternalServerError)
	}
}
