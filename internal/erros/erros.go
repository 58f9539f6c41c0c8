// Package erros define a taxonomia de erros do domínio, usada pelos
// services para que os handlers traduzam cada caso no status HTTP certo.
package erros

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidacao indica entrada malformada (CPF inválido, campo obrigatório vazio).
	ErrValidacao = errors.New("dados inválidos")
	// ErrNaoEncontrado indica referência a uma entidade inexistente.
	ErrNaoEncontrado = errors.New("não encontrado")
	// ErrConflito indica violação de invariante (projeto ativo duplicado, CPF duplicado).
	ErrConflito = errors.New("conflito")
	// ErrUltimaEtapa indica tentativa de avançar um projeto que já está na última etapa ativa.
	ErrUltimaEtapa = errors.New("já está na última etapa")
	// ErrConfiguracao indica defeito de configuração do sistema (nenhuma etapa cadastrada).
	ErrConfiguracao = errors.New("nenhuma etapa configurada")
)

// ErroPrecondicao agrega tudo que bloqueia um avanço de etapa ou arquivamento,
// para que o chamador exiba a lista completa em uma única resposta.
type ErroPrecondicao struct {
	Itens []string
}

func (e *ErroPrecondicao) Error() string {
	return fmt.Sprintf("pré-condições não atendidas: %s", strings.Join(e.Itens, "; "))
}

// Precondicao monta um ErroPrecondicao a partir dos itens pendentes.
func Precondicao(itens ...string) *ErroPrecondicao {
	return &ErroPrecondicao{Itens: itens}
}
