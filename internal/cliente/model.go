package cliente

import (
	"regexp"
	"time"

	"github.com/agrolink/api-projetos/internal/erros"
	"gorm.io/gorm"
)

// Cliente representa um produtor rural atendido pelo escritório
type Cliente struct {
	gorm.Model
	NomeCompleto   string     `json:"nomeCompleto"`
	CPF            string     `json:"cpf" gorm:"unique"`
	Telefone       string     `json:"telefone"`
	Endereco       string     `json:"endereco"`
	DataNascimento string     `json:"dataNascimento"`
	ValorCredito   float64    `json:"valorCredito"`
	ParceiroID     *uint      `json:"parceiroId"`
	ParceiroNome   string     `json:"parceiroNome"`
	Estado         string     `json:"estado"`
	Cidade         string     `json:"cidade"`
	AlertaCount    int        `json:"alertaCount"`
	UltimoAlertaEm *time.Time `json:"ultimoAlertaEm"`
}

var naoDigitos = regexp.MustCompile(`\D`)

// NormalizarCPF remove máscara e exige exatamente 11 dígitos.
func NormalizarCPF(cpf string) (string, error) {
	limpo := naoDigitos.ReplaceAllString(cpf, "")
	if len(limpo) != 11 {
		return "", erros.ErrValidacao
	}
	return limpo, nil
}
