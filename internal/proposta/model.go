// Package proposta implementa o funil de pré-venda: propostas abertas que
// podem virar projeto (conversão) ou ser encerradas por desistência.
package proposta

import (
	"time"

	"gorm.io/gorm"
)

// Status possíveis de uma proposta. Convertida e desistida são terminais.
const (
	StatusAberta     = "aberta"
	StatusConvertida = "convertida"
	StatusDesistida  = "desistida"
)

// Proposta é a intenção de crédito de um cliente antes de virar projeto.
type Proposta struct {
	gorm.Model
	ClienteID         uint    `gorm:"not null;index" json:"clienteId"`
	TipoProjetoID     *uint   `json:"tipoProjetoId"`
	InstituicaoID     *uint   `json:"instituicaoId"`
	ValorCredito      float64 `json:"valorCredito"`
	Status            string  `gorm:"size:50;not null;default:'aberta';index" json:"status"`
	MotivoDesistencia *string `json:"motivoDesistencia,omitempty"`

	// Rastreio de follow-up: quantos alertas já foram emitidos e quando.
	AlertaCount    int        `json:"alertaCount"`
	UltimoAlertaEm *time.Time `json:"ultimoAlertaEm"`

	// ProjetoID aponta o projeto gerado pela conversão.
	ProjetoID *uint `json:"projetoId,omitempty"`
}
