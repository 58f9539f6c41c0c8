// Package comissao apura a comissão devida ao parceiro indicador quando o
// projeto do cliente indicado é creditado (arquivado).
package comissao

import (
	"time"

	"gorm.io/gorm"
)

// Status possíveis de uma comissão.
const (
	StatusPendente = "pendente"
	StatusPaga     = "paga"
)

// Comissao registra o valor a pagar ao parceiro por um projeto creditado.
// Uma comissão por projeto.
type Comissao struct {
	gorm.Model
	ProjetoID  uint `gorm:"not null;uniqueIndex" json:"projetoId"`
	ParceiroID uint `gorm:"not null;index" json:"parceiroId"`

	Percentual    float64 `gorm:"not null" json:"percentual"`
	ValorBase     float64 `gorm:"not null" json:"valorBase"`
	ValorComissao float64 `gorm:"not null" json:"valorComissao"`

	Status        string     `gorm:"size:50;not null;default:'pendente';index" json:"status"`
	DataPagamento *time.Time `json:"dataPagamento,omitempty"`
}
