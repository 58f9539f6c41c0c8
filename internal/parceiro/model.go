package parceiro

import "gorm.io/gorm"

// Parceiro representa um indicador de clientes que recebe comissão
type Parceiro struct {
	gorm.Model
	Nome     string  `json:"nome"`
	Comissao float64 `json:"comissao"`
	Telefone string  `json:"telefone"`
	Ativo    bool    `json:"ativo"`
}
