package usuario

import "gorm.io/gorm"

// Usuario representa um operador do sistema (master, admin ou analista)
type Usuario struct {
	gorm.Model
	Nome  string `json:"nome"`
	Email string `json:"email" gorm:"unique"`
	Senha string `json:"-"`
	Role  string `json:"role"`
	Ativo bool   `json:"ativo"`
}
