// internal/tipoprojeto/model.go
package tipoprojeto

import "gorm.io/gorm"

// TipoProjeto é a linha de crédito rural oferecida (custeio, investimento...)
type TipoProjeto struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Nome  string `gorm:"size:255;not null" json:"nome"`
	Ativo bool   `gorm:"not null;default:true" json:"ativo"`
}

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&TipoProjeto{})
}
