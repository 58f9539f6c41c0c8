// internal/instituicao/model.go
package instituicao

import "gorm.io/gorm"

// Instituicao é a instituição financeira que concede o crédito
type Instituicao struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Nome  string `gorm:"size:255;not null" json:"nome"`
	Ativo bool   `gorm:"not null;default:true" json:"ativo"`
}

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Instituicao{})
}
