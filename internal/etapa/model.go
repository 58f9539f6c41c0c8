package etapa

// Etapa é um passo do funil que todo projeto percorre, na ordem de 'Ordem'.
// A exclusão é sempre lógica (Ativo=false) para preservar o histórico dos projetos.
type Etapa struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Nome  string `gorm:"size:255;not null" json:"nome"`
	Ordem int    `gorm:"not null;index" json:"ordem"`
	Ativo bool   `gorm:"not null;default:true" json:"ativo"`
}
