package proposta

import (
	"gorm.io/gorm"
)

type Repository interface {
	Salvar(db *gorm.DB, p *Proposta) error
	Listar(db *gorm.DB, status string) ([]Proposta, error)
	BuscarPorID(db *gorm.DB, id uint) (*Proposta, error)
	Abertas(db *gorm.DB) ([]Proposta, error)
	Atualizar(db *gorm.DB, p *Proposta) error
	MarcarConvertida(db *gorm.DB, id, projetoID uint) (bool, error)
	Deletar(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, p *Proposta) error {
	return db.Create(p).Error
}

func (r *repositoryImpl) Listar(db *gorm.DB, status string) ([]Proposta, error) {
	q := db.Model(&Proposta{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []Proposta
	err := q.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Proposta, error) {
	var p Proposta
	err := db.First(&p, id).Error
	return &p, err
}

func (r *repositoryImpl) Abertas(db *gorm.DB) ([]Proposta, error) {
	var list []Proposta
	err := db.Where("status = ?", StatusAberta).Order("created_at").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, p *Proposta) error {
	return db.Save(p).Error
}

// MarcarConvertida fecha a proposta de forma condicional: o WHERE por status
// garante que duas conversões concorrentes não passem as duas.
func (r *repositoryImpl) MarcarConvertida(db *gorm.DB, id, projetoID uint) (bool, error) {
	res := db.Model(&Proposta{}).
		Where("id = ? AND status = ?", id, StatusAberta).
		Updates(map[string]interface{}{
			"status":     StatusConvertida,
			"projeto_id": projetoID,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *repositoryImpl) Deletar(db *gorm.DB, id uint) error {
	return db.Delete(&Proposta{}, id).Error
}
