package comissao

import (
	"gorm.io/gorm"
)

type Repository interface {
	Salvar(db *gorm.DB, c *Comissao) error
	Listar(db *gorm.DB, parceiroID uint, status string) ([]Comissao, error)
	BuscarPorID(db *gorm.DB, id uint) (*Comissao, error)
	BuscarPorProjeto(db *gorm.DB, projetoID uint) (*Comissao, error)
	Atualizar(db *gorm.DB, c *Comissao) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, c *Comissao) error {
	return db.Create(c).Error
}

func (r *repositoryImpl) Listar(db *gorm.DB, parceiroID uint, status string) ([]Comissao, error) {
	q := db.Model(&Comissao{})
	if parceiroID != 0 {
		q = q.Where("parceiro_id = ?", parceiroID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []Comissao
	err := q.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Comissao, error) {
	var c Comissao
	err := db.First(&c, id).Error
	return &c, err
}

func (r *repositoryImpl) BuscarPorProjeto(db *gorm.DB, projetoID uint) (*Comissao, error) {
	var c Comissao
	err := db.Where("projeto_id = ?", projetoID).First(&c).Error
	return &c, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, c *Comissao) error {
	return db.Save(c).Error
}
