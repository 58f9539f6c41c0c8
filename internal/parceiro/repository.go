package parceiro

import (
	"gorm.io/gorm"
)

type Repository interface {
	Salvar(db *gorm.DB, p *Parceiro) error
	Listar(db *gorm.DB) ([]Parceiro, error)
	BuscarPorID(db *gorm.DB, id uint) (*Parceiro, error)
	Atualizar(db *gorm.DB, p *Parceiro) error
	Deletar(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, p *Parceiro) error {
	return db.Create(p).Error
}

func (r *repositoryImpl) Listar(db *gorm.DB) ([]Parceiro, error) {
	var list []Parceiro
	err := db.Find(&list).Error
	return list, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Parceiro, error) {
	var p Parceiro
	err := db.First(&p, id).Error
	return &p, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, p *Parceiro) error {
	return db.Save(p).Error
}

func (r *repositoryImpl) Deletar(db *gorm.DB, id uint) error {
	return db.Delete(&Parceiro{}, id).Error
}
