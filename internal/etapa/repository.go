package etapa

import (
	"errors"

	"github.com/agrolink/api-projetos/internal/erros"
	"gorm.io/gorm"
)

type Repository interface {
	Salvar(db *gorm.DB, e *Etapa) error
	ListarAtivas(db *gorm.DB) ([]Etapa, error)
	BuscarPorID(db *gorm.DB, id uint) (*Etapa, error)
	PrimeiraAtiva(db *gorm.DB) (*Etapa, error)
	UltimaAtiva(db *gorm.DB) (*Etapa, error)
	ProximaAposOrdem(db *gorm.DB, ordem int) (*Etapa, error)
	Atualizar(db *gorm.DB, e *Etapa) error
	Desativar(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, e *Etapa) error {
	return db.Create(e).Error
}

func (r *repositoryImpl) ListarAtivas(db *gorm.DB) ([]Etapa, error) {
	var list []Etapa
	err := db.Where("ativo = ?", true).Order("ordem").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Etapa, error) {
	var e Etapa
	err := db.First(&e, id).Error
	return &e, err
}

// PrimeiraAtiva devolve a etapa inicial do funil (menor ordem entre as ativas).
func (r *repositoryImpl) PrimeiraAtiva(db *gorm.DB) (*Etapa, error) {
	var e Etapa
	err := db.Where("ativo = ?", true).Order("ordem").First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, erros.ErrConfiguracao
	}
	return &e, err
}

// UltimaAtiva devolve a etapa terminal do funil (maior ordem entre as ativas).
func (r *repositoryImpl) UltimaAtiva(db *gorm.DB) (*Etapa, error) {
	var e Etapa
	err := db.Where("ativo = ?", true).Order("ordem DESC").First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, erros.ErrConfiguracao
	}
	return &e, err
}

// ProximaAposOrdem devolve a próxima etapa ativa com ordem estritamente maior.
func (r *repositoryImpl) ProximaAposOrdem(db *gorm.DB, ordem int) (*Etapa, error) {
	var e Etapa
	err := db.Where("ativo = ? AND ordem > ?", true, ordem).Order("ordem").First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, erros.ErrUltimaEtapa
	}
	return &e, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, e *Etapa) error {
	return db.Save(e).Error
}

// Desativar marca a etapa como inativa sem removê-la do banco.
func (r *repositoryImpl) Desativar(db *gorm.DB, id uint) error {
	return db.Model(&Etapa{}).Where("id = ?", id).Update("ativo", false).Error
}
