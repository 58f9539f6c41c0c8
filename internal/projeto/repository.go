package projeto

import (
	"fmt"
	"time"

	"github.com/agrolink/api-projetos/internal/erros"
	"gorm.io/gorm"
)

// Filtro restringe a listagem de projetos.
type Filtro struct {
	Status string
	Mes    int
	Ano    int
}

type Repository interface {
	Salvar(db *gorm.DB, p *Projeto) error
	Listar(db *gorm.DB, f Filtro) ([]Projeto, error)
	BuscarPorID(db *gorm.DB, id uint) (*Projeto, error)
	AtivoDoCliente(db *gorm.DB, clienteID uint) (*Projeto, error)
	Atualizar(db *gorm.DB, p *Projeto) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, p *Projeto) error {
	return db.Create(p).Error
}

func (r *repositoryImpl) Listar(db *gorm.DB, f Filtro) ([]Projeto, error) {
	q := db.Model(&Projeto{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Mes > 0 && f.Ano > 0 {
		inicio := time.Date(f.Ano, time.Month(f.Mes), 1, 0, 0, 0, 0, time.UTC)
		fim := inicio.AddDate(0, 1, 0)
		q = q.Where("data_inicio >= ? AND data_inicio < ?", inicio, fim)
	}
	var list []Projeto
	err := q.Order("data_inicio DESC").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Projeto, error) {
	var p Projeto
	err := db.First(&p, id).Error
	return &p, err
}

// AtivoDoCliente devolve o projeto em andamento do cliente, se houver.
func (r *repositoryImpl) AtivoDoCliente(db *gorm.DB, clienteID uint) (*Projeto, error) {
	var p Projeto
	err := db.Where("cliente_id = ? AND status = ?", clienteID, StatusEmAndamento).First(&p).Error
	return &p, err
}

// Atualizar grava o projeto inteiro com checagem otimista de versão: o
// update só aplica se ninguém gravou o registro desde a leitura. Duas
// mutações simultâneas não se sobrescrevem; a defasada volta ErrConflito.
func (r *repositoryImpl) Atualizar(db *gorm.DB, p *Projeto) error {
	lida := p.Versao
	p.Versao++
	res := db.Model(p).Where("versao = ?", lida).Select("*").Updates(p)
	if res.Error != nil {
		p.Versao = lida
		return res.Error
	}
	if res.RowsAffected == 0 {
		p.Versao = lida
		return fmt.Errorf("projeto foi modificado por outra operação: %w", erros.ErrConflito)
	}
	return nil
}
