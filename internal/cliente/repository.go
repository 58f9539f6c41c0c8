package cliente

import (
	"gorm.io/gorm"
)

type Repository interface {
	Salvar(db *gorm.DB, c *Cliente) error
	Listar(db *gorm.DB, busca string) ([]Cliente, error)
	BuscarPorID(db *gorm.DB, id uint) (*Cliente, error)
	BuscarPorCPF(db *gorm.DB, cpf string) (*Cliente, error)
	Atualizar(db *gorm.DB, c *Cliente) error
	Deletar(db *gorm.DB, id uint) error
	TemProjetoAtivo(db *gorm.DB, clienteID uint) (bool, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, c *Cliente) error {
	return db.Create(c).Error
}

func (r *repositoryImpl) Listar(db *gorm.DB, busca string) ([]Cliente, error) {
	var list []Cliente
	q := db
	if busca != "" {
		like := "%" + busca + "%"
		q = q.Where("LOWER(nome_completo) LIKE LOWER(?) OR cpf LIKE ?", like, like)
	}
	err := q.Order("nome_completo").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Cliente, error) {
	var c Cliente
	err := db.First(&c, id).Error
	return &c, err
}

func (r *repositoryImpl) BuscarPorCPF(db *gorm.DB, cpf string) (*Cliente, error) {
	var c Cliente
	err := db.Where("cpf = ?", cpf).First(&c).Error
	return &c, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, c *Cliente) error {
	return db.Save(c).Error
}

func (r *repositoryImpl) Deletar(db *gorm.DB, id uint) error {
	return db.Delete(&Cliente{}, id).Error
}

// TemProjetoAtivo consulta a tabela de projetos sem importar o pacote,
// para não criar ciclo cliente <-> projeto.
func (r *repositoryImpl) TemProjetoAtivo(db *gorm.DB, clienteID uint) (bool, error) {
	var count int64
	err := db.Table("projetos").
		Where("cliente_id = ? AND status = ? AND deleted_at IS NULL", clienteID, "em_andamento").
		Count(&count).Error
	return count > 0, err
}
