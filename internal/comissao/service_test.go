package comissao

import (
	"context"
	"fmt"
	"testing"

	"github.com/agrolink/api-projetos/internal/cliente"
	"github.com/agrolink/api-projetos/internal/erros"
	"github.com/agrolink/api-projetos/internal/etapa"
	"github.com/agrolink/api-projetos/internal/parceiro"
	"github.com/agrolink/api-projetos/internal/projeto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type storageFake struct{}

func (storageFake) PurgarPastaCliente(uint) error { return nil }

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&parceiro.Parceiro{},
		&cliente.Cliente{},
		&etapa.Etapa{},
		&projeto.Projeto{},
		&Comissao{},
	))
	require.NoError(t, db.Create(&etapa.Etapa{Nome: "Projeto Creditado", Ordem: 1, Ativo: true}).Error)
	return db
}

func arquivarProjetoIndicado(t *testing.T, db *gorm.DB, svc *Service, valorServico *float64) *projeto.Projeto {
	t.Helper()

	parc := parceiro.Parceiro{Nome: "Cooperativa Sul", Comissao: 2.5, Ativo: true}
	require.NoError(t, db.Create(&parc).Error)

	cli := cliente.Cliente{NomeCompleto: "JOAO DA SILVA", CPF: "12345678901", ParceiroID: &parc.ID}
	require.NoError(t, db.Create(&cli).Error)

	projetos := projeto.NewService(db, storageFake{}, zap.NewNop())
	projetos.PosArquivamento = svc

	p, err := projetos.Criar(context.Background(), projeto.CriarInput{ClienteID: cli.ID, ValorCredito: 200000})
	require.NoError(t, err)

	if valorServico != nil {
		_, err = projetos.AtualizarDocumentos(context.Background(), p.ID, nil, nil, valorServico)
		require.NoError(t, err)
	}

	arquivado, err := projetos.Arquivar(context.Background(), p.ID)
	require.NoError(t, err)
	return arquivado
}

func TestComissaoGeradaNoArquivamento(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop())

	valorServico := 8000.0
	p := arquivarProjetoIndicado(t, db, svc, &valorServico)

	c, err := svc.Repo.BuscarPorProjeto(db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPendente, c.Status)
	assert.Equal(t, 2.5, c.Percentual)
	assert.Equal(t, 8000.0, c.ValorBase)
	assert.InDelta(t, 200.0, c.ValorComissao, 0.001)
}

func TestSemValorServicoNaoGeraComissao(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop())

	p := arquivarProjetoIndicado(t, db, svc, nil)

	_, err := svc.Repo.BuscarPorProjeto(db, p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMarcarPaga(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop())

	valorServico := 8000.0
	p := arquivarProjetoIndicado(t, db, svc, &valorServico)

	c, err := svc.Repo.BuscarPorProjeto(db, p.ID)
	require.NoError(t, err)

	paga, err := svc.MarcarPaga(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaga, paga.Status)
	require.NotNil(t, paga.DataPagamento)

	_, err = svc.MarcarPaga(context.Background(), c.ID)
	assert.ErrorIs(t, err, erros.ErrConflito)
}
