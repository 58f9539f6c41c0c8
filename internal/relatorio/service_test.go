package relatorio

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/agrolink/api-projetos/internal/cliente"
	"github.com/agrolink/api-projetos/internal/etapa"
	"github.com/agrolink/api-projetos/internal/projeto"
	"github.com/agrolink/api-projetos/internal/proposta"
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
		&cliente.Cliente{},
		&etapa.Etapa{},
		&projeto.Projeto{},
		&proposta.Proposta{},
	))
	require.NoError(t, db.Create(&[]etapa.Etapa{
		{Nome: "Cadastro", Ordem: 1, Ativo: true},
		{Nome: "Coleta de Documentos", Ordem: 2, Ativo: true},
	}).Error)
	return db
}

func TestResumoProjetos(t *testing.T) {
	db := setupTestDB(t)
	projetos := projeto.NewService(db, storageFake{}, zap.NewNop())
	svc := NewService(db, projetos)

	inicio := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	projetos.Agora = func() time.Time { return inicio }

	clientes := []cliente.Cliente{
		{NomeCompleto: "JOAO DA SILVA", CPF: "11111111111"},
		{NomeCompleto: "MARIA SOUZA", CPF: "22222222222"},
	}
	require.NoError(t, db.Create(&clientes).Error)

	ctx := context.Background()
	p1, err := projetos.Criar(ctx, projeto.CriarInput{ClienteID: clientes[0].ID, ValorCredito: 100000})
	require.NoError(t, err)
	_, err = projetos.Criar(ctx, projeto.CriarInput{ClienteID: clientes[1].ID, ValorCredito: 50000})
	require.NoError(t, err)

	// Primeiro projeto avança para a coleta, onde o checklist vazio pendura.
	_, err = projetos.Avancar(ctx, p1.ID)
	require.NoError(t, err)

	svc.Agora = func() time.Time { return inicio.AddDate(0, 0, 10) }

	resumo, err := svc.ResumoProjetos(ctx, Filtro{Mes: 5, Ano: 2025})
	require.NoError(t, err)

	assert.Equal(t, 2, resumo.Total)
	assert.Equal(t, 1, resumo.PorEtapa["Cadastro"])
	assert.Equal(t, 1, resumo.PorEtapa["Coleta de Documentos"])
	assert.Equal(t, 2, resumo.PorStatus[projeto.StatusEmAndamento])
	assert.Equal(t, 1, resumo.ComPendencia)
	assert.Equal(t, float64(150000), resumo.TotalCredito)
	require.Len(t, resumo.Itens, 2)
	for _, item := range resumo.Itens {
		assert.Equal(t, 10, item.DuracaoTotalDias)
		assert.NotEmpty(t, item.ClienteNome)
	}

	// Fora da janela do filtro, nada aparece.
	vazio, err := svc.ResumoProjetos(ctx, Filtro{Mes: 6, Ano: 2025})
	require.NoError(t, err)
	assert.Equal(t, 0, vazio.Total)
}

func TestResumoFiltroPendenciaEValor(t *testing.T) {
	db := setupTestDB(t)
	projetos := projeto.NewService(db, storageFake{}, zap.NewNop())
	svc := NewService(db, projetos)

	clientes := []cliente.Cliente{
		{NomeCompleto: "JOAO DA SILVA", CPF: "11111111111"},
		{NomeCompleto: "MARIA SOUZA", CPF: "22222222222"},
	}
	require.NoError(t, db.Create(&clientes).Error)

	ctx := context.Background()
	p1, err := projetos.Criar(ctx, projeto.CriarInput{ClienteID: clientes[0].ID, ValorCredito: 100000})
	require.NoError(t, err)
	_, err = projetos.Criar(ctx, projeto.CriarInput{ClienteID: clientes[1].ID, ValorCredito: 50000})
	require.NoError(t, err)

	_, err = projetos.AdicionarPendencia(ctx, p1.ID, "Falta CAR atualizado")
	require.NoError(t, err)

	comPendencia := true
	resumo, err := svc.ResumoProjetos(ctx, Filtro{Pendencia: &comPendencia})
	require.NoError(t, err)
	require.Equal(t, 1, resumo.Total)
	assert.Equal(t, p1.ID, resumo.Itens[0].ProjetoID)

	valorMin := 80000.0
	resumo, err = svc.ResumoProjetos(ctx, Filtro{ValorMin: &valorMin})
	require.NoError(t, err)
	require.Equal(t, 1, resumo.Total)
	assert.Equal(t, float64(100000), resumo.Itens[0].ValorCredito)
}

func TestPainelDashboard(t *testing.T) {
	db := setupTestDB(t)
	projetos := projeto.NewService(db, storageFake{}, zap.NewNop())
	svc := NewService(db, projetos)

	clientes := []cliente.Cliente{
		{NomeCompleto: "JOAO DA SILVA", CPF: "11111111111"},
		{NomeCompleto: "MARIA SOUZA", CPF: "22222222222"},
	}
	require.NoError(t, db.Create(&clientes).Error)

	ctx := context.Background()
	_, err := projetos.Criar(ctx, projeto.CriarInput{ClienteID: clientes[0].ID, ValorCredito: 100000})
	require.NoError(t, err)

	require.NoError(t, db.Create(&proposta.Proposta{
		ClienteID:    clientes[1].ID,
		ValorCredito: 30000,
		Status:       proposta.StatusAberta,
	}).Error)

	dash, err := svc.PainelDashboard(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 1, dash.ProjetosEmAndamento)
	assert.EqualValues(t, 0, dash.ProjetosArquivados)
	assert.EqualValues(t, 1, dash.PropostasAbertas)
	assert.EqualValues(t, 2, dash.TotalClientes)
	assert.Equal(t, float64(100000), dash.CreditoEmAndamento)
}
