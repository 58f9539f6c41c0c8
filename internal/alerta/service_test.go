package alerta

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/agrolink/api-projetos/internal/cliente"
	"github.com/agrolink/api-projetos/internal/projeto"
	"github.com/agrolink/api-projetos/internal/proposta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&cliente.Cliente{}, &projeto.Projeto{}, &proposta.Proposta{}))
	return db
}

func novoService(t *testing.T, db *gorm.DB) (*Service, *time.Time) {
	svc := NewService(db, zap.NewNop())
	agora := time.Now()
	svc.Agora = func() time.Time { return agora }
	return svc, &agora
}

func criarCliente(t *testing.T, db *gorm.DB, nome, cpf string) cliente.Cliente {
	c := cliente.Cliente{NomeCompleto: nome, CPF: cpf, Telefone: "67 99999-0000"}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func TestPrimeiroAlertaDispara(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := novoService(t, db)
	cli := criarCliente(t, db, "JOAO DA SILVA", "11111111111")

	alertas, err := svc.Consumir(context.Background())
	require.NoError(t, err)
	require.Len(t, alertas, 1)
	assert.Equal(t, TipoClienteSemProjeto, alertas[0].Tipo)
	assert.Equal(t, cli.ID, alertas[0].ClienteID)
	assert.Equal(t, 1, alertas[0].AlertaCount)

	guardado, err := svc.buscarCliente(db, cli.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, guardado.AlertaCount)
	require.NotNil(t, guardado.UltimoAlertaEm)
}

func TestIntervaloMinimoEntreAlertas(t *testing.T) {
	db := setupTestDB(t)
	svc, agora := novoService(t, db)
	criarCliente(t, db, "JOAO DA SILVA", "11111111111")
	ctx := context.Background()

	alertas, err := svc.Consumir(ctx)
	require.NoError(t, err)
	require.Len(t, alertas, 1)

	// Dois dias depois, nada.
	*agora = agora.Add(48 * time.Hour)
	alertas, err = svc.Consumir(ctx)
	require.NoError(t, err)
	assert.Empty(t, alertas)

	// Completados três dias desde o último alerta, dispara de novo.
	*agora = agora.Add(24 * time.Hour)
	alertas, err = svc.Consumir(ctx)
	require.NoError(t, err)
	require.Len(t, alertas, 1)
	assert.Equal(t, 2, alertas[0].AlertaCount)
}

func TestTetoDeTresAlertas(t *testing.T) {
	db := setupTestDB(t)
	svc, agora := novoService(t, db)
	criarCliente(t, db, "JOAO DA SILVA", "11111111111")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		alertas, err := svc.Consumir(ctx)
		require.NoError(t, err)
		require.Len(t, alertas, 1, "alerta %d", i+1)
		*agora = agora.Add(Intervalo)
	}

	alertas, err := svc.Consumir(ctx)
	require.NoError(t, err)
	assert.Empty(t, alertas)
}

func TestPendentesNaoConsome(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := novoService(t, db)
	cli := criarCliente(t, db, "JOAO DA SILVA", "11111111111")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		alertas, err := svc.Pendentes(ctx)
		require.NoError(t, err)
		require.Len(t, alertas, 1)
		assert.Equal(t, 0, alertas[0].AlertaCount)
	}

	guardado, err := svc.buscarCliente(db, cli.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, guardado.AlertaCount)
	assert.Nil(t, guardado.UltimoAlertaEm)
}

func TestClienteComProjetoAtivoNaoAlerta(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := novoService(t, db)
	cli := criarCliente(t, db, "JOAO DA SILVA", "11111111111")

	require.NoError(t, db.Create(&projeto.Projeto{
		ClienteID:  cli.ID,
		Status:     projeto.StatusEmAndamento,
		DataInicio: time.Now(),
	}).Error)

	alertas, err := svc.Consumir(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alertas)
}

func TestPropostaAbertaAlerta(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := novoService(t, db)
	cli := criarCliente(t, db, "JOAO DA SILVA", "11111111111")

	prop := proposta.Proposta{ClienteID: cli.ID, ValorCredito: 50000, Status: proposta.StatusAberta}
	require.NoError(t, db.Create(&prop).Error)

	alertas, err := svc.Consumir(context.Background())
	require.NoError(t, err)
	require.Len(t, alertas, 1)

	// O alerta da proposta cobre o cliente; não sai o de cliente sem projeto.
	assert.Equal(t, TipoPropostaAberta, alertas[0].Tipo)
	require.NotNil(t, alertas[0].PropostaID)
	assert.Equal(t, prop.ID, *alertas[0].PropostaID)
	assert.Equal(t, "JOAO DA SILVA", alertas[0].ClienteNome)
}

func TestLimparTodosSilencia(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := novoService(t, db)
	criarCliente(t, db, "JOAO DA SILVA", "11111111111")
	cli2 := criarCliente(t, db, "MARIA SOUZA", "22222222222")
	prop := proposta.Proposta{ClienteID: cli2.ID, ValorCredito: 50000, Status: proposta.StatusAberta}
	require.NoError(t, db.Create(&prop).Error)
	ctx := context.Background()

	require.NoError(t, svc.LimparTodos(ctx))

	alertas, err := svc.Consumir(ctx)
	require.NoError(t, err)
	assert.Empty(t, alertas)
}
