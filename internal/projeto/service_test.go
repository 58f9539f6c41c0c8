package projeto

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/agrolink/api-projetos/internal/cliente"
	"github.com/agrolink/api-projetos/internal/erros"
	"github.com/agrolink/api-projetos/internal/etapa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type storageFake struct {
	purgados []uint
	falha    error
}

func (s *storageFake) PurgarPastaCliente(clienteID uint) error {
	if s.falha != nil {
		return s.falha
	}
	s.purgados = append(s.purgados, clienteID)
	return nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&cliente.Cliente{}, &etapa.Etapa{}, &Projeto{}))
	return db
}

// ambiente monta serviço, storage falso e relógio fixo, com o funil padrão
// reduzido e um cliente cadastrado.
func ambiente(t *testing.T) (*Service, *storageFake, *time.Time, uint) {
	db := setupTestDB(t)

	etapas := []etapa.Etapa{
		{Nome: "Cadastro", Ordem: 1, Ativo: true},
		{Nome: "Coleta de Documentos", Ordem: 2, Ativo: true},
		{Nome: "Projeto Creditado", Ordem: 3, Ativo: true},
	}
	require.NoError(t, db.Create(&etapas).Error)

	cli := cliente.Cliente{NomeCompleto: "JOAO DA SILVA", CPF: "12345678901", ValorCredito: 150000}
	require.NoError(t, db.Create(&cli).Error)

	storage := &storageFake{}
	svc := NewService(db, storage, zap.NewNop())

	agora := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.Agora = func() time.Time { return agora }

	return svc, storage, &agora, cli.ID
}

func TestCriarProjeto(t *testing.T) {
	svc, _, _, clienteID := ambiente(t)

	p, err := svc.Criar(context.Background(), CriarInput{ClienteID: clienteID})
	require.NoError(t, err)

	assert.Equal(t, StatusEmAndamento, p.Status)
	assert.Equal(t, "Cadastro", p.EtapaAtualNome)
	assert.Equal(t, float64(150000), p.ValorCredito)
	require.Len(t, p.Historico, 1)
	require.NotNil(t, p.VisitaAberta())
	assert.Equal(t, "Cadastro", p.VisitaAberta().EtapaNome)
}

func TestCriarProjetoClienteInexistente(t *testing.T) {
	svc, _, _, _ := ambiente(t)

	_, err := svc.Criar(context.Background(), CriarInput{ClienteID: 999})
	assert.ErrorIs(t, err, erros.ErrNaoEncontrado)
}

func TestCriarProjetoDuplicado(t *testing.T) {
	svc, _, _, clienteID := ambiente(t)

	_, err := svc.Criar(context.Background(), CriarInput{ClienteID: clienteID})
	require.NoError(t, err)

	_, err = svc.Criar(context.Background(), CriarInput{ClienteID: clienteID})
	assert.ErrorIs(t, err, erros.ErrConflito)
}

func TestAvancarSelaVisitaEAbreProxima(t *testing.T) {
	svc, _, agora, clienteID := ambiente(t)

	p, err := svc.Criar(context.Background(), CriarInput{ClienteID: clienteID})
	require.NoError(t, err)

	*agora = agora.AddDate(0, 0, 5)

	p, err = svc.Avancar(context.Background(), p.ID)
	require.NoError(t, err)

	assert.Equal(t, "Coleta de Documentos", p.EtapaAtualNome)
	require.Len(t, p.Historico, 2)

	selada := p.Historico[0]
	require.NotNil(t, selada.DataFim)
	assert.Equal(t, 5, selada.DiasDuracao)

	aberta := p.VisitaAberta()
	require.NotNil(t, aberta)
	assert.Equal(t, "Coleta de Documentos", aberta.EtapaNome)
}

func TestAvancarBloqueadoPorDocumentos(t *testing.T) {
	svc, _, _, clienteID := ambiente(t)
	ctx := context.Background()

	p, err := svc.Criar(ctx, CriarInput{ClienteID: clienteID})
	require.NoError(t, err)
	p, err = svc.Avancar(ctx, p.ID)
	require.NoError(t, err)

	_, err = svc.Avancar(ctx, p.ID)
	var pre *erros.ErroPrecondicao
	require.ErrorAs(t, err, &pre)
	assert.Len(t, pre.Itens, 5)
	assert.Contains(t, pre.Itens, "documento pendente: RG / CNH")
	assert.Contains(t, pre.Itens, "documento pendente: CAR")

	// Marcando o checklist inteiro da etapa, o avanço libera.
	_, err = svc.AtualizarDocumentos(ctx, p.ID, map[string]bool{
		"rg_cnh":             true,
		"conta_banco_brasil": true,
		"ccu_titulo":         true,
		"saldo_iagro":        true,
		"car":                true,
	}, nil, nil)
	require.NoError(t, err)

	p, err = svc.Avancar(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Projeto Creditado", p.EtapaAtualNome)
}

func TestAvancarBloqueadoPorPendencia(t *testing.T) {
	svc, _, _, clienteID := ambiente(t)
	ctx := context.Background()

	p, err := svc.Criar(ctx, CriarInput{ClienteID: clienteID})
	require.NoError(t, err)

	p, err = svc.AdicionarPendencia(ctx, p.ID, "Falta assinatura do cônjuge")
	require.NoError(t, err)

	_, err = svc.Avancar(ctx, p.ID)
	var pre *erros.ErroPrecondicao
	require.ErrorAs(t, err, &pre)
	assert.Contains(t, pre.Itens[0], "pendência(s) não resolvida(s)")

	p, err = svc.ResolverPendencia(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.True(t, p.VisitaAberta().Pendencias[0].Resolvida)
	require.NotNil(t, p.VisitaAberta().Pendencias[0].DataResolucao)

	_, err = svc.Avancar(ctx, p.ID)
	require.NoError(t, err)
}

func TestAvancarUltimaEtapa(t *testing.T) {
	svc, _, _, clienteID := ambiente(t)
	ctx := context.Background()

	p := caminharAteUltimaEtapa(t, svc, clienteID)

	_, err := svc.AtualizarDocumentos(ctx, p.ID, map[string]bool{"comprovante_servico_pago": true}, nil, nil)
	require.NoError(t, err)

	_, err = svc.Avancar(ctx, p.ID)
	assert.ErrorIs(t, err, erros.ErrUltimaEtapa)
}

func caminharAteUltimaEtapa(t *testing.T, svc *Service, clienteID uint) *Projeto {
	t.Helper()
	ctx := context.Background()

	p, err := svc.Criar(ctx, CriarInput{ClienteID: clienteID})
	require.NoError(t, err)
	p, err = svc.Avancar(ctx, p.ID)
	require.NoError(t, err)

	_, err = svc.AtualizarDocumentos(ctx, p.ID, map[string]bool{
		"rg_cnh":             true,
		"conta_banco_brasil": true,
		"ccu_titulo":         true,
		"saldo_iagro":        true,
		"car":                true,
	}, nil, nil)
	require.NoError(t, err)

	p, err = svc.Avancar(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Projeto Creditado", p.EtapaAtualNome)
	return p
}

func TestArquivarSomenteNaUltimaEtapa(t *testing.T) {
	svc, _, _, clienteID := ambiente(t)
	ctx := context.Background()

	p, err := svc.Criar(ctx, CriarInput{ClienteID: clienteID})
	require.NoError(t, err)

	_, err = svc.Arquivar(ctx, p.ID)
	var pre *erros.ErroPrecondicao
	assert.ErrorAs(t, err, &pre)
}

func TestArquivar(t *testing.T) {
	svc, _, _, clienteID := ambiente(t)

	p := caminharAteUltimaEtapa(t, svc, clienteID)

	// Documentos da última etapa não bloqueiam o arquivamento.
	arquivado, err := svc.Arquivar(context.Background(), p.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusArquivado, arquivado.Status)
	require.NotNil(t, arquivado.DataArquivamento)
	assert.Nil(t, arquivado.VisitaAberta())

	_, err = svc.Arquivar(context.Background(), p.ID)
	var pre *erros.ErroPrecondicao
	assert.ErrorAs(t, err, &pre)
}

func TestCancelarExigeMotivo(t *testing.T) {
	svc, _, _, clienteID := ambiente(t)

	p, err := svc.Criar(context.Background(), CriarInput{ClienteID: clienteID})
	require.NoError(t, err)

	_, err = svc.Cancelar(context.Background(), p.ID, "")
	assert.ErrorIs(t, err, erros.ErrValidacao)
}

func TestCancelarPurgaArquivos(t *testing.T) {
	svc, storage, _, clienteID := ambiente(t)

	p, err := svc.Criar(context.Background(), CriarInput{ClienteID: clienteID})
	require.NoError(t, err)

	cancelado, err := svc.Cancelar(context.Background(), p.ID, "Cliente desistiu do financiamento")
	require.NoError(t, err)

	assert.Equal(t, StatusDesistido, cancelado.Status)
	require.NotNil(t, cancelado.MotivoDesistencia)
	assert.Equal(t, "Cliente desistiu do financiamento", *cancelado.MotivoDesistencia)
	assert.Equal(t, []uint{clienteID}, storage.purgados)

	// Cliente liberado para um novo projeto.
	_, err = svc.Criar(context.Background(), CriarInput{ClienteID: clienteID})
	assert.NoError(t, err)
}

func TestAtualizarNaoSobrescreveGravacaoConcorrente(t *testing.T) {
	svc, _, _, clienteID := ambiente(t)
	ctx := context.Background()

	p, err := svc.Criar(ctx, CriarInput{ClienteID: clienteID})
	require.NoError(t, err)

	// Duas leituras do mesmo projeto, cada uma anexando a sua pendência.
	primeira, err := svc.Repo.BuscarPorID(svc.DB, p.ID)
	require.NoError(t, err)
	segunda, err := svc.Repo.BuscarPorID(svc.DB, p.ID)
	require.NoError(t, err)

	visita := primeira.VisitaAberta()
	visita.Pendencias = append(visita.Pendencias, Pendencia{
		Descricao:   "Falta matrícula do imóvel",
		DataCriacao: svc.Agora(),
	})
	require.NoError(t, svc.Repo.Atualizar(svc.DB, primeira))

	visita = segunda.VisitaAberta()
	visita.Pendencias = append(visita.Pendencias, Pendencia{
		Descricao:   "Falta certidão negativa",
		DataCriacao: svc.Agora(),
	})
	err = svc.Repo.Atualizar(svc.DB, segunda)
	assert.ErrorIs(t, err, erros.ErrConflito)

	// A gravação defasada não apagou a pendência de quem gravou antes.
	guardado, err := svc.Repo.BuscarPorID(svc.DB, p.ID)
	require.NoError(t, err)
	require.Len(t, guardado.VisitaAberta().Pendencias, 1)
	assert.Equal(t, "Falta matrícula do imóvel", guardado.VisitaAberta().Pendencias[0].Descricao)

	// Pelo serviço, que relê antes de gravar, a segunda pendência entra.
	atualizado, err := svc.AdicionarPendencia(ctx, p.ID, "Falta certidão negativa")
	require.NoError(t, err)
	assert.Len(t, atualizado.VisitaAberta().Pendencias, 2)
}

func TestResolverPendenciaIndiceInvalido(t *testing.T) {
	svc, _, _, clienteID := ambiente(t)

	p, err := svc.Criar(context.Background(), CriarInput{ClienteID: clienteID})
	require.NoError(t, err)

	_, err = svc.ResolverPendencia(context.Background(), p.ID, 3)
	assert.ErrorIs(t, err, erros.ErrNaoEncontrado)
}

func TestAdicionarObservacao(t *testing.T) {
	svc, _, _, clienteID := ambiente(t)

	p, err := svc.Criar(context.Background(), CriarInput{ClienteID: clienteID})
	require.NoError(t, err)

	p, err = svc.AdicionarObservacao(context.Background(), p.ID, "Aguardando retorno da agência", "Maria Analista")
	require.NoError(t, err)

	obs := p.VisitaAberta().Observacoes
	require.Len(t, obs, 1)
	assert.Equal(t, "Aguardando retorno da agência", obs[0].Texto)
	assert.Equal(t, "Maria Analista", obs[0].UsuarioNome)
}

func TestTemPendencia(t *testing.T) {
	svc, _, _, clienteID := ambiente(t)
	ctx := context.Background()

	p, err := svc.Criar(ctx, CriarInput{ClienteID: clienteID})
	require.NoError(t, err)

	// Cadastro não exige documentos e não há pendências.
	assert.False(t, svc.TemPendencia(p))

	p, err = svc.AdicionarPendencia(ctx, p.ID, "Validar matrícula do imóvel")
	require.NoError(t, err)
	assert.True(t, svc.TemPendencia(p))

	p, err = svc.ResolverPendencia(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.False(t, svc.TemPendencia(p))

	// Na etapa de coleta, o checklist vazio conta como pendência.
	p, err = svc.Avancar(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, svc.TemPendencia(p))
}
