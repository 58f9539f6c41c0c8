// Package projeto implementa a máquina de estados do acompanhamento de
// projetos de crédito rural: criação, avanço de etapa com gates de
// documentos e pendências, arquivamento e desistência.
package projeto

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agrolink/api-projetos/internal/cliente"
	"github.com/agrolink/api-projetos/internal/erros"
	"github.com/agrolink/api-projetos/internal/etapa"
	"github.com/agrolink/api-projetos/internal/requisitos"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ArmazenamentoArquivos é o colaborador de arquivos do cliente. A desistência
// de um projeto purga a pasta inteira (política deliberada de "começar do zero").
type ArmazenamentoArquivos interface {
	PurgarPastaCliente(clienteID uint) error
}

// PosArquivamento roda dentro da transação de arquivamento, depois do
// projeto persistido. Usado para apurar a comissão do parceiro indicador.
type PosArquivamento interface {
	ProjetoArquivado(tx *gorm.DB, p *Projeto) error
}

// CriarInput agrupa os dados de criação de um projeto.
type CriarInput struct {
	ClienteID        uint
	ValorCredito     float64
	TipoProjetoID    *uint
	InstituicaoID    *uint
	PropostaOrigemID *uint
}

// Service orquestra as operações sobre projetos garantindo as invariantes
// do funil (uma visita aberta por projeto, um projeto ativo por cliente).
type Service struct {
	DB       *gorm.DB
	Repo     Repository
	Clientes cliente.Repository
	Etapas   etapa.Repository
	Tabela   requisitos.Tabela
	Arquivos ArmazenamentoArquivos
	logger   *zap.Logger

	// PosArquivamento é opcional; nil desliga o gancho.
	PosArquivamento PosArquivamento

	// Agora é injetável para que os testes fixem o relógio.
	Agora func() time.Time
}

func NewService(db *gorm.DB, arquivos ArmazenamentoArquivos, logger *zap.Logger) *Service {
	return &Service{
		DB:       db,
		Repo:     NewRepository(),
		Clientes: cliente.NewRepository(),
		Etapas:   etapa.NewRepository(),
		Tabela:   requisitos.Padrao(),
		Arquivos: arquivos,
		logger:   logger.Named("projeto_service"),
		Agora:    time.Now,
	}
}

// Criar abre um projeto para o cliente na primeira etapa ativa do funil.
func (s *Service) Criar(ctx context.Context, input CriarInput) (*Projeto, error) {
	return s.CriarTx(s.DB.WithContext(ctx), input)
}

// CriarTx é a variante usada dentro de transações (conversão de proposta).
func (s *Service) CriarTx(tx *gorm.DB, input CriarInput) (*Projeto, error) {
	cli, err := s.Clientes.BuscarPorID(tx, input.ClienteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cliente: %w", erros.ErrNaoEncontrado)
		}
		return nil, fmt.Errorf("buscar cliente: %w", err)
	}

	if _, err := s.Repo.AtivoDoCliente(tx, cli.ID); err == nil {
		return nil, fmt.Errorf("cliente já possui projeto em andamento: %w", erros.ErrConflito)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("verificar projeto ativo: %w", err)
	}

	primeira, err := s.Etapas.PrimeiraAtiva(tx)
	if err != nil {
		return nil, err
	}

	agora := s.Agora()
	valor := input.ValorCredito
	if valor == 0 {
		valor = cli.ValorCredito
	}
	p := &Projeto{
		ClienteID:      cli.ID,
		EtapaAtualID:   primeira.ID,
		EtapaAtualNome: primeira.Nome,
		Status:         StatusEmAndamento,
		DataInicio:     agora,
		ValorCredito:   valor,
		TipoProjetoID:  input.TipoProjetoID,
		InstituicaoID:  input.InstituicaoID,
		Historico: []EtapaVisita{{
			EtapaID:     primeira.ID,
			EtapaNome:   primeira.Nome,
			DataInicio:  agora,
			Pendencias:  []Pendencia{},
			Observacoes: []Observacao{},
		}},
		PropostaOrigemID: input.PropostaOrigemID,
	}
	if err := s.Repo.Salvar(tx, p); err != nil {
		return nil, fmt.Errorf("salvar projeto: %w", err)
	}
	s.logger.Info("projeto criado",
		zap.Uint("projeto_id", p.ID),
		zap.Uint("cliente_id", cli.ID),
		zap.String("etapa", primeira.Nome),
	)
	return p, nil
}

// Avancar sela a visita atual e move o projeto para a próxima etapa ativa.
// Tudo que bloqueia o avanço é devolvido de uma só vez em ErroPrecondicao.
func (s *Service) Avancar(ctx context.Context, id uint) (*Projeto, error) {
	var atualizado *Projeto
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.Repo.BuscarPorID(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("projeto: %w", erros.ErrNaoEncontrado)
			}
			return err
		}
		if p.Status != StatusEmAndamento {
			return erros.Precondicao("projeto não está em andamento")
		}

		visita := p.VisitaAberta()
		if visita == nil {
			return erros.Precondicao("projeto sem visita de etapa aberta")
		}

		var bloqueios []string
		if n := visita.PendenciasAbertas(); n > 0 {
			bloqueios = append(bloqueios, fmt.Sprintf("existem %d pendência(s) não resolvida(s)", n))
		}
		for _, rotulo := range s.Tabela.Faltantes(p.EtapaAtualNome, p.Documentos.Marcado) {
			bloqueios = append(bloqueios, "documento pendente: "+rotulo)
		}
		if len(bloqueios) > 0 {
			return erros.Precondicao(bloqueios...)
		}

		atual, err := s.Etapas.BuscarPorID(tx, p.EtapaAtualID)
		if err != nil {
			return fmt.Errorf("etapa atual: %w", erros.ErrConfiguracao)
		}
		proxima, err := s.Etapas.ProximaAposOrdem(tx, atual.Ordem)
		if err != nil {
			return err
		}

		agora := s.Agora()
		visita.Selar(agora)
		p.Historico = append(p.Historico, EtapaVisita{
			EtapaID:     proxima.ID,
			EtapaNome:   proxima.Nome,
			DataInicio:  agora,
			Pendencias:  []Pendencia{},
			Observacoes: []Observacao{},
		})
		p.EtapaAtualID = proxima.ID
		p.EtapaAtualNome = proxima.Nome

		if err := s.Repo.Atualizar(tx, p); err != nil {
			return fmt.Errorf("atualizar projeto: %w", err)
		}
		s.logger.Info("projeto avançou de etapa",
			zap.Uint("projeto_id", p.ID),
			zap.String("de", atual.Nome),
			zap.String("para", proxima.Nome),
		)
		atualizado = p
		return nil
	})
	return atualizado, err
}

// Arquivar encerra um projeto que chegou à última etapa ativa do funil.
// O arquivamento independe do checklist de documentos.
func (s *Service) Arquivar(ctx context.Context, id uint) (*Projeto, error) {
	var atualizado *Projeto
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.Repo.BuscarPorID(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("projeto: %w", erros.ErrNaoEncontrado)
			}
			return err
		}
		if p.Status != StatusEmAndamento {
			return erros.Precondicao("projeto não está em andamento")
		}

		ultima, err := s.Etapas.UltimaAtiva(tx)
		if err != nil {
			return err
		}
		if p.EtapaAtualID != ultima.ID {
			return erros.Precondicao("projeto precisa estar na última etapa para ser arquivado")
		}

		agora := s.Agora()
		if visita := p.VisitaAberta(); visita != nil {
			visita.Selar(agora)
		}
		p.Status = StatusArquivado
		p.DataArquivamento = &agora

		if err := s.Repo.Atualizar(tx, p); err != nil {
			return fmt.Errorf("atualizar projeto: %w", err)
		}
		if s.PosArquivamento != nil {
			if err := s.PosArquivamento.ProjetoArquivado(tx, p); err != nil {
				return err
			}
		}
		s.logger.Info("projeto arquivado", zap.Uint("projeto_id", p.ID))
		atualizado = p
		return nil
	})
	return atualizado, err
}

// Cancelar registra a desistência e purga os arquivos do cliente.
func (s *Service) Cancelar(ctx context.Context, id uint, motivo string) (*Projeto, error) {
	if motivo == "" {
		return nil, fmt.Errorf("motivo da desistência é obrigatório: %w", erros.ErrValidacao)
	}

	var atualizado *Projeto
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.Repo.BuscarPorID(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("projeto: %w", erros.ErrNaoEncontrado)
			}
			return err
		}
		if p.Status != StatusEmAndamento {
			return erros.Precondicao("projeto não está em andamento")
		}

		p.Status = StatusDesistido
		p.MotivoDesistencia = &motivo
		if err := s.Repo.Atualizar(tx, p); err != nil {
			return fmt.Errorf("atualizar projeto: %w", err)
		}
		atualizado = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.Arquivos.PurgarPastaCliente(atualizado.ClienteID); err != nil {
		s.logger.Warn("falha ao purgar arquivos do cliente",
			zap.Uint("cliente_id", atualizado.ClienteID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("purgar arquivos do cliente: %w", err)
	}
	s.logger.Info("projeto cancelado", zap.Uint("projeto_id", atualizado.ID))
	return atualizado, nil
}

// AdicionarPendencia anexa um impedimento à visita de etapa aberta.
func (s *Service) AdicionarPendencia(ctx context.Context, id uint, descricao string) (*Projeto, error) {
	if descricao == "" {
		return nil, fmt.Errorf("descrição da pendência é obrigatória: %w", erros.ErrValidacao)
	}
	return s.mutarVisitaAberta(ctx, id, func(p *Projeto, visita *EtapaVisita) error {
		visita.Pendencias = append(visita.Pendencias, Pendencia{
			Descricao:   descricao,
			DataCriacao: s.Agora(),
		})
		return nil
	})
}

// ResolverPendencia marca como resolvida a pendência no índice informado
// dentro da visita aberta.
func (s *Service) ResolverPendencia(ctx context.Context, id uint, indice int) (*Projeto, error) {
	return s.mutarVisitaAberta(ctx, id, func(p *Projeto, visita *EtapaVisita) error {
		if indice < 0 || indice >= len(visita.Pendencias) {
			return fmt.Errorf("pendência: %w", erros.ErrNaoEncontrado)
		}
		agora := s.Agora()
		visita.Pendencias[indice].Resolvida = true
		visita.Pendencias[indice].DataResolucao = &agora
		return nil
	})
}

// AdicionarObservacao anexa uma anotação do usuário à visita aberta.
func (s *Service) AdicionarObservacao(ctx context.Context, id uint, texto, usuarioNome string) (*Projeto, error) {
	if texto == "" {
		return nil, fmt.Errorf("texto da observação é obrigatório: %w", erros.ErrValidacao)
	}
	return s.mutarVisitaAberta(ctx, id, func(p *Projeto, visita *EtapaVisita) error {
		visita.Observacoes = append(visita.Observacoes, Observacao{
			Texto:       texto,
			UsuarioNome: usuarioNome,
			Data:        s.Agora(),
		})
		return nil
	})
}

// AtualizarDocumentos ajusta flags do checklist e os campos extras do
// contrato. As flags valem para o projeto inteiro, não para a etapa.
func (s *Service) AtualizarDocumentos(ctx context.Context, id uint, flags map[string]bool, numeroContrato *string, valorServico *float64) (*Projeto, error) {
	var atualizado *Projeto
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.Repo.BuscarPorID(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("projeto: %w", erros.ErrNaoEncontrado)
			}
			return err
		}
		for flag, valor := range flags {
			p.Documentos.Marcar(flag, valor)
		}
		if numeroContrato != nil {
			p.NumeroContrato = *numeroContrato
		}
		if valorServico != nil {
			p.ValorServico = valorServico
		}
		if err := s.Repo.Atualizar(tx, p); err != nil {
			return fmt.Errorf("atualizar projeto: %w", err)
		}
		atualizado = p
		return nil
	})
	return atualizado, err
}

// TemPendencia recalcula a cada leitura se algo bloqueia o projeto:
// pendência não resolvida na visita aberta ou flag exigida pela etapa
// atual ainda desmarcada. Nunca é persistido.
func (s *Service) TemPendencia(p *Projeto) bool {
	if p.Status != StatusEmAndamento {
		return false
	}
	if visita := p.VisitaAberta(); visita != nil && visita.PendenciasAbertas() > 0 {
		return true
	}
	return len(s.Tabela.Faltantes(p.EtapaAtualNome, p.Documentos.Marcado)) > 0
}

func (s *Service) mutarVisitaAberta(ctx context.Context, id uint, fn func(*Projeto, *EtapaVisita) error) (*Projeto, error) {
	var atualizado *Projeto
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.Repo.BuscarPorID(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("projeto: %w", erros.ErrNaoEncontrado)
			}
			return err
		}
		visita := p.VisitaAberta()
		if visita == nil {
			return erros.Precondicao("projeto sem visita de etapa aberta")
		}
		if err := fn(p, visita); err != nil {
			return err
		}
		if err := s.Repo.Atualizar(tx, p); err != nil {
			return fmt.Errorf("atualizar projeto: %w", err)
		}
		atualizado = p
		return nil
	})
	return atualizado, err
}
