package comissao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agrolink/api-projetos/internal/cliente"
	"github.com/agrolink/api-projetos/internal/erros"
	"github.com/agrolink/api-projetos/internal/parceiro"
	"github.com/agrolink/api-projetos/internal/projeto"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	DB        *gorm.DB
	Repo      Repository
	Clientes  cliente.Repository
	Parceiros parceiro.Repository
	logger    *zap.Logger

	Agora func() time.Time
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		DB:        db,
		Repo:      NewRepository(),
		Clientes:  cliente.NewRepository(),
		Parceiros: parceiro.NewRepository(),
		logger:    logger.Named("comissao_service"),
		Agora:     time.Now,
	}
}

// ProjetoArquivado é o gancho chamado dentro da transação de arquivamento.
// Gera a comissão pendente quando o cliente foi indicado por um parceiro e
// o projeto tem valor de serviço registrado.
func (s *Service) ProjetoArquivado(tx *gorm.DB, p *projeto.Projeto) error {
	cli, err := s.Clientes.BuscarPorID(tx, p.ClienteID)
	if err != nil {
		return fmt.Errorf("buscar cliente: %w", err)
	}
	if cli.ParceiroID == nil || p.ValorServico == nil {
		return nil
	}

	if _, err := s.Repo.BuscarPorProjeto(tx, p.ID); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("buscar comissão do projeto: %w", err)
	}

	parc, err := s.Parceiros.BuscarPorID(tx, *cli.ParceiroID)
	if err != nil {
		return fmt.Errorf("buscar parceiro: %w", err)
	}

	c := &Comissao{
		ProjetoID:     p.ID,
		ParceiroID:    parc.ID,
		Percentual:    parc.Comissao,
		ValorBase:     *p.ValorServico,
		ValorComissao: *p.ValorServico * parc.Comissao / 100,
		Status:        StatusPendente,
	}
	if err := s.Repo.Salvar(tx, c); err != nil {
		return fmt.Errorf("salvar comissão: %w", err)
	}
	s.logger.Info("comissão gerada",
		zap.Uint("projeto_id", p.ID),
		zap.Uint("parceiro_id", parc.ID),
		zap.Float64("valor", c.ValorComissao),
	)
	return nil
}

// MarcarPaga registra o pagamento de uma comissão pendente.
func (s *Service) MarcarPaga(ctx context.Context, id uint) (*Comissao, error) {
	var atualizada *Comissao
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := s.Repo.BuscarPorID(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("comissão: %w", erros.ErrNaoEncontrado)
			}
			return err
		}
		if c.Status == StatusPaga {
			return fmt.Errorf("comissão já foi paga: %w", erros.ErrConflito)
		}
		agora := s.Agora()
		c.Status = StatusPaga
		c.DataPagamento = &agora
		if err := s.Repo.Atualizar(tx, c); err != nil {
			return fmt.Errorf("atualizar comissão: %w", err)
		}
		atualizada = c
		return nil
	})
	return atualizada, err
}
