package proposta

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agrolink/api-projetos/internal/cliente"
	"github.com/agrolink/api-projetos/internal/erros"
	"github.com/agrolink/api-projetos/internal/instituicao"
	"github.com/agrolink/api-projetos/internal/projeto"
	"github.com/agrolink/api-projetos/internal/tipoprojeto"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ClienteNovo carrega os dados mínimos para cadastrar o cliente junto
// com a proposta quando ele ainda não existe.
type ClienteNovo struct {
	Nome     string
	CPF      string
	Telefone string
}

// CriarInput agrupa os dados de abertura de uma proposta.
type CriarInput struct {
	ClienteID     *uint
	ClienteNovo   *ClienteNovo
	TipoProjetoID *uint
	InstituicaoID *uint
	ValorCredito  float64
}

type Service struct {
	DB       *gorm.DB
	Repo     Repository
	Clientes cliente.Repository
	Projetos *projeto.Service
	logger   *zap.Logger

	Agora func() time.Time
}

func NewService(db *gorm.DB, projetos *projeto.Service, logger *zap.Logger) *Service {
	return &Service{
		DB:       db,
		Repo:     NewRepository(),
		Clientes: cliente.NewRepository(),
		Projetos: projetos,
		logger:   logger.Named("proposta_service"),
		Agora:    time.Now,
	}
}

// Criar abre uma proposta. Quando vem um cliente novo, o cadastro é por CPF:
// se já existir cliente com aquele CPF, a proposta é anexada a ele.
func (s *Service) Criar(ctx context.Context, input CriarInput) (*Proposta, error) {
	if input.ValorCredito <= 0 {
		return nil, fmt.Errorf("valor de crédito deve ser positivo: %w", erros.ErrValidacao)
	}

	var prop *Proposta
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		clienteID, err := s.resolverCliente(tx, input)
		if err != nil {
			return err
		}

		if input.TipoProjetoID != nil {
			var tipo tipoprojeto.TipoProjeto
			if err := tx.First(&tipo, *input.TipoProjetoID).Error; err != nil {
				return fmt.Errorf("tipo de projeto: %w", erros.ErrNaoEncontrado)
			}
		}
		if input.InstituicaoID != nil {
			var inst instituicao.Instituicao
			if err := tx.First(&inst, *input.InstituicaoID).Error; err != nil {
				return fmt.Errorf("instituição financeira: %w", erros.ErrNaoEncontrado)
			}
		}

		prop = &Proposta{
			ClienteID:     clienteID,
			TipoProjetoID: input.TipoProjetoID,
			InstituicaoID: input.InstituicaoID,
			ValorCredito:  input.ValorCredito,
			Status:        StatusAberta,
		}
		if err := s.Repo.Salvar(tx, prop); err != nil {
			return fmt.Errorf("salvar proposta: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("proposta criada",
		zap.Uint("proposta_id", prop.ID),
		zap.Uint("cliente_id", prop.ClienteID),
	)
	return prop, nil
}

func (s *Service) resolverCliente(tx *gorm.DB, input CriarInput) (uint, error) {
	if input.ClienteID != nil {
		cli, err := s.Clientes.BuscarPorID(tx, *input.ClienteID)
		if err != nil {
			return 0, fmt.Errorf("cliente: %w", erros.ErrNaoEncontrado)
		}
		return cli.ID, nil
	}
	if input.ClienteNovo == nil {
		return 0, fmt.Errorf("informe clienteId ou os dados do cliente novo: %w", erros.ErrValidacao)
	}

	cpf, err := cliente.NormalizarCPF(input.ClienteNovo.CPF)
	if err != nil {
		return 0, fmt.Errorf("CPF inválido: %w", err)
	}
	if input.ClienteNovo.Nome == "" {
		return 0, fmt.Errorf("nome do cliente é obrigatório: %w", erros.ErrValidacao)
	}

	existente, err := s.Clientes.BuscarPorCPF(tx, cpf)
	if err == nil {
		// Upsert por CPF: o cadastro existente é atualizado, nunca duplicado.
		existente.NomeCompleto = strings.ToUpper(input.ClienteNovo.Nome)
		if input.ClienteNovo.Telefone != "" {
			existente.Telefone = input.ClienteNovo.Telefone
		}
		if err := s.Clientes.Atualizar(tx, existente); err != nil {
			return 0, fmt.Errorf("atualizar cliente: %w", err)
		}
		return existente.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("buscar cliente por CPF: %w", err)
	}

	novo := &cliente.Cliente{
		NomeCompleto: strings.ToUpper(input.ClienteNovo.Nome),
		CPF:          cpf,
		Telefone:     input.ClienteNovo.Telefone,
	}
	if err := s.Clientes.Salvar(tx, novo); err != nil {
		return 0, fmt.Errorf("cadastrar cliente: %w", err)
	}
	return novo.ID, nil
}

// Converter transforma uma proposta aberta em projeto. A criação do projeto
// e o fechamento da proposta acontecem na mesma transação, e o fechamento é
// condicional ao status para que a conversão não ocorra duas vezes.
func (s *Service) Converter(ctx context.Context, id uint) (*Proposta, error) {
	var convertida *Proposta
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prop, err := s.Repo.BuscarPorID(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("proposta: %w", erros.ErrNaoEncontrado)
			}
			return err
		}
		if prop.Status != StatusAberta {
			return fmt.Errorf("proposta não está aberta: %w", erros.ErrConflito)
		}

		p, err := s.Projetos.CriarTx(tx, projeto.CriarInput{
			ClienteID:        prop.ClienteID,
			ValorCredito:     prop.ValorCredito,
			TipoProjetoID:    prop.TipoProjetoID,
			InstituicaoID:    prop.InstituicaoID,
			PropostaOrigemID: &prop.ID,
		})
		if err != nil {
			return err
		}

		ok, err := s.Repo.MarcarConvertida(tx, prop.ID, p.ID)
		if err != nil {
			return fmt.Errorf("fechar proposta: %w", err)
		}
		if !ok {
			return fmt.Errorf("proposta já foi convertida ou encerrada: %w", erros.ErrConflito)
		}

		prop.Status = StatusConvertida
		prop.ProjetoID = &p.ID
		convertida = prop
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("proposta convertida em projeto",
		zap.Uint("proposta_id", convertida.ID),
		zap.Uintp("projeto_id", convertida.ProjetoID),
	)
	return convertida, nil
}

// Desistir encerra uma proposta aberta registrando o motivo.
func (s *Service) Desistir(ctx context.Context, id uint, motivo string) (*Proposta, error) {
	if motivo == "" {
		return nil, fmt.Errorf("motivo da desistência é obrigatório: %w", erros.ErrValidacao)
	}
	var atualizada *Proposta
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prop, err := s.Repo.BuscarPorID(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("proposta: %w", erros.ErrNaoEncontrado)
			}
			return err
		}
		if prop.Status != StatusAberta {
			return fmt.Errorf("proposta não está aberta: %w", erros.ErrConflito)
		}
		prop.Status = StatusDesistida
		prop.MotivoDesistencia = &motivo
		if err := s.Repo.Atualizar(tx, prop); err != nil {
			return fmt.Errorf("atualizar proposta: %w", err)
		}
		atualizada = prop
		return nil
	})
	return atualizada, err
}

// Deletar remove uma proposta que ainda não virou projeto.
func (s *Service) Deletar(ctx context.Context, id uint) error {
	prop, err := s.Repo.BuscarPorID(s.DB.WithContext(ctx), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("proposta: %w", erros.ErrNaoEncontrado)
		}
		return err
	}
	if prop.Status == StatusConvertida {
		return fmt.Errorf("proposta convertida não pode ser removida: %w", erros.ErrConflito)
	}
	return s.Repo.Deletar(s.DB.WithContext(ctx), id)
}
