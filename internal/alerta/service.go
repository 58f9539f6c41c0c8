// Package alerta emite lembretes de follow-up para clientes sem projeto em
// andamento e propostas que continuam abertas. Cada alvo recebe no máximo
// três alertas, com intervalo mínimo de três dias entre eles.
package alerta

import (
	"context"
	"fmt"
	"time"

	"github.com/agrolink/api-projetos/internal/cliente"
	"github.com/agrolink/api-projetos/internal/projeto"
	"github.com/agrolink/api-projetos/internal/proposta"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// MaxAlertas é o teto de alertas por cliente ou proposta.
	MaxAlertas = 3
	// Intervalo é o espaçamento mínimo entre dois alertas do mesmo alvo.
	Intervalo = 72 * time.Hour
)

// Tipos de alerta emitidos.
const (
	TipoClienteSemProjeto = "cliente_sem_projeto"
	TipoPropostaAberta    = "proposta_aberta"
)

// Alerta é o lembrete devolvido ao frontend.
type Alerta struct {
	Tipo            string `json:"tipo"`
	ClienteID       uint   `json:"clienteId"`
	ClienteNome     string `json:"clienteNome"`
	ClienteTelefone string `json:"clienteTelefone"`
	PropostaID      *uint  `json:"propostaId,omitempty"`
	Dias            int    `json:"dias"`
	AlertaCount     int    `json:"alertaCount"`
}

// Notificador repassa os alertas emitidos para um canal externo.
type Notificador interface {
	NotificarAlertas(ctx context.Context, alertas []Alerta)
}

type Service struct {
	DB     *gorm.DB
	logger *zap.Logger

	// Notificador é opcional; nil desliga o repasse.
	Notificador Notificador

	Agora func() time.Time
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{DB: db, logger: logger.Named("alerta_service"), Agora: time.Now}
}

// clientesElegiveis devolve os clientes sem projeto em andamento e sem
// proposta aberta (estes já são cobertos pelo alerta de proposta) cujo
// rastreio de alertas ainda permite emissão.
func (s *Service) clientesElegiveis(db *gorm.DB, limite time.Time) ([]cliente.Cliente, error) {
	var clientes []cliente.Cliente
	err := db.
		Where("alerta_count < ?", MaxAlertas).
		Where("ultimo_alerta_em IS NULL OR ultimo_alerta_em <= ?", limite).
		Where("NOT EXISTS (SELECT 1 FROM projetos WHERE projetos.cliente_id = clientes.id AND projetos.status = ? AND projetos.deleted_at IS NULL)", projeto.StatusEmAndamento).
		Where("NOT EXISTS (SELECT 1 FROM proposta WHERE proposta.cliente_id = clientes.id AND proposta.status = ? AND proposta.deleted_at IS NULL)", proposta.StatusAberta).
		Order("created_at").
		Find(&clientes).Error
	return clientes, err
}

func (s *Service) propostasElegiveis(db *gorm.DB, limite time.Time) ([]proposta.Proposta, error) {
	var propostas []proposta.Proposta
	err := db.
		Where("status = ?", proposta.StatusAberta).
		Where("alerta_count < ?", MaxAlertas).
		Where("ultimo_alerta_em IS NULL OR ultimo_alerta_em <= ?", limite).
		Order("created_at").
		Find(&propostas).Error
	return propostas, err
}

func dias(desde, agora time.Time) int {
	return int(agora.Sub(desde).Hours() / 24)
}

// Pendentes lista os alertas que disparariam agora, sem consumir nada.
func (s *Service) Pendentes(ctx context.Context) ([]Alerta, error) {
	db := s.DB.WithContext(ctx)
	agora := s.Agora()
	limite := agora.Add(-Intervalo)

	alertas := []Alerta{}

	clientes, err := s.clientesElegiveis(db, limite)
	if err != nil {
		return nil, fmt.Errorf("clientes elegíveis: %w", err)
	}
	for _, c := range clientes {
		alertas = append(alertas, Alerta{
			Tipo:            TipoClienteSemProjeto,
			ClienteID:       c.ID,
			ClienteNome:     c.NomeCompleto,
			ClienteTelefone: c.Telefone,
			Dias:            dias(c.CreatedAt, agora),
			AlertaCount:     c.AlertaCount,
		})
	}

	propostas, err := s.propostasElegiveis(db, limite)
	if err != nil {
		return nil, fmt.Errorf("propostas elegíveis: %w", err)
	}
	for _, p := range propostas {
		a := Alerta{
			Tipo:        TipoPropostaAberta,
			ClienteID:   p.ClienteID,
			Dias:        dias(p.CreatedAt, agora),
			AlertaCount: p.AlertaCount,
		}
		id := p.ID
		a.PropostaID = &id
		if cli, err := s.buscarCliente(db, p.ClienteID); err == nil {
			a.ClienteNome = cli.NomeCompleto
			a.ClienteTelefone = cli.Telefone
		}
		alertas = append(alertas, a)
	}
	return alertas, nil
}

// Consumir emite os alertas devidos agora. Cada emissão é um update
// condicional: se outra requisição consumiu o mesmo alvo primeiro, ele
// simplesmente fica de fora da resposta.
func (s *Service) Consumir(ctx context.Context) ([]Alerta, error) {
	db := s.DB.WithContext(ctx)
	agora := s.Agora()
	limite := agora.Add(-Intervalo)

	emitidos := []Alerta{}

	clientes, err := s.clientesElegiveis(db, limite)
	if err != nil {
		return nil, fmt.Errorf("clientes elegíveis: %w", err)
	}
	for _, c := range clientes {
		res := db.Model(&cliente.Cliente{}).
			Where("id = ? AND alerta_count < ?", c.ID, MaxAlertas).
			Where("ultimo_alerta_em IS NULL OR ultimo_alerta_em <= ?", limite).
			Updates(map[string]interface{}{
				"alerta_count":     gorm.Expr("alerta_count + 1"),
				"ultimo_alerta_em": agora,
			})
		if res.Error != nil {
			return nil, fmt.Errorf("consumir alerta do cliente %d: %w", c.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			continue
		}
		emitidos = append(emitidos, Alerta{
			Tipo:            TipoClienteSemProjeto,
			ClienteID:       c.ID,
			ClienteNome:     c.NomeCompleto,
			ClienteTelefone: c.Telefone,
			Dias:            dias(c.CreatedAt, agora),
			AlertaCount:     c.AlertaCount + 1,
		})
	}

	propostas, err := s.propostasElegiveis(db, limite)
	if err != nil {
		return nil, fmt.Errorf("propostas elegíveis: %w", err)
	}
	for _, p := range propostas {
		res := db.Model(&proposta.Proposta{}).
			Where("id = ? AND status = ? AND alerta_count < ?", p.ID, proposta.StatusAberta, MaxAlertas).
			Where("ultimo_alerta_em IS NULL OR ultimo_alerta_em <= ?", limite).
			Updates(map[string]interface{}{
				"alerta_count":     gorm.Expr("alerta_count + 1"),
				"ultimo_alerta_em": agora,
			})
		if res.Error != nil {
			return nil, fmt.Errorf("consumir alerta da proposta %d: %w", p.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			continue
		}
		a := Alerta{
			Tipo:        TipoPropostaAberta,
			ClienteID:   p.ClienteID,
			Dias:        dias(p.CreatedAt, agora),
			AlertaCount: p.AlertaCount + 1,
		}
		id := p.ID
		a.PropostaID = &id
		if cli, err := s.buscarCliente(db, p.ClienteID); err == nil {
			a.ClienteNome = cli.NomeCompleto
			a.ClienteTelefone = cli.Telefone
		}
		emitidos = append(emitidos, a)
	}

	if len(emitidos) > 0 {
		s.logger.Info("alertas emitidos", zap.Int("quantidade", len(emitidos)))
		if s.Notificador != nil {
			s.Notificador.NotificarAlertas(ctx, emitidos)
		}
	}
	return emitidos, nil
}

// LimparTodos silencia todos os alvos elegíveis cravando o contador no teto.
func (s *Service) LimparTodos(ctx context.Context) error {
	db := s.DB.WithContext(ctx)
	if err := db.Model(&cliente.Cliente{}).
		Where("alerta_count < ?", MaxAlertas).
		Update("alerta_count", MaxAlertas).Error; err != nil {
		return fmt.Errorf("silenciar clientes: %w", err)
	}
	if err := db.Model(&proposta.Proposta{}).
		Where("status = ? AND alerta_count < ?", proposta.StatusAberta, MaxAlertas).
		Update("alerta_count", MaxAlertas).Error; err != nil {
		return fmt.Errorf("silenciar propostas: %w", err)
	}
	s.logger.Info("todos os alertas silenciados")
	return nil
}

func (s *Service) buscarCliente(db *gorm.DB, id uint) (*cliente.Cliente, error) {
	var c cliente.Cliente
	err := db.First(&c, id).Error
	return &c, err
}
