// Package relatorio agrega os projetos para o resumo gerencial e o painel
// inicial. Os números são sempre recalculados a partir do banco.
package relatorio

import (
	"context"
	"fmt"
	"time"

	"github.com/agrolink/api-projetos/internal/cliente"
	"github.com/agrolink/api-projetos/internal/projeto"
	"github.com/agrolink/api-projetos/internal/proposta"
	"gorm.io/gorm"
)

// Filtro restringe o resumo de projetos.
type Filtro struct {
	Mes       int
	Ano       int
	EtapaID   uint
	Pendencia *bool
	ValorMin  *float64
	ValorMax  *float64
}

// Item é a linha do relatório, um projeto com os dados do cliente.
type Item struct {
	ProjetoID        uint      `json:"projetoId"`
	ClienteNome      string    `json:"clienteNome"`
	ClienteCPF       string    `json:"clienteCpf"`
	EtapaAtualNome   string    `json:"etapaAtualNome"`
	Status           string    `json:"status"`
	ValorCredito     float64   `json:"valorCredito"`
	TemPendencia     bool      `json:"temPendencia"`
	DuracaoTotalDias int       `json:"duracaoTotalDias"`
	DataInicio       time.Time `json:"dataInicio"`
}

// Resumo é o agregado devolvido pelo relatório de projetos.
type Resumo struct {
	Total        int            `json:"total"`
	PorEtapa     map[string]int `json:"porEtapa"`
	PorStatus    map[string]int `json:"porStatus"`
	ComPendencia int            `json:"comPendencia"`
	TotalCredito float64        `json:"totalCredito"`
	Itens        []Item         `json:"itens"`
}

// Dashboard são os contadores do painel inicial.
type Dashboard struct {
	ProjetosEmAndamento  int64   `json:"projetosEmAndamento"`
	ProjetosArquivados   int64   `json:"projetosArquivados"`
	ProjetosDesistidos   int64   `json:"projetosDesistidos"`
	PropostasAbertas     int64   `json:"propostasAbertas"`
	TotalClientes        int64   `json:"totalClientes"`
	CreditoEmAndamento   float64 `json:"creditoEmAndamento"`
	ProjetosComPendencia int     `json:"projetosComPendencia"`
}

type Service struct {
	DB       *gorm.DB
	Projetos *projeto.Service
	Clientes cliente.Repository

	Agora func() time.Time
}

func NewService(db *gorm.DB, projetos *projeto.Service) *Service {
	return &Service{
		DB:       db,
		Projetos: projetos,
		Clientes: cliente.NewRepository(),
		Agora:    time.Now,
	}
}

// duracaoTotalDias mede, em dias inteiros, do início do projeto até o
// arquivamento (ou até agora, se ainda anda).
func (s *Service) duracaoTotalDias(p *projeto.Projeto, agora time.Time) int {
	fim := agora
	if p.DataArquivamento != nil {
		fim = *p.DataArquivamento
	}
	return int(fim.Sub(p.DataInicio).Hours() / 24)
}

// ResumoProjetos monta o relatório aplicando os filtros recebidos.
func (s *Service) ResumoProjetos(ctx context.Context, f Filtro) (*Resumo, error) {
	db := s.DB.WithContext(ctx)
	projetos, err := s.Projetos.Repo.Listar(db, projeto.Filtro{Mes: f.Mes, Ano: f.Ano})
	if err != nil {
		return nil, fmt.Errorf("listar projetos: %w", err)
	}

	agora := s.Agora()
	resumo := &Resumo{
		PorEtapa:  map[string]int{},
		PorStatus: map[string]int{},
		Itens:     []Item{},
	}

	for i := range projetos {
		p := &projetos[i]
		if f.EtapaID != 0 && p.EtapaAtualID != f.EtapaID {
			continue
		}
		if f.ValorMin != nil && p.ValorCredito < *f.ValorMin {
			continue
		}
		if f.ValorMax != nil && p.ValorCredito > *f.ValorMax {
			continue
		}
		pendente := s.Projetos.TemPendencia(p)
		if f.Pendencia != nil && pendente != *f.Pendencia {
			continue
		}

		item := Item{
			ProjetoID:        p.ID,
			EtapaAtualNome:   p.EtapaAtualNome,
			Status:           p.Status,
			ValorCredito:     p.ValorCredito,
			TemPendencia:     pendente,
			DuracaoTotalDias: s.duracaoTotalDias(p, agora),
			DataInicio:       p.DataInicio,
		}
		if cli, err := s.Clientes.BuscarPorID(db, p.ClienteID); err == nil {
			item.ClienteNome = cli.NomeCompleto
			item.ClienteCPF = cli.CPF
		}

		resumo.Itens = append(resumo.Itens, item)
		resumo.Total++
		if p.Status == projeto.StatusEmAndamento {
			resumo.PorEtapa[p.EtapaAtualNome]++
		}
		resumo.PorStatus[p.Status]++
		if pendente {
			resumo.ComPendencia++
		}
		resumo.TotalCredito += p.ValorCredito
	}
	return resumo, nil
}

// PainelDashboard monta os contadores do painel inicial.
func (s *Service) PainelDashboard(ctx context.Context) (*Dashboard, error) {
	db := s.DB.WithContext(ctx)
	dash := &Dashboard{}

	contagens := []struct {
		status string
		dest   *int64
	}{
		{projeto.StatusEmAndamento, &dash.ProjetosEmAndamento},
		{projeto.StatusArquivado, &dash.ProjetosArquivados},
		{projeto.StatusDesistido, &dash.ProjetosDesistidos},
	}
	for _, c := range contagens {
		if err := db.Model(&projeto.Projeto{}).Where("status = ?", c.status).Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("contar projetos %s: %w", c.status, err)
		}
	}
	if err := db.Model(&proposta.Proposta{}).Where("status = ?", proposta.StatusAberta).Count(&dash.PropostasAbertas).Error; err != nil {
		return nil, fmt.Errorf("contar propostas abertas: %w", err)
	}
	if err := db.Model(&cliente.Cliente{}).Count(&dash.TotalClientes).Error; err != nil {
		return nil, fmt.Errorf("contar clientes: %w", err)
	}

	var ativos []projeto.Projeto
	if err := db.Where("status = ?", projeto.StatusEmAndamento).Find(&ativos).Error; err != nil {
		return nil, fmt.Errorf("listar projetos ativos: %w", err)
	}
	for i := range ativos {
		dash.CreditoEmAndamento += ativos[i].ValorCredito
		if s.Projetos.TemPendencia(&ativos[i]) {
			dash.ProjetosComPendencia++
		}
	}
	return dash, nil
}
