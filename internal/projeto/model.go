package projeto

import (
	"time"

	"github.com/agrolink/api-projetos/internal/requisitos"
	"gorm.io/gorm"
)

// Status possíveis de um projeto. Arquivado e desistido são terminais.
const (
	StatusEmAndamento = "em_andamento"
	StatusArquivado   = "arquivado"
	StatusDesistido   = "desistido"
)

// Pendencia é um impedimento registrado na visita de etapa aberta.
// Nunca é removida; apenas marcada como resolvida.
type Pendencia struct {
	Descricao     string     `json:"descricao"`
	Resolvida     bool       `json:"resolvida"`
	DataCriacao   time.Time  `json:"dataCriacao"`
	DataResolucao *time.Time `json:"dataResolucao,omitempty"`
}

// Observacao é uma anotação livre feita por um usuário na visita aberta.
type Observacao struct {
	Texto       string    `json:"texto"`
	UsuarioNome string    `json:"usuarioNome"`
	Data        time.Time `json:"data"`
}

// EtapaVisita registra uma passagem do projeto por uma etapa, com início,
// fim e duração em dias inteiros.
type EtapaVisita struct {
	EtapaID     uint         `json:"etapaId"`
	EtapaNome   string       `json:"etapaNome"`
	DataInicio  time.Time    `json:"dataInicio"`
	DataFim     *time.Time   `json:"dataFim,omitempty"`
	DiasDuracao int          `json:"diasDuracao"`
	Pendencias  []Pendencia  `json:"pendencias"`
	Observacoes []Observacao `json:"observacoes"`
}

// Selar fecha a visita, calculando a duração como dias inteiros decorridos.
func (v *EtapaVisita) Selar(agora time.Time) {
	if v.DataFim != nil {
		return
	}
	fim := agora
	v.DataFim = &fim
	v.DiasDuracao = int(agora.Sub(v.DataInicio).Hours() / 24)
}

// PendenciasAbertas conta as pendências ainda não resolvidas da visita.
func (v *EtapaVisita) PendenciasAbertas() int {
	n := 0
	for _, p := range v.Pendencias {
		if !p.Resolvida {
			n++
		}
	}
	return n
}

// DocumentosCheck é o checklist fixo de documentos do projeto. As flags
// persistem entre etapas e nunca são zeradas.
type DocumentosCheck struct {
	RgCnh                  bool `json:"rg_cnh"`
	ContaBancoBrasil       bool `json:"conta_banco_brasil"`
	CcuTitulo              bool `json:"ccu_titulo"`
	SaldoIagro             bool `json:"saldo_iagro"`
	Car                    bool `json:"car"`
	ProjetoImplementado    bool `json:"projeto_implementado"`
	ProjetoAssinado        bool `json:"projeto_assinado"`
	ProjetoProtocolado     bool `json:"projeto_protocolado"`
	AssinaturaAgencia      bool `json:"assinatura_agencia"`
	UploadContrato         bool `json:"upload_contrato"`
	GtaEmitido             bool `json:"gta_emitido"`
	NotaFiscalEmitida      bool `json:"nota_fiscal_emitida"`
	ComprovanteServicoPago bool `json:"comprovante_servico_pago"`
}

// Marcado informa o valor da flag identificada pelo nome do requisito.
func (d DocumentosCheck) Marcado(flag string) bool {
	switch flag {
	case requisitos.RgCnh:
		return d.RgCnh
	case requisitos.ContaBancoBrasil:
		return d.ContaBancoBrasil
	case requisitos.CcuTitulo:
		return d.CcuTitulo
	case requisitos.SaldoIagro:
		return d.SaldoIagro
	case requisitos.Car:
		return d.Car
	case requisitos.ProjetoImplementado:
		return d.ProjetoImplementado
	case requisitos.ProjetoAssinado:
		return d.ProjetoAssinado
	case requisitos.ProjetoProtocolado:
		return d.ProjetoProtocolado
	case requisitos.AssinaturaAgencia:
		return d.AssinaturaAgencia
	case requisitos.UploadContrato:
		return d.UploadContrato
	case requisitos.GtaEmitido:
		return d.GtaEmitido
	case requisitos.NotaFiscalEmitida:
		return d.NotaFiscalEmitida
	case requisitos.ComprovanteServicoPago:
		return d.ComprovanteServicoPago
	}
	return false
}

// Marcar ajusta a flag identificada pelo nome do requisito.
func (d *DocumentosCheck) Marcar(flag string, valor bool) {
	switch flag {
	case requisitos.RgCnh:
		d.RgCnh = valor
	case requisitos.ContaBancoBrasil:
		d.ContaBancoBrasil = valor
	case requisitos.CcuTitulo:
		d.CcuTitulo = valor
	case requisitos.SaldoIagro:
		d.SaldoIagro = valor
	case requisitos.Car:
		d.Car = valor
	case requisitos.ProjetoImplementado:
		d.ProjetoImplementado = valor
	case requisitos.ProjetoAssinado:
		d.ProjetoAssinado = valor
	case requisitos.ProjetoProtocolado:
		d.ProjetoProtocolado = valor
	case requisitos.AssinaturaAgencia:
		d.AssinaturaAgencia = valor
	case requisitos.UploadContrato:
		d.UploadContrato = valor
	case requisitos.GtaEmitido:
		d.GtaEmitido = valor
	case requisitos.NotaFiscalEmitida:
		d.NotaFiscalEmitida = valor
	case requisitos.ComprovanteServicoPago:
		d.ComprovanteServicoPago = valor
	}
}

// Projeto representa o acompanhamento de um pedido de crédito rural de um cliente
type Projeto struct {
	gorm.Model
	ClienteID         uint    `gorm:"not null;index" json:"clienteId"`
	EtapaAtualID      uint    `json:"etapaAtualId"`
	EtapaAtualNome    string  `json:"etapaAtualNome"`
	Status            string  `gorm:"size:50;not null;default:'em_andamento';index" json:"status"`
	MotivoDesistencia *string `json:"motivoDesistencia,omitempty"`

	// Checklist e histórico ficam embutidos em JSONB para que cada mutação
	// do projeto seja um único update atômico no banco.
	Documentos DocumentosCheck `gorm:"type:jsonb;serializer:json" json:"documentosCheck"`
	Historico  []EtapaVisita   `gorm:"type:jsonb;serializer:json" json:"historicoEtapas"`

	DataInicio       time.Time  `json:"dataInicio"`
	DataArquivamento *time.Time `json:"dataArquivamento,omitempty"`

	ValorCredito     float64  `json:"valorCredito"`
	TipoProjetoID    *uint    `json:"tipoProjetoId"`
	InstituicaoID    *uint    `json:"instituicaoId"`
	NumeroContrato   string   `json:"numeroContrato"`
	ValorServico     *float64 `json:"valorServico,omitempty"`
	PropostaOrigemID *uint    `json:"propostaOrigemId,omitempty"`

	// Versao cresce a cada gravação. O repository usa o valor lido como
	// condição do update, então uma gravação sobre estado defasado falha
	// em vez de sobrescrever o histórico de quem gravou antes.
	Versao uint `gorm:"not null;default:0" json:"-"`
}

// VisitaAberta devolve a visita de etapa ainda sem data de fim. O histórico
// mantém exatamente uma visita aberta (a última) enquanto o projeto anda.
func (p *Projeto) VisitaAberta() *EtapaVisita {
	if len(p.Historico) == 0 {
		return nil
	}
	ultima := &p.Historico[len(p.Historico)-1]
	if ultima.DataFim != nil {
		return nil
	}
	return ultima
}
