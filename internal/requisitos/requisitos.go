// Package requisitos mantém a tabela que liga cada etapa do funil aos
// itens do checklist de documentos que precisam estar marcados antes de
// o projeto sair dela. A tabela é injetável para permitir teste e ajuste
// sem tocar na máquina de estados.
package requisitos

import "strings"

// Identificadores dos itens do checklist (conjunto fixo, não extensível pelo usuário).
const (
	RgCnh                  = "rg_cnh"
	ContaBancoBrasil       = "conta_banco_brasil"
	CcuTitulo              = "ccu_titulo"
	SaldoIagro             = "saldo_iagro"
	Car                    = "car"
	ProjetoImplementado    = "projeto_implementado"
	ProjetoAssinado        = "projeto_assinado"
	ProjetoProtocolado     = "projeto_protocolado"
	AssinaturaAgencia      = "assinatura_agencia"
	UploadContrato         = "upload_contrato"
	GtaEmitido             = "gta_emitido"
	NotaFiscalEmitida      = "nota_fiscal_emitida"
	ComprovanteServicoPago = "comprovante_servico_pago"
)

// Rotulos traduz cada flag para o texto exibido ao usuário.
var Rotulos = map[string]string{
	RgCnh:                  "RG / CNH",
	ContaBancoBrasil:       "Conta Banco do Brasil",
	CcuTitulo:              "CCU / Título / Contrato / Escritura",
	SaldoIagro:             "Saldo IAGRO",
	Car:                    "CAR",
	ProjetoImplementado:    "Projeto Implementado",
	ProjetoAssinado:        "Projeto Assinado",
	ProjetoProtocolado:     "Projeto Protocolado",
	AssinaturaAgencia:      "Assinatura na Agência",
	UploadContrato:         "Upload Contrato",
	GtaEmitido:             "GTA Emitido",
	NotaFiscalEmitida:      "Nota Fiscal Emitida",
	ComprovanteServicoPago: "Comprovante de Serviço Pago",
}

// Tabela mapeia nome de etapa -> flags que bloqueiam a saída dela.
type Tabela map[string][]string

// Padrao devolve a tabela usada em produção, alinhada ao catálogo de
// etapas semeado na inicialização.
func Padrao() Tabela {
	return Tabela{
		"Coleta de Documentos":       {RgCnh, ContaBancoBrasil, CcuTitulo, SaldoIagro, Car},
		"Desenvolvimento do Projeto": {ProjetoImplementado},
		"Coletar Assinaturas":        {ProjetoAssinado},
		"Protocolo CENOP":            {ProjetoProtocolado},
		"Instrumento de Crédito":     {AssinaturaAgencia, UploadContrato},
		"GTA e Nota Fiscal":          {GtaEmitido, NotaFiscalEmitida},
		"Projeto Creditado":          {ComprovanteServicoPago},
	}
}

// FlagsDaEtapa devolve as flags exigidas pela etapa. Aceita correspondência
// por substring porque etapas cadastradas manualmente costumam variar o nome
// ("Coleta de Documentos - BB").
func (t Tabela) FlagsDaEtapa(etapaNome string) []string {
	if flags, ok := t[etapaNome]; ok {
		return flags
	}
	for nome, flags := range t {
		if strings.Contains(etapaNome, nome) {
			return flags
		}
	}
	return nil
}

// Faltantes devolve os rótulos das flags exigidas pela etapa que 'marcado'
// reporta como falsas.
func (t Tabela) Faltantes(etapaNome string, marcado func(flag string) bool) []string {
	var faltando []string
	for _, flag := range t.FlagsDaEtapa(etapaNome) {
		if !marcado(flag) {
			rotulo, ok := Rotulos[flag]
			if !ok {
				rotulo = flag
			}
			faltando = append(faltando, rotulo)
		}
	}
	return faltando
}
