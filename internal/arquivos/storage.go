// Package arquivos guarda os documentos enviados por cliente em disco local,
// uma pasta por cliente sob o diretório de uploads.
package arquivos

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TamanhoMaximo limita cada upload a 10 MB.
const TamanhoMaximo = 10 << 20

// Arquivo descreve um documento armazenado.
type Arquivo struct {
	Nome         string    `json:"nome"`
	NomeOriginal string    `json:"nomeOriginal"`
	Tamanho      int64     `json:"tamanho"`
	EnviadoEm    time.Time `json:"enviadoEm"`
}

type Storage struct {
	baseDir string
	logger  *zap.Logger
}

func NewStorage(baseDir string, logger *zap.Logger) (*Storage, error) {
	if baseDir == "" {
		baseDir = "uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("criar diretório de uploads: %w", err)
	}
	return &Storage{baseDir: baseDir, logger: logger.Named("arquivos")}, nil
}

func (s *Storage) pastaCliente(clienteID uint) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("cliente_%d", clienteID))
}

// Salvar grava o conteúdo com um prefixo aleatório no nome, preservando o
// nome original depois do prefixo.
func (s *Storage) Salvar(clienteID uint, nomeOriginal string, conteudo io.Reader) (*Arquivo, error) {
	pasta := s.pastaCliente(clienteID)
	if err := os.MkdirAll(pasta, 0o755); err != nil {
		return nil, fmt.Errorf("criar pasta do cliente: %w", err)
	}

	nome := uuid.NewString() + "_" + filepath.Base(nomeOriginal)
	destino := filepath.Join(pasta, nome)

	f, err := os.Create(destino)
	if err != nil {
		return nil, fmt.Errorf("criar arquivo: %w", err)
	}
	defer f.Close()

	tamanho, err := io.Copy(f, conteudo)
	if err != nil {
		os.Remove(destino)
		return nil, fmt.Errorf("gravar arquivo: %w", err)
	}

	s.logger.Info("arquivo salvo",
		zap.Uint("cliente_id", clienteID),
		zap.String("nome", nome),
		zap.Int64("tamanho", tamanho),
	)
	return &Arquivo{
		Nome:         nome,
		NomeOriginal: filepath.Base(nomeOriginal),
		Tamanho:      tamanho,
		EnviadoEm:    time.Now(),
	}, nil
}

// Listar devolve os arquivos do cliente em ordem de envio.
func (s *Storage) Listar(clienteID uint) ([]Arquivo, error) {
	entradas, err := os.ReadDir(s.pastaCliente(clienteID))
	if os.IsNotExist(err) {
		return []Arquivo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ler pasta do cliente: %w", err)
	}

	arquivos := []Arquivo{}
	for _, entrada := range entradas {
		if entrada.IsDir() {
			continue
		}
		info, err := entrada.Info()
		if err != nil {
			continue
		}
		nome := entrada.Name()
		original := nome
		if idx := strings.Index(nome, "_"); idx >= 0 {
			original = nome[idx+1:]
		}
		arquivos = append(arquivos, Arquivo{
			Nome:         nome,
			NomeOriginal: original,
			Tamanho:      info.Size(),
			EnviadoEm:    info.ModTime(),
		})
	}
	sort.Slice(arquivos, func(i, j int) bool {
		return arquivos[i].EnviadoEm.Before(arquivos[j].EnviadoEm)
	})
	return arquivos, nil
}

// Abrir devolve o arquivo para download. O nome é reduzido à base para
// impedir path traversal.
func (s *Storage) Abrir(clienteID uint, nome string) (*os.File, error) {
	return os.Open(filepath.Join(s.pastaCliente(clienteID), filepath.Base(nome)))
}

// Remover apaga um arquivo específico do cliente.
func (s *Storage) Remover(clienteID uint, nome string) error {
	return os.Remove(filepath.Join(s.pastaCliente(clienteID), filepath.Base(nome)))
}

// PurgarPastaCliente apaga todos os arquivos e recria a pasta vazia.
// É idempotente: purgar uma pasta inexistente só a cria.
func (s *Storage) PurgarPastaCliente(clienteID uint) error {
	pasta := s.pastaCliente(clienteID)
	if err := os.RemoveAll(pasta); err != nil {
		return fmt.Errorf("remover pasta do cliente: %w", err)
	}
	if err := os.MkdirAll(pasta, 0o755); err != nil {
		return fmt.Errorf("recriar pasta do cliente: %w", err)
	}
	s.logger.Info("pasta do cliente purgada", zap.Uint("cliente_id", clienteID))
	return nil
}

// RemoverPastaCliente apaga a pasta de vez, usada quando o cliente é excluído.
func (s *Storage) RemoverPastaCliente(clienteID uint) error {
	return os.RemoveAll(s.pastaCliente(clienteID))
}
