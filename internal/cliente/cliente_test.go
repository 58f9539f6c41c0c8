package cliente

import (
	"fmt"
	"testing"

	"github.com/agrolink/api-projetos/internal/erros"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestNormalizarCPF(t *testing.T) {
	tests := []struct {
		nome     string
		entrada  string
		esperado string
		erro     error
	}{
		{nome: "com máscara", entrada: "123.456.789-01", esperado: "12345678901"},
		{nome: "só dígitos", entrada: "12345678901", esperado: "12345678901"},
		{nome: "com espaços", entrada: " 123 456 789 01 ", esperado: "12345678901"},
		{nome: "curto demais", entrada: "123456789", erro: erros.ErrValidacao},
		{nome: "longo demais", entrada: "123456789012", erro: erros.ErrValidacao},
		{nome: "vazio", entrada: "", erro: erros.ErrValidacao},
	}

	for _, tt := range tests {
		t.Run(tt.nome, func(t *testing.T) {
			limpo, err := NormalizarCPF(tt.entrada)
			if tt.erro != nil {
				assert.ErrorIs(t, err, tt.erro)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.esperado, limpo)
		})
	}
}

func TestTemProjetoAtivo(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Cliente{}))
	require.NoError(t, db.Exec(`CREATE TABLE projetos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cliente_id INTEGER,
		status TEXT,
		deleted_at DATETIME
	)`).Error)

	repo := NewRepository()
	c := Cliente{NomeCompleto: "JOAO DA SILVA", CPF: "12345678901"}
	require.NoError(t, repo.Salvar(db, &c))

	ativo, err := repo.TemProjetoAtivo(db, c.ID)
	require.NoError(t, err)
	assert.False(t, ativo)

	require.NoError(t, db.Exec(`INSERT INTO projetos (cliente_id, status) VALUES (?, 'em_andamento')`, c.ID).Error)
	ativo, err = repo.TemProjetoAtivo(db, c.ID)
	require.NoError(t, err)
	assert.True(t, ativo)

	require.NoError(t, db.Exec(`UPDATE projetos SET status = 'desistido' WHERE cliente_id = ?`, c.ID).Error)
	ativo, err = repo.TemProjetoAtivo(db, c.ID)
	require.NoError(t, err)
	assert.False(t, ativo)
}

func TestListarComBusca(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Cliente{}))

	repo := NewRepository()
	require.NoError(t, repo.Salvar(db, &Cliente{NomeCompleto: "JOAO DA SILVA", CPF: "11111111111"}))
	require.NoError(t, repo.Salvar(db, &Cliente{NomeCompleto: "MARIA SOUZA", CPF: "22222222222"}))

	porNome, err := repo.Listar(db, "joao")
	require.NoError(t, err)
	require.Len(t, porNome, 1)
	assert.Equal(t, "JOAO DA SILVA", porNome[0].NomeCompleto)

	porCPF, err := repo.Listar(db, "2222")
	require.NoError(t, err)
	require.Len(t, porCPF, 1)
	assert.Equal(t, "MARIA SOUZA", porCPF[0].NomeCompleto)

	todos, err := repo.Listar(db, "")
	require.NoError(t, err)
	assert.Len(t, todos, 2)
}
