package main

import (
	"net/http"
	"os"

	"github.com/agrolink/api-projetos/internal/alerta"
	"github.com/agrolink/api-projetos/internal/arquivos"
	"github.com/agrolink/api-projetos/internal/auth"
	"github.com/agrolink/api-projetos/internal/cliente"
	"github.com/agrolink/api-projetos/internal/comissao"
	"github.com/agrolink/api-projetos/internal/etapa"
	"github.com/agrolink/api-projetos/internal/instituicao"
	"github.com/agrolink/api-projetos/internal/notificacao"
	"github.com/agrolink/api-projetos/internal/parceiro"
	"github.com/agrolink/api-projetos/internal/projeto"
	"github.com/agrolink/api-projetos/internal/proposta"
	"github.com/agrolink/api-projetos/internal/relatorio"
	"github.com/agrolink/api-projetos/internal/tipoprojeto"
	"github.com/agrolink/api-projetos/internal/usuario"
	"github.com/agrolink/api-projetos/internal/utils"
	"github.com/agrolink/api-projetos/internal/utils/db"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// etapasPadrao é o funil criado no primeiro boot, na ordem em que todo
// projeto o percorre.
var etapasPadrao = []etapa.Etapa{
	{Nome: "Cadastro", Ordem: 1, Ativo: true},
	{Nome: "Coleta de Documentos", Ordem: 2, Ativo: true},
	{Nome: "Desenvolvimento do Projeto", Ordem: 3, Ativo: true},
	{Nome: "Coletar Assinaturas", Ordem: 4, Ativo: true},
	{Nome: "Protocolo CENOP", Ordem: 5, Ativo: true},
	{Nome: "Instrumento de Crédito", Ordem: 6, Ativo: true},
	{Nome: "GTA e Nota Fiscal", Ordem: 7, Ativo: true},
	{Nome: "Projeto Creditado", Ordem: 8, Ativo: true},
}

func seedEtapas(database *gorm.DB) error {
	var count int64
	if err := database.Model(&etapa.Etapa{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return database.Create(&etapasPadrao).Error
}

func seedUsuarioMaster(database *gorm.DB) error {
	var count int64
	if err := database.Model(&usuario.Usuario{}).Where("role = ?", auth.RoleMaster).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	senha := os.Getenv("MASTER_SENHA")
	if senha == "" {
		senha = "master123"
	}
	email := os.Getenv("MASTER_EMAIL")
	if email == "" {
		email = "master@agrolink.com"
	}
	hash, err := utils.HashSenha(senha)
	if err != nil {
		return err
	}
	return database.Create(&usuario.Usuario{
		Nome:  "Master",
		Email: email,
		Senha: hash,
		Role:  auth.RoleMaster,
		Ativo: true,
	}).Error
}

func main() {
	godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	database, err := db.GetDB()
	if err != nil {
		logger.Fatal("conectar no banco", zap.Error(err))
	}

	if err := database.AutoMigrate(
		&usuario.Usuario{},
		&parceiro.Parceiro{},
		&cliente.Cliente{},
		&etapa.Etapa{},
		&projeto.Projeto{},
		&proposta.Proposta{},
		&comissao.Comissao{},
	); err != nil {
		logger.Fatal("migrar tabelas", zap.Error(err))
	}
	if err := tipoprojeto.Migrate(database); err != nil {
		logger.Fatal("migrar tipos de projeto", zap.Error(err))
	}
	if err := instituicao.Migrate(database); err != nil {
		logger.Fatal("migrar instituições", zap.Error(err))
	}

	if err := seedEtapas(database); err != nil {
		logger.Fatal("criar etapas padrão", zap.Error(err))
	}
	if err := seedUsuarioMaster(database); err != nil {
		logger.Fatal("criar usuário master", zap.Error(err))
	}

	storage, err := arquivos.NewStorage(os.Getenv("UPLOAD_DIR"), logger)
	if err != nil {
		logger.Fatal("preparar diretório de uploads", zap.Error(err))
	}

	comissaoService := comissao.NewService(database, logger)
	projetoService := projeto.NewService(database, storage, logger)
	projetoService.PosArquivamento = comissaoService
	propostaService := proposta.NewService(database, projetoService, logger)
	alertaService := alerta.NewService(database, logger)
	alertaService.Notificador = notificacao.NewWebhookAlertas(os.Getenv("WEBHOOK_ALERTAS_URL"), logger)
	relatorioService := relatorio.NewService(database, projetoService)

	usuarioHandler := usuario.NewHandler(database)
	parceiroHandler := parceiro.NewHandler(database)
	clienteHandler := cliente.NewHandler(database, storage)
	etapaHandler := etapa.NewHandler(database)
	tipoProjetoHandler := tipoprojeto.NewHandler(database)
	instituicaoHandler := instituicao.NewHandler(database)
	projetoHandler := projeto.NewHandler(database, projetoService)
	propostaHandler := proposta.NewHandler(database, propostaService)
	alertaHandler := alerta.NewHandler(alertaService)
	relatorioHandler := relatorio.NewHandler(relatorioService)
	comissaoHandler := comissao.NewHandler(database, comissaoService)
	arquivosHandler := arquivos.NewHandler(storage)

	r := mux.NewRouter()
	r.HandleFunc("/login", usuarioHandler.Login).Methods("POST")

	api := r.NewRoute().Subrouter()
	api.Use(auth.MiddlewareAutenticacao)

	gestao := api.NewRoute().Subrouter()
	gestao.Use(auth.RequireGestao)

	// Usuários
	api.HandleFunc("/me", usuarioHandler.Me).Methods("GET")
	gestao.HandleFunc("/usuarios", usuarioHandler.Criar).Methods("POST")
	gestao.HandleFunc("/usuarios", usuarioHandler.Listar).Methods("GET")
	gestao.HandleFunc("/usuarios/{id}", usuarioHandler.Atualizar).Methods("PUT")
	gestao.HandleFunc("/usuarios/{id}/resetar-senha", usuarioHandler.ResetarSenha).Methods("POST")
	gestao.HandleFunc("/usuarios/{id}", usuarioHandler.Deletar).Methods("DELETE")

	// Parceiros
	api.HandleFunc("/parceiros", parceiroHandler.Listar).Methods("GET")
	gestao.HandleFunc("/parceiros", parceiroHandler.Criar).Methods("POST")
	gestao.HandleFunc("/parceiros/{id}", parceiroHandler.Atualizar).Methods("PUT")
	gestao.HandleFunc("/parceiros/{id}", parceiroHandler.Deletar).Methods("DELETE")

	// Clientes
	api.HandleFunc("/clientes", clienteHandler.Criar).Methods("POST")
	api.HandleFunc("/clientes", clienteHandler.Listar).Methods("GET")
	api.HandleFunc("/clientes/{id}", clienteHandler.BuscarPorID).Methods("GET")
	api.HandleFunc("/clientes/{id}", clienteHandler.Atualizar).Methods("PUT")
	gestao.HandleFunc("/clientes/{id}", clienteHandler.Deletar).Methods("DELETE")

	// Arquivos dos clientes
	api.HandleFunc("/clientes/{id}/arquivos", arquivosHandler.Upload).Methods("POST")
	api.HandleFunc("/clientes/{id}/arquivos", arquivosHandler.Listar).Methods("GET")
	api.HandleFunc("/clientes/{id}/arquivos/{nome}", arquivosHandler.Download).Methods("GET")
	api.HandleFunc("/clientes/{id}/arquivos/{nome}", arquivosHandler.Deletar).Methods("DELETE")

	// Etapas do funil
	api.HandleFunc("/etapas", etapaHandler.Listar).Methods("GET")
	gestao.HandleFunc("/etapas", etapaHandler.Criar).Methods("POST")
	gestao.HandleFunc("/etapas/{id}", etapaHandler.Atualizar).Methods("PUT")
	gestao.HandleFunc("/etapas/{id}", etapaHandler.Deletar).Methods("DELETE")

	// Cadastros de apoio
	api.HandleFunc("/tipos-projeto", tipoProjetoHandler.Listar).Methods("GET")
	gestao.HandleFunc("/tipos-projeto", tipoProjetoHandler.Criar).Methods("POST")
	gestao.HandleFunc("/tipos-projeto/{id}", tipoProjetoHandler.Atualizar).Methods("PUT")
	gestao.HandleFunc("/tipos-projeto/{id}", tipoProjetoHandler.Deletar).Methods("DELETE")
	api.HandleFunc("/instituicoes-financeiras", instituicaoHandler.Listar).Methods("GET")
	gestao.HandleFunc("/instituicoes-financeiras", instituicaoHandler.Criar).Methods("POST")
	gestao.HandleFunc("/instituicoes-financeiras/{id}", instituicaoHandler.Atualizar).Methods("PUT")
	gestao.HandleFunc("/instituicoes-financeiras/{id}", instituicaoHandler.Deletar).Methods("DELETE")

	// Projetos
	api.HandleFunc("/projetos", projetoHandler.Criar).Methods("POST")
	api.HandleFunc("/projetos", projetoHandler.Listar).Methods("GET")
	api.HandleFunc("/projetos/{id}", projetoHandler.BuscarPorID).Methods("GET")
	api.HandleFunc("/projetos/{id}/avancar", projetoHandler.Avancar).Methods("POST")
	api.HandleFunc("/projetos/{id}/arquivar", projetoHandler.Arquivar).Methods("POST")
	api.HandleFunc("/projetos/{id}/cancelar", projetoHandler.Cancelar).Methods("POST")
	api.HandleFunc("/projetos/{id}/pendencias", projetoHandler.AdicionarPendencia).Methods("POST")
	api.HandleFunc("/projetos/{id}/pendencias/{indice}/resolver", projetoHandler.ResolverPendencia).Methods("PUT")
	api.HandleFunc("/projetos/{id}/observacoes", projetoHandler.AdicionarObservacao).Methods("POST")
	api.HandleFunc("/projetos/{id}/documentos", projetoHandler.AtualizarDocumentos).Methods("PUT")

	// Propostas
	api.HandleFunc("/propostas", propostaHandler.Criar).Methods("POST")
	api.HandleFunc("/propostas", propostaHandler.Listar).Methods("GET")
	api.HandleFunc("/propostas/{id}", propostaHandler.BuscarPorID).Methods("GET")
	api.HandleFunc("/propostas/{id}/converter", propostaHandler.Converter).Methods("POST")
	api.HandleFunc("/propostas/{id}/desistir", propostaHandler.Desistir).Methods("POST")
	gestao.HandleFunc("/propostas/{id}", propostaHandler.Deletar).Methods("DELETE")

	// Alertas de follow-up
	api.HandleFunc("/alertas", alertaHandler.Listar).Methods("GET")
	api.HandleFunc("/alertas/consumir", alertaHandler.Consumir).Methods("POST")
	gestao.HandleFunc("/alertas/limpar", alertaHandler.Limpar).Methods("POST")

	// Relatórios
	api.HandleFunc("/relatorios/projetos", relatorioHandler.ResumoProjetos).Methods("GET")
	api.HandleFunc("/relatorios/dashboard", relatorioHandler.Dashboard).Methods("GET")

	// Comissões de parceiros
	gestao.HandleFunc("/comissoes", comissaoHandler.Listar).Methods("GET")
	gestao.HandleFunc("/comissoes/{id}", comissaoHandler.BuscarPorID).Methods("GET")
	gestao.HandleFunc("/comissoes/{id}/pagar", comissaoHandler.MarcarPaga).Methods("PUT")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	porta := os.Getenv("PORT")
	if porta == "" {
		porta = "8080"
	}
	logger.Info("servidor iniciado", zap.String("porta", porta))
	if err := http.ListenAndServe(":"+porta, c.Handler(r)); err != nil {
		logger.Fatal("servidor encerrado", zap.Error(err))
	}
}
