package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Pacotes de infraestrutura e utilitários
	"gohub/config"
	"gohub/internal/pkg/cache"
	"gohub/internal/pkg/database"
	"gohub/internal/pkg/logger"
	"gohub/internal/pkg/predictor"
	"gohub/internal/pkg/session"
	"gohub/internal/pkg/token"

	// Camadas para Injeção de Dependências
	"gohub/internal/api/admin"
	"gohub/internal/api/prediction"
	"gohub/internal/api/resource"
	"gohub/internal/api/router"
	"gohub/internal/api/user"
	"gohub/internal/domain"
	"gohub/internal/repository/predictionrepo"
	"gohub/internal/repository/resourcerepo"
	"gohub/internal/repository/userrepo"
	"gohub/internal/service/predictionservice"
	"gohub/internal/service/resourceservice"
	"gohub/internal/service/userservice"
)

func main() {
	// 1. Configuração e Inicialização
	stdlog.Println("⚡ Inicializando serviço gohub...")

	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	// Se não existir, seguimos com as variáveis do ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		stdlog.Println("⚠️ Aviso: Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL, database.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		ConnMaxIdleTime: cfg.DBConnIdleTime,
	})
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache / Sessões (Redis)
	cacheClient, err := cache.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		log.Fatal("Falha ao conectar ao Redis.", err)
	}
	log.Info("Conexão Redis estabelecida.", nil)

	// O armazenamento de sessões é injetado explicitamente: o ciclo de vida
	// de cada token é o TTL da chave no Redis, sem estado global ambiente.
	sessionStore := session.NewRedisStore(cacheClient, cfg.SessionTTL)

	// C. Serviço de Tokens de API (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	log.Debug("Serviço de Tokens JWT inicializado.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Repository -> Service -> Handler)

	// A. Identidade e administração de usuários
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	userSvc := userservice.NewService(userRepo, sessionStore, tokenSvc, log)
	userHandler := user.NewHandler(userSvc, cfg.SessionTTL, log)
	adminHandler := admin.NewHandler(userSvc, log)
	log.Debug("Camadas de usuário inicializadas.", nil)

	// B. Recurso genérico: receitas
	recordRepo := resourcerepo.NewRecordRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, log)
	recipeSvc := resourceservice.NewService(domain.RecipeSchema, recordRepo, log)
	recipeHandler := resource.NewHandler(recipeSvc, "/api/recipes", log)
	log.Debug("Camadas de receitas inicializadas.", nil)

	// C. Proxy de predição (modelo externo como caixa-preta)
	predictionClient := predictor.NewHTTPClient(cfg.PredictionURL, cfg.PredictionTimeout)
	predictionRepo := predictionrepo.NewPredictionRepository(db, cfg.DBTimeout, log)
	predictionSvc := predictionservice.NewService(predictionClient, predictionRepo, log)
	predictionHandler := prediction.NewHandler(predictionSvc, log)
	log.Debug("Camadas de predição inicializadas.", nil)

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(
		userHandler,
		adminHandler,
		recipeHandler,
		predictionHandler,
		userSvc,
		cacheClient,
		router.RateLimitOptions{
			MaxRequests: cfg.RateLimitMaxRequests,
			Period:      cfg.RateLimitPeriod,
		},
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor gohub ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	// Lógica do Graceful Shutdown (captura de sinal)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
