package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/facturio/billing-api/internal/application/auth"
	"github.com/facturio/billing-api/internal/application/billing"
	"github.com/facturio/billing-api/internal/application/usecase"
	infraemail "github.com/facturio/billing-api/internal/infrastructure/email"
	infrapdf "github.com/facturio/billing-api/internal/infrastructure/pdf"
	"github.com/facturio/billing-api/internal/infrastructure/postgres"
	httpRouter "github.com/facturio/billing-api/internal/interfaces/http"
	"github.com/facturio/billing-api/pkg/config"
	"github.com/facturio/billing-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	agencyRepo := postgres.NewAgencyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	proposalRepo := postgres.NewProposalRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	pdfStore, err := infrapdf.NewLocalStore(cfg.PDF)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento de PDFs")
	}
	emailSender := infraemail.NewSMTPSender(cfg.SMTP)

	authUC := auth.NewUseCase(userRepo, agencyRepo, auth.TokenConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		ExpMinutes: cfg.JWT.Expiration,
	}, log.Component("auth"))
	clientUC := usecase.NewClientUseCase(clientRepo)
	agencyUC := usecase.NewAgencyUseCase(agencyRepo)
	reportUC := usecase.NewReportUseCase(reportRepo)

	billingLog := log.Component("billing")
	invoiceUC := billing.NewInvoiceUseCase(
		txRunner, invoiceRepo, paymentRepo, clientRepo, agencyRepo,
		pdfGenerator, pdfStore, emailSender, billingLog,
	)
	paymentUC := billing.NewPaymentUseCase(paymentRepo, invoiceRepo)
	proposalUC := billing.NewProposalUseCase(proposalRepo, clientRepo, agencyRepo, billingLog)
	convertUC := billing.NewConvertProposalUseCase(txRunner, proposalRepo, agencyRepo, billingLog)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Facturio API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		ClientUC:   clientUC,
		AgencyUC:   agencyUC,
		ReportUC:   reportUC,
		InvoiceUC:  invoiceUC,
		PaymentUC:  paymentUC,
		ProposalUC: proposalUC,
		ConvertUC:  convertUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
