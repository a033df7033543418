package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facturio/billing-api/internal/application/auth"
	"github.com/facturio/billing-api/internal/application/billing"
	"github.com/facturio/billing-api/internal/application/usecase"
	"github.com/facturio/billing-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.UseCase
	ClientUC   *usecase.ClientUseCase
	AgencyUC   *usecase.AgencyUseCase
	ReportUC   *usecase.ReportUseCase
	InvoiceUC  *billing.InvoiceUseCase
	PaymentUC  *billing.PaymentUseCase
	ProposalUC *billing.ProposalUseCase
	ConvertUC  *billing.ConvertProposalUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Agencia (la del token; el update es solo para admin)
	agencyHandler := NewAgencyHandler(deps.AgencyUC)
	protected.Get("/agency", agencyHandler.Get)
	protected.Put("/agency", RequireRole(entity.RoleAdmin), agencyHandler.Update)

	// Clients
	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.Get)
	clients.Put("/:id", clientHandler.Update)
	clients.Delete("/:id", clientHandler.Delete)

	// Invoices
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.Get)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Delete("/:id", invoiceHandler.Delete)
	invoices.Post("/:id/pdf", invoiceHandler.GeneratePDF)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
	invoices.Post("/:id/finalize", invoiceHandler.Finalize)
	invoices.Post("/:id/send", invoiceHandler.Send)
	invoices.Post("/:id/void", invoiceHandler.Void)

	// Payments (ledger por factura + edición directa)
	paymentHandler := NewPaymentHandler(deps.PaymentUC)
	invoices.Post("/:id/payments", paymentHandler.Create)
	invoices.Get("/:id/payments", paymentHandler.List)
	payments := protected.Group("/payments")
	payments.Put("/:id", paymentHandler.Update)
	payments.Delete("/:id", paymentHandler.Delete)

	// Proposals
	proposals := protected.Group("/proposals")
	proposalHandler := NewProposalHandler(deps.ProposalUC, deps.ConvertUC)
	proposals.Post("/", proposalHandler.Create)
	proposals.Get("/", proposalHandler.List)
	proposals.Get("/:id", proposalHandler.Get)
	proposals.Put("/:id", proposalHandler.Update)
	proposals.Delete("/:id", proposalHandler.Delete)
	proposals.Post("/:id/status", proposalHandler.UpdateStatus)
	proposals.Post("/:id/convert", proposalHandler.Convert)

	// Reports
	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/revenue", reportHandler.Revenue)
	reports.Get("/summary", reportHandler.Summary)
}
