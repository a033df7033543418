package billing_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	appbilling "github.com/facturio/billing-api/internal/application/billing"
	"github.com/facturio/billing-api/internal/domain"
	domainbilling "github.com/facturio/billing-api/internal/domain/billing"
	"github.com/facturio/billing-api/internal/domain/entity"
	"github.com/facturio/billing-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria para los tests de casos de uso
// ──────────────────────────────────────────────────────────────────────────────

type memAgencyRepo struct {
	agencies map[string]*entity.Agency
	usage    map[string]int64 // agencyID + "|" + period
}

func newMemAgencyRepo() *memAgencyRepo {
	return &memAgencyRepo{agencies: map[string]*entity.Agency{}, usage: map[string]int64{}}
}

func (r *memAgencyRepo) Create(a *entity.Agency) error {
	r.agencies[a.ID] = a
	return nil
}

func (r *memAgencyRepo) GetByID(id string) (*entity.Agency, error) {
	return r.agencies[id], nil
}

func (r *memAgencyRepo) UpdateSettings(a *entity.Agency) error {
	r.agencies[a.ID] = a
	return nil
}

func (r *memAgencyRepo) NextInvoiceNumber(agencyID string) (int64, error) {
	a, ok := r.agencies[agencyID]
	if !ok {
		return 0, fmt.Errorf("agencia no existe: %s", agencyID)
	}
	a.InvoiceCounter++
	return a.InvoiceCounter, nil
}

func (r *memAgencyRepo) IncrementMonthlyUsage(agencyID, period string) (int64, error) {
	key := agencyID + "|" + period
	r.usage[key]++
	return r.usage[key], nil
}

func (r *memAgencyRepo) MonthlyUsage(agencyID, period string) (int64, error) {
	return r.usage[agencyID+"|"+period], nil
}

type memInvoiceRepo struct {
	invoices map[string]*entity.Invoice
	items    map[string][]*entity.InvoiceItem
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{invoices: map[string]*entity.Invoice{}, items: map[string][]*entity.InvoiceItem{}}
}

func (r *memInvoiceRepo) Create(inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	r.invoices[inv.ID] = inv
	return nil
}

func (r *memInvoiceRepo) CreateItem(item *entity.InvoiceItem) error {
	r.items[item.InvoiceID] = append(r.items[item.InvoiceID], item)
	return nil
}

func (r *memInvoiceRepo) UpdateDraft(inv *entity.Invoice) error {
	stored, ok := r.invoices[inv.ID]
	if !ok || stored.Status != entity.InvoiceStatusDraft {
		return domain.ErrInvalidState
	}
	r.invoices[inv.ID] = inv
	return nil
}

func (r *memInvoiceRepo) DeleteItemsByInvoiceID(invoiceID string) error {
	delete(r.items, invoiceID)
	return nil
}

func (r *memInvoiceRepo) SetPDFURL(invoiceID, pdfURL string, updatedAt time.Time) error {
	inv, ok := r.invoices[invoiceID]
	if !ok {
		return domain.ErrNotFound
	}
	inv.PDFURL = pdfURL
	inv.UpdatedAt = updatedAt
	return nil
}

func (r *memInvoiceRepo) MarkSent(invoiceID string, sentAt time.Time) error {
	inv, ok := r.invoices[invoiceID]
	if !ok || inv.Status != entity.InvoiceStatusDraft || inv.SentAt != nil {
		return domain.ErrInvalidState
	}
	inv.Status = entity.InvoiceStatusSent
	inv.SentAt = &sentAt
	inv.UpdatedAt = sentAt
	return nil
}

func (r *memInvoiceRepo) SetStatus(invoiceID, status string, updatedAt time.Time) error {
	inv, ok := r.invoices[invoiceID]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = status
	inv.UpdatedAt = updatedAt
	return nil
}

func (r *memInvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	return r.invoices[id], nil
}

func (r *memInvoiceRepo) GetItemsByInvoiceID(invoiceID string) ([]*entity.InvoiceItem, error) {
	return r.items[invoiceID], nil
}

func (r *memInvoiceRepo) ListByAgency(agencyID string, limit, offset int) ([]*entity.Invoice, error) {
	var list []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.AgencyID == agencyID {
			list = append(list, inv)
		}
	}
	return list, nil
}

func (r *memInvoiceRepo) DeleteDraft(id string) error {
	inv, ok := r.invoices[id]
	if !ok || inv.Status != entity.InvoiceStatusDraft {
		return domain.ErrInvalidState
	}
	delete(r.invoices, id)
	delete(r.items, id)
	return nil
}

type memPaymentRepo struct {
	payments map[string]*entity.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: map[string]*entity.Payment{}}
}

func (r *memPaymentRepo) Create(p *entity.Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	r.payments[p.ID] = p
	return nil
}

func (r *memPaymentRepo) Update(p *entity.Payment) error {
	r.payments[p.ID] = p
	return nil
}

func (r *memPaymentRepo) Delete(id string) error {
	delete(r.payments, id)
	return nil
}

func (r *memPaymentRepo) GetByID(id string) (*entity.Payment, error) {
	return r.payments[id], nil
}

func (r *memPaymentRepo) ListByInvoiceID(invoiceID string) ([]*entity.Payment, error) {
	var list []*entity.Payment
	for _, p := range r.payments {
		if p.InvoiceID == invoiceID {
			list = append(list, p)
		}
	}
	return list, nil
}

type memClientRepo struct {
	clients map[string]*entity.Client
}

func newMemClientRepo() *memClientRepo {
	return &memClientRepo{clients: map[string]*entity.Client{}}
}

func (r *memClientRepo) Create(c *entity.Client) error {
	r.clients[c.ID] = c
	return nil
}

func (r *memClientRepo) GetByID(id string) (*entity.Client, error) {
	return r.clients[id], nil
}

func (r *memClientRepo) ListByAgency(agencyID string, limit, offset int) ([]*entity.Client, error) {
	var list []*entity.Client
	for _, c := range r.clients {
		if c.AgencyID == agencyID {
			list = append(list, c)
		}
	}
	return list, nil
}

func (r *memClientRepo) Update(c *entity.Client) error {
	r.clients[c.ID] = c
	return nil
}

func (r *memClientRepo) Delete(id string) error {
	delete(r.clients, id)
	return nil
}

type memProposalRepo struct {
	proposals map[string]*entity.Proposal
	items     map[string][]*entity.ProposalItem
}

func newMemProposalRepo() *memProposalRepo {
	return &memProposalRepo{proposals: map[string]*entity.Proposal{}, items: map[string][]*entity.ProposalItem{}}
}

func (r *memProposalRepo) Create(p *entity.Proposal) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	r.proposals[p.ID] = p
	return nil
}

func (r *memProposalRepo) CreateItem(item *entity.ProposalItem) error {
	r.items[item.ProposalID] = append(r.items[item.ProposalID], item)
	return nil
}

func (r *memProposalRepo) UpdateDraft(p *entity.Proposal) error {
	stored, ok := r.proposals[p.ID]
	if !ok || stored.Status != entity.ProposalStatusDraft {
		return domain.ErrInvalidState
	}
	r.proposals[p.ID] = p
	return nil
}

func (r *memProposalRepo) DeleteItemsByProposalID(proposalID string) error {
	delete(r.items, proposalID)
	return nil
}

func (r *memProposalRepo) UpdateStatus(proposalID, status string, updatedAt time.Time) error {
	p, ok := r.proposals[proposalID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = updatedAt
	return nil
}

func (r *memProposalRepo) SetConvertedInvoice(proposalID, invoiceID string, updatedAt time.Time) error {
	p, ok := r.proposals[proposalID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.ConvertedToInvoiceID != "" {
		return domain.ErrDuplicate
	}
	p.ConvertedToInvoiceID = invoiceID
	p.UpdatedAt = updatedAt
	return nil
}

func (r *memProposalRepo) GetByID(id string) (*entity.Proposal, error) {
	return r.proposals[id], nil
}

func (r *memProposalRepo) GetItemsByProposalID(proposalID string) ([]*entity.ProposalItem, error) {
	return r.items[proposalID], nil
}

func (r *memProposalRepo) ListByAgency(agencyID string, limit, offset int) ([]*entity.Proposal, error) {
	var list []*entity.Proposal
	for _, p := range r.proposals {
		if p.AgencyID == agencyID {
			list = append(list, p)
		}
	}
	return list, nil
}

func (r *memProposalRepo) Delete(id string) error {
	delete(r.proposals, id)
	delete(r.items, id)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Puertos fake (tx, PDF, correo)
// ──────────────────────────────────────────────────────────────────────────────

// memTxRunner ejecuta el callback directamente sobre los repos en memoria.
// No simula rollback: los tests validan los errores, no el estado intermedio.
type memTxRunner struct {
	invoiceRepo  *memInvoiceRepo
	agencyRepo   *memAgencyRepo
	proposalRepo *memProposalRepo
}

func (r *memTxRunner) RunInvoice(_ context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	agencyRepo repository.AgencyRepository,
) error) error {
	return fn(r.invoiceRepo, r.agencyRepo)
}

func (r *memTxRunner) RunConversion(_ context.Context, fn func(
	proposalRepo repository.ProposalRepository,
	invoiceRepo repository.InvoiceRepository,
	agencyRepo repository.AgencyRepository,
) error) error {
	return fn(r.proposalRepo, r.invoiceRepo, r.agencyRepo)
}

type stubPDFGenerator struct{}

func (stubPDFGenerator) GenerateInvoicePDF(
	_ context.Context,
	_ *entity.Invoice,
	_ *entity.Agency,
	_ *entity.Client,
	_ []*entity.InvoiceItem,
	_ domainbilling.Balance,
) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

type memPDFStore struct {
	files map[string][]byte
}

func newMemPDFStore() *memPDFStore { return &memPDFStore{files: map[string][]byte{}} }

func (s *memPDFStore) Save(_ context.Context, invoiceID string, pdf []byte) (string, error) {
	s.files[invoiceID] = pdf
	return "/api/invoices/" + invoiceID + "/pdf", nil
}

func (s *memPDFStore) Load(_ context.Context, invoiceID string) ([]byte, error) {
	data, ok := s.files[invoiceID]
	if !ok {
		return nil, fmt.Errorf("pdf no encontrado: %s", invoiceID)
	}
	return data, nil
}

type fakeEmailSender struct {
	fail bool
	sent []string // destinatarios
}

func (s *fakeEmailSender) SendInvoice(_ context.Context, toEmail, _ string, _ *entity.Invoice, _ []byte) error {
	if s.fail {
		return fmt.Errorf("smtp: conexión rechazada")
	}
	s.sent = append(s.sent, toEmail)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Entorno de test
// ──────────────────────────────────────────────────────────────────────────────

// billingEnv agrupa los fakes y los casos de uso ya cableados con una agencia
// (plan free, USD) y un cliente sembrados.
type billingEnv struct {
	agencyRepo   *memAgencyRepo
	invoiceRepo  *memInvoiceRepo
	paymentRepo  *memPaymentRepo
	clientRepo   *memClientRepo
	proposalRepo *memProposalRepo
	pdfStore     *memPDFStore
	email        *fakeEmailSender

	invoiceUC  *appbilling.InvoiceUseCase
	paymentUC  *appbilling.PaymentUseCase
	proposalUC *appbilling.ProposalUseCase
	convertUC  *appbilling.ConvertProposalUseCase

	agencyID string
	clientID string
}

func newBillingEnv(t *testing.T) *billingEnv {
	t.Helper()

	env := &billingEnv{
		agencyRepo:   newMemAgencyRepo(),
		invoiceRepo:  newMemInvoiceRepo(),
		paymentRepo:  newMemPaymentRepo(),
		clientRepo:   newMemClientRepo(),
		proposalRepo: newMemProposalRepo(),
		pdfStore:     newMemPDFStore(),
		email:        &fakeEmailSender{},
		agencyID:     uuid.New().String(),
		clientID:     uuid.New().String(),
	}

	now := time.Now()
	_ = env.agencyRepo.Create(&entity.Agency{
		ID:              env.agencyID,
		Name:            "Estudio Norte",
		DefaultCurrency: "USD",
		Plan:            entity.PlanFree,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	_ = env.clientRepo.Create(&entity.Client{
		ID:        env.clientID,
		AgencyID:  env.agencyID,
		Name:      "Acme Corp",
		Email:     "facturas@acme.test",
		CreatedAt: now,
		UpdatedAt: now,
	})

	tx := &memTxRunner{
		invoiceRepo:  env.invoiceRepo,
		agencyRepo:   env.agencyRepo,
		proposalRepo: env.proposalRepo,
	}
	log := zerolog.Nop()

	env.invoiceUC = appbilling.NewInvoiceUseCase(
		tx, env.invoiceRepo, env.paymentRepo, env.clientRepo, env.agencyRepo,
		stubPDFGenerator{}, env.pdfStore, env.email, log,
	)
	env.paymentUC = appbilling.NewPaymentUseCase(env.paymentRepo, env.invoiceRepo)
	env.proposalUC = appbilling.NewProposalUseCase(env.proposalRepo, env.clientRepo, env.agencyRepo, log)
	env.convertUC = appbilling.NewConvertProposalUseCase(tx, env.proposalRepo, env.agencyRepo, log)
	return env
}

func decT(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}
