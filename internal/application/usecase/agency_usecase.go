package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/facturio/billing-api/internal/application/dto"
	"github.com/facturio/billing-api/internal/domain"
	"github.com/facturio/billing-api/internal/domain/entity"
	"github.com/facturio/billing-api/internal/domain/repository"
)

// AgencyUseCase lectura y ajustes de la agencia (tenant) del caller.
type AgencyUseCase struct {
	agencyRepo repository.AgencyRepository
}

// NewAgencyUseCase construye el caso de uso.
func NewAgencyUseCase(agencyRepo repository.AgencyRepository) *AgencyUseCase {
	return &AgencyUseCase{agencyRepo: agencyRepo}
}

// Get devuelve la agencia con el uso de cupo del mes en curso.
func (uc *AgencyUseCase) Get(ctx context.Context, agencyID string) (*dto.AgencyResponse, error) {
	agency, err := uc.agencyRepo.GetByID(agencyID)
	if err != nil {
		return nil, err
	}
	if agency == nil {
		return nil, domain.ErrNotFound
	}
	usage, err := uc.agencyRepo.MonthlyUsage(agencyID, time.Now().Format("2006-01"))
	if err != nil {
		return nil, err
	}
	return toAgencyResponse(agency, usage), nil
}

// UpdateSettings modifica nombre, moneda por defecto y plan. El cambio de plan
// aplica de inmediato: el cupo del mes en curso se evalúa contra el plan nuevo
// en la siguiente creación de factura.
func (uc *AgencyUseCase) UpdateSettings(ctx context.Context, agencyID string, in dto.UpdateAgencyRequest) (*dto.AgencyResponse, error) {
	agency, err := uc.agencyRepo.GetByID(agencyID)
	if err != nil {
		return nil, err
	}
	if agency == nil {
		return nil, domain.ErrNotFound
	}
	if in.Plan != "" {
		switch in.Plan {
		case entity.PlanFree, entity.PlanStarter, entity.PlanPro:
		default:
			return nil, fmt.Errorf("%w: plan desconocido", domain.ErrInvalidInput)
		}
		agency.Plan = in.Plan
	}
	if in.Name != "" {
		agency.Name = in.Name
	}
	if in.DefaultCurrency != "" {
		if len(in.DefaultCurrency) != 3 {
			return nil, fmt.Errorf("%w: la moneda debe ser un código ISO 4217", domain.ErrInvalidInput)
		}
		agency.DefaultCurrency = in.DefaultCurrency
	}
	agency.UpdatedAt = time.Now()
	if err := uc.agencyRepo.UpdateSettings(agency); err != nil {
		return nil, err
	}
	usage, err := uc.agencyRepo.MonthlyUsage(agencyID, time.Now().Format("2006-01"))
	if err != nil {
		return nil, err
	}
	return toAgencyResponse(agency, usage), nil
}

func toAgencyResponse(a *entity.Agency, usage int64) *dto.AgencyResponse {
	return &dto.AgencyResponse{
		ID:              a.ID,
		Name:            a.Name,
		DefaultCurrency: a.DefaultCurrency,
		Plan:            a.Plan,
		MonthlyLimit:    entity.MonthlyInvoiceLimit(a.Plan),
		MonthlyUsage:    usage,
	}
}
