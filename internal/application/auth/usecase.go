package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/facturio/billing-api/internal/application/dto"
	"github.com/facturio/billing-api/internal/domain"
	"github.com/facturio/billing-api/internal/domain/entity"
	"github.com/facturio/billing-api/internal/domain/repository"
	appjwt "github.com/facturio/billing-api/pkg/jwt"
)

// TokenConfig parámetros de emisión de JWT.
type TokenConfig struct {
	Secret     string
	Issuer     string
	ExpMinutes int
}

// UseCase registro y login. El registro puede arrancar una agencia nueva
// (bootstrap) o unir un usuario a una existente.
type UseCase struct {
	userRepo   repository.UserRepository
	agencyRepo repository.AgencyRepository
	tokens     TokenConfig
	log        zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(userRepo repository.UserRepository, agencyRepo repository.AgencyRepository, tokens TokenConfig, log zerolog.Logger) *UseCase {
	return &UseCase{userRepo: userRepo, agencyRepo: agencyRepo, tokens: tokens, log: log}
}

// Register crea el usuario. Con AgencyID vacío se crea además la agencia (plan
// free) y el usuario queda como admin; con AgencyID presente el usuario se une
// a esa agencia con el rol pedido (member por defecto).
func (uc *UseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos 8 caracteres", domain.ErrInvalidInput)
	}

	if existing, err := uc.userRepo.FindByEmail(email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	now := time.Now()
	agencyID := in.AgencyID
	role := in.Role
	if role == "" {
		role = entity.RoleMember
	}
	if role != entity.RoleAdmin && role != entity.RoleMember {
		return nil, fmt.Errorf("%w: rol desconocido", domain.ErrInvalidInput)
	}

	if agencyID == "" {
		// Bootstrap: agencia nueva, el fundador siempre es admin.
		if in.AgencyName == "" {
			return nil, fmt.Errorf("%w: agency_name es obligatorio al crear una agencia", domain.ErrInvalidInput)
		}
		agency := &entity.Agency{
			ID:              uuid.New().String(),
			Name:            in.AgencyName,
			DefaultCurrency: "USD",
			Plan:            entity.PlanFree,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := uc.agencyRepo.Create(agency); err != nil {
			return nil, err
		}
		agencyID = agency.ID
		role = entity.RoleAdmin
	} else {
		agency, err := uc.agencyRepo.GetByID(agencyID)
		if err != nil {
			return nil, err
		}
		if agency == nil {
			return nil, domain.ErrNotFound
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash de contraseña: %w", err)
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		AgencyID:     agencyID,
		Email:        email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Role:         role,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(user); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Str("agency_id", agencyID).Msg("usuario registrado")
	return toUserResponse(user), nil
}

// Login valida credenciales y emite el JWT con user_id, agency_id y role.
// Credenciales malas y usuarios inexistentes devuelven el mismo error.
func (uc *UseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	user, err := uc.userRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != "active" {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := appjwt.Generate(uc.tokens.Secret, user.ID, user.AgencyID, user.Role, uc.tokens.Issuer, uc.tokens.ExpMinutes)
	if err != nil {
		return nil, fmt.Errorf("emitir token: %w", err)
	}
	uc.log.Info().Str("user_id", user.ID).Msg("login exitoso")
	return &dto.LoginResponse{Token: token, User: *toUserResponse(user)}, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.ID,
		AgencyID:  u.AgencyID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
