package auth_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/billing-api/internal/application/auth"
	"github.com/facturio/billing-api/internal/application/dto"
	"github.com/facturio/billing-api/internal/domain"
	"github.com/facturio/billing-api/internal/domain/entity"
	pkgjwt "github.com/facturio/billing-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type memUserRepo struct {
	users map[string]*entity.User // por email
}

func (r *memUserRepo) Create(u *entity.User) error {
	if _, ok := r.users[u.Email]; ok {
		return domain.ErrEmailAlreadyExists
	}
	r.users[u.Email] = u
	return nil
}

func (r *memUserRepo) GetByID(id string) (*entity.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) FindByEmail(email string) (*entity.User, error) {
	return r.users[email], nil
}

func (r *memUserRepo) GetByEmailAndAgency(email, agencyID string) (*entity.User, error) {
	u := r.users[email]
	if u == nil || u.AgencyID != agencyID {
		return nil, nil
	}
	return u, nil
}

type memAgencyRepo struct {
	agencies map[string]*entity.Agency
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

func (r *memAgencyRepo) NextInvoiceNumber(agencyID string) (int64, error) { return 0, nil }

func (r *memAgencyRepo) IncrementMonthlyUsage(agencyID, period string) (int64, error) { return 0, nil }

func (r *memAgencyRepo) MonthlyUsage(agencyID, period string) (int64, error) { return 0, nil }

func newAuthEnv() (*auth.UseCase, *memUserRepo, *memAgencyRepo) {
	users := &memUserRepo{users: map[string]*entity.User{}}
	agencies := &memAgencyRepo{agencies: map[string]*entity.Agency{}}
	uc := auth.NewUseCase(users, agencies, auth.TokenConfig{
		Secret:     "auth-test-secret",
		Issuer:     "facturio-test",
		ExpMinutes: 60,
	}, zerolog.Nop())
	return uc, users, agencies
}

// ──────────────────────────────────────────────────────────────────────────────
// Register
// ──────────────────────────────────────────────────────────────────────────────

// Registro sin agency_id: se crea una agencia nueva (plan free) y el fundador
// queda como admin aunque haya pedido otro rol.
func TestRegister_BootstrapDeAgencia(t *testing.T) {
	uc, _, agencies := newAuthEnv()

	user, err := uc.Register(context.Background(), dto.RegisterRequest{
		AgencyName: "Estudio Sur",
		Email:      "Fundadora@Estudio.Test",
		Password:   "secreta123",
		Name:       "Fundadora",
		Role:       entity.RoleMember,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RoleAdmin, user.Role, "el fundador siempre es admin")
	assert.Equal(t, "fundadora@estudio.test", user.Email, "el email se normaliza a minúsculas")

	agency := agencies.agencies[user.AgencyID]
	require.NotNil(t, agency)
	assert.Equal(t, "Estudio Sur", agency.Name)
	assert.Equal(t, entity.PlanFree, agency.Plan, "las agencias nuevas arrancan en free")
	assert.Equal(t, "USD", agency.DefaultCurrency)
}

func TestRegister_BootstrapSinNombreDeAgencia(t *testing.T) {
	uc, _, _ := newAuthEnv()
	_, err := uc.Register(context.Background(), dto.RegisterRequest{
		Email:    "a@b.test",
		Password: "secreta123",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegister_UnirseAAgenciaExistente(t *testing.T) {
	uc, _, agencies := newAuthEnv()
	agencies.agencies["ag-1"] = &entity.Agency{ID: "ag-1", Name: "Existente", Plan: entity.PlanStarter}

	user, err := uc.Register(context.Background(), dto.RegisterRequest{
		AgencyID: "ag-1",
		Email:    "nueva@b.test",
		Password: "secreta123",
	})
	require.NoError(t, err)
	assert.Equal(t, "ag-1", user.AgencyID)
	assert.Equal(t, entity.RoleMember, user.Role, "sin rol explícito se une como member")
}

func TestRegister_AgenciaInexistente(t *testing.T) {
	uc, _, _ := newAuthEnv()
	_, err := uc.Register(context.Background(), dto.RegisterRequest{
		AgencyID: "no-existe",
		Email:    "a@b.test",
		Password: "secreta123",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegister_EmailDuplicado(t *testing.T) {
	uc, _, _ := newAuthEnv()
	ctx := context.Background()

	_, err := uc.Register(ctx, dto.RegisterRequest{
		AgencyName: "Una", Email: "dup@b.test", Password: "secreta123",
	})
	require.NoError(t, err)

	_, err = uc.Register(ctx, dto.RegisterRequest{
		AgencyName: "Otra", Email: "DUP@b.test", Password: "secreta123",
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists,
		"el duplicado se detecta sin distinguir mayúsculas")
}

func TestRegister_Validaciones(t *testing.T) {
	uc, _, _ := newAuthEnv()
	ctx := context.Background()

	_, err := uc.Register(ctx, dto.RegisterRequest{AgencyName: "x", Email: "sin-arroba", Password: "secreta123"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Register(ctx, dto.RegisterRequest{AgencyName: "x", Email: "a@b.test", Password: "corta"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "contraseña de menos de 8 caracteres")

	_, err = uc.Register(ctx, dto.RegisterRequest{AgencyName: "x", Email: "a@b.test", Password: "secreta123", Role: "superuser"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "rol fuera del catálogo")
}

// ──────────────────────────────────────────────────────────────────────────────
// Login
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_EmiteTokenConClaims(t *testing.T) {
	uc, _, _ := newAuthEnv()
	ctx := context.Background()

	user, err := uc.Register(ctx, dto.RegisterRequest{
		AgencyName: "Estudio", Email: "admin@estudio.test", Password: "secreta123",
	})
	require.NoError(t, err)

	resp, err := uc.Login(ctx, dto.LoginRequest{Email: "admin@estudio.test", Password: "secreta123"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	userID, agencyID, role, err := pkgjwt.Parse("auth-test-secret", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, user.AgencyID, agencyID)
	assert.Equal(t, entity.RoleAdmin, role)
}

// Usuario inexistente, contraseña mala y cuenta deshabilitada devuelven el
// MISMO error: el login no filtra cuál de las tres condiciones falló.
func TestLogin_ErrorUniformeAnteCredencialesMalas(t *testing.T) {
	uc, users, _ := newAuthEnv()
	ctx := context.Background()

	_, err := uc.Register(ctx, dto.RegisterRequest{
		AgencyName: "Estudio", Email: "admin@estudio.test", Password: "secreta123",
	})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@estudio.test", Password: "secreta123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "admin@estudio.test", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	users.users["admin@estudio.test"].Status = "disabled"
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "admin@estudio.test", Password: "secreta123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "cuenta deshabilitada no entra")
}
