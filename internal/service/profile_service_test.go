package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dkoroteev/eventcrew-backend/internal/models"
	"github.com/dkoroteev/eventcrew-backend/internal/pkg/apperror"
	"github.com/dkoroteev/eventcrew-backend/internal/repository/common"
)

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockProfileRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProfileRepo) CreateTechnicianProfile(ctx context.Context, profile *models.TechnicianProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *mockProfileRepo) UpdateTechnicianProfile(ctx context.Context, profile *models.TechnicianProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *mockProfileRepo) GetTechnicianProfile(ctx context.Context, userID uuid.UUID) (*models.TechnicianProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TechnicianProfile), args.Error(1)
}

func (m *mockProfileRepo) CreateCompanyProfile(ctx context.Context, profile *models.CompanyProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *mockProfileRepo) UpdateCompanyProfile(ctx context.Context, profile *models.CompanyProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *mockProfileRepo) GetCompanyProfile(ctx context.Context, userID uuid.UUID) (*models.CompanyProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CompanyProfile), args.Error(1)
}

func (m *mockProfileRepo) SearchTechnicians(ctx context.Context, tier string, limit, offset int) ([]models.TechnicianSearchResult, error) {
	args := m.Called(ctx, tier, limit, offset)
	return args.Get(0).([]models.TechnicianSearchResult), args.Error(1)
}

func TestProfileService_CreateTechnicianProfile_Success(t *testing.T) {
	repo := new(mockProfileRepo)
	svc := NewProfileService(repo, nil)
	ctx := context.Background()

	repo.On("CreateTechnicianProfile", ctx, mock.AnythingOfType("*models.TechnicianProfile")).Return(nil)

	profile, err := svc.CreateTechnicianProfile(ctx, TechnicianProfileInput{
		UserID:      uuid.New(),
		DisplayName: "Иван Звукорежиссёр",
		Skills:      []string{"звук", "свет"},
	})

	assert.NoError(t, err)
	// Пустой tier по умолчанию beginner, skills не nil
	assert.Equal(t, models.TierBeginner, profile.Tier)
	assert.NotNil(t, profile.Skills)
}

func TestProfileService_CreateTechnicianProfile_Duplicate(t *testing.T) {
	repo := new(mockProfileRepo)
	svc := NewProfileService(repo, nil)
	ctx := context.Background()

	repo.On("CreateTechnicianProfile", ctx, mock.AnythingOfType("*models.TechnicianProfile")).Return(common.ErrAlreadyExists)

	_, err := svc.CreateTechnicianProfile(ctx, TechnicianProfileInput{
		UserID:      uuid.New(),
		DisplayName: "Иван Звукорежиссёр",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestProfileService_CreateTechnicianProfile_InvalidTier(t *testing.T) {
	repo := new(mockProfileRepo)
	svc := NewProfileService(repo, nil)

	_, err := svc.CreateTechnicianProfile(context.Background(), TechnicianProfileInput{
		UserID:      uuid.New(),
		DisplayName: "Иван",
		Tier:        "expert",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsBadRequest(err))
	repo.AssertNotCalled(t, "CreateTechnicianProfile")
}

func TestProfileService_SearchTechnicians_InvalidTier(t *testing.T) {
	repo := new(mockProfileRepo)
	svc := NewProfileService(repo, nil)

	_, err := svc.SearchTechnicians(context.Background(), "senior", 10, 0)

	assert.Error(t, err)
	assert.True(t, apperror.IsBadRequest(err))
}

func TestProfileService_SearchTechnicians_ClampsLimit(t *testing.T) {
	repo := new(mockProfileRepo)
	svc := NewProfileService(repo, nil)
	ctx := context.Background()

	repo.On("SearchTechnicians", ctx, models.TierPro, MaxPageLimit, 0).Return([]models.TechnicianSearchResult{}, nil)

	_, err := svc.SearchTechnicians(ctx, models.TierPro, 1000, -5)

	assert.NoError(t, err)
	repo.AssertCalled(t, "SearchTechnicians", ctx, models.TierPro, MaxPageLimit, 0)
}

func TestProfileService_DeactivateUser_AdminOnly(t *testing.T) {
	repo := new(mockProfileRepo)
	svc := NewProfileService(repo, nil)
	ctx := context.Background()

	targetID := uuid.New()
	repo.On("SoftDelete", ctx, targetID).Return(nil)

	err := svc.DeactivateUser(ctx, targetID, models.RoleCompany)
	assert.True(t, apperror.IsForbidden(err))

	err = svc.DeactivateUser(ctx, targetID, models.RoleAdmin)
	assert.NoError(t, err)
}
