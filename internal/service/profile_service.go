package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dkoroteev/eventcrew-backend/internal/models"
	"github.com/dkoroteev/eventcrew-backend/internal/pkg/apperror"
	"github.com/dkoroteev/eventcrew-backend/internal/repository"
	"github.com/dkoroteev/eventcrew-backend/internal/repository/common"
	"github.com/dkoroteev/eventcrew-backend/internal/validation"
)

// ProfileRepository описывает зависимости ProfileService от хранилища.
type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	CreateTechnicianProfile(ctx context.Context, profile *models.TechnicianProfile) error
	UpdateTechnicianProfile(ctx context.Context, profile *models.TechnicianProfile) error
	GetTechnicianProfile(ctx context.Context, userID uuid.UUID) (*models.TechnicianProfile, error)
	CreateCompanyProfile(ctx context.Context, profile *models.CompanyProfile) error
	UpdateCompanyProfile(ctx context.Context, profile *models.CompanyProfile) error
	GetCompanyProfile(ctx context.Context, userID uuid.UUID) (*models.CompanyProfile, error)
	SearchTechnicians(ctx context.Context, tier string, limit, offset int) ([]models.TechnicianSearchResult, error)
}

// ProfileService содержит бизнес-логику профилей техников и компаний.
type ProfileService struct {
	repo  ProfileRepository
	cache *CacheService
}

// NewProfileService создаёт сервис профилей.
func NewProfileService(repo ProfileRepository, cache *CacheService) *ProfileService {
	return &ProfileService{repo: repo, cache: cache}
}

// TechnicianProfileInput описывает данные профиля техника.
type TechnicianProfileInput struct {
	UserID      uuid.UUID
	DisplayName string
	Bio         *string
	HourlyRate  *float64
	Tier        string
	Skills      []string
	Location    *string
	PhotoID     *uuid.UUID
}

// CompanyProfileInput описывает данные профиля компании.
type CompanyProfileInput struct {
	UserID      uuid.UUID
	CompanyName string
	Description *string
	Website     *string
	Location    *string
	PhotoID     *uuid.UUID
}

// CreateTechnicianProfile создаёт профиль техника. Повторное создание
// возвращает conflict.
func (s *ProfileService) CreateTechnicianProfile(ctx context.Context, in TechnicianProfileInput) (*models.TechnicianProfile, error) {
	profile, err := s.technicianProfileFromInput(in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateTechnicianProfile(ctx, profile); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "профиль техника уже создан")
		}
		return nil, err
	}

	return profile, nil
}

// UpdateTechnicianProfile обновляет профиль техника.
func (s *ProfileService) UpdateTechnicianProfile(ctx context.Context, in TechnicianProfileInput) (*models.TechnicianProfile, error) {
	profile, err := s.technicianProfileFromInput(in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTechnicianProfile(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "профиль техника не найден")
		}
		return nil, err
	}

	return profile, nil
}

// GetTechnicianProfile возвращает профиль техника.
func (s *ProfileService) GetTechnicianProfile(ctx context.Context, userID uuid.UUID) (*models.TechnicianProfile, error) {
	profile, err := s.repo.GetTechnicianProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "профиль техника не найден")
		}
		return nil, err
	}
	return profile, nil
}

// CreateCompanyProfile создаёт профиль компании. Повторное создание
// возвращает conflict.
func (s *ProfileService) CreateCompanyProfile(ctx context.Context, in CompanyProfileInput) (*models.CompanyProfile, error) {
	profile, err := s.companyProfileFromInput(in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateCompanyProfile(ctx, profile); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "профиль компании уже создан")
		}
		return nil, err
	}

	return profile, nil
}

// UpdateCompanyProfile обновляет профиль компании.
func (s *ProfileService) UpdateCompanyProfile(ctx context.Context, in CompanyProfileInput) (*models.CompanyProfile, error) {
	profile, err := s.companyProfileFromInput(in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateCompanyProfile(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "профиль компании не найден")
		}
		return nil, err
	}

	return profile, nil
}

// GetCompanyProfile возвращает профиль компании.
func (s *ProfileService) GetCompanyProfile(ctx context.Context, userID uuid.UUID) (*models.CompanyProfile, error) {
	profile, err := s.repo.GetCompanyProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "профиль компании не найден")
		}
		return nil, err
	}
	return profile, nil
}

// GetUser возвращает публичные данные пользователя.
func (s *ProfileService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// SearchTechnicians возвращает техников с рейтингом, опционально по уровню.
func (s *ProfileService) SearchTechnicians(ctx context.Context, tier string, limit, offset int) ([]models.TechnicianSearchResult, error) {
	if tier != "" {
		if _, ok := models.ValidTiers[tier]; !ok {
			return nil, apperror.New(apperror.ErrCodeBadRequest, "некорректный уровень техника")
		}
	}
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	return s.repo.SearchTechnicians(ctx, tier, limit, offset)
}

// DeactivateUser мягко удаляет пользователя. Доступно администратору.
// История бронирований и отзывов сохраняется.
func (s *ProfileService) DeactivateUser(ctx context.Context, targetID uuid.UUID, role string) error {
	if role != models.RoleAdmin {
		return apperror.ErrForbidden
	}

	if err := s.repo.SoftDelete(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrUserNotFound
		}
		return err
	}

	if s.cache != nil {
		s.cache.InvalidateUserCache(targetID)
	}

	return nil
}

func (s *ProfileService) technicianProfileFromInput(in TechnicianProfileInput) (*models.TechnicianProfile, error) {
	if err := validation.ValidateDisplayName(in.DisplayName); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateSkills(in.Skills); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if in.HourlyRate != nil {
		if err := validation.ValidateHourlyRate(*in.HourlyRate); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	tier := in.Tier
	if tier == "" {
		tier = models.TierBeginner
	}
	if _, ok := models.ValidTiers[tier]; !ok {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "некорректный уровень техника")
	}

	skills := in.Skills
	if skills == nil {
		skills = []string{}
	}

	return &models.TechnicianProfile{
		UserID:      in.UserID,
		DisplayName: in.DisplayName,
		Bio:         in.Bio,
		HourlyRate:  in.HourlyRate,
		Tier:        tier,
		Skills:      skills,
		Location:    in.Location,
		PhotoID:     in.PhotoID,
	}, nil
}

func (s *ProfileService) companyProfileFromInput(in CompanyProfileInput) (*models.CompanyProfile, error) {
	if err := validation.ValidateDisplayName(in.CompanyName); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	return &models.CompanyProfile{
		UserID:      in.UserID,
		CompanyName: in.CompanyName,
		Description: in.Description,
		Website:     in.Website,
		Location:    in.Location,
		PhotoID:     in.PhotoID,
	}, nil
}
