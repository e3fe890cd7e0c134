package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/dkoroteev/eventcrew-backend/internal/models"
	"github.com/dkoroteev/eventcrew-backend/internal/repository/common"
)

// ErrUserNotFound возвращается, когда запись пользователя не найдена.
var ErrUserNotFound = errors.New("user not found")

// ErrProfileNotFound возвращается, когда профиль не найден.
var ErrProfileNotFound = errors.New("profile not found")

// uniqueViolation код ошибки PostgreSQL для нарушения уникальности.
const uniqueViolation = "23505"

// UserRepository отвечает за работу с таблицами users, профилей и сессий.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт нового пользователя.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, username, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("user repository: create %w", err)
	}

	return nil
}

// GetByEmail возвращает активного пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `
		SELECT * FROM users
		WHERE email = $1 AND deleted_at IS NULL
	`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by email %w", err)
	}

	return &user, nil
}

// GetByID возвращает активного пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `
		SELECT * FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by id %w", err)
	}

	return &user, nil
}

// SoftDelete помечает пользователя удалённым. Бронирования и отзывы
// не каскадируются — история сохраняется.
func (r *UserRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET deleted_at = NOW(), is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("user repository: soft delete %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("user repository: soft delete rows affected %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// UpdateLastLoginAt обновляет время последнего входа.
func (r *UserRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("user repository: update last login %w", err)
	}
	return nil
}

// CreateTechnicianProfile создаёт профиль техника. Повторное создание
// для того же пользователя возвращает common.ErrAlreadyExists.
func (r *UserRepository) CreateTechnicianProfile(ctx context.Context, profile *models.TechnicianProfile) error {
	query := `
		INSERT INTO technician_profiles (user_id, display_name, bio, hourly_rate, tier, skills, location, photo_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		profile.UserID, profile.DisplayName, profile.Bio, profile.HourlyRate,
		profile.Tier, pq.Array(profile.Skills), profile.Location, profile.PhotoID,
	).Scan(&profile.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("user repository: create technician profile %w", err)
	}

	return nil
}

// UpdateTechnicianProfile обновляет существующий профиль техника.
func (r *UserRepository) UpdateTechnicianProfile(ctx context.Context, profile *models.TechnicianProfile) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE technician_profiles
		SET display_name = $2, bio = $3, hourly_rate = $4, tier = $5, skills = $6, location = $7, photo_id = $8, updated_at = NOW()
		WHERE user_id = $1
	`, profile.UserID, profile.DisplayName, profile.Bio, profile.HourlyRate,
		profile.Tier, pq.Array(profile.Skills), profile.Location, profile.PhotoID)
	if err != nil {
		return fmt.Errorf("user repository: update technician profile %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("user repository: update technician profile rows affected %w", err)
	}
	if affected == 0 {
		return ErrProfileNotFound
	}

	return nil
}

// GetTechnicianProfile возвращает профиль техника по владельцу.
func (r *UserRepository) GetTechnicianProfile(ctx context.Context, userID uuid.UUID) (*models.TechnicianProfile, error) {
	var row struct {
		models.TechnicianProfile
		Skills pq.StringArray `db:"skills"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT * FROM technician_profiles WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("user repository: get technician profile %w", err)
	}

	profile := row.TechnicianProfile
	profile.Skills = []string(row.Skills)
	return &profile, nil
}

// CreateCompanyProfile создаёт профиль компании. Повторное создание
// для того же пользователя возвращает common.ErrAlreadyExists.
func (r *UserRepository) CreateCompanyProfile(ctx context.Context, profile *models.CompanyProfile) error {
	query := `
		INSERT INTO company_profiles (user_id, company_name, description, website, location, photo_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		profile.UserID, profile.CompanyName, profile.Description,
		profile.Website, profile.Location, profile.PhotoID,
	).Scan(&profile.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("user repository: create company profile %w", err)
	}

	return nil
}

// UpdateCompanyProfile обновляет существующий профиль компании.
func (r *UserRepository) UpdateCompanyProfile(ctx context.Context, profile *models.CompanyProfile) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE company_profiles
		SET company_name = $2, description = $3, website = $4, location = $5, photo_id = $6, updated_at = NOW()
		WHERE user_id = $1
	`, profile.UserID, profile.CompanyName, profile.Description,
		profile.Website, profile.Location, profile.PhotoID)
	if err != nil {
		return fmt.Errorf("user repository: update company profile %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("user repository: update company profile rows affected %w", err)
	}
	if affected == 0 {
		return ErrProfileNotFound
	}

	return nil
}

// GetCompanyProfile возвращает профиль компании по владельцу.
func (r *UserRepository) GetCompanyProfile(ctx context.Context, userID uuid.UUID) (*models.CompanyProfile, error) {
	return common.GetByField[models.CompanyProfile](ctx, r.db, "company_profiles", "user_id", userID, ErrProfileNotFound)
}

// SearchTechnicians возвращает техников с агрегированным рейтингом,
// опционально отфильтрованных по уровню.
func (r *UserRepository) SearchTechnicians(ctx context.Context, tier string, limit, offset int) ([]models.TechnicianSearchResult, error) {
	query := `
		SELECT tp.user_id, u.username, tp.display_name, tp.bio, tp.hourly_rate, tp.tier, tp.location, tp.photo_id,
			COALESCE(AVG(rv.rating), 0) AS avg_rating,
			COUNT(rv.id) AS review_count
		FROM technician_profiles tp
		JOIN users u ON u.id = tp.user_id AND u.deleted_at IS NULL
		LEFT JOIN reviews rv ON rv.subject_id = tp.user_id AND rv.deleted_at IS NULL
		WHERE ($1 = '' OR tp.tier = $1)
		GROUP BY tp.user_id, u.username, tp.display_name, tp.bio, tp.hourly_rate, tp.tier, tp.location, tp.photo_id
		ORDER BY avg_rating DESC, review_count DESC
		LIMIT $2 OFFSET $3
	`

	var results []models.TechnicianSearchResult
	if err := r.db.SelectContext(ctx, &results, query, tier, limit, offset); err != nil {
		return nil, fmt.Errorf("user repository: search technicians %w", err)
	}

	return results, nil
}

// CreateSession сохраняет refresh сессию.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (user_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		session.UserID, session.RefreshToken, session.UserAgent, session.IPAddress, session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt); err != nil {
		return fmt.Errorf("user repository: create session %w", err)
	}

	return nil
}

// GetSessionByToken возвращает сессию по refresh токену.
func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	return common.GetByField[models.Session](ctx, r.db, "sessions", "refresh_token", refreshToken, common.ErrNotFound)
}

// DeleteSession удаляет сессию по refresh токену.
func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = $1`, refreshToken)
	if err != nil {
		return fmt.Errorf("user repository: delete session %w", err)
	}
	return nil
}

// ListSessions возвращает активные сессии пользователя.
func (r *UserRepository) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT * FROM sessions WHERE user_id = $1 AND expires_at > NOW() ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("user repository: list sessions %w", err)
	}
	return sessions, nil
}

// DeleteSessionByID удаляет сессию по идентификатору.
func (r *UserRepository) DeleteSessionByID(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1 AND user_id = $2`, sessionID, userID)
	if err != nil {
		return fmt.Errorf("user repository: delete session by id %w", err)
	}
	return nil
}

// DeleteAllSessionsExcept удаляет все сессии пользователя кроме текущей.
func (r *UserRepository) DeleteAllSessionsExcept(ctx context.Context, userID uuid.UUID, exceptRefreshToken string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE user_id = $1 AND refresh_token <> $2
	`, userID, exceptRefreshToken)
	if err != nil {
		return fmt.Errorf("user repository: delete all sessions %w", err)
	}
	return nil
}
