package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/traveldesk/travel-approval/internal/application/port"
	"github.com/traveldesk/travel-approval/internal/domain/entity"
	"github.com/traveldesk/travel-approval/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

const userColumns = `id, name, email, role, api_token, created_at, updated_at`

// UserRepository implements port.UserRepository. Users are provisioned
// by seed migrations; this repository is read-only.
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) port.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a user by ID. Returns (nil, nil) when not found.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := r.scanUser(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get user by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByAPIToken retrieves the user owning a bearer token. Returns
// (nil, nil) when the token matches nobody.
func (r *UserRepository) GetByAPIToken(ctx context.Context, token string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE api_token = ?`

	user, err := r.scanUser(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, token))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get user by API token", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// FindAdmins retrieves every user with the admin role
func (r *UserRepository) FindAdmins(ctx context.Context) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = ? ORDER BY id`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, entity.RoleAdmin)
	if err != nil {
		r.logger.Error("Failed to find admins", zap.Error(err))
		return nil, fmt.Errorf("failed to find admins: %w", err)
	}
	defer rows.Close()

	var admins []*entity.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		admins = append(admins, user)
	}
	return admins, rows.Err()
}

func (r *UserRepository) scanUser(row rowScanner) (*entity.User, error) {
	var user entity.User
	var apiToken sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&apiToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if apiToken.Valid {
		user.APIToken = apiToken.String
	}
	return &user, nil
}

// Verify interface compliance
var _ port.UserRepository = (*UserRepository)(nil)
