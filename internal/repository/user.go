package repository

import (
	"context"
	"errors"

	"taskhive/internal/cache"
	"taskhive/internal/models"
	"taskhive/internal/observability"
	"taskhive/internal/softdelete"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Delete(ctx context.Context, user *models.User) error
	AddDeviceToken(ctx context.Context, token *models.DeviceToken) error
	ListDeviceTokens(ctx context.Context, userID uint) ([]models.DeviceToken, error)
	RemoveDeviceToken(ctx context.Context, token *models.DeviceToken) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		defer observability.TrackQuery("select", "users")()
		err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).First(&user, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Limit(clampLimit(limit)).Offset(offset).Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Delete tombstones the account. Orders and proposals stay alive; only a
// hard delete walks the ownership graph.
func (r *userRepository) Delete(ctx context.Context, user *models.User) error {
	if err := softdelete.Delete(ctx, r.db, user); err != nil {
		observability.LifecycleOps.WithLabelValues("user", "delete", "error").Inc()
		return models.NewInternalError(err)
	}
	observability.LifecycleOps.WithLabelValues("user", "delete", "ok").Inc()
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) AddDeviceToken(ctx context.Context, token *models.DeviceToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Device token already registered")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) ListDeviceTokens(ctx context.Context, userID uint) ([]models.DeviceToken, error) {
	var tokens []models.DeviceToken
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Where("user_id = ?", userID).Find(&tokens).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return tokens, nil
}

func (r *userRepository) RemoveDeviceToken(ctx context.Context, token *models.DeviceToken) error {
	if err := softdelete.Delete(ctx, r.db, token); err != nil {
		observability.LifecycleOps.WithLabelValues("device_token", "delete", "error").Inc()
		return models.NewInternalError(err)
	}
	observability.LifecycleOps.WithLabelValues("device_token", "delete", "ok").Inc()
	return nil
}
