package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"projecttracker/internal/model"
)

var (
	ErrNotFound  = errors.New("credential not found")
	ErrDuplicate = errors.New("username already exists")
)

type CredentialRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewCredentialRepository(db *gorm.DB, logger *zap.Logger) *CredentialRepository {
	return &CredentialRepository{db: db, logger: logger}
}

// Create inserts a credential unless the username is taken. The existence
// check and insert share a transaction.
func (r *CredentialRepository) Create(ctx context.Context, c *model.Credential) error {
	r.logger.Debug("Inserting credential", zap.String("username", c.Username))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Credential{}).Where("username = ?", c.Username).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicate
		}
		return tx.Create(c).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = ErrDuplicate
	}
	if errors.Is(err, ErrDuplicate) {
		return err
	}
	if err != nil {
		r.logger.Error("Failed to insert credential", zap.String("username", c.Username), zap.Error(err))
		return fmt.Errorf("failed to insert credential: %w", err)
	}

	r.logger.Info("Credential inserted", zap.Int64("id", c.ID), zap.String("username", c.Username))
	return nil
}

// FindByUsername returns ErrNotFound for an unknown username.
func (r *CredentialRepository) FindByUsername(ctx context.Context, username string) (*model.Credential, error) {
	var c model.Credential
	err := r.db.WithContext(ctx).Where("username = ?", username).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to query credential", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to query credential: %w", err)
	}
	return &c, nil
}

// Count returns how many credentials exist for username.
func (r *CredentialRepository) Count(ctx context.Context, username string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Credential{}).Where("username = ?", username).Count(&n).Error
	return n, err
}
