package repository

import (
	"context"
	"errors"
	"time"

	"github.com/desi-etsy/internal/models"
	"github.com/desi-etsy/internal/otp"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEmailOTPStore 基于数据库的验证码存储，实现 otp.Store 与 otp.Sweeper
type GormEmailOTPStore struct {
	db *gorm.DB
}

// NewEmailOTPStore 创建验证码存储
func NewEmailOTPStore(db *gorm.DB) *GormEmailOTPStore {
	return &GormEmailOTPStore{db: db}
}

// Put 按 identity 覆盖写入
func (s *GormEmailOTPStore) Put(ctx context.Context, record otp.Record) error {
	row := models.EmailOTP{
		Identity:  record.Identity,
		Code:      record.Code,
		IssuedAt:  record.IssuedAt.UTC(),
		ExpiresAt: record.ExpiresAt.UTC(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identity"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "issued_at", "expires_at", "updated_at"}),
	}).Create(&row).Error
}

// Get 读取记录
func (s *GormEmailOTPStore) Get(ctx context.Context, identity string) (*otp.Record, error) {
	var row models.EmailOTP
	if err := s.db.WithContext(ctx).Where("identity = ?", identity).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &otp.Record{
		Identity:  row.Identity,
		Code:      row.Code,
		IssuedAt:  row.IssuedAt,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

// Delete 删除记录
func (s *GormEmailOTPStore) Delete(ctx context.Context, identity string) error {
	return s.db.WithContext(ctx).Where("identity = ?", identity).Delete(&models.EmailOTP{}).Error
}

// DeleteIfMatch 条件删除，以影响行数判断是否命中
func (s *GormEmailOTPStore) DeleteIfMatch(ctx context.Context, identity, code string) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("identity = ? AND code = ?", identity, code).
		Delete(&models.EmailOTP{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Sweep 删除所有已过期记录
func (s *GormEmailOTPStore) Sweep(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", now.UTC()).
		Delete(&models.EmailOTP{})
	return result.RowsAffected, result.Error
}
