package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mailchimp_wc_v1_202608/internal/model"
)

// ==================== OptionRepository 设置记录仓库 ====================

// OptionRepository 设置记录 (key/value) 仓库接口
type OptionRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	GetAll(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
	// SetAll 合并写入：只覆盖传入的 key，其余字段保持不变
	SetAll(ctx context.Context, fields map[string]string) error
	Delete(ctx context.Context, key string) error
}

// ==================== 实现 ====================

type optionRepository struct {
	db *gorm.DB
}

// NewOptionRepository 创建设置记录仓库
func NewOptionRepository(db *gorm.DB) OptionRepository {
	return &optionRepository{db: db}
}

// Get 读取单个设置项，第二个返回值表示是否存在
func (r *optionRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var opt model.Option
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&opt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return opt.Value, true, nil
}

// GetAll 读取完整设置记录
func (r *optionRepository) GetAll(ctx context.Context) (map[string]string, error) {
	var opts []model.Option
	if err := r.db.WithContext(ctx).Find(&opts).Error; err != nil {
		return nil, err
	}
	result := make(map[string]string, len(opts))
	for _, opt := range opts {
		result[opt.Key] = opt.Value
	}
	return result, nil
}

// Set 写入单个设置项 (upsert)
func (r *optionRepository) Set(ctx context.Context, key, value string) error {
	opt := model.Option{Key: key, Value: value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at", "updated_by"}),
		}).
		Create(&opt).Error
}

// SetAll 合并写入一批设置项，整批一个事务
func (r *optionRepository) SetAll(ctx context.Context, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range fields {
			opt := model.Option{Key: key, Value: value}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at", "updated_by"}),
			}).Create(&opt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete 删除设置项
func (r *optionRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("key = ?", key).Delete(&model.Option{}).Error
}
