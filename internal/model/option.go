package model

// Option 设置记录中的一个字段 (key/value)
// 只保存通过校验的字段，空值不落库
type Option struct {
	BaseModel
	Key   string `gorm:"size:64;uniqueIndex;not null" json:"key"`
	Value string `gorm:"type:text" json:"value"`
	// UpdatedBy 最后修改人，审计回调自动填充
	UpdatedBy int64 `gorm:"index" json:"updated_by"`
}

func (Option) TableName() string {
	return "options"
}
