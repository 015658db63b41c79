package model

// SysUser 后台管理员账号
// 只用于登录设置界面，不涉及店铺顾客
type SysUser struct {
	BaseModel
	Username string `gorm:"size:100;uniqueIndex;not null"`
	Password string `gorm:"size:255;not null"` // bcrypt 哈希
	Email    string `gorm:"size:100"`

	// 系统级角色: admin (管理员), viewer (只读)
	Role string `gorm:"size:20;default:'admin'"`

	IsActive bool `gorm:"default:true"`
}

func (SysUser) TableName() string {
	return "sys_users"
}
