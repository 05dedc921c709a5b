package models

import "time"

// EmailOTP 邮箱验证码记录，每个邮箱至多一条
type EmailOTP struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                   // 主键
	Identity  string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"identity"` // 邮箱
	Code      string    `gorm:"type:varchar(16);not null" json:"-"`                     // 验证码（不返回给前端）
	IssuedAt  time.Time `gorm:"not null" json:"issued_at"`                              // 签发时间
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`                       // 过期时间
	CreatedAt time.Time `json:"created_at"`                                             // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                             // 更新时间
}

// TableName 指定表名
func (EmailOTP) TableName() string {
	return "email_otps"
}
