package models

import (
	"time"
)

type User struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Username      string     `gorm:"not null" json:"username"`
	Email         string     `gorm:"uniqueIndex;not null" json:"email"`
	Password      string     `gorm:"not null" json:"-"`                            // Hash
	Avatar        string     `gorm:"default:🖋️" json:"avatar"`                    // emoji 头像
	Bio           string     `gorm:"size:200" json:"bio"`                          // 个人简介
	Role          string     `gorm:"size:20;default:'user';not null" json:"role"`  // user, admin
	Status        int        `gorm:"default:0" json:"status"`                      // 0:正常, 1:禁言, 2:封禁
	PunishExpires *time.Time `json:"punish_expires"`                               // 惩罚到期时间
	IsTrusted     bool       `gorm:"default:false" json:"is_trusted"`              // 管理员手动信任标记
	TrustLevel    int        `gorm:"default:0" json:"trust_level"`                 // 信任等级提示(0-3)，后台异步刷新，审核时总是现算
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	// No DeletedAt for hard delete
}
