package models

import (
	"time"
)

// ModerationLog 审核动作的审计记录。自动审核每条一行，管理员改判再追加一行。
type ModerationLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;index" json:"comment_id"`
	Comment   Comment   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comment"`
	UserID    uint      `gorm:"not null;index" json:"user_id"` // 评论作者
	ActorID   *uint     `json:"actor_id"`                      // 手动操作时的管理员，自动审核为空
	Status    string    `gorm:"size:20;not null" json:"status"`
	Source    string    `gorm:"size:20;not null" json:"source"` // rules, ai, manual, fallback
	RuleScore int       `gorm:"default:0" json:"rule_score"`
	RuleFlags string    `gorm:"size:200" json:"rule_flags"`
	AIScore   *float64  `json:"ai_score"`
	AILabel   string    `gorm:"size:30" json:"ai_label"`
	TrustUsed int       `gorm:"default:0" json:"trust_used"` // 决策时采用的信任等级
	CreatedAt time.Time `json:"created_at"`
}
