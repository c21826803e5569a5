package models

import (
	"time"
)

// 评论状态。由审核流水线在创建时一次性写入，之后只有管理员操作能改
const (
	CommentStatusPending  = "pending"
	CommentStatusApproved = "approved"
	CommentStatusRejected = "rejected"
	CommentStatusDeleted  = "deleted"
)

type Comment struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	Cid      string   `gorm:"uniqueIndex;size:8;not null" json:"cid"`
	PostID   uint     `gorm:"not null;index" json:"post_id"`
	Post     Post     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"post"`
	UserID   uint     `gorm:"not null;index" json:"user_id"`
	User     User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ParentID *uint    `gorm:"index" json:"parent_id"` // Nullable for top-level comments
	Parent   *Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"parent"`
	Content  string   `gorm:"type:text;not null" json:"content"`

	// 审核结果，moderation.Result 原样落库
	Status    string   `gorm:"size:20;not null;index;default:'pending'" json:"status"`
	ModSource string   `gorm:"size:20" json:"mod_source"`   // rules, ai, manual, fallback
	RuleScore int      `gorm:"default:0" json:"rule_score"` // 规则检测总分
	RuleFlags string   `gorm:"size:200" json:"rule_flags"`  // 逗号分隔的规则标签
	AIScore   *float64 `json:"ai_score"`                    // 分类失败时为空
	AILabel   string   `gorm:"size:30" json:"ai_label"`

	// 置顶展示，与审核状态正交，管理员控制
	IsPinned  bool       `gorm:"default:false" json:"is_pinned"`
	PinnedAt  *time.Time `json:"pinned_at"`
	CreatedAt time.Time  `json:"created_at"`
}
