package models

import (
	"time"
)

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Pid       string    `gorm:"uniqueIndex;size:8;not null" json:"pid"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"` // Markdown 原文，展示时渲染
	Views     int       `gorm:"default:0" json:"views"`
	Published bool      `gorm:"default:true;index" json:"published"` // false 为草稿
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 非数据库字段，查询时填充（只统计已通过的评论）
	CommentCount int `gorm:"-" json:"comment_count"`
}
