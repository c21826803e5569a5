package services

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"moke/internal/db"
	"moke/internal/models"
	"moke/internal/moderation"
)

// 统计窗口
const (
	RecentRejectionWindowDays = 30 // 信任计算回看多少天内的被拒记录
	RecentContentWindow       = 10 // 重复检测比对的近期评论条数
)

// ModerationService 审核流水线与存储层之间的胶水：现算用户统计、
// 取近期评论窗口、挑选分类器、落库审计记录。核心算法都在 moderation 包里。
type ModerationService struct {
	pipeline *moderation.Pipeline
}

var (
	moderationService *ModerationService
	moderationOnce    sync.Once
)

// GetModerationService 获取单例审核服务
func GetModerationService() *ModerationService {
	moderationOnce.Do(func() {
		pipeline := moderation.NewPipeline(nil)
		// 没接 LLM 的部署可以显式打开本地启发式评分，否则所有评论都进人工队列
		pipeline.HeuristicWhenUnconfigured = os.Getenv("MODERATION_HEURISTICS") == "true"
		moderationService = &ModerationService{pipeline: pipeline}
	})
	return moderationService
}

// BuildUserStats 从评论历史现算用户统计投影，每次审核都重新算，不读缓存
func (s *ModerationService) BuildUserStats(user *models.User) moderation.UserCommentStats {
	var approved int64
	db.DB.Model(&models.Comment{}).
		Where("user_id = ? AND status = ?", user.ID, models.CommentStatusApproved).
		Count(&approved)

	since := time.Now().AddDate(0, 0, -RecentRejectionWindowDays)
	var rejected int64
	db.DB.Model(&models.Comment{}).
		Where("user_id = ? AND status = ? AND created_at >= ?", user.ID, models.CommentStatusRejected, since).
		Count(&rejected)

	return moderation.UserCommentStats{
		ApprovedCount:       int(approved),
		HasRecentRejections: rejected > 0,
		IsManuallyTrusted:   user.IsTrusted,
	}
}

// RecentContents 取用户最近发布的评论内容，用于重复/相似检测
func (s *ModerationService) RecentContents(userID uint) []string {
	var contents []string
	db.DB.Model(&models.Comment{}).
		Where("user_id = ? AND status <> ?", userID, models.CommentStatusDeleted).
		Order("created_at DESC").
		Limit(RecentContentWindow).
		Pluck("content", &contents)
	return contents
}

// ModerateComment 跑完整审核流水线并把结果填到评论上（不负责保存评论本身）。
// 返回决策结果和决策时采用的信任等级。
func (s *ModerationService) ModerateComment(ctx context.Context, user *models.User, comment *models.Comment) (moderation.Result, int) {
	stats := s.BuildUserStats(user)
	trustLevel := moderation.CalculateTrustLevel(stats)
	recent := s.RecentContents(user.ID)

	var classifier moderation.Classifier
	if llm := GetLLMService(); llm.Configured() {
		classifier = llm
	}

	result := s.pipeline.Moderate(ctx, comment.Content, trustLevel, recent, classifier)

	comment.Status = string(result.Status)
	comment.ModSource = string(result.Source)
	comment.RuleScore = result.RuleScore
	comment.RuleFlags = strings.Join(result.RuleFlags, ",")
	comment.AIScore = result.AIScore
	comment.AILabel = result.AILabel

	return result, trustLevel
}

// LogDecision 写一条审计记录。自动审核 actorID 传 nil，管理员改判传操作人
func (s *ModerationService) LogDecision(comment *models.Comment, result moderation.Result, trustLevel int, actorID *uint) {
	entry := models.ModerationLog{
		CommentID: comment.ID,
		UserID:    comment.UserID,
		ActorID:   actorID,
		Status:    string(result.Status),
		Source:    string(result.Source),
		RuleScore: result.RuleScore,
		RuleFlags: strings.Join(result.RuleFlags, ","),
		AIScore:   result.AIScore,
		AILabel:   result.AILabel,
		TrustUsed: trustLevel,
	}
	db.DB.Create(&entry)
}

// LogManualAction 管理员手动改判的审计记录
func (s *ModerationService) LogManualAction(comment *models.Comment, status string, actorID uint) {
	entry := models.ModerationLog{
		CommentID: comment.ID,
		UserID:    comment.UserID,
		ActorID:   &actorID,
		Status:    status,
		Source:    string(moderation.SourceManual),
	}
	db.DB.Create(&entry)
}
