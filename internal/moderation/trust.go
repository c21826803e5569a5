package moderation

// 信任等级常量，0-3
const (
	TrustLevelNew     = 0 // 新用户，无通过记录
	TrustLevelBasic   = 1 // 有 1 条通过记录，或有近期被拒记录
	TrustLevelTrusted = 2 // 稳定用户，可自动通过
	TrustLevelManual  = 3 // 管理员手动标记的信任用户
)

// UserCommentStats 用户评论历史的统计投影，每次审核时由调用方从库里现算，核心不缓存。
type UserCommentStats struct {
	ApprovedCount       int  // 历史通过的评论数
	HasRecentRejections bool // 回看窗口内（参考策略为 30 天）是否有被拒评论
	IsManuallyTrusted   bool // 管理员手动信任标记
}

// CalculateTrustLevel 由统计投影算出信任等级，自上而下首条命中即返回：
//  1. 手动信任 ⇒ 3，覆盖一切
//  2. 无通过记录 ⇒ 0
//  3. 恰好 1 条通过 ⇒ 1
//  4. ≥2 条通过且近期无被拒 ⇒ 2
//  5. 其余（≥2 条通过但近期有被拒）⇒ 1
func CalculateTrustLevel(stats UserCommentStats) int {
	switch {
	case stats.IsManuallyTrusted:
		return TrustLevelManual
	case stats.ApprovedCount == 0:
		return TrustLevelNew
	case stats.ApprovedCount == 1:
		return TrustLevelBasic
	case !stats.HasRecentRejections:
		return TrustLevelTrusted
	default:
		return TrustLevelBasic
	}
}

// CanAutoApprove 等级 2 及以上才有自动通过资格
func CanAutoApprove(level int) bool {
	return level >= TrustLevelTrusted
}

// CalculateTrustLevelFromDB 用库里存的等级提示重算信任等级。
// 存储值恰好为 3 视作曾被手动信任，重算时保持粘性，不再单独核验。
func CalculateTrustLevelFromDB(approvedCount int, hasRecentRejections bool, currentLevel int) int {
	return CalculateTrustLevel(UserCommentStats{
		ApprovedCount:       approvedCount,
		HasRecentRejections: hasRecentRejections,
		IsManuallyTrusted:   currentLevel == TrustLevelManual,
	})
}
