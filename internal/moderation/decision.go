package moderation

// Status 评论审核状态
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusDeleted  Status = "deleted"
)

// Source 审核结论来自流水线的哪个环节，留作审计
type Source string

const (
	SourceRules    Source = "rules"    // 硬规则命中
	SourceAI       Source = "ai"       // 分类器评分
	SourceManual   Source = "manual"   // 管理员手动操作
	SourceFallback Source = "fallback" // 分类器不可用时的兜底
)

// 决策阈值。这些是策略参数，后续可能调整，集中放这里
const (
	AutoApproveMaxScore        = 0.15 // 自动通过的 AI 分数上限
	AutoRejectMinScore         = 0.85 // 自动拒绝的 AI 分数下限
	CombinedRejectMinScore     = 0.65 // 规则分+AI 分组合拒绝的 AI 分数下限
	CombinedRejectMinRuleScore = 3    // 组合拒绝的规则分下限
	AutoApproveMinTrust        = TrustLevelTrusted
)

// Result 决策引擎的最终输出，调用方原样持久化到评论记录上。
// AIScore/AILabel 仅在分类成功时携带。
type Result struct {
	Status    Status   `json:"status"`
	Source    Source   `json:"source"`
	RuleScore int      `json:"rule_score"`
	RuleFlags []string `json:"rule_flags"`
	AIScore   *float64 `json:"ai_score,omitempty"`
	AILabel   string   `json:"ai_label,omitempty"`
}

// decisionRule 决策矩阵的一行：谓词 + 结论
type decisionRule struct {
	name    string
	match   func(rule RuleCheckResult, ai AICheckResult, trustLevel int) bool
	status  Status
	source  Source
}

// decisionMatrix 按顺序求值，首条命中即生效，不回落重评。
// 注意第 2 条：分类器不可用时绝不自动通过，只能进人工队列，这是安全约束。
// 第 4、5 条在 aiScore>=0.85 且 ruleScore>=3 时有交叠，按既定顺序由第 4 条命中；
// 调整阈值时保持这个顺序，否则语义会悄悄变化。
var decisionMatrix = []decisionRule{
	{
		name: "hard_rule_reject",
		match: func(rule RuleCheckResult, ai AICheckResult, trustLevel int) bool {
			return rule.HardRuleTriggered
		},
		status: StatusRejected, source: SourceRules,
	},
	{
		name: "classifier_unavailable",
		match: func(rule RuleCheckResult, ai AICheckResult, trustLevel int) bool {
			return !ai.Success
		},
		status: StatusPending, source: SourceFallback,
	},
	{
		name: "trusted_auto_approve",
		match: func(rule RuleCheckResult, ai AICheckResult, trustLevel int) bool {
			return trustLevel >= AutoApproveMinTrust && rule.RuleScore == 0 && ai.Score <= AutoApproveMaxScore
		},
		status: StatusApproved, source: SourceAI,
	},
	{
		name: "high_score_reject",
		match: func(rule RuleCheckResult, ai AICheckResult, trustLevel int) bool {
			return ai.Score >= AutoRejectMinScore
		},
		status: StatusRejected, source: SourceAI,
	},
	{
		name: "combined_reject",
		match: func(rule RuleCheckResult, ai AICheckResult, trustLevel int) bool {
			return rule.RuleScore >= CombinedRejectMinRuleScore && ai.Score >= CombinedRejectMinScore
		},
		status: StatusRejected, source: SourceAI,
	},
	{
		name: "default_pending",
		match: func(rule RuleCheckResult, ai AICheckResult, trustLevel int) bool {
			return true
		},
		status: StatusPending, source: SourceAI,
	},
}

// MakeDecision 组合规则检测、信任等级、分类结果得出最终状态。
// 纯函数，任何输入都有结论。所有分支都带回 ruleScore/ruleFlags 供审计。
func MakeDecision(rule RuleCheckResult, ai AICheckResult, trustLevel int) Result {
	result := Result{
		RuleScore: rule.RuleScore,
		RuleFlags: rule.RuleFlags,
	}
	if ai.Success {
		score := ai.Score
		result.AIScore = &score
		result.AILabel = ai.Label
	}

	for _, dr := range decisionMatrix {
		if dr.match(rule, ai, trustLevel) {
			result.Status = dr.status
			result.Source = dr.source
			return result
		}
	}

	// 矩阵末条恒真，到不了这里；兜底进人工队列
	result.Status = StatusPending
	result.Source = SourceFallback
	return result
}
