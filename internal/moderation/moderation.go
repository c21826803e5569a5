// Package moderation 实现评论审核流水线的核心：规则检测、信任等级计算、
// 内容安全分类适配和决策矩阵，外加评论树重建。
// 本包是纯库，不碰数据库和 HTTP，存储和分类服务都通过窄接口由调用方注入。
package moderation

import "context"

// Pipeline 审核流水线。规则语料在构造时注入，之后只读，可并发使用。
type Pipeline struct {
	detector *Detector

	// HeuristicWhenUnconfigured 为 true 时，未注入分类器的调用改用本地启发式评分，
	// 让流水线在完全没有外部分类服务的部署下仍能得出结论。
	// 这只覆盖"根本没配置"的情况，分类器调用失败永远按失败处理。
	HeuristicWhenUnconfigured bool
}

// NewPipeline 创建流水线，cfg 为 nil 时使用内置规则语料
func NewPipeline(cfg *RuleConfig) *Pipeline {
	return &Pipeline{detector: NewDetector(cfg)}
}

// Moderate 审核一条评论：规则检测 → 内容安全分类 → 决策矩阵。
// trustLevel 由调用方用 CalculateTrustLevel 现算后传入，
// recentContents 是该用户的近期评论窗口，classifier 可为 nil。
// 分类器是唯一会阻塞的环节，内部带 5 秒硬超时。
func (p *Pipeline) Moderate(ctx context.Context, content string, trustLevel int, recentContents []string, classifier Classifier) Result {
	ruleResult := p.detector.CheckHardRules(content, recentContents)

	var aiResult AICheckResult
	if classifier == nil && p.HeuristicWhenUnconfigured {
		aiResult = CheckWithHeuristics(content)
	} else {
		aiResult = CheckContentSafety(ctx, content, classifier)
	}

	return MakeDecision(ruleResult, aiResult, trustLevel)
}

var defaultPipeline = NewPipeline(nil)

// Moderate 包级入口，使用内置规则语料
func Moderate(ctx context.Context, content string, trustLevel int, recentContents []string, classifier Classifier) Result {
	return defaultPipeline.Moderate(ctx, content, trustLevel, recentContents, classifier)
}
