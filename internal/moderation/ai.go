package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// 分类器调用参数
const (
	ClassifierTimeout     = 5 * time.Second // 单次调用硬超时，超时即视为失败，不重试
	classifierMaxTokens   = 300             // 限制返回长度，JSON 结果用不了多少
	classifierTemperature = 0.1             // 低温采样，尽量保证结果稳定
)

// Classifier 外部内容分类服务的调用契约。实现方需在 ctx 取消时中止请求。
type Classifier interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// AICheckResult 分类结果。Success=false 时 Score 为 0，Err 说明原因。
type AICheckResult struct {
	Score   float64 `json:"ai_score"`
	Label   string  `json:"ai_label"`
	Success bool    `json:"success"`
	Err     string  `json:"error,omitempty"`
}

// classifierScores 分类器返回的严格 JSON 载荷，解析成功才可信。
// 解析失败走 error 分支，不会产出半成品结果。
type classifierScores struct {
	Spam          float64
	Toxic         float64
	Inappropriate float64
	Overall       float64
	Label         string
}

const safetyPromptTemplate = `You are a content moderation assistant for a blog comment section.
Rate the following comment on three axes, each a number between 0 and 1:
- spam: advertising, link farming, irrelevant promotion
- toxic: insults, harassment, threats
- inappropriate: adult content, illegal activity, hate speech

Respond with strict JSON only, no explanation, in exactly this shape:
{"spam": 0.0, "toxic": 0.0, "inappropriate": 0.0, "overall": 0.0, "label": "clean"}

"overall" is your combined risk score, "label" is one of: clean, suspicious, spam, toxic, inappropriate.

Comment:
%s`

// CheckContentSafety 调用外部分类服务给内容打分。
// 未配置分类器、调用超时、传输失败、JSON 不合法都按失败处理，
// 失败编码在结果里返回，绝不让失败静默变成"通过"。
func CheckContentSafety(ctx context.Context, content string, classifier Classifier) AICheckResult {
	if classifier == nil {
		return AICheckResult{Success: false, Err: "classifier not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, ClassifierTimeout)
	defer cancel()

	raw, err := classifier.Complete(ctx, buildSafetyPrompt(content), classifierMaxTokens, classifierTemperature)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return AICheckResult{Success: false, Err: "classifier timeout"}
		}
		return AICheckResult{Success: false, Err: "classifier call failed: " + err.Error()}
	}

	scores, err := parseClassifierResponse(raw)
	if err != nil {
		return AICheckResult{Success: false, Err: "failed to parse classifier response: " + err.Error()}
	}

	return AICheckResult{
		Score:   scores.Overall,
		Label:   scores.Label,
		Success: true,
	}
}

// 模型偶尔会把 JSON 包在 markdown 代码块里，取第一个 {...} 再解析
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// parseClassifierResponse 严格解析分类结果：四个数值字段和 label 缺一不可，
// 数值统一钳制到 [0,1]。
func parseClassifierResponse(raw string) (*classifierScores, error) {
	match := jsonObjectPattern.FindString(raw)
	if match == "" {
		return nil, errors.New("no JSON object in response")
	}

	var payload struct {
		Spam          *float64 `json:"spam"`
		Toxic         *float64 `json:"toxic"`
		Inappropriate *float64 `json:"inappropriate"`
		Overall       *float64 `json:"overall"`
		Label         *string  `json:"label"`
	}
	if err := json.Unmarshal([]byte(match), &payload); err != nil {
		return nil, err
	}
	if payload.Spam == nil || payload.Toxic == nil || payload.Inappropriate == nil ||
		payload.Overall == nil || payload.Label == nil {
		return nil, errors.New("missing required fields")
	}

	return &classifierScores{
		Spam:          clampScore(*payload.Spam),
		Toxic:         clampScore(*payload.Toxic),
		Inappropriate: clampScore(*payload.Inappropriate),
		Overall:       clampScore(*payload.Overall),
		Label:         *payload.Label,
	}, nil
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// 启发式评分关键词，权重小额累加，封顶 1.0
var heuristicPatterns = []struct {
	pattern *regexp.Regexp
	weight  float64
}{
	{regexp.MustCompile(`(?i)\b(buy now|limited offer|100% free|make money|work from home)\b`), 0.35},
	{regexp.MustCompile(`(?i)\b(free (money|gift|prize)|earn \$|\$\d{3,})`), 0.3},
	{regexp.MustCompile(`https?://\S+`), 0.15},
	{regexp.MustCompile(`(?i)\b(hate|stupid|trash|garbage)\b`), 0.2},
	{regexp.MustCompile(`[!?]{3,}`), 0.1},
}

// CheckWithHeuristics 本地启发式评分，给完全没有接入分类服务的部署用。
// 注意它返回 Success=true，这样决策引擎依然能得出结论——这是刻意设计，
// 与"分类器调用失败"是两回事，后者永远不能伪装成成功。
func CheckWithHeuristics(content string) AICheckResult {
	score := 0.0
	for _, h := range heuristicPatterns {
		if h.pattern.MatchString(content) {
			score += h.weight
		}
	}
	if score > 1.0 {
		score = 1.0
	}

	label := "clean"
	switch {
	case score >= 0.7:
		label = "spam"
	case score >= 0.3:
		label = "suspicious"
	}

	return AICheckResult{
		Score:   score,
		Label:   label,
		Success: true,
	}
}

// 便于测试里确认提示词包含原始内容
func buildSafetyPrompt(content string) string {
	return fmt.Sprintf(safetyPromptTemplate, strings.TrimSpace(content))
}
