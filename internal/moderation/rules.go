package moderation

import (
	"regexp"
	"strings"
	"unicode"
)

// 规则标签常量
const (
	FlagMaliciousLink  = "malicious_link"
	FlagExcessiveLinks = "excessive_links"
	FlagProfanity      = "profanity"
	FlagSpamPattern    = "spam_pattern"
	FlagExcessiveCaps  = "excessive_caps"
	FlagDuplicate      = "duplicate_content"
	FlagSimilar        = "similar_content"
)

// RuleCheckResult 规则检测结果，每次提交时计算，不落库（由调用方摘取字段持久化）
type RuleCheckResult struct {
	RuleScore         int      `json:"rule_score"`
	RuleFlags         []string `json:"rule_flags"`
	HardRuleTriggered bool     `json:"hard_rule_triggered"`
}

// RuleConfig 规则检测的全部配置数据。构造后只读，
// 测试时可替换规则语料而不动检测逻辑。
type RuleConfig struct {
	MaliciousLinkPatterns []*regexp.Regexp // 恶意链接（短链接、赌博/药品域名、诱导跳转）
	ProfanityPatterns     []*regexp.Regexp // 脏话、辱骂、威胁用语
	URLPattern            *regexp.Regexp   // 用于统计链接数量
	MaxLinks              int              // 超过该数量标记 excessive_links
	CharRepeatLimit       int              // 单字符连续重复达到该次数视为刷屏
	WordRepeatLimit       int              // 单词连续重复达到该次数视为刷屏
	CapsMinLength         int              // 大写检测的最小内容长度
	CapsMinLetters        int              // 大写检测的最小字母数
	CapsRatio             float64          // 大写字母占比阈值
	SimilarityThreshold   float64          // Jaccard 相似度阈值
	FlagWeights           map[string]int   // 各标签的计分权重
}

// DefaultRuleConfig 返回内置规则语料。
func DefaultRuleConfig() *RuleConfig {
	return &RuleConfig{
		MaliciousLinkPatterns: []*regexp.Regexp{
			// 常见短链接服务，正文里出现基本都是引流
			regexp.MustCompile(`(?i)\b(bit\.ly|tinyurl\.com|goo\.gl|t\.co|is\.gd|ow\.ly|buff\.ly|rb\.gy|cutt\.ly|shorturl\.at)/\S+`),
			// 赌博/药品关键词 + 可疑 TLD 组合
			regexp.MustCompile(`(?i)\b\S*(casino|viagra|cialis|lottery|jackpot|porn)\S*\.(com|net|ru|cn|xyz|top|tk|vip)\b`),
			// "click here ... http" 式诱导跳转
			regexp.MustCompile(`(?i)click\s+here[^\n]{0,40}https?://`),
		},
		ProfanityPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(fuck(ing|er)?|shit(ty)?|bitch|asshole|bastard|cunt|dickhead)\b`),
			regexp.MustCompile(`(?i)\b(idiot|moron|retard|scumbag|loser)s?\b`),
			// 威胁用语需与 you/your 同现才算
			regexp.MustCompile(`(?i)\b(kill|hurt|beat|destroy)\s+(you|your)\b`),
		},
		URLPattern:          regexp.MustCompile(`https?://\S+`),
		MaxLinks:            3,
		CharRepeatLimit:     6,
		WordRepeatLimit:     4,
		CapsMinLength:       20,
		CapsMinLetters:      10,
		CapsRatio:           0.7,
		SimilarityThreshold: 0.8,
		FlagWeights: map[string]int{
			FlagMaliciousLink:  5,
			FlagDuplicate:      4,
			FlagProfanity:      3,
			FlagSpamPattern:    3,
			FlagSimilar:        2,
			FlagExcessiveLinks: 2,
			FlagExcessiveCaps:  1,
		},
	}
}

// 未登记权重的标签按 1 分计
const defaultFlagWeight = 1

// Detector 规则检测器。纯函数集合，无 I/O，可并发使用。
type Detector struct {
	cfg *RuleConfig
}

// NewDetector 创建检测器，cfg 为 nil 时使用内置语料
func NewDetector(cfg *RuleConfig) *Detector {
	if cfg == nil {
		cfg = DefaultRuleConfig()
	}
	return &Detector{cfg: cfg}
}

// CheckHardRules 对内容跑全部子检测，各子检测独立执行，标签取并集去重后计分。
// recentContents 为该用户近期评论内容，用于重复/相似检测，可为空。
func (d *Detector) CheckHardRules(content string, recentContents []string) RuleCheckResult {
	var flags []string
	flags = append(flags, d.checkMaliciousLinks(content)...)
	flags = append(flags, d.checkProfanity(content)...)
	flags = append(flags, d.checkSpamPatterns(content)...)
	flags = append(flags, d.checkExcessiveCaps(content)...)
	flags = append(flags, d.checkDuplicate(content, recentContents)...)

	flags = dedupFlags(flags)

	score := 0
	hard := false
	for _, f := range flags {
		if w, ok := d.cfg.FlagWeights[f]; ok {
			score += w
		} else {
			score += defaultFlagWeight
		}
		// 恶意链接与完全重复是硬规则，单独即构成拒绝理由
		if f == FlagMaliciousLink || f == FlagDuplicate {
			hard = true
		}
	}

	return RuleCheckResult{
		RuleScore:         score,
		RuleFlags:         flags,
		HardRuleTriggered: hard,
	}
}

func (d *Detector) checkMaliciousLinks(content string) []string {
	var flags []string
	for _, p := range d.cfg.MaliciousLinkPatterns {
		if p.MatchString(content) {
			flags = append(flags, FlagMaliciousLink)
			break
		}
	}
	if len(d.cfg.URLPattern.FindAllStringIndex(content, -1)) > d.cfg.MaxLinks {
		flags = append(flags, FlagExcessiveLinks)
	}
	return flags
}

func (d *Detector) checkProfanity(content string) []string {
	for _, p := range d.cfg.ProfanityPatterns {
		if p.MatchString(content) {
			return []string{FlagProfanity}
		}
	}
	return nil
}

// checkSpamPatterns 检测刷屏：单字符连续重复，或同一单词（忽略大小写）连续重复。
// Go 的 regexp（RE2）不支持反向引用，这里用线性扫描实现。
func (d *Detector) checkSpamPatterns(content string) []string {
	count := 1
	prev := rune(-1)
	for _, r := range content {
		if r == prev {
			count++
			if count >= d.cfg.CharRepeatLimit {
				return []string{FlagSpamPattern}
			}
		} else {
			count = 1
			prev = r
		}
	}

	words := strings.Fields(content)
	count = 1
	prevWord := ""
	for _, w := range words {
		lower := strings.ToLower(w)
		if lower == prevWord && lower != "" {
			count++
			if count >= d.cfg.WordRepeatLimit {
				return []string{FlagSpamPattern}
			}
		} else {
			count = 1
			prevWord = lower
		}
	}
	return nil
}

// checkExcessiveCaps 大写字母占比检测。内容太短或字母太少时不评估，避免误伤缩写。
func (d *Detector) checkExcessiveCaps(content string) []string {
	if len([]rune(content)) < d.cfg.CapsMinLength {
		return nil
	}
	letters, uppers := 0, 0
	for _, r := range content {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				uppers++
			}
		}
	}
	if letters < d.cfg.CapsMinLetters {
		return nil
	}
	if float64(uppers)/float64(letters) > d.cfg.CapsRatio {
		return []string{FlagExcessiveCaps}
	}
	return nil
}

// checkDuplicate 归一化后与近期评论逐条比对：完全一致立即返回 duplicate_content，
// 否则对全部条目计算词集 Jaccard 相似度，超阈值标记 similar_content。
func (d *Detector) checkDuplicate(content string, recentContents []string) []string {
	if len(recentContents) == 0 {
		return nil
	}
	normalized := normalizeContent(content)
	if normalized == "" {
		return nil
	}

	similar := false
	words := contentWordSet(normalized)
	for _, recent := range recentContents {
		recentNorm := normalizeContent(recent)
		if recentNorm == "" {
			continue
		}
		if recentNorm == normalized {
			return []string{FlagDuplicate}
		}
		if jaccardSimilarity(words, contentWordSet(recentNorm)) > d.cfg.SimilarityThreshold {
			similar = true
		}
	}
	if similar {
		return []string{FlagSimilar}
	}
	return nil
}

// normalizeContent 小写、去标点、压缩空白
func normalizeContent(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// contentWordSet 取长度大于 2 的词构成集合，短词（the、a、了 之类）不参与相似度
func contentWordSet(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(normalized) {
		if len([]rune(w)) > 2 {
			set[w] = struct{}{}
		}
	}
	return set
}

func jaccardSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func dedupFlags(flags []string) []string {
	if len(flags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(flags))
	out := flags[:0]
	for _, f := range flags {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
