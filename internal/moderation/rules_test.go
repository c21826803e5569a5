package moderation

import (
	"regexp"
	"testing"
)

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}

func TestCheckHardRulesCleanContent(t *testing.T) {
	d := NewDetector(nil)

	result := d.CheckHardRules("This is a great article!", nil)
	if result.HardRuleTriggered {
		t.Error("clean content should not trigger hard rules")
	}
	if result.RuleScore != 0 {
		t.Errorf("expected rule score 0, got %d", result.RuleScore)
	}
	if len(result.RuleFlags) != 0 {
		t.Errorf("expected no flags, got %v", result.RuleFlags)
	}
}

func TestCheckHardRulesMaliciousLink(t *testing.T) {
	d := NewDetector(nil)

	cases := []string{
		"check this out bit.ly/abc123",
		"bit.ly/abc123",
		"visit tinyurl.com/xyz now",
		"best-casino-offers.ru has deals",
		"Click here to claim your prize https://example.com/win",
	}
	for _, content := range cases {
		result := d.CheckHardRules(content, nil)
		if !hasFlag(result.RuleFlags, FlagMaliciousLink) {
			t.Errorf("content %q: expected malicious_link flag, got %v", content, result.RuleFlags)
		}
		if !result.HardRuleTriggered {
			t.Errorf("content %q: malicious link should trigger hard rule", content)
		}
		if result.RuleScore < 5 {
			t.Errorf("content %q: expected score >= 5, got %d", content, result.RuleScore)
		}
	}
}

func TestCheckHardRulesExcessiveLinks(t *testing.T) {
	d := NewDetector(nil)

	content := "see https://a.com https://b.com https://c.com https://d.com"
	result := d.CheckHardRules(content, nil)
	if !hasFlag(result.RuleFlags, FlagExcessiveLinks) {
		t.Errorf("4 URLs should flag excessive_links, got %v", result.RuleFlags)
	}
	if result.HardRuleTriggered {
		t.Error("excessive_links alone is not a hard rule")
	}

	// 正好 3 条不触发
	content = "see https://a.com https://b.com https://c.com"
	result = d.CheckHardRules(content, nil)
	if hasFlag(result.RuleFlags, FlagExcessiveLinks) {
		t.Error("3 URLs should not flag excessive_links")
	}
}

func TestCheckHardRulesProfanity(t *testing.T) {
	d := NewDetector(nil)

	result := d.CheckHardRules("you are an idiot", nil)
	if !hasFlag(result.RuleFlags, FlagProfanity) {
		t.Errorf("expected profanity flag, got %v", result.RuleFlags)
	}
	if result.RuleScore != 3 {
		t.Errorf("profanity alone should score 3, got %d", result.RuleScore)
	}
	if result.HardRuleTriggered {
		t.Error("profanity is not a hard rule")
	}

	// 威胁用语需与 you/your 同现
	result = d.CheckHardRules("I will kill you", nil)
	if !hasFlag(result.RuleFlags, FlagProfanity) {
		t.Errorf("threat phrasing should flag profanity, got %v", result.RuleFlags)
	}
	result = d.CheckHardRules("this process will kill the server", nil)
	if hasFlag(result.RuleFlags, FlagProfanity) {
		t.Error("kill without you/your should not flag")
	}
}

func TestCheckHardRulesSpamPattern(t *testing.T) {
	d := NewDetector(nil)

	// 单字符连刷 6 次
	result := d.CheckHardRules("soooooo cool", nil)
	if !hasFlag(result.RuleFlags, FlagSpamPattern) {
		t.Errorf("6 repeated chars should flag spam_pattern, got %v", result.RuleFlags)
	}

	// 5 次不触发
	result = d.CheckHardRules("sooooo cool", nil)
	if hasFlag(result.RuleFlags, FlagSpamPattern) {
		t.Error("5 repeated chars should not flag")
	}

	// 单词连续重复 4 次，大小写不敏感
	result = d.CheckHardRules("buy Buy BUY buy this thing", nil)
	if !hasFlag(result.RuleFlags, FlagSpamPattern) {
		t.Errorf("4 consecutive repeated words should flag, got %v", result.RuleFlags)
	}

	result = d.CheckHardRules("buy buy buy something", nil)
	if hasFlag(result.RuleFlags, FlagSpamPattern) {
		t.Error("3 consecutive repeated words should not flag")
	}
}

func TestCheckHardRulesExcessiveCaps(t *testing.T) {
	d := NewDetector(nil)

	result := d.CheckHardRules("THIS IS ABSOLUTELY OUTRAGEOUS CONTENT", nil)
	if !hasFlag(result.RuleFlags, FlagExcessiveCaps) {
		t.Errorf("all caps long content should flag, got %v", result.RuleFlags)
	}
	if result.RuleScore != 1 {
		t.Errorf("excessive_caps should score 1, got %d", result.RuleScore)
	}

	// 内容太短不评估
	result = d.CheckHardRules("OK THANKS", nil)
	if hasFlag(result.RuleFlags, FlagExcessiveCaps) {
		t.Error("short content should not be evaluated for caps")
	}

	// 大写占比不到 70% 不触发
	result = d.CheckHardRules("THIS is a mostly lowercase sentence here", nil)
	if hasFlag(result.RuleFlags, FlagExcessiveCaps) {
		t.Error("low caps ratio should not flag")
	}
}

func TestCheckHardRulesDuplicate(t *testing.T) {
	d := NewDetector(nil)

	recent := []string{"honestly I love this wonderful insightful post so much", "totally unrelated comment"}

	// 标点和大小写差异不影响完全匹配
	result := d.CheckHardRules("Honestly, I love this wonderful insightful post SO much!!", recent)
	if !hasFlag(result.RuleFlags, FlagDuplicate) {
		t.Errorf("normalized exact match should flag duplicate, got %v", result.RuleFlags)
	}
	if !result.HardRuleTriggered {
		t.Error("duplicate_content should trigger hard rule")
	}

	// 高度相似但不完全一致（词集交 7 并 8，Jaccard ≈ 0.88）
	result = d.CheckHardRules("honestly I love this wonderful insightful post so very much", recent)
	if hasFlag(result.RuleFlags, FlagDuplicate) {
		t.Error("near-duplicate should not flag exact duplicate")
	}
	if !hasFlag(result.RuleFlags, FlagSimilar) {
		t.Errorf("near-duplicate should flag similar_content, got %v", result.RuleFlags)
	}

	// 没有历史就没有重复
	result = d.CheckHardRules("I love this post so much", nil)
	if hasFlag(result.RuleFlags, FlagDuplicate) || hasFlag(result.RuleFlags, FlagSimilar) {
		t.Error("no recent contents should produce no duplicate flags")
	}
}

func TestCheckHardRulesScoreSummation(t *testing.T) {
	d := NewDetector(nil)

	// 脏话 3 分 + 刷屏 3 分，不封顶
	result := d.CheckHardRules("you idiot idiot idiot idiot idiot", nil)
	if !hasFlag(result.RuleFlags, FlagProfanity) || !hasFlag(result.RuleFlags, FlagSpamPattern) {
		t.Fatalf("expected profanity and spam_pattern, got %v", result.RuleFlags)
	}
	if result.RuleScore != 6 {
		t.Errorf("expected summed score 6, got %d", result.RuleScore)
	}
}

func TestCheckHardRulesFlagsDeduplicated(t *testing.T) {
	d := NewDetector(nil)

	result := d.CheckHardRules("bit.ly/a and also tinyurl.com/b click here https://x.com", nil)
	seen := make(map[string]int)
	for _, f := range result.RuleFlags {
		seen[f]++
	}
	for f, n := range seen {
		if n > 1 {
			t.Errorf("flag %s appears %d times, flags must be deduplicated", f, n)
		}
	}
}

func TestDetectorCustomConfig(t *testing.T) {
	// 替换规则语料不动检测逻辑
	cfg := DefaultRuleConfig()
	cfg.ProfanityPatterns = []*regexp.Regexp{regexp.MustCompile(`(?i)\bbamboo\b`)}
	d := NewDetector(cfg)

	result := d.CheckHardRules("I like bamboo", nil)
	if !hasFlag(result.RuleFlags, FlagProfanity) {
		t.Errorf("custom corpus should drive detection, got %v", result.RuleFlags)
	}
}
