package moderation

import "testing"

func aiSuccess(score float64) AICheckResult {
	return AICheckResult{Score: score, Label: "clean", Success: true}
}

func TestMakeDecisionHardRuleSupremacy(t *testing.T) {
	rule := RuleCheckResult{RuleScore: 5, RuleFlags: []string{FlagMaliciousLink}, HardRuleTriggered: true}

	// 硬规则压倒一切：信任用户、分类器失败、低分都不豁免
	for _, tc := range []struct {
		ai    AICheckResult
		trust int
	}{
		{aiSuccess(0.0), 3},
		{aiSuccess(0.99), 0},
		{AICheckResult{Success: false, Err: "classifier timeout"}, 2},
	} {
		result := MakeDecision(rule, tc.ai, tc.trust)
		if result.Status != StatusRejected || result.Source != SourceRules {
			t.Errorf("hard rule with trust=%d: expected rejected/rules, got %s/%s", tc.trust, result.Status, result.Source)
		}
	}
}

func TestMakeDecisionClassifierFailureFloor(t *testing.T) {
	rule := RuleCheckResult{}
	ai := AICheckResult{Success: false, Err: "classifier not configured"}

	// 分类器不可用时绝不自动通过，哪怕是最高信任等级
	for trust := 0; trust <= 3; trust++ {
		result := MakeDecision(rule, ai, trust)
		if result.Status != StatusPending || result.Source != SourceFallback {
			t.Errorf("trust=%d: expected pending/fallback, got %s/%s", trust, result.Status, result.Source)
		}
		if result.AIScore != nil {
			t.Error("failed classification must not carry an ai score")
		}
	}
}

func TestMakeDecisionTrustGatedAutoApprove(t *testing.T) {
	rule := RuleCheckResult{}
	ai := aiSuccess(0.1)

	for _, trust := range []int{2, 3} {
		result := MakeDecision(rule, ai, trust)
		if result.Status != StatusApproved || result.Source != SourceAI {
			t.Errorf("trust=%d: expected approved/ai, got %s/%s", trust, result.Status, result.Source)
		}
	}

	// 相同输入但信任不足，进人工队列而不是通过
	for _, trust := range []int{0, 1} {
		result := MakeDecision(rule, ai, trust)
		if result.Status != StatusPending || result.Source != SourceAI {
			t.Errorf("trust=%d: expected pending/ai, got %s/%s", trust, result.Status, result.Source)
		}
	}

	// 规则分非 0 不能自动通过
	result := MakeDecision(RuleCheckResult{RuleScore: 1, RuleFlags: []string{FlagExcessiveCaps}}, ai, 3)
	if result.Status != StatusPending {
		t.Errorf("nonzero rule score should block auto-approve, got %s", result.Status)
	}

	// 正好在阈值上（0.15）仍可通过
	result = MakeDecision(rule, aiSuccess(0.15), 2)
	if result.Status != StatusApproved {
		t.Errorf("score at threshold 0.15 should approve, got %s", result.Status)
	}
	result = MakeDecision(rule, aiSuccess(0.16), 2)
	if result.Status != StatusPending {
		t.Errorf("score above threshold should not approve, got %s", result.Status)
	}
}

func TestMakeDecisionHighScoreReject(t *testing.T) {
	rule := RuleCheckResult{}

	for _, trust := range []int{0, 1, 2, 3} {
		result := MakeDecision(rule, aiSuccess(0.9), trust)
		if result.Status != StatusRejected || result.Source != SourceAI {
			t.Errorf("trust=%d score=0.9: expected rejected/ai, got %s/%s", trust, result.Status, result.Source)
		}
	}

	// 阈值边界
	result := MakeDecision(rule, aiSuccess(0.85), 0)
	if result.Status != StatusRejected {
		t.Errorf("score at 0.85 should reject, got %s", result.Status)
	}
	result = MakeDecision(rule, aiSuccess(0.84), 0)
	if result.Status != StatusPending {
		t.Errorf("score below 0.85 without rule score should pend, got %s", result.Status)
	}
}

func TestMakeDecisionCombinedReject(t *testing.T) {
	rule := RuleCheckResult{RuleScore: 3, RuleFlags: []string{FlagProfanity}}

	result := MakeDecision(rule, aiSuccess(0.7), 0)
	if result.Status != StatusRejected || result.Source != SourceAI {
		t.Errorf("rule 3 + ai 0.7: expected rejected/ai, got %s/%s", result.Status, result.Source)
	}

	// 规则分不够
	result = MakeDecision(RuleCheckResult{RuleScore: 2}, aiSuccess(0.7), 0)
	if result.Status != StatusPending {
		t.Errorf("rule 2 + ai 0.7: expected pending, got %s", result.Status)
	}

	// AI 分不够
	result = MakeDecision(rule, aiSuccess(0.6), 0)
	if result.Status != StatusPending {
		t.Errorf("rule 3 + ai 0.6: expected pending, got %s", result.Status)
	}

	// 与高分拒绝分支交叠时结论一致，仍是拒绝
	result = MakeDecision(rule, aiSuccess(0.9), 0)
	if result.Status != StatusRejected {
		t.Errorf("overlapping branches should still reject, got %s", result.Status)
	}
}

func TestMakeDecisionDefaultPending(t *testing.T) {
	result := MakeDecision(RuleCheckResult{RuleScore: 1, RuleFlags: []string{FlagExcessiveCaps}}, aiSuccess(0.5), 1)
	if result.Status != StatusPending || result.Source != SourceAI {
		t.Errorf("middle ground should queue for review, got %s/%s", result.Status, result.Source)
	}
}

func TestMakeDecisionCarriesAuditFields(t *testing.T) {
	rule := RuleCheckResult{RuleScore: 4, RuleFlags: []string{FlagProfanity, FlagExcessiveCaps}}
	ai := AICheckResult{Score: 0.42, Label: "suspicious", Success: true}

	result := MakeDecision(rule, ai, 1)
	if result.RuleScore != 4 || len(result.RuleFlags) != 2 {
		t.Errorf("rule audit fields not carried: %+v", result)
	}
	if result.AIScore == nil || *result.AIScore != 0.42 || result.AILabel != "suspicious" {
		t.Errorf("ai audit fields not carried: %+v", result)
	}
}
