package moderation

import "testing"

func TestCalculateTrustLevel(t *testing.T) {
	cases := []struct {
		name  string
		stats UserCommentStats
		want  int
	}{
		{"new user", UserCommentStats{ApprovedCount: 0}, 0},
		{"one approved", UserCommentStats{ApprovedCount: 1}, 1},
		{"two approved clean", UserCommentStats{ApprovedCount: 2}, 2},
		{"many approved clean", UserCommentStats{ApprovedCount: 50}, 2},
		{"many approved with recent rejection", UserCommentStats{ApprovedCount: 5, HasRecentRejections: true}, 1},
		{"one approved with recent rejection", UserCommentStats{ApprovedCount: 1, HasRecentRejections: true}, 1},
		{"zero approved with recent rejection", UserCommentStats{ApprovedCount: 0, HasRecentRejections: true}, 0},
		{"manual trust overrides everything", UserCommentStats{ApprovedCount: 0, HasRecentRejections: true, IsManuallyTrusted: true}, 3},
		{"manual trust with history", UserCommentStats{ApprovedCount: 100, IsManuallyTrusted: true}, 3},
	}

	for _, tc := range cases {
		got := CalculateTrustLevel(tc.stats)
		if got != tc.want {
			t.Errorf("%s: expected level %d, got %d", tc.name, tc.want, got)
		}
		if got < 0 || got > 3 {
			t.Errorf("%s: level %d out of range", tc.name, got)
		}
	}
}

func TestCanAutoApprove(t *testing.T) {
	for level, want := range map[int]bool{0: false, 1: false, 2: true, 3: true} {
		if CanAutoApprove(level) != want {
			t.Errorf("level %d: expected CanAutoApprove=%v", level, want)
		}
	}
}

func TestCalculateTrustLevelFromDB(t *testing.T) {
	// 库里存 3 视为曾被手动信任，重算后保持粘性
	if got := CalculateTrustLevelFromDB(0, true, 3); got != 3 {
		t.Errorf("stored level 3 should stay sticky, got %d", got)
	}
	// 存 2 不享受粘性，按统计重算
	if got := CalculateTrustLevelFromDB(5, true, 2); got != 1 {
		t.Errorf("stored level 2 with recent rejection should recompute to 1, got %d", got)
	}
	if got := CalculateTrustLevelFromDB(5, false, 0); got != 2 {
		t.Errorf("clean history should recompute to 2, got %d", got)
	}
}
