package rag

import "testing"

func TestIsIdentityQuery(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"我是谁", true},
		{"请告诉我我的信息", true},
		{"who am i", true},
		{"My Profile please", true},
		{"篮球赛什么时候", false},
		{"查询用户列表", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isIdentityQuery(tt.query); got != tt.want {
			t.Errorf("isIdentityQuery(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestMatchesCallerID(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		callerID string
		want     bool
	}{
		{"labelled colon", "用户ID:42 姓名张三", "42", true},
		{"labelled space", "用户ID 42 姓名张三", "42", true},
		{"bare token", "42 的考勤记录", "42", true},
		{"id at end", "记录属于用户42", "42", true},
		{"prefix of longer id", "用户ID:421", "42", false},
		{"suffix of longer id", "用户ID:142", "42", false},
		{"short id inside longer", "用户ID:42", "4", false},
		{"absent", "用户ID:99", "42", false},
		{"empty caller", "用户ID:42", "", false},
		{"letter flank", "uid42x", "42", false},
		{"cjk flank allowed", "编号42号", "42", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesCallerID(tt.text, tt.callerID); got != tt.want {
				t.Errorf("matchesCallerID(%q, %q) = %v, want %v", tt.text, tt.callerID, got, tt.want)
			}
		})
	}
}
