package rag

import "strings"

// synonymExpansions appends domain synonyms when a trigger word is
// present, widening embedding recall without an LLM call.
var synonymExpansions = []struct {
	triggers  []string
	expansion string
}{
	{[]string{"通知", "公告", "notice", "announcement"}, "通知 公告 消息 notification announcement message"},
	{[]string{"课程", "培训", "course", "training"}, "课程 培训 课表 course training lesson"},
	{[]string{"任务", "待办", "task"}, "任务 待办 安排 task todo assignment"},
	{[]string{"考勤", "签到", "请假", "attendance"}, "考勤 签到 出勤 请假 attendance check-in leave"},
	{[]string{"成员", "用户", "学生", "member", "user", "student"}, "成员 用户 学生 member user student"},
	{[]string{"资料", "material", "文档"}, "资料 文档 学习资料 material document"},
}

// EnhanceQuery expands the raw query with domain synonyms keyed by
// keyword presence. The original query always stays first.
func EnhanceQuery(query string) string {
	lower := strings.ToLower(query)
	var sb strings.Builder
	sb.WriteString(query)
	for _, exp := range synonymExpansions {
		for _, trigger := range exp.triggers {
			if strings.Contains(lower, trigger) {
				sb.WriteString(" ")
				sb.WriteString(exp.expansion)
				break
			}
		}
	}
	return sb.String()
}
