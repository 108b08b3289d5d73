package vector

import "strings"

// typeContexts injects domain keywords per document type before
// embedding. This improves recall for short records without changing
// the business identity of the stored document.
var typeContexts = map[string]string{
	"notice":     "工作室通知公告",
	"course":     "工作室课程培训",
	"material":   "课程学习资料",
	"task":       "工作室任务安排",
	"attendance": "考勤签到记录",
	"user":       "工作室成员信息",
	"student":    "工作室学生信息",
	"member":     "工作室成员信息",
	"studio":     "工作室基本信息",
}

// PreprocessDocument normalizes whitespace and prefixes type context
// ahead of embedding.
func PreprocessDocument(docType, text string) string {
	normalized := normalizeWhitespace(text)
	if ctx, ok := typeContexts[docType]; ok {
		return ctx + "：" + normalized
	}
	return normalized
}

// normalizeWhitespace collapses runs of whitespace into single spaces
// while keeping newlines, which the chunker treats as boundaries.
func normalizeWhitespace(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	space := false
	for _, r := range text {
		switch r {
		case '\n':
			sb.WriteRune('\n')
			space = false
		case ' ', '\t', '\r':
			space = true
		default:
			if space && sb.Len() > 0 {
				sb.WriteRune(' ')
			}
			space = false
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}
