package classifier

// Category identifiers for the studio knowledge base
const (
	CategoryCasual     = "casual"
	CategoryStudio     = "studio_management"
	CategoryCourse     = "course"
	CategoryTask       = "task"
	CategoryAttendance = "attendance"
	CategoryNotice     = "notice"
	CategoryUser       = "user"
	CategoryCode       = "code_generation"
	CategoryTechnical  = "technical"
)

// Usage scenarios a query can fall into
const (
	ScenarioQuery      = "query"
	ScenarioManagement = "management"
	ScenarioPermission = "permission"
	ScenarioProcessing = "processing"
)

// CategoryRule maps a category to its trigger keywords.
type CategoryRule struct {
	Category string
	Keywords []string
}

// ScenarioRule maps a usage scenario to its trigger keywords.
type ScenarioRule struct {
	Scenario string
	Keywords []string
}

// DefaultRules returns the built-in category keyword table.
// Keywords are bilingual (Chinese + English) because studio users mix both.
func DefaultRules() []CategoryRule {
	return []CategoryRule{
		{
			Category: CategoryCasual,
			Keywords: []string{
				"你好", "您好", "嗨", "哈喽", "谢谢", "再见", "早上好", "晚上好", "辛苦了",
				"hi", "hello", "hey", "thanks", "thank you", "bye", "good morning",
			},
		},
		{
			Category: CategoryStudio,
			Keywords: []string{
				"工作室", "studio", "部门", "职位", "成员管理", "团队", "方向", "管理",
				"department", "position", "team", "direction",
			},
		},
		{
			Category: CategoryCourse,
			Keywords: []string{
				"课程", "培训", "课表", "上课", "讲师", "报名", "学习资料",
				"course", "training", "lesson", "class", "teacher", "enroll",
			},
		},
		{
			Category: CategoryTask,
			Keywords: []string{
				"任务", "待办", "进度", "提交", "截止", "分配", "审批",
				"task", "todo", "deadline", "progress", "assign", "submit",
			},
		},
		{
			Category: CategoryAttendance,
			Keywords: []string{
				"考勤", "签到", "请假", "出勤", "打卡", "缺勤", "迟到",
				"attendance", "check in", "leave", "absent", "late",
			},
		},
		{
			Category: CategoryNotice,
			Keywords: []string{
				"通知", "公告", "消息", "动态", "发布了什么",
				"notice", "announcement", "notification", "news",
			},
		},
		{
			Category: CategoryUser,
			Keywords: []string{
				"我是谁", "我的信息", "个人资料", "用户", "学生", "成员", "联系方式",
				"who am i", "my info", "my profile", "user", "student", "member", "profile",
			},
		},
		{
			Category: CategoryCode,
			Keywords: []string{
				"写代码", "写个函数", "生成代码", "脚本", "实现一个", "bug", "报错",
				"write code", "generate code", "function", "script", "implement", "refactor",
			},
		},
		{
			Category: CategoryTechnical,
			Keywords: []string{
				"原理", "架构", "算法", "性能", "数据库", "部署", "配置",
				"architecture", "algorithm", "performance", "database", "deploy",
			},
		},
	}
}

// DefaultScenarioRules returns the built-in scenario keyword table.
func DefaultScenarioRules() []ScenarioRule {
	return []ScenarioRule{
		{
			Scenario: ScenarioQuery,
			Keywords: []string{"查询", "查看", "是什么", "有哪些", "多少", "谁", "什么时候", "show", "list", "what", "when", "who", "how many"},
		},
		{
			Scenario: ScenarioManagement,
			Keywords: []string{"添加", "删除", "修改", "新增", "创建", "更新", "移除", "add", "delete", "modify", "create", "update", "remove"},
		},
		{
			Scenario: ScenarioPermission,
			Keywords: []string{"权限", "角色", "授权", "可以吗", "允许", "permission", "role", "access", "allowed"},
		},
		{
			Scenario: ScenarioProcessing,
			Keywords: []string{"处理", "审批", "导出", "统计", "汇总", "分析", "process", "approve", "export", "analyze", "summarize"},
		},
	}
}

// Situational boost word lists
var (
	identityWords = []string{"我是谁", "我的", "我叫", "who am i", "my ", " me ", "myself"}
	countingWords = []string{"多少", "几个", "几次", "几门", "数量", "how many", "count", "total"}
	recencyWords  = []string{"最近", "最新", "今天", "本周", "这周", "刚刚", "latest", "recent", "today", "this week"}
	manageVerbs   = []string{"添加", "删除", "修改", "新增", "移除", "add", "delete", "modify", "remove"}
)

// Categories that carry countable statistics
var statBearingCategories = map[string]bool{
	CategoryUser:       true,
	CategoryCourse:     true,
	CategoryTask:       true,
	CategoryAttendance: true,
}

// Categories whose content goes stale quickly
var timeSensitiveCategories = map[string]bool{
	CategoryNotice:     true,
	CategoryTask:       true,
	CategoryAttendance: true,
}
