package router

import "studio-assistant-be/pkg/ai/classifier"

// Backend model identifiers
const (
	ModelLite  = "qwen-turbo"      // lightweight default, casual chat
	ModelPlus  = "qwen-plus"       // general studio questions
	ModelMax   = "qwen-max"        // most capable, long/complex input
	ModelCoder = "qwen-coder-plus" // code generation
)

// DefaultModel answers when nothing better can be decided.
const DefaultModel = ModelLite

// categoryModels is the final fallback of the model priority table.
var categoryModels = map[string]string{
	classifier.CategoryCasual:     ModelLite,
	classifier.CategoryNotice:     ModelLite,
	classifier.CategoryStudio:     ModelPlus,
	classifier.CategoryCourse:     ModelPlus,
	classifier.CategoryTask:       ModelPlus,
	classifier.CategoryAttendance: ModelPlus,
	classifier.CategoryUser:       ModelPlus,
	classifier.CategoryCode:       ModelCoder,
	classifier.CategoryTechnical:  ModelMax,
}

// modelRank orders models by capability for complexity comparisons.
func modelRank(model string) int {
	switch model {
	case ModelMax:
		return 3
	case ModelPlus, ModelCoder:
		return 2
	default:
		return 1
	}
}

// rankRequiredFor maps a complexity score to the minimum model rank
// that can adequately serve it.
func rankRequiredFor(complexity int) int {
	switch {
	case complexity >= 8:
		return 3
	case complexity >= 5:
		return 2
	default:
		return 1
	}
}
