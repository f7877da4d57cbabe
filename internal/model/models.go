package model

// AllModels is the unified model list used for AutoMigrate.
var AllModels = []interface{}{
	&Project{},
	&Material{},
	&ChecklistItem{},
	&Note{},
	&InterviewAnswer{},
	&ChatThread{},
	&ChatMessage{},
}
