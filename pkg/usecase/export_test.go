package usecase

// BuildSystemPrompt is exported for testing
var BuildSystemPrompt = buildSystemPrompt

// AssembleMessages is exported for testing
var AssembleMessages = assembleMessages

// JoinPassages is exported for testing
var JoinPassages = joinPassages
