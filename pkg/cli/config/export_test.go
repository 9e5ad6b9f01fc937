package config

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

// NewLLMForTest creates an LLM config for testing purposes
func NewLLMForTest(provider, openAIKey, openAIBaseURL string, dimension int) *LLM {
	return &LLM{
		provider:      provider,
		openAIKey:     openAIKey,
		openAIBaseURL: openAIBaseURL,
		dimension:     dimension,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID string) *Repository {
	return &Repository{backend: backend, projectID: projectID}
}

// NewVectorStoreForTest creates a VectorStore config for testing purposes
func NewVectorStoreForTest(backend, chromemPath string) *VectorStore {
	return &VectorStore{backend: backend, chromemPath: chromemPath}
}

// NewStorageForTest creates a Storage config for testing purposes
func NewStorageForTest(backend, dir string) *Storage {
	return &Storage{backend: backend, dir: dir}
}
