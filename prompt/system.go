package prompt

// GetSystemPrompt returns the system message sent ahead of every review request
func GetSystemPrompt() string {
	return "You are a senior code reviewer."
}
