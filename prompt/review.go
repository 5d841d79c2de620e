package prompt

import (
	"github.com/bitrise-io/pr-review-bot/common"
)

// GetReviewPrompt embeds the rendered diff block into the review instructions
func GetReviewPrompt(fileDiffs string) string {
	return `
You are a senior software engineer reviewing a pull request.

The PR changes are below:
` + fileDiffs + `


Write a structured PR review with the following format:

📄 File: <file_name>
🔍 PR Review Summary

1. 📖 Documentation
   - [Suggestion] ...

2. ✅ Style & Readability
   - [Optional] ...

3. 🧪 Testing
   - [Critical] ...

4. 🔒 Error Handling
   - [Suggestion] ...

5. 🚀 Scalability & Future Considerations
   - [Optional] ...

---

📊 PR Metrics:
- Files changed
- Functions modified
- Lines changed

✅ Final Verdict: Approved / Needs minor improvements / Needs major changes
`
}

// BuildReviewPrompt renders the diffs into the user prompt, enforcing the configured limits
func BuildReviewPrompt(diffs []common.FileDiff, limits common.Limits) (string, error) {
	userPrompt := GetReviewPrompt(RenderDiffs(diffs, limits.MaxPatchBytes))

	if limits.MaxPromptBytes > 0 && len(userPrompt) > limits.MaxPromptBytes {
		return "", &common.PromptTooLargeError{
			Size:  len(userPrompt),
			Limit: limits.MaxPromptBytes,
			Files: len(diffs),
		}
	}

	return userPrompt, nil
}
