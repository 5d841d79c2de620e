package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bitrise-io/pr-review-bot/common"
)

// RenderDiffs renders the changed files into a single text block, one
// "File:/Patch:" entry per file separated by blank lines.
// Patches longer than maxPatchBytes are cut; zero disables the cut.
func RenderDiffs(diffs []common.FileDiff, maxPatchBytes int) string {
	var sb strings.Builder
	for _, d := range diffs {
		sb.WriteString("\n\nFile: ")
		sb.WriteString(d.Filename)
		sb.WriteString("\nPatch:\n")
		sb.WriteString(TruncatePatch(d.Patch, maxPatchBytes))
	}
	return sb.String()
}

// TruncatePatch shortens patch to at most limit bytes on a rune boundary and
// appends a marker with the omitted size. A limit <= 0 keeps the patch as is.
func TruncatePatch(patch string, limit int) string {
	if limit <= 0 || len(patch) <= limit {
		return patch
	}

	cut := limit
	for cut > 0 && !utf8.RuneStart(patch[cut]) {
		cut--
	}

	return patch[:cut] + fmt.Sprintf("\n... [patch truncated: %d bytes omitted]", len(patch)-cut)
}
