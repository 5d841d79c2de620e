package common

import (
	"strconv"
	"strings"
)

// PullRequestRef identifies a single pull request on the hosting platform
type PullRequestRef struct {
	Owner  string
	Name   string
	Number int
}

// FileDiff is a changed file of a pull request with its patch text.
// Patch is empty for binary files and for files the API sends no patch for.
type FileDiff struct {
	Filename string
	Patch    string
}

// ParsePullRequestRef builds a PullRequestRef from the "owner/name" repository form and a PR number
func ParsePullRequestRef(repo, number string) (PullRequestRef, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(repo), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return PullRequestRef{}, &UsageError{Message: "repository must be in owner/name form, got: " + repo}
	}

	n, err := strconv.Atoi(strings.TrimSpace(number))
	if err != nil || n <= 0 {
		return PullRequestRef{}, &UsageError{Message: "pull request number must be a positive integer, got: " + number}
	}

	return PullRequestRef{
		Owner:  owner,
		Name:   name,
		Number: n,
	}, nil
}

// Repo returns the "owner/name" form of the repository
func (ref PullRequestRef) Repo() string {
	return ref.Owner + "/" + ref.Name
}

func (ref PullRequestRef) String() string {
	return ref.Repo() + "#" + strconv.Itoa(ref.Number)
}

// Filenames lists the filenames of the given diffs in order
func Filenames(diffs []FileDiff) []string {
	names := make([]string, len(diffs))
	for i, d := range diffs {
		names[i] = d.Filename
	}
	return names
}
