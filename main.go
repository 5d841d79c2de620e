package main

import (
	"os"

	"github.com/bitrise-io/pr-review-bot/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
