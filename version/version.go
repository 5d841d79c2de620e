package version

// Version is the semantic version of the bot, overridden at build time with
// -ldflags "-X github.com/bitrise-io/pr-review-bot/version.Version=..."
var Version = "0.1.0"
