package common

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/bitrise-io/pr-review-bot/logger"
	"github.com/joho/godotenv"
)

const (
	// HostingTokenEnv holds the GitHub access token
	HostingTokenEnv = "GITHUB_TOKEN"
	// DefaultEnvFile is loaded before the credentials are looked up, when present
	DefaultEnvFile = ".env"
)

// Credentials are the secrets a review run needs
type Credentials struct {
	HostingToken string
	ModelAPIKey  string
}

// CredentialOptions controls where credentials are looked up
type CredentialOptions struct {
	// EnvFile is loaded into the environment before lookup. Already set variables win.
	EnvFile string
	// RequireEnvFile makes a missing EnvFile an error instead of being skipped
	RequireEnvFile bool
	// ModelAPIKeyEnv names the variable holding the model provider API key
	ModelAPIKeyEnv string
}

// LoadCredentials resolves the hosting token and the model API key from the environment
func LoadCredentials(opts CredentialOptions) (Credentials, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			if opts.RequireEnvFile || !errors.Is(err, fs.ErrNotExist) {
				return Credentials{}, &ConfigurationError{Message: "failed to load env file " + opts.EnvFile, Err: err}
			}
			logger.Debugf("No env file found at %s, using process environment", opts.EnvFile)
		} else {
			logger.Debugf("Loaded environment from %s", opts.EnvFile)
		}
	}

	keyEnv := opts.ModelAPIKeyEnv
	if keyEnv == "" {
		keyEnv = APIKeyEnv(ProviderOpenRouter)
	}

	token, err := requireEnv(HostingTokenEnv)
	if err != nil {
		return Credentials{}, err
	}
	apiKey, err := requireEnv(keyEnv)
	if err != nil {
		return Credentials{}, err
	}

	return Credentials{
		HostingToken: token,
		ModelAPIKey:  apiKey,
	}, nil
}

func requireEnv(key string) (string, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return "", &ConfigurationError{Missing: key}
	}
	return value, nil
}
