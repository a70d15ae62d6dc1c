package config

import (
	"strings"

	"github.com/arthur-debert/deployrev/pkg/errors"
	toml "github.com/pelletier/go-toml/v2"
)

const generatedHeader = "# deployrev configuration\n# Values not set here fall back to the built-in defaults.\n\n"

// GenerateConfigContent renders cfg as a deployrev.toml
func GenerateConfigContent(cfg *Config) (string, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}
	return generatedHeader + string(data), nil
}

// GenerateCommentedDefaults returns the defaults file with every value
// commented out, as a reference to edit from
func GenerateCommentedDefaults() string {
	return commentOutConfigValues(DefaultsContent())
}

// commentOutConfigValues takes the TOML content and comments out all non-comment, non-blank lines
// that contain configuration values (assignments)
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	var result []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// Keep blank lines as-is
		if trimmed == "" {
			result = append(result, line)
			continue
		}

		// Keep lines that are already comments
		if strings.HasPrefix(trimmed, "#") {
			result = append(result, line)
			continue
		}

		// Keep section headers (e.g., [callbacks]) as-is
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") && !strings.Contains(trimmed, "=") {
			result = append(result, line)
			continue
		}

		// Comment out configuration value lines
		result = append(result, "# "+line)
	}

	return strings.Join(result, "\n")
}
