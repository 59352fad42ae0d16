package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ValidHostIcons are the accepted values in the [hosts] table.
var ValidHostIcons = []string{"github", "gitlab", "bitbucket"}

// Validate checks field ranges, enum values and path forms.
func (c Config) Validate() error {
	for field, path := range map[string]string{
		"project_dir":   c.ProjectDir,
		"data_dir":      c.DataDir,
		"templates_dir": c.TemplatesDir,
		"fd_path":       c.FdPath,
		"log.file":      c.Log.File,
	} {
		if err := ValidatePath(path, field); err != nil {
			return err
		}
	}

	if c.MaxScanningLevels < 1 {
		return fmt.Errorf("max_scanning_levels must be at least 1, got %d", c.MaxScanningLevels)
	}
	if c.StatusBatchSize < 1 {
		return fmt.Errorf("status_batch_size must be at least 1, got %d", c.StatusBatchSize)
	}
	if c.ScanConcurrency < 1 {
		return fmt.Errorf("scan_concurrency must be at least 1, got %d", c.ScanConcurrency)
	}

	for i, pat := range c.Exclude {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("invalid exclude[%d] %q", i, pat)
		}
	}

	for host, icon := range c.Hosts {
		if err := validateEnum(icon, "icon for host "+host, ValidHostIcons); err != nil {
			return err
		}
	}

	return nil
}

// validateEnum checks that value (if non-empty) is one of the allowed values.
func validateEnum(value, field string, allowed []string) error {
	if value == "" {
		return nil
	}
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s %q: must be %s", field, value, formatOptions(allowed))
	}
	return nil
}

// formatOptions formats a list of allowed values for error messages.
// E.g., ["a", "b", "c"] -> `"a", "b", or "c"`
func formatOptions(opts []string) string {
	quoted := make([]string, len(opts))
	for i, o := range opts {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	if len(quoted) <= 2 {
		return strings.Join(quoted, " or ")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}
