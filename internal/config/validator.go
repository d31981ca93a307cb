package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ValidateConfig validates configuration values and returns an error listing
// every invalid setting. Call it after Load.
func ValidateConfig() error {
	var errors []string

	// Zero disables the per-phase deadline, so only negative values are rejected.
	if viper.IsSet(KeyTimeout) {
		raw := viper.Get(KeyTimeout)
		if d, err := ParseDuration(raw); err != nil {
			errors = append(errors, fmt.Sprintf("timeout is not a valid duration: %q", fmt.Sprint(raw)))
		} else if d < 0 {
			errors = append(errors, fmt.Sprintf("timeout must not be negative, got: %v", raw))
		}
	}

	switch f := viper.GetString(KeyFormat); f {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("format must be text or json, got: %q", f))
	}

	switch m := viper.GetString(KeyOverlapMode); m {
	case "exclusive", "legacy":
	default:
		errors = append(errors, fmt.Sprintf("overlap_mode must be exclusive or legacy, got: %q", m))
	}

	for _, key := range []string{KeyCheckDebug, KeyCheckTypedDebug, KeyCheckReal} {
		if strings.TrimSpace(viper.GetString(key)) == "" {
			errors = append(errors, fmt.Sprintf("%s must not be empty", key))
		}
	}

	if webhook := viper.GetString(KeySlackWebhook); webhook != "" && !strings.HasPrefix(webhook, "http://") && !strings.HasPrefix(webhook, "https://") {
		errors = append(errors, fmt.Sprintf("slack_webhook must be an http(s) URL, got: %q", webhook))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(errors, "\n  "))
	}

	return nil
}
