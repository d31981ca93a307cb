package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. TIDYSTAT_TIMEOUT.
const EnvPrefix = "TIDYSTAT"

// Configuration keys.
const (
	KeyVerbose      = "verbose"
	KeyLogFile      = "log_file"
	KeyFormat       = "format"
	KeyClangTidy    = "clang_tidy"
	KeyTarget       = "target"
	KeyOutput       = "output"
	KeyTimeout      = "timeout"
	KeyOverlapMode  = "overlap_mode"
	KeyExtraArgs    = "extra_args"
	KeyHistoryFile  = "history_file"
	KeyHistoryDB    = "history_db"
	KeyMetricsAddr  = "metrics_addr"
	KeySlackWebhook = "slack_webhook"

	KeyCheckDebug      = "checks.debug"
	KeyCheckTypedDebug = "checks.typed_debug"
	KeyCheckReal       = "checks.real"
)

// ErrMissingFlag is returned by Require when a mandatory setting is empty.
var ErrMissingFlag = errors.New("required setting not provided")

// SetDefaults registers the built-in defaults.
func SetDefaults() {
	viper.SetDefault(KeyVerbose, false)
	viper.SetDefault(KeyFormat, "text")
	viper.SetDefault(KeyTimeout, "30m")
	viper.SetDefault(KeyOverlapMode, "exclusive")
	viper.SetDefault(KeyHistoryFile, ".tidystat/timings.json")
	viper.SetDefault(KeyCheckDebug, "modernize-use-checked-arithmetic-debug")
	viper.SetDefault(KeyCheckTypedDebug, "modernize-use-checked-arithmetic-typed-debug")
	viper.SetDefault(KeyCheckReal, "modernize-use-checked-arithmetic")
}

// Load initializes the configuration from defaults, an optional config file,
// a .env file and the environment, in increasing order of precedence.
// A missing config file is not an error; a malformed one is.
func Load(cfgFile string) error {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		if cfgFile == "" && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	return nil
}

// Duration reads a duration setting. Plain numbers are taken as seconds.
// Unparseable values read as zero.
func Duration(key string) time.Duration {
	d, err := ParseDuration(viper.Get(key))
	if err != nil {
		return 0
	}
	return d
}

// ParseDuration converts a config value to a duration. Plain numbers are
// taken as seconds and nil or an empty string is zero.
func ParseDuration(value any) (time.Duration, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case time.Duration:
		return v, nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, nil
		}
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second, nil
		}
		return time.ParseDuration(v)
	}
	return 0, fmt.Errorf("unsupported duration value %v (%T)", value, value)
}

// Require returns ErrMissingFlag naming every key that has no value.
func Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if strings.TrimSpace(viper.GetString(k)) == "" {
			missing = append(missing, "--"+strings.ReplaceAll(k, "_", "-"))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFlag, strings.Join(missing, ", "))
	}
	return nil
}
