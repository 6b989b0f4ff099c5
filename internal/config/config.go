// Where: dlq-reconciler/internal/config/config.go
// What: Invocation configuration record and resolution.
// Why: Merge defaults, config file, and environment into one validated record.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/poruru/edge-serverless-box/dlq-reconciler/internal/constants"
	"github.com/poruru/edge-serverless-box/dlq-reconciler/internal/reconciler"
	"gopkg.in/yaml.v3"
)

// Actions the entry points dispatch on.
const (
	ActionReconcile       = "reconcile"
	ActionDeleteAllForBus = "delete_all_for_bus"
)

// ErrConfiguration marks fatal configuration failures. They are raised
// before any reconciliation work begins.
var ErrConfiguration = errors.New("invalid configuration")

// Settings is the queue attribute set applied at DLQ creation.
type Settings struct {
	RetentionSeconds         int
	VisibilityTimeoutSeconds int
	MaxMessageSizeBytes      int
	SSEEnabled               bool
}

// Config is the fully-resolved configuration consumed by the reconciler.
type Config struct {
	BusName     string
	BusARN      string
	EnvPrefix   string
	Action      string
	DryRun      bool
	ForceDelete bool
	SkipRules   []string
	Tags        map[string]string
	Settings    Settings
}

// Default returns the configuration baseline before file and environment
// resolution: fourteen-day retention, thirty-minute visibility timeout,
// 256 KiB max message size, SSE on.
func Default() Config {
	return Config{
		Action: ActionReconcile,
		Tags:   map[string]string{},
		Settings: Settings{
			RetentionSeconds:         1209600,
			VisibilityTimeoutSeconds: 1800,
			MaxMessageSizeBytes:      262144,
			SSEEnabled:               true,
		},
	}
}

// Load resolves the configuration: defaults, then the optional config
// file, then environment variables. Higher layers override lower ones.
// Flag or payload overrides are applied by the caller afterwards.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the record is complete enough to run. The bus ARN must
// parse because rule ARN derivation depends on its region and account.
func (c *Config) Validate() error {
	if c.BusName == "" {
		return fmt.Errorf("%w: event bus name is required", ErrConfiguration)
	}
	if c.BusARN == "" {
		return fmt.Errorf("%w: event bus arn is required", ErrConfiguration)
	}
	if err := reconciler.ValidateBusARN(c.BusARN); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if c.Action != ActionReconcile && c.Action != ActionDeleteAllForBus {
		return fmt.Errorf("%w: unknown action %q", ErrConfiguration, c.Action)
	}
	if c.Settings.RetentionSeconds <= 0 || c.Settings.VisibilityTimeoutSeconds < 0 || c.Settings.MaxMessageSizeBytes <= 0 {
		return fmt.Errorf("%w: queue settings must be positive", ErrConfiguration)
	}
	return nil
}

// QueueSettings maps the record into the reconciler's settings type.
func (c *Config) QueueSettings() reconciler.QueueSettings {
	return reconciler.QueueSettings{
		RetentionSeconds:         c.Settings.RetentionSeconds,
		VisibilityTimeoutSeconds: c.Settings.VisibilityTimeoutSeconds,
		MaxMessageSizeBytes:      c.Settings.MaxMessageSizeBytes,
		SSEEnabled:               c.Settings.SSEEnabled,
	}
}

// Input builds the reconciler invocation input from the record.
func (c *Config) Input() reconciler.Input {
	return reconciler.Input{
		BusName:     c.BusName,
		BusARN:      c.BusARN,
		Tags:        c.Tags,
		Settings:    c.QueueSettings(),
		DryRun:      c.DryRun,
		ForceDelete: c.ForceDelete,
		EnvPrefix:   c.EnvPrefix,
		SkipRules:   c.SkipRules,
	}
}

// fileConfig is the YAML config file shape. Pointer fields distinguish
// "absent" from zero values during the merge.
type fileConfig struct {
	Bus struct {
		Name string `yaml:"name"`
		ARN  string `yaml:"arn"`
	} `yaml:"bus"`
	EnvPrefix string `yaml:"env_prefix"`
	Queue     struct {
		RetentionSeconds         *int  `yaml:"retention_seconds"`
		VisibilityTimeoutSeconds *int  `yaml:"visibility_timeout_seconds"`
		MaxMessageSize           *int  `yaml:"max_message_size"`
		SSEEnabled               *bool `yaml:"sse_enabled"`
	} `yaml:"queue"`
	Tags      map[string]string `yaml:"tags"`
	SkipRules []string          `yaml:"skip_rules"`
}

func (c *Config) applyFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read config file: %v", ErrConfiguration, err)
	}
	if err := validateConfigFile(content); err != nil {
		return fmt.Errorf("%w: config file %s: %v", ErrConfiguration, path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(content, &file); err != nil {
		return fmt.Errorf("%w: decode config file %s: %v", ErrConfiguration, path, err)
	}

	if file.Bus.Name != "" {
		c.BusName = file.Bus.Name
	}
	if file.Bus.ARN != "" {
		c.BusARN = file.Bus.ARN
	}
	if file.EnvPrefix != "" {
		c.EnvPrefix = file.EnvPrefix
	}
	if file.Queue.RetentionSeconds != nil {
		c.Settings.RetentionSeconds = *file.Queue.RetentionSeconds
	}
	if file.Queue.VisibilityTimeoutSeconds != nil {
		c.Settings.VisibilityTimeoutSeconds = *file.Queue.VisibilityTimeoutSeconds
	}
	if file.Queue.MaxMessageSize != nil {
		c.Settings.MaxMessageSizeBytes = *file.Queue.MaxMessageSize
	}
	if file.Queue.SSEEnabled != nil {
		c.Settings.SSEEnabled = *file.Queue.SSEEnabled
	}
	for key, value := range file.Tags {
		c.Tags[key] = value
	}
	if len(file.SkipRules) > 0 {
		c.SkipRules = file.SkipRules
	}
	return nil
}

func (c *Config) applyEnv() error {
	if value := os.Getenv(constants.EnvEventBusName); value != "" {
		c.BusName = value
	}
	if value := os.Getenv(constants.EnvEventBusARN); value != "" {
		c.BusARN = value
	}
	if value := os.Getenv(constants.EnvEnvPrefix); value != "" {
		c.EnvPrefix = value
	}
	if value := os.Getenv(constants.EnvAction); value != "" {
		c.Action = value
	}
	if value, ok := os.LookupEnv(constants.EnvDryRun); ok {
		c.DryRun = boolValue(value)
	}
	if value, ok := os.LookupEnv(constants.EnvForceDelete); ok {
		c.ForceDelete = boolValue(value)
	}
	if value := os.Getenv(constants.EnvSkipRules); value != "" {
		c.SkipRules = SplitRuleList(value)
	}

	if value := os.Getenv(constants.EnvTagsJSON); value != "" {
		tags := map[string]string{}
		if err := json.Unmarshal([]byte(value), &tags); err != nil {
			return fmt.Errorf("%w: %s is not a JSON object of strings: %v", ErrConfiguration, constants.EnvTagsJSON, err)
		}
		for key, tag := range tags {
			c.Tags[key] = tag
		}
	}

	intEnvs := []struct {
		name string
		dest *int
	}{
		{constants.EnvSQSRetentionSeconds, &c.Settings.RetentionSeconds},
		{constants.EnvSQSVisibilityTimeout, &c.Settings.VisibilityTimeoutSeconds},
		{constants.EnvSQSMaxMessageSize, &c.Settings.MaxMessageSizeBytes},
	}
	for _, entry := range intEnvs {
		value := os.Getenv(entry.name)
		if value == "" {
			continue
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer, got %q", ErrConfiguration, entry.name, value)
		}
		*entry.dest = parsed
	}
	if value, ok := os.LookupEnv(constants.EnvSQSSSEEnabled); ok {
		c.Settings.SSEEnabled = boolValue(value)
	}
	return nil
}

// boolValue parses the accepted truthy spellings: 1, true, yes, on.
func boolValue(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// SplitRuleList splits a comma-separated rule list, trimming whitespace
// and dropping empty entries.
func SplitRuleList(value string) []string {
	var rules []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			rules = append(rules, part)
		}
	}
	return rules
}
