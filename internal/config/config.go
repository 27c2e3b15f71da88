// Package config defines application configuration and its loading rules.
package config

// Config holds all application configuration, grouped by concern.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains settings for the question generator.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName    string `mapstructure:"model_name"     validate:"required"`

	// PromptTemplatePath overrides the embedded prompt template when set.
	PromptTemplatePath string `mapstructure:"prompt_template_path"`

	MaxRetries        int `mapstructure:"max_retries"         validate:"gte=0,lte=10"`
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`

	// GenerationTimeoutSeconds bounds one end-to-end generator call,
	// including retries. A run that exceeds it fails the job instead of
	// leaving it in processing indefinitely.
	GenerationTimeoutSeconds int `mapstructure:"generation_timeout_seconds" validate:"required,gt=0"`

	// QuestionBatchSize is the number of candidate questions requested
	// per generation run.
	QuestionBatchSize int `mapstructure:"question_batch_size" validate:"required,gt=0,lte=50"`
}

// TaskConfig contains background task pipeline settings.
type TaskConfig struct {
	WorkerCount                   int `mapstructure:"worker_count"                      validate:"required,gt=0,lte=32"`
	QueueSize                     int `mapstructure:"queue_size"                        validate:"required,gt=0"`
	StuckTaskAgeMinutes           int `mapstructure:"stuck_task_age_minutes"            validate:"required,gt=0"`
	StuckTaskCheckIntervalMinutes int `mapstructure:"stuck_task_check_interval_minutes" validate:"required,gt=0"`

	// JobRetentionHours is how long terminal generation jobs are kept
	// before the sweeper deletes them.
	JobRetentionHours int `mapstructure:"job_retention_hours" validate:"required,gt=0"`

	JobSweepIntervalMinutes int `mapstructure:"job_sweep_interval_minutes" validate:"required,gt=0"`
}
