package config

type Config struct {
	Database   DatabaseConfig  `mapstructure:"database"`
	Settings   SettingsConfig  `mapstructure:"settings"`
	Defaults   DefaultsConfig  `mapstructure:"defaults"`
	Export     ExportConfig    `mapstructure:"export"`
	Log        LogConfig       `mapstructure:"log"`
	Telemetry  TelemetryConfig `mapstructure:"telemetry"`
	ConfigPath string          `mapstructure:"-"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SettingsConfig locates the flat preferences file and the structured UI settings file.
// Empty paths resolve next to the config file.
type SettingsConfig struct {
	Path   string `mapstructure:"path"`
	UIPath string `mapstructure:"ui_path"`
}

type DefaultsConfig struct {
	Currency string `mapstructure:"currency"`
}

type ExportConfig struct {
	DateFormat       string `mapstructure:"date_format"`
	DecimalSeparator string `mapstructure:"decimal_separator"`
	FieldSeparator   string `mapstructure:"field_separator"`
	Encoding         string `mapstructure:"encoding"`
	Timezone         string `mapstructure:"timezone"`
	Dir              string `mapstructure:"dir"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TelemetryConfig struct {
	PosthogKey      string `mapstructure:"posthog_key"`
	PosthogEndpoint string `mapstructure:"posthog_endpoint"`
}

func NewDefault() *Config {
	return &Config{
		Database: DatabaseConfig{Path: ""},
		Defaults: DefaultsConfig{Currency: "USD"},
		Export: ExportConfig{
			DateFormat:       "dd/MM/yyyy",
			DecimalSeparator: ".",
			FieldSeparator:   ";",
			Encoding:         "UTF-8",
			Timezone:         "Local",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}
