package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// UserSettings lists what the dashboard should quote.
type UserSettings struct {
	Currencies []string `mapstructure:"user_currencies"`
	Stocks     []string `mapstructure:"user_stocks"`
}

// LoadUserSettings reads the JSON settings file at path.
func LoadUserSettings(path string) (UserSettings, error) {
	v := viper.New()
	v.SetConfigFile(ExpandPath(path))
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return UserSettings{}, fmt.Errorf("failed to read user settings %s: %w", path, err)
	}

	var settings UserSettings
	if err := v.Unmarshal(&settings); err != nil {
		return UserSettings{}, fmt.Errorf("failed to decode user settings %s: %w", path, err)
	}
	return settings, nil
}
