package cli

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// SetDefaults registers the default value of every config key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source", "pattern")
	v.SetDefault("source_framerate", 30)
	v.SetDefault("slide_interval", 10)
	v.SetDefault("shuffle", true)
	v.SetDefault("max_texture_size", 2048)
	v.SetDefault("display", "x11")
	v.SetDefault("width", 1280)
	v.SetDefault("height", 720)
	v.SetDefault("orientation", "landscape")
	v.SetDefault("rotation", 0)
	v.SetDefault("coalesce_draws", false)
	v.SetDefault("debug", false)
}

func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("camview")
		viper.SetConfigType("toml")
		viper.AddConfigPath("$HOME/.config/camview")
		viper.AddConfigPath("/etc/xdg/camview")
	}

	SetDefaults(viper.GetViper())

	viper.AutomaticEnv() // read environment variables that match

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatalf("Error reading config file: %v", err)
		}
		log.Debug("No config file found, using defaults")
	}

	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
}
