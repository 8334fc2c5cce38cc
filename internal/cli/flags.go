package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// previewFlags override the matching config keys for a single run.
var previewFlags = []struct {
	flag, key string
}{
	{"source", "source"},
	{"display", "display"},
	{"rotation", "rotation"},
	{"orientation", "orientation"},
	{"coalesce-draws", "coalesce_draws"},
}

func RegisterFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/camview/camview.toml)")
	viper.BindPFlag("config", flags.Lookup("config"))

	flags.BoolP("installconfig", "i", false, "Install a default config file")
	flags.Bool("show-config", false, "Dump resolved config")
	flags.BoolP("background", "b", false, "Run the preview as a daemon")
	flags.BoolP("debug", "d", false, "Enable debug logging")
	viper.BindPFlag("debug", flags.Lookup("debug"))
	flags.BoolP("version", "v", false, "Print version")
	flags.BoolP("help", "h", false, "Print usage")

	flags.StringP("source", "s", "", `Frame source: "pattern" or an image directory`)
	flags.String("display", "", `Destination: "x11" or "headless"`)
	flags.IntP("rotation", "r", 0, "Preview rotation in degrees")
	flags.String("orientation", "", `Sensor orientation: "landscape" or "portrait"`)
	flags.Bool("coalesce-draws", false, "Merge queued draw requests into one")
	for _, f := range previewFlags {
		viper.BindPFlag(f.key, flags.Lookup(f.flag))
	}
}
