package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewFlagsOverrideConfig(t *testing.T) {
	assert := assert.New(t)
	t.Cleanup(viper.Reset)
	viper.Reset()
	SetDefaults(viper.GetViper())

	c := &cobra.Command{Use: "camview"}
	RegisterFlags(c)
	assert.Equal(0, viper.GetInt("rotation"))

	require.NoError(t, c.ParseFlags([]string{"-r", "270", "--source", "/tmp/frames", "--display", "headless", "--coalesce-draws"}))
	assert.Equal(270, viper.GetInt("rotation"))
	assert.Equal("/tmp/frames", viper.GetString("source"))
	assert.Equal("headless", viper.GetString("display"))
	assert.True(viper.GetBool("coalesce_draws"))
	assert.Equal("landscape", viper.GetString("orientation"))
}
