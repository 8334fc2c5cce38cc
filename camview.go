package camview

import (
	_ "embed"
)

//go:embed VERSION
var Version string

//go:embed camview.toml
var DefaultConfig string
