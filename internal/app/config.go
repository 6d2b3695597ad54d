package app

import "flag"

// Config represents the command-line parameters for the reader.
type Config struct {
	Vault   string
	TPS     int
	Width   int
	Height  int
	LogFile string
	Debug   bool
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Vault: "content", TPS: 60, Width: 1080, Height: 760}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Vault, "vault", c.Vault, "path to the content vault")
	fs.IntVar(&c.TPS, "tps", c.TPS, "simulation ticks per second")
	fs.IntVar(&c.Width, "width", c.Width, "initial window width")
	fs.IntVar(&c.Height, "height", c.Height, "initial window height")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "also append JSON logs to this file")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "enable debug logging")
}
