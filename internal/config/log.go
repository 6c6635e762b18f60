package config

import (
	"fmt"
	"strings"
)

type LogConfig struct {
	Level string `koanf:"level"`
	File  string `koanf:"file"`
}

// String returns a string representation of the log configuration.
func (c *LogConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Log ---\n")
	b.WriteString(fmt.Sprintf("  level: %s\n", c.Level))
	if c.File == "" {
		b.WriteString("  file: <stderr>\n")
	} else {
		b.WriteString(fmt.Sprintf("  file: %s\n", c.File))
	}
	return b.String()
}

func (c *LogConfig) Validate() error {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	switch c.Level {
	case "":
		c.Level = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Level)
	}
	return nil
}
