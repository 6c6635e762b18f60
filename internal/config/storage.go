package config

import (
	"fmt"
	"log"
	"strings"
)

const defaultStoragePath = "products.json"

// StorageConfig locates the data file.
type StorageConfig struct {
	Path string `koanf:"path"`
}

// String returns a string representation of the StorageConfig.
func (c *StorageConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  path: %s\n", c.Path))
	return b.String()
}

func (c *StorageConfig) Validate() error {
	c.Path = strings.TrimSpace(c.Path)
	if c.Path == "" {
		log.Println("Using default value for storage.path")
		c.Path = defaultStoragePath
	}
	return nil
}
