package config

import (
	"fmt"
	"strings"
)

// Missing collects names of required env values that came back empty.
type Missing []string

func (m *Missing) Str(value, envName string) {
	if value == "" {
		*m = append(*m, envName)
	}
}

func (m *Missing) Bytes(value []byte, envName string) {
	if len(value) == 0 {
		*m = append(*m, envName)
	}
}

func (m Missing) Err() error {
	if len(m) == 0 {
		return nil
	}
	return fmt.Errorf("missing required env %s", strings.Join(m, ", "))
}
