package content

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTimeout bounds every read request against the content backend.
const DefaultTimeout = 3 * time.Second

type Config struct {
	BaseURL   string
	CSRFToken string
	ChatURL   string
	Timeout   time.Duration
}

func (c Config) String() string {
	var sb strings.Builder
	for i := 0; i < len([]rune(c.CSRFToken)); i++ {
		sb.WriteString("*")
	}
	c.CSRFToken = sb.String()

	return fmt.Sprintf("%#v", c)
}

func (c *Config) IsValid() bool {
	if c.BaseURL == "" || c.CSRFToken == "" {
		return false
	}
	return true
}
