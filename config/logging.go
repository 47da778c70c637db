package config

import (
	"fmt"

	"github.com/kilianp07/sessionplanner/core/calllog"
)

// setCallLogDefaults stores optimizer calls in calls.jsonl unless told otherwise.
func setCallLogDefaults(c *calllog.Config) {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		switch c.Backend {
		case "jsonl":
			c.Path = "calls.jsonl"
		case "sqlite":
			c.Path = "calls.db"
		}
	}
}

func validateCallLog(c calllog.Config) error {
	switch c.Backend {
	case "none":
		return nil
	case "jsonl", "sqlite":
		if c.Path == "" {
			return fmt.Errorf("calllog.path is required")
		}
		return nil
	}
	return fmt.Errorf("unknown calllog backend %s", c.Backend)
}
