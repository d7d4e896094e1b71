package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration with YAML string marshaling (Go duration
// format, e.g. "5s"). Bare integers are accepted as nanoseconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v interface{}
	if err := node.Decode(&v); err != nil {
		return err
	}
	switch val := v.(type) {
	case int:
		d.Duration = time.Duration(val)
	case float64:
		d.Duration = time.Duration(int64(val))
	case string:
		if val == "" {
			d.Duration = 0
			return nil
		}
		var err error
		d.Duration, err = time.ParseDuration(val)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid duration: %v", v)
	}
	return nil
}
