package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

type noArgs struct{}

type pathArgs struct {
	Path string `json:"path"`
}

type writeArgs struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// decodeArgs copies a raw argument map into a typed struct. Keys the struct
// does not declare are rejected.
func decodeArgs(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (a pathArgs) validate() error {
	if strings.TrimSpace(a.Path) == "" {
		return errors.New("invalid arguments: path must not be empty")
	}
	return nil
}
