// Package yamlutil wraps goccy/go-yaml for config files and note frontmatter.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
	ErrNotMapping     = errors.New("yamlutil: document is not a block mapping")
)

func validateInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

func Unmarshal(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

func Marshal(v any) ([]byte, error) {
	result, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return result, nil
}

// UnmarshalOrdered decodes a YAML mapping keeping key order, including in
// nested mappings. Frontmatter is written back in the order it was read.
func UnmarshalOrdered(data []byte) (yaml.MapSlice, error) {
	var out yaml.MapSlice
	if err := validateInput(data, &out); err != nil {
		return nil, err
	}
	if err := yaml.UnmarshalWithOptions(data, &out, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return out, nil
}

// UnmarshalStrict rejects unknown fields in the input.
func UnmarshalStrict(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// KeyLine is a top-level mapping key and the 1-based line it starts on.
type KeyLine struct {
	Key  string
	Line int
}

// TopLevelKeys parses a YAML mapping and returns its top-level keys in
// document order with their source lines. Only the first document is read.
func TopLevelKeys(data []byte) ([]KeyLine, error) {
	if len(data) > MaxInputSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	if len(file.Docs) == 0 || file.Docs[0] == nil {
		return nil, nil
	}

	var values []*ast.MappingValueNode
	switch body := file.Docs[0].Body.(type) {
	case *ast.MappingNode:
		if body.IsFlowStyle {
			return nil, ErrNotMapping
		}
		values = body.Values
	case *ast.MappingValueNode:
		values = []*ast.MappingValueNode{body}
	default:
		return nil, ErrNotMapping
	}

	keys := make([]KeyLine, 0, len(values))
	for _, mv := range values {
		tk := mv.Key.GetToken()
		if tk == nil || tk.Position == nil {
			return nil, ErrNotMapping
		}
		keys = append(keys, KeyLine{Key: tk.Value, Line: tk.Position.Line})
	}
	return keys, nil
}
