package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// --- 1. Error Reporting ---

// ShowError prints the boxed error report used by every command. It does not
// exit; commands return the error so cobra sets the exit code.
func ShowError(w io.Writer, context string, err error) {
	fmt.Fprintf(w, "\n---------------------------------------------------------\n")
	fmt.Fprintf(w, "🚨 PIPECONF ERROR: %s\n", context)
	if err != nil {
		fmt.Fprintf(w, "DETAILS:\n")
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	fmt.Fprintf(w, "---------------------------------------------------------\n")
}

// --- 2. Patch Input ---

// ParseAssignments turns repeated --set key=value flags into a patch. Values
// are read as YAML scalars, so 2 is an int, 0.5 a float, true a bool and
// anything else a string. Quote a value to force a string: pipelineNickname="123".
// A key given twice keeps the last value.
func ParseAssignments(assignments []string) (map[string]any, error) {
	patch := make(map[string]any, len(assignments))
	for _, a := range assignments {
		key, raw, ok := strings.Cut(a, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected key=value", a)
		}

		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		switch v.(type) {
		case map[string]any, []any:
			return nil, fmt.Errorf("invalid value for %s: expected a scalar, got %q", key, raw)
		}
		patch[key] = v
	}
	return patch, nil
}

// LoadPatchFile reads a flat key/value patch from a YAML or JSON file.
func LoadPatchFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patch file: %w", err)
	}
	return ParsePatch(data)
}

// ParsePatch decodes a YAML (or JSON) mapping. An empty document is an empty patch.
func ParsePatch(data []byte) (map[string]any, error) {
	var patch map[string]any
	if err := yaml.Unmarshal(data, &patch); err != nil {
		return nil, fmt.Errorf("parse patch: %w", err)
	}
	if patch == nil {
		patch = map[string]any{}
	}
	return patch, nil
}

// MergePatches combines patches left to right; later keys win. The inputs
// are not modified.
func MergePatches(patches ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, p := range patches {
		for k, v := range p {
			out[k] = v
		}
	}
	return out
}
