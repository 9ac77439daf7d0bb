package settings

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/andresmejia3/pipeconf/internal/types"
)

// The wire form of every variant is a flat JSON object carrying its
// pipelineType next to the fields.

func (s DriverModeSettings) MarshalJSON() ([]byte, error) {
	type plain DriverModeSettings
	return json.Marshal(struct {
		PipelineType types.PipelineType `json:"pipelineType"`
		plain
	}{s.PipelineType(), plain(s)})
}

func (s AprilTagSettings) MarshalJSON() ([]byte, error) {
	type plain AprilTagSettings
	return json.Marshal(struct {
		PipelineType types.PipelineType `json:"pipelineType"`
		plain
	}{s.PipelineType(), plain(s)})
}

func (s CustomTestSettings) MarshalJSON() ([]byte, error) {
	type plain CustomTestSettings
	return json.Marshal(struct {
		PipelineType types.PipelineType `json:"pipelineType"`
		plain
	}{s.PipelineType(), plain(s)})
}

// Decode reads a record produced by MarshalJSON. The variant is chosen from
// pipelineType; the remaining keys are applied as a patch over that variant's
// defaults, so keys the variant does not know are rejected.
func Decode(data []byte) (Settings, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("settings: decode: %w", err)
	}
	tag, ok := raw[DiscriminantKey]
	if !ok {
		return nil, &FieldError{Field: DiscriminantKey, Reason: "missing", Kind: ErrInvalidValue}
	}
	t, err := parseDiscriminant(tag)
	if err != nil {
		return nil, err
	}
	def, err := Defaults(t)
	if err != nil {
		return nil, err
	}

	delete(raw, DiscriminantKey)
	return ApplyPatch(def, raw)
}

func parseDiscriminant(v any) (types.PipelineType, error) {
	switch tag := v.(type) {
	case string:
		t, err := types.ParsePipelineType(tag)
		if err != nil {
			return 0, &FieldError{Field: DiscriminantKey, Value: tag, Reason: err.Error(), Kind: ErrInvalidValue}
		}
		return t, nil
	case float64:
		t := types.PipelineType(int(tag))
		if tag == math.Trunc(tag) && t.Valid() {
			return t, nil
		}
	}
	return 0, &FieldError{Field: DiscriminantKey, Value: v, Reason: "not a pipeline type", Kind: ErrInvalidValue}
}
