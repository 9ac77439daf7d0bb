package settings

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// DiscriminantKey is the wire name of the variant identifier.
const DiscriminantKey = "pipelineType"

// DecodeOverride converts an untyped patch (decoded JSON or YAML) into the
// typed override O. Every key is checked before any decoding happens, so a
// rejected payload never yields a half-filled override.
func DecodeOverride[O any](payload map[string]any) (O, error) {
	var out O
	known := fieldSet(reflect.TypeOf(out))

	var errs []error
	for _, key := range sortedKeys(payload) {
		v := payload[key]
		switch {
		case key == DiscriminantKey:
			errs = append(errs, &FieldError{Field: key, Value: v, Kind: ErrDiscriminantTampering})
		case !known[key]:
			errs = append(errs, &FieldError{Field: key, Value: v, Kind: ErrUnknownField})
		case v == nil:
			errs = append(errs, &FieldError{Field: key, Value: v, Reason: "null cannot be applied, omit the field instead", Kind: ErrInvalidValue})
		}
	}
	if len(errs) > 0 {
		var zero O
		return zero, errors.Join(errs...)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Squash:      true,
		ErrorUnused: true,
		MatchName:   func(mapKey, fieldName string) bool { return mapKey == fieldName },
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			rejectFractionalInts,
			mapstructure.TextUnmarshallerHookFunc(),
		),
		Result: &out,
	})
	if err != nil {
		var zero O
		return zero, fmt.Errorf("settings: build decoder: %w", err)
	}
	if err := dec.Decode(payload); err != nil {
		var zero O
		return zero, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	return out, nil
}

// rejectFractionalInts stops mapstructure from truncating 2.5, or wrapping
// 1e30, into an int field.
func rejectFractionalInts(from, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return data, nil
	}
	var f float64
	switch v := data.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	default:
		return data, nil
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%v is not an integer", data)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which no int64 holds
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return nil, fmt.Errorf("%v overflows %v", data, to)
	}
	return data, nil
}

// variant is a Settings type that can be patched by its override O.
type variant[S any, O any] interface {
	Settings
	Apply(O) (S, error)
}

func applyPatch[O any, S variant[S, O]](cur S, payload map[string]any) (Settings, error) {
	o, err := DecodeOverride[O](payload)
	if err != nil {
		return nil, err
	}
	next, err := cur.Apply(o)
	return unify(next, err)
}

// ApplyPatch decodes payload against the override type of s's variant and
// merges it. s itself is never modified; on any error the caller's record
// stays authoritative.
func ApplyPatch(s Settings, payload map[string]any) (Settings, error) {
	switch cur := s.(type) {
	case DriverModeSettings:
		return applyPatch[DriverModeOverride](cur, payload)
	case AprilTagSettings:
		return applyPatch[AprilTagOverride](cur, payload)
	case CustomTestSettings:
		return applyPatch[CustomTestOverride](cur, payload)
	}
	return nil, unsupported(s)
}

// FieldNames lists the wire names of a settings or override type, with
// embedded structs flattened, in declaration order.
func FieldNames(v any) []string {
	return fieldNames(reflect.TypeOf(v))
}

func fieldNames(t reflect.Type) []string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	var names []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			names = append(names, fieldNames(f.Type)...)
			continue
		}
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		names = append(names, name)
	}
	return names
}

func fieldSet(t reflect.Type) map[string]bool {
	seen := make(map[string]bool)
	for _, n := range fieldNames(t) {
		seen[n] = true
	}
	return seen
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
