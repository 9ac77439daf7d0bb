package types

import (
	"encoding/json"
	"testing"
)

func TestParsePipelineType(t *testing.T) {
	tests := []struct {
		in      string
		want    PipelineType
		wantErr bool
	}{
		{"CustomTest", CustomTest, false},
		{"customtest", CustomTest, false},
		{" AprilTag ", AprilTag, false},
		{"Calib3d", Calib3d, false},
		{"Hologram", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePipelineType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePipelineType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParsePipelineType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPipelineTypeIdentifiers(t *testing.T) {
	want := map[PipelineType]int{
		Calib3d: -2, DriverMode: -1, Reflective: 0, ColoredShape: 1,
		AprilTag: 2, Aruco: 3, ObjectDetection: 4, CustomTest: 5,
	}
	all := PipelineTypes()
	if len(all) != len(want) {
		t.Fatalf("PipelineTypes() has %d entries, want %d", len(all), len(want))
	}
	for i, pt := range all {
		if int(pt) != want[pt] {
			t.Errorf("%v = %d, want %d", pt, int(pt), want[pt])
		}
		if i > 0 && all[i-1] >= pt {
			t.Errorf("PipelineTypes() not in identifier order at %v", pt)
		}
		if !pt.Valid() {
			t.Errorf("%v reported invalid", pt)
		}
	}
}

func TestEnumText(t *testing.T) {
	type record struct {
		Family   AprilTagFamily `json:"family"`
		Model    TargetModel    `json:"model"`
		Rotation ImageRotation  `json:"rotation"`
		Type     PipelineType   `json:"type"`
	}

	in := record{Family16h5, AprilTag6p5in36h11, Deg270, CustomTest}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"family":"tag16h5","model":"AprilTag6p5in_36h11","rotation":"DEG_270","type":"CustomTest"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var out record
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("Unmarshal = %+v, want %+v", out, in)
	}
}

func TestInvalidEnumValues(t *testing.T) {
	if _, err := json.Marshal(AprilTagFamily(99)); err == nil {
		t.Error("expected marshal error for unknown family")
	}
	if AprilTagFamily(99).String() != "AprilTagFamily(99)" {
		t.Errorf("String() = %q", AprilTagFamily(99).String())
	}

	var r ImageRotation
	if err := r.UnmarshalText([]byte("DEG_45")); err == nil {
		t.Error("expected error for DEG_45")
	}
	var m TargetModel
	if err := m.UnmarshalText([]byte("Banana")); err == nil {
		t.Error("expected error for unknown target model")
	}
	if PipelineType(42).Valid() || TargetModel(-1).Valid() || ImageRotation(4).Valid() {
		t.Error("out-of-range values reported valid")
	}
}
