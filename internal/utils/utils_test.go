package utils

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestShowError(t *testing.T) {
	buf := &bytes.Buffer{}
	ShowError(buf, "Patch rejected", errors.Join(errors.New("threads: must be >= 1"), errors.New("blur: must be >= 0")))

	out := buf.String()
	for _, want := range []string{"PIPECONF ERROR: Patch rejected", "  threads: must be >= 1", "  blur: must be >= 0"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestParseAssignments(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    map[string]any
		wantErr bool
	}{
		{
			name: "Scalars keep their YAML types",
			in:   []string{"threads=2", "doMultiTarget=true", "essentialMatProb=0.5", "tagFamily=tag16h5"},
			want: map[string]any{"threads": 2, "doMultiTarget": true, "essentialMatProb": 0.5, "tagFamily": "tag16h5"},
		},
		{
			name: "Value may contain equals signs",
			in:   []string{"pipelineNickname=a=b"},
			want: map[string]any{"pipelineNickname": "a=b"},
		},
		{
			name: "Last assignment wins",
			in:   []string{"threads=2", "threads=6"},
			want: map[string]any{"threads": 6},
		},
		{
			name: "Empty value is null",
			in:   []string{"blur="},
			want: map[string]any{"blur": nil},
		},
		{
			name: "Negative numbers",
			in:   []string{"cameraGain=-1"},
			want: map[string]any{"cameraGain": -1},
		},
		{
			name: "Quoted digits stay a string",
			in:   []string{`pipelineNickname="123"`, "ledMode='true'"},
			want: map[string]any{"pipelineNickname": "123", "ledMode": "true"},
		},
		{name: "Missing equals", in: []string{"threads"}, wantErr: true},
		{name: "Missing key", in: []string{"=2"}, wantErr: true},
		{name: "Nested value", in: []string{"threads={a: 1}"}, wantErr: true},
		{name: "List value", in: []string{"threads=[1, 2]"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAssignments(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAssignments() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseAssignments() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadPatchFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "patch.yaml")
	if err := os.WriteFile(yamlPath, []byte("threads: 2\ndoMultiTarget: true\ntagFamily: tag36h11\n"), 0644); err != nil {
		t.Fatal(err)
	}
	jsonPath := filepath.Join(dir, "patch.json")
	if err := os.WriteFile(jsonPath, []byte(`{"threads": 2, "doMultiTarget": true, "tagFamily": "tag36h11"}`), 0644); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"threads": 2, "doMultiTarget": true, "tagFamily": "tag36h11"}

	for _, path := range []string{yamlPath, jsonPath} {
		got, err := LoadPatchFile(path)
		if err != nil {
			t.Fatalf("LoadPatchFile(%s) failed: %v", filepath.Base(path), err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("LoadPatchFile(%s) mismatch (-want +got):\n%s", filepath.Base(path), diff)
		}
	}

	if _, err := LoadPatchFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for a missing file")
	}
}

func TestParsePatch(t *testing.T) {
	got, err := ParsePatch(nil)
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("ParsePatch(nil) = %v, %v; want empty patch", got, err)
	}
	if _, err := ParsePatch([]byte("- threads\n- blur\n")); err == nil {
		t.Error("Expected error for a non-mapping document")
	}
}

func TestMergePatches(t *testing.T) {
	file := map[string]any{"threads": 2, "blur": 1.0}
	flags := map[string]any{"threads": 8}

	got := MergePatches(file, flags)
	want := map[string]any{"threads": 8, "blur": 1.0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MergePatches() mismatch (-want +got):\n%s", diff)
	}
	if file["threads"] != 2 {
		t.Error("MergePatches modified its input")
	}
}
