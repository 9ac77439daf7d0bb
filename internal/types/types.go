package types

import (
	"fmt"
	"strings"
)

// PipelineType identifies which pipeline variant a settings record belongs to.
// The numeric values match the identifiers used by the backend.
type PipelineType int

const (
	Calib3d         PipelineType = -2
	DriverMode      PipelineType = -1
	Reflective      PipelineType = 0
	ColoredShape    PipelineType = 1
	AprilTag        PipelineType = 2
	Aruco           PipelineType = 3
	ObjectDetection PipelineType = 4
	CustomTest      PipelineType = 5
)

var pipelineTypeNames = map[PipelineType]string{
	Calib3d:         "Calib3d",
	DriverMode:      "DriverMode",
	Reflective:      "Reflective",
	ColoredShape:    "ColoredShape",
	AprilTag:        "AprilTag",
	Aruco:           "Aruco",
	ObjectDetection: "ObjectDetection",
	CustomTest:      "CustomTest",
}

// PipelineTypes lists every known variant in identifier order.
func PipelineTypes() []PipelineType {
	return []PipelineType{Calib3d, DriverMode, Reflective, ColoredShape, AprilTag, Aruco, ObjectDetection, CustomTest}
}

func (t PipelineType) String() string {
	if name, ok := pipelineTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("PipelineType(%d)", int(t))
}

func (t PipelineType) Valid() bool {
	_, ok := pipelineTypeNames[t]
	return ok
}

func (t PipelineType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown pipeline type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *PipelineType) UnmarshalText(text []byte) error {
	v, err := ParsePipelineType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParsePipelineType accepts a variant name, case-insensitively.
func ParsePipelineType(s string) (PipelineType, error) {
	return parseName(s, pipelineTypeNames, "pipeline type")
}

// TargetModel is the physical geometry used for pose estimation.
type TargetModel int

const (
	InfiniteRechargeHighGoalOuter TargetModel = iota
	CircularPowerCell7in
	RapidReactCircularCargoBall
	AprilTag6in16h5
	AprilTag6p5in36h11
)

var targetModelNames = map[TargetModel]string{
	InfiniteRechargeHighGoalOuter: "InfiniteRechargeHighGoalOuter",
	CircularPowerCell7in:          "CircularPowerCell7in",
	RapidReactCircularCargoBall:   "RapidReactCircularCargoBall",
	AprilTag6in16h5:               "AprilTag6in_16h5",
	AprilTag6p5in36h11:            "AprilTag6p5in_36h11",
}

func (m TargetModel) String() string {
	if name, ok := targetModelNames[m]; ok {
		return name
	}
	return fmt.Sprintf("TargetModel(%d)", int(m))
}

func (m TargetModel) Valid() bool {
	_, ok := targetModelNames[m]
	return ok
}

func (m TargetModel) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("unknown target model %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *TargetModel) UnmarshalText(text []byte) error {
	v, err := ParseTargetModel(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func ParseTargetModel(s string) (TargetModel, error) {
	return parseName(s, targetModelNames, "target model")
}

// AprilTagFamily is the marker dictionary the fiducial decoder searches for.
type AprilTagFamily int

const (
	Family36h11 AprilTagFamily = iota
	Family25h9
	Family16h5
	FamilyCircle21h7
	FamilyCircle49h12
	FamilyStandard41h12
	FamilyStandard52h13
	FamilyCustom48h12
)

var aprilTagFamilyNames = map[AprilTagFamily]string{
	Family36h11:         "tag36h11",
	Family25h9:          "tag25h9",
	Family16h5:          "tag16h5",
	FamilyCircle21h7:    "tagCircle21h7",
	FamilyCircle49h12:   "tagCircle49h12",
	FamilyStandard41h12: "tagStandard41h12",
	FamilyStandard52h13: "tagStandard52h13",
	FamilyCustom48h12:   "tagCustom48h12",
}

func (f AprilTagFamily) String() string {
	if name, ok := aprilTagFamilyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("AprilTagFamily(%d)", int(f))
}

func (f AprilTagFamily) Valid() bool {
	_, ok := aprilTagFamilyNames[f]
	return ok
}

func (f AprilTagFamily) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("unknown apriltag family %d", int(f))
	}
	return []byte(f.String()), nil
}

func (f *AprilTagFamily) UnmarshalText(text []byte) error {
	v, err := ParseAprilTagFamily(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func ParseAprilTagFamily(s string) (AprilTagFamily, error) {
	return parseName(s, aprilTagFamilyNames, "apriltag family")
}

// ImageRotation is the clockwise rotation applied to incoming frames.
type ImageRotation int

const (
	Deg0 ImageRotation = iota
	Deg90
	Deg180
	Deg270
)

var imageRotationNames = map[ImageRotation]string{
	Deg0:   "DEG_0",
	Deg90:  "DEG_90",
	Deg180: "DEG_180",
	Deg270: "DEG_270",
}

func (r ImageRotation) String() string {
	if name, ok := imageRotationNames[r]; ok {
		return name
	}
	return fmt.Sprintf("ImageRotation(%d)", int(r))
}

func (r ImageRotation) Valid() bool {
	_, ok := imageRotationNames[r]
	return ok
}

func (r ImageRotation) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("unknown image rotation %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *ImageRotation) UnmarshalText(text []byte) error {
	v, err := ParseImageRotation(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func ParseImageRotation(s string) (ImageRotation, error) {
	return parseName(s, imageRotationNames, "image rotation")
}

func parseName[T comparable](s string, names map[T]string, what string) (T, error) {
	s = strings.TrimSpace(s)
	for v, name := range names {
		if strings.EqualFold(name, s) {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("unknown %s %q", what, s)
}
