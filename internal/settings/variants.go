package settings

import (
	"fmt"

	"github.com/andresmejia3/pipeconf/internal/types"
)

// Settings is the closed family of pipeline settings. Each implementation
// reports a fixed PipelineType; there is no field through which the variant
// of a value can be changed. Switch on the concrete type to get at its fields.
type Settings interface {
	PipelineType() types.PipelineType
	Validate() error
	isSettings()
}

// DriverModeSettings is the passthrough pipeline used for driver camera feeds.
type DriverModeSettings struct {
	Base
}

// DriverModeOverride patches DriverModeSettings.
type DriverModeOverride struct {
	BaseOverride
}

// AprilTagSettings runs fiducial detection and pose estimation.
type AprilTagSettings struct {
	Base
	FiducialParams
}

// AprilTagOverride patches AprilTagSettings.
type AprilTagOverride struct {
	BaseOverride
	FiducialOverride
}

// CustomTestSettings is the experimental pipeline combining fiducial
// detection with feature-based visual odometry.
type CustomTestSettings struct {
	Base
	FeatureMatchParams
	FiducialParams
}

// CustomTestOverride patches CustomTestSettings.
type CustomTestOverride struct {
	BaseOverride
	FeatureMatchOverride
	FiducialOverride
}

func (DriverModeSettings) PipelineType() types.PipelineType { return types.DriverMode }
func (AprilTagSettings) PipelineType() types.PipelineType   { return types.AprilTag }
func (CustomTestSettings) PipelineType() types.PipelineType { return types.CustomTest }

func (DriverModeSettings) isSettings() {}
func (AprilTagSettings) isSettings()   {}
func (CustomTestSettings) isSettings() {}

// fiducialBase is the base layer shared by the tag-detecting variants.
func fiducialBase() Base {
	b := defaultBase
	b.Gain = 75
	b.OutputShowMultipleTargets = true
	b.TargetModel = types.AprilTag6p5in36h11
	b.ExposureRaw = -1
	b.AutoExposure = true
	b.LEDMode = false
	return b
}

func driverModeBase() Base {
	b := defaultBase
	b.Nickname = "Driver Mode"
	b.LEDMode = false
	b.OutputShouldDraw = false
	return b
}

// Built once at package init and only ever handed out by value.
var (
	defaultDriverMode = DriverModeSettings{driverModeBase()}
	defaultAprilTag   = AprilTagSettings{fiducialBase(), defaultFiducial}
	defaultCustomTest = CustomTestSettings{fiducialBase(), defaultFeatureMatch, defaultFiducial}
)

func DefaultDriverModeSettings() DriverModeSettings { return defaultDriverMode }
func DefaultAprilTagSettings() AprilTagSettings     { return defaultAprilTag }
func DefaultCustomTestSettings() CustomTestSettings { return defaultCustomTest }

// Defaults returns the default record for a pipeline type.
func Defaults(t types.PipelineType) (Settings, error) {
	switch t {
	case types.DriverMode:
		return DefaultDriverModeSettings(), nil
	case types.AprilTag:
		return DefaultAprilTagSettings(), nil
	case types.CustomTest:
		return DefaultCustomTestSettings(), nil
	}
	return nil, fmt.Errorf("%v: %w", t, ErrUnsupportedPipeline)
}

// HasSchema reports whether Defaults can produce a record for t.
func HasSchema(t types.PipelineType) bool {
	_, err := Defaults(t)
	return err == nil
}

func (s DriverModeSettings) Validate() error {
	var ck checker
	s.Base.check(&ck)
	return ck.err()
}

func (s AprilTagSettings) Validate() error {
	var ck checker
	s.Base.check(&ck)
	s.FiducialParams.check(&ck)
	return ck.err()
}

func (s CustomTestSettings) Validate() error {
	var ck checker
	s.Base.check(&ck)
	s.FeatureMatchParams.check(&ck)
	s.FiducialParams.check(&ck)
	return ck.err()
}

// Apply returns a copy of s with every non-nil field of o written over it.
// If the result fails validation, the zero value and the violations are
// returned and s is unaffected.
func (s DriverModeSettings) Apply(o DriverModeOverride) (DriverModeSettings, error) {
	next := s
	o.BaseOverride.applyTo(&next.Base)
	if err := next.Validate(); err != nil {
		return DriverModeSettings{}, err
	}
	return next, nil
}

func (s AprilTagSettings) Apply(o AprilTagOverride) (AprilTagSettings, error) {
	next := s
	o.BaseOverride.applyTo(&next.Base)
	o.FiducialOverride.applyTo(&next.FiducialParams)
	if err := next.Validate(); err != nil {
		return AprilTagSettings{}, err
	}
	return next, nil
}

func (s CustomTestSettings) Apply(o CustomTestOverride) (CustomTestSettings, error) {
	next := s
	o.BaseOverride.applyTo(&next.Base)
	o.FeatureMatchOverride.applyTo(&next.FeatureMatchParams)
	o.FiducialOverride.applyTo(&next.FiducialParams)
	if err := next.Validate(); err != nil {
		return CustomTestSettings{}, err
	}
	return next, nil
}

// ApplyCamera applies the always-configurable camera subset to any variant.
func ApplyCamera(s Settings, o CameraOverride) (Settings, error) {
	base := BaseOverride{CameraOverride: o}
	switch cur := s.(type) {
	case DriverModeSettings:
		next, err := cur.Apply(DriverModeOverride{BaseOverride: base})
		return unify(next, err)
	case AprilTagSettings:
		next, err := cur.Apply(AprilTagOverride{BaseOverride: base})
		return unify(next, err)
	case CustomTestSettings:
		next, err := cur.Apply(CustomTestOverride{BaseOverride: base})
		return unify(next, err)
	}
	return nil, unsupported(s)
}

// Equal reports whether a and b are the same variant with identical fields.
func Equal(a, b Settings) bool {
	return a == b
}

// unify keeps a failed merge from surfacing as a non-nil interface holding a zero record.
func unify[S Settings](s S, err error) (Settings, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

func unsupported(s Settings) error {
	if s == nil {
		return fmt.Errorf("nil settings: %w", ErrUnsupportedPipeline)
	}
	return fmt.Errorf("%T: %w", s, ErrUnsupportedPipeline)
}
