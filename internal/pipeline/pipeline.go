package pipeline

import (
	"context"
	"fmt"
	"math"

	"github.com/andresmejia3/pipeconf/internal/logger"
	"github.com/andresmejia3/pipeconf/internal/settings"
	"github.com/andresmejia3/pipeconf/internal/types"
)

const metersPerInch = 0.0254

// Calibration holds the camera intrinsics the pose solvers need.
type Calibration struct {
	Fx float64 `json:"fx"`
	Fy float64 `json:"fy"`
	Cx float64 `json:"cx"`
	Cy float64 `json:"cy"`
}

func (c *Calibration) validate() error {
	if !(c.Fx > 0) || !(c.Fy > 0) {
		return fmt.Errorf("calibration: focal lengths must be > 0, got fx=%v fy=%v", c.Fx, c.Fy)
	}
	if math.IsNaN(c.Cx) || math.IsNaN(c.Cy) || math.IsInf(c.Cx, 0) || math.IsInf(c.Cy, 0) {
		return fmt.Errorf("calibration: principal point must be finite, got cx=%v cy=%v", c.Cx, c.Cy)
	}
	return nil
}

// QuadThresholdParameters tune quad detection. Values are fixed, not
// taken from the detector library's defaults.
type QuadThresholdParameters struct {
	MinClusterPixels  int     `json:"minClusterPixels"`
	MaxNumMaxima      int     `json:"maxNumMaxima"`
	CriticalAngle     float64 `json:"criticalAngle"` // radians
	MaxLineFitMSE     float64 `json:"maxLineFitMSE"`
	MinWhiteBlackDiff int     `json:"minWhiteBlackDiff"`
	Deglitch          bool    `json:"deglitch"`
}

// DefaultQuadThresholds returns the pinned quad thresholds.
func DefaultQuadThresholds() QuadThresholdParameters {
	return QuadThresholdParameters{
		MinClusterPixels:  5, // raising this breaks detection when decimate > 1
		MaxNumMaxima:      10,
		CriticalAngle:     45 * math.Pi / 180,
		MaxLineFitMSE:     10,
		MinWhiteBlackDiff: 5,
		Deglitch:          false,
	}
}

// DetectorConfig is what the fiducial detector is constructed with.
type DetectorConfig struct {
	Family       types.AprilTagFamily    `json:"family"`
	Threads      int                     `json:"threads"`
	RefineEdges  bool                    `json:"refineEdges"`
	QuadSigma    float64                 `json:"quadSigma"`
	QuadDecimate int                     `json:"quadDecimate"`
	Debug        bool                    `json:"debug"`
	Quad         QuadThresholdParameters `json:"quadThresholds"`
}

// TagGeometry is the physical tag assumed by the pose solvers.
type TagGeometry struct {
	Model types.TargetModel `json:"model"`
	Width float64           `json:"width"` // meters
}

// PoseEstimatorConfig drives single-tag pose estimation.
type PoseEstimatorConfig struct {
	TagWidth      float64 `json:"tagWidth"`
	Fx            float64 `json:"fx"`
	Fy            float64 `json:"fy"`
	Cx            float64 `json:"cx"`
	Cy            float64 `json:"cy"`
	NumIterations int     `json:"numIterations"`
}

// VisualOdometryParams drive frame-to-frame motion estimation.
type VisualOdometryParams struct {
	FeatureThreshold         int          `json:"featureThreshold"`
	MinFeatures              int          `json:"minFeatures"`
	ImageDifferenceThreshold int          `json:"imageDifferenceThreshold"`
	EssentialMatProb         float64      `json:"essentialMatProb"`
	EssentialMatThreshold    float64      `json:"essentialMatThreshold"`
	Camera                   *Calibration `json:"camera,omitempty"`
}

// Plan is the set of stage parameters a running pipeline is built from.
// Stages a variant does not run are nil.
type Plan struct {
	Type types.PipelineType `json:"pipelineType"`

	Detector *DetectorConfig       `json:"detector,omitempty"`
	Tag      *TagGeometry          `json:"tag,omitempty"`
	Pose     *PoseEstimatorConfig  `json:"pose,omitempty"`
	Odometry *VisualOdometryParams `json:"odometry,omitempty"`

	SolvePNP           bool `json:"solvePNP"`
	MultiTarget        bool `json:"multiTarget"`
	SingleTargetAlways bool `json:"singleTargetAlways"`

	// RequiresCalibration marks variants that produce no targets until the
	// camera has been calibrated.
	RequiresCalibration bool `json:"requiresCalibration"`
	Calibrated          bool `json:"calibrated"`

	minDecisionMargin int
	maxHamming        int
}

// Detection is the per-tag output of the fiducial detector that the plan
// filters on.
type Detection struct {
	ID             int     `json:"id"`
	Hamming        int     `json:"hamming"`
	DecisionMargin float64 `json:"decisionMargin"`
}

// NewPlan derives stage parameters from a validated settings record. cal may
// be nil for an uncalibrated camera, in which case no pose stage is planned.
func NewPlan(ctx context.Context, s settings.Settings, cal *Calibration) (*Plan, error) {
	if s == nil {
		return nil, fmt.Errorf("pipeline: nil settings: %w", settings.ErrUnsupportedPipeline)
	}
	log := logger.FromContext(ctx).With().Str("pipeline", s.PipelineType().String()).Logger()

	if err := s.Validate(); err != nil {
		log.Warn().Err(err).Msg("Refusing to plan invalid settings")
		return nil, fmt.Errorf("pipeline: invalid settings: %w", err)
	}
	if cal != nil {
		if err := cal.validate(); err != nil {
			return nil, err
		}
		c := *cal
		cal = &c
	}

	p := &Plan{Type: s.PipelineType()}
	switch cur := s.(type) {
	case settings.DriverModeSettings:
		// passthrough: nothing to configure
	case settings.AprilTagSettings:
		p.fiducial(cur.Base, cur.FiducialParams, cal)
	case settings.CustomTestSettings:
		p.fiducial(cur.Base, cur.FiducialParams, cal)
		p.Odometry = &VisualOdometryParams{
			FeatureThreshold:         cur.FeatureThreshold,
			MinFeatures:              cur.MinFeatures,
			ImageDifferenceThreshold: cur.ImageDifferenceThreshold,
			EssentialMatProb:         cur.EssentialMatProb,
			EssentialMatThreshold:    cur.EssentialMatThreshold,
			Camera:                   cal,
		}
		p.RequiresCalibration = true
	default:
		return nil, fmt.Errorf("pipeline: %v: %w", s.PipelineType(), settings.ErrUnsupportedPipeline)
	}
	p.Calibrated = cal != nil

	if p.RequiresCalibration && !p.Calibrated {
		log.Warn().Msg("Camera is not calibrated, pipeline will not produce targets")
	}
	if p.SolvePNP && p.Pose == nil {
		log.Warn().Msg("solvePNP is enabled but no calibration was supplied, pose estimation is skipped")
	}
	log.Debug().
		Bool("multiTarget", p.MultiTarget).
		Bool("singleTargetAlways", p.SingleTargetAlways).
		Bool("calibrated", p.Calibrated).
		Msg("Pipeline planned")
	return p, nil
}

func (p *Plan) fiducial(b settings.Base, f settings.FiducialParams, cal *Calibration) {
	p.Detector = &DetectorConfig{
		Family:       f.TagFamily,
		Threads:      f.Threads,
		RefineEdges:  f.RefineEdges,
		QuadSigma:    f.Blur,
		QuadDecimate: f.Decimate,
		Debug:        f.Debug,
		Quad:         DefaultQuadThresholds(),
	}
	p.Tag = TagGeometryFor(f.TagFamily)
	if cal != nil {
		p.Pose = &PoseEstimatorConfig{
			TagWidth:      p.Tag.Width,
			Fx:            cal.Fx,
			Fy:            cal.Fy,
			Cx:            cal.Cx,
			Cy:            cal.Cy,
			NumIterations: f.NumIterations,
		}
	}
	p.SolvePNP = b.SolvePNPEnabled
	// multi-tag solving needs intrinsics too
	p.MultiTarget = b.SolvePNPEnabled && f.DoMultiTarget && cal != nil
	p.SingleTargetAlways = f.DoSingleTargetAlways
	p.minDecisionMargin = f.DecisionMargin
	p.maxHamming = f.HammingDist
}

// TagGeometryFor maps a family to the tag printed for it: 36h11 tags are
// 6.5in, everything else is assumed to be 6in.
func TagGeometryFor(f types.AprilTagFamily) *TagGeometry {
	if f == types.Family36h11 {
		return &TagGeometry{Model: types.AprilTag6p5in36h11, Width: 6.5 * metersPerInch}
	}
	return &TagGeometry{Model: types.AprilTag6in16h5, Width: 6 * metersPerInch}
}

// Filter keeps the detections the settings accept. The input slice is not
// modified.
func (p *Plan) Filter(dets []Detection) []Detection {
	if p.Detector == nil {
		return nil
	}
	kept := make([]Detection, 0, len(dets))
	for _, d := range dets {
		if d.DecisionMargin < float64(p.minDecisionMargin) {
			continue
		}
		if d.Hamming > p.maxHamming {
			continue
		}
		kept = append(kept, d)
	}
	return kept
}

// NeedsSingleTargetEstimate reports whether a kept detection gets its own
// single-tag pose solve. usedByMultiTarget is whether the multi-target solve
// already consumed it.
func (p *Plan) NeedsSingleTargetEstimate(usedByMultiTarget bool) bool {
	if !p.SolvePNP {
		return false
	}
	return p.SingleTargetAlways || !(p.MultiTarget && usedByMultiTarget)
}
