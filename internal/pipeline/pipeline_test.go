package pipeline

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/andresmejia3/pipeconf/internal/logger"
	"github.com/andresmejia3/pipeconf/internal/settings"
	"github.com/andresmejia3/pipeconf/internal/types"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var testCal = &Calibration{Fx: 600, Fy: 610, Cx: 320, Cy: 240}

func TestNewPlanDriverMode(t *testing.T) {
	p, err := NewPlan(context.Background(), settings.DefaultDriverModeSettings(), testCal)
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	if p.Type != types.DriverMode {
		t.Errorf("Type = %v, want DriverMode", p.Type)
	}
	if p.Detector != nil || p.Pose != nil || p.Odometry != nil {
		t.Errorf("driver mode planned processing stages: %+v", p)
	}
	if got := p.Filter([]Detection{{ID: 1, DecisionMargin: 100}}); len(got) != 0 {
		t.Errorf("driver mode kept detections: %v", got)
	}
}

func TestNewPlanCustomTest(t *testing.T) {
	s := settings.DefaultCustomTestSettings()
	s.Threads = 2
	s.Blur = 0.8
	s.Decimate = 2

	p, err := NewPlan(context.Background(), s, testCal)
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}

	wantDetector := &DetectorConfig{
		Family:       types.Family36h11,
		Threads:      2,
		RefineEdges:  true,
		QuadSigma:    0.8,
		QuadDecimate: 2,
		Quad: QuadThresholdParameters{
			MinClusterPixels:  5,
			MaxNumMaxima:      10,
			CriticalAngle:     math.Pi / 4,
			MaxLineFitMSE:     10,
			MinWhiteBlackDiff: 5,
		},
	}
	if diff := cmp.Diff(wantDetector, p.Detector, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("detector mismatch (-want +got):\n%s", diff)
	}

	wantPose := &PoseEstimatorConfig{TagWidth: 0.1651, Fx: 600, Fy: 610, Cx: 320, Cy: 240, NumIterations: 40}
	if diff := cmp.Diff(wantPose, p.Pose, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("pose mismatch (-want +got):\n%s", diff)
	}

	if p.Odometry == nil {
		t.Fatal("custom test pipeline has no odometry stage")
	}
	if p.Odometry.MinFeatures != 500 || p.Odometry.EssentialMatProb != 0.999 {
		t.Errorf("odometry params not carried over: %+v", p.Odometry)
	}
	if !p.RequiresCalibration || !p.Calibrated {
		t.Errorf("RequiresCalibration=%v Calibrated=%v, want both true", p.RequiresCalibration, p.Calibrated)
	}
}

func TestNewPlanCopiesCalibration(t *testing.T) {
	cal := *testCal
	p, err := NewPlan(context.Background(), settings.DefaultCustomTestSettings(), &cal)
	if err != nil {
		t.Fatal(err)
	}
	cal.Fx = 1
	if p.Odometry.Camera.Fx != 600 || p.Pose.Fx != 600 {
		t.Error("plan aliases the caller's calibration")
	}
}

func TestTagGeometryFor(t *testing.T) {
	tests := []struct {
		family types.AprilTagFamily
		model  types.TargetModel
		inches float64
	}{
		{types.Family36h11, types.AprilTag6p5in36h11, 6.5},
		{types.Family16h5, types.AprilTag6in16h5, 6},
		{types.Family25h9, types.AprilTag6in16h5, 6},
	}

	for _, tt := range tests {
		t.Run(tt.family.String(), func(t *testing.T) {
			g := TagGeometryFor(tt.family)
			if g.Model != tt.model {
				t.Errorf("Model = %v, want %v", g.Model, tt.model)
			}
			if math.Abs(g.Width-tt.inches*0.0254) > 1e-12 {
				t.Errorf("Width = %v, want %v in", g.Width, tt.inches)
			}
		})
	}
}

func TestNewPlanWithoutCalibration(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(buf))

	s := settings.DefaultAprilTagSettings()
	s.SolvePNPEnabled = true
	s.DoMultiTarget = true

	p, err := NewPlan(ctx, s, nil)
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	if p.Pose != nil {
		t.Errorf("pose stage planned without calibration: %+v", p.Pose)
	}
	if p.MultiTarget {
		t.Error("multi-target solving planned without calibration")
	}
	if p.Detector == nil {
		t.Error("detector should be planned without calibration")
	}
	if !strings.Contains(buf.String(), "pose estimation is skipped") {
		t.Errorf("expected a warning about skipped pose estimation, got: %s", buf.String())
	}
}

func TestNewPlanRejects(t *testing.T) {
	bad := settings.DefaultCustomTestSettings()
	bad.EssentialMatProb = 1.5

	tests := []struct {
		name string
		s    settings.Settings
		cal  *Calibration
		want error
	}{
		{"invalid settings", bad, nil, settings.ErrDomainViolation},
		{"nil settings", nil, nil, settings.ErrUnsupportedPipeline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlan(context.Background(), tt.s, tt.cal)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := NewPlan(context.Background(), settings.DefaultAprilTagSettings(), &Calibration{Fx: 0, Fy: 1}); err == nil {
		t.Error("expected an error for a zero focal length")
	}
}

func TestFilter(t *testing.T) {
	s := settings.DefaultAprilTagSettings()
	s.HammingDist = 1
	s.DecisionMargin = 30

	p, err := NewPlan(context.Background(), s, nil)
	if err != nil {
		t.Fatal(err)
	}

	dets := []Detection{
		{ID: 1, Hamming: 0, DecisionMargin: 50},
		{ID: 2, Hamming: 2, DecisionMargin: 80}, // too many bit errors
		{ID: 3, Hamming: 1, DecisionMargin: 29}, // below margin
		{ID: 4, Hamming: 1, DecisionMargin: 30}, // margin is inclusive
	}
	want := []Detection{dets[0], dets[3]}

	if diff := cmp.Diff(want, p.Filter(dets)); diff != "" {
		t.Errorf("Filter mismatch (-want +got):\n%s", diff)
	}
	if len(dets) != 4 || dets[1].ID != 2 {
		t.Error("Filter modified its input")
	}
}

func TestNeedsSingleTargetEstimate(t *testing.T) {
	tests := []struct {
		name         string
		solvePNP     bool
		multi        bool
		singleAlways bool
		used         bool
		want         bool
	}{
		{"solvePNP off", false, true, true, false, false},
		{"single only", true, false, false, false, true},
		{"multi off ignores usage", true, false, false, true, true},
		{"multi consumed tag", true, true, false, true, false},
		{"multi missed tag", true, true, false, false, true},
		{"always wins over multi", true, true, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := settings.DefaultAprilTagSettings()
			s.SolvePNPEnabled = tt.solvePNP
			s.DoMultiTarget = tt.multi
			s.DoSingleTargetAlways = tt.singleAlways

			p, err := NewPlan(context.Background(), s, testCal)
			if err != nil {
				t.Fatal(err)
			}
			if p.MultiTarget != (tt.solvePNP && tt.multi) {
				t.Errorf("MultiTarget = %v", p.MultiTarget)
			}
			if got := p.NeedsSingleTargetEstimate(tt.used); got != tt.want {
				t.Errorf("NeedsSingleTargetEstimate(%v) = %v, want %v", tt.used, got, tt.want)
			}
		})
	}
}
