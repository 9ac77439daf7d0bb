package settings

import "github.com/andresmejia3/pipeconf/internal/types"

// FiducialParams configure the AprilTag decoder and the pose solvers that run on its detections.
// DoMultiTarget and DoSingleTargetAlways are independent switches. How they
// interact is decided by the pipeline, see pipeline.Plan.
type FiducialParams struct {
	HammingDist          int                  `json:"hammingDist"`    // max bit errors accepted per detection
	NumIterations        int                  `json:"numIterations"`  // single-tag pose refinement iterations
	Decimate             int                  `json:"decimate"`       // quad detection downsampling factor
	Blur                 float64              `json:"blur"`           // gaussian sigma applied before quad detection
	DecisionMargin       int                  `json:"decisionMargin"` // detections below this margin are dropped
	RefineEdges          bool                 `json:"refineEdges"`
	Debug                bool                 `json:"debug"`
	Threads              int                  `json:"threads"`
	TagFamily            types.AprilTagFamily `json:"tagFamily"`
	DoMultiTarget        bool                 `json:"doMultiTarget"`
	DoSingleTargetAlways bool                 `json:"doSingleTargetAlways"`
}

var defaultFiducial = FiducialParams{
	0,                 // HammingDist
	40,                // NumIterations
	1,                 // Decimate
	0,                 // Blur
	35,                // DecisionMargin
	true,              // RefineEdges
	false,             // Debug
	4,                 // Threads
	types.Family36h11, // TagFamily
	false,             // DoMultiTarget
	false,             // DoSingleTargetAlways
}

func (p FiducialParams) check(ck *checker) {
	ck.atLeast("hammingDist", p.HammingDist, 0)
	ck.atLeast("numIterations", p.NumIterations, 1)
	ck.atLeast("decimate", p.Decimate, 1)
	ck.floatAtLeast("blur", p.Blur, 0)
	ck.atLeast("decisionMargin", p.DecisionMargin, 0)
	ck.atLeast("threads", p.Threads, 1)
	ck.valid("tagFamily", p.TagFamily)
}

// FiducialOverride patches FiducialParams.
type FiducialOverride struct {
	HammingDist          *int                  `json:"hammingDist,omitempty"`
	NumIterations        *int                  `json:"numIterations,omitempty"`
	Decimate             *int                  `json:"decimate,omitempty"`
	Blur                 *float64              `json:"blur,omitempty"`
	DecisionMargin       *int                  `json:"decisionMargin,omitempty"`
	RefineEdges          *bool                 `json:"refineEdges,omitempty"`
	Debug                *bool                 `json:"debug,omitempty"`
	Threads              *int                  `json:"threads,omitempty"`
	TagFamily            *types.AprilTagFamily `json:"tagFamily,omitempty"`
	DoMultiTarget        *bool                 `json:"doMultiTarget,omitempty"`
	DoSingleTargetAlways *bool                 `json:"doSingleTargetAlways,omitempty"`
}

func (o FiducialOverride) applyTo(p *FiducialParams) {
	set(&p.HammingDist, o.HammingDist)
	set(&p.NumIterations, o.NumIterations)
	set(&p.Decimate, o.Decimate)
	set(&p.Blur, o.Blur)
	set(&p.DecisionMargin, o.DecisionMargin)
	set(&p.RefineEdges, o.RefineEdges)
	set(&p.Debug, o.Debug)
	set(&p.Threads, o.Threads)
	set(&p.TagFamily, o.TagFamily)
	set(&p.DoMultiTarget, o.DoMultiTarget)
	set(&p.DoSingleTargetAlways, o.DoSingleTargetAlways)
}

// FeatureMatchParams configure feature tracking and essential matrix estimation
// for frame-to-frame visual odometry.
type FeatureMatchParams struct {
	FeatureThreshold         int     `json:"featureThreshold"`
	MinFeatures              int     `json:"minFeatures"`              // re-detect features below this count
	ImageDifferenceThreshold int     `json:"imageDifferenceThreshold"` // mean squared pixel motion needed to estimate
	EssentialMatProb         float64 `json:"essentialMatProb"`         // RANSAC confidence, [0,1]
	EssentialMatThreshold    float64 `json:"essentialMatThreshold"`    // RANSAC inlier distance in pixels
}

var defaultFeatureMatch = FeatureMatchParams{
	1,     // FeatureThreshold
	500,   // MinFeatures
	150,   // ImageDifferenceThreshold
	0.999, // EssentialMatProb
	1.0,   // EssentialMatThreshold
}

func (p FeatureMatchParams) check(ck *checker) {
	ck.atLeast("featureThreshold", p.FeatureThreshold, 0)
	ck.atLeast("minFeatures", p.MinFeatures, 0)
	ck.atLeast("imageDifferenceThreshold", p.ImageDifferenceThreshold, 0)
	ck.floatRange("essentialMatProb", p.EssentialMatProb, 0, 1)
	ck.floatAtLeast("essentialMatThreshold", p.EssentialMatThreshold, 0)
}

// FeatureMatchOverride patches FeatureMatchParams.
type FeatureMatchOverride struct {
	FeatureThreshold         *int     `json:"featureThreshold,omitempty"`
	MinFeatures              *int     `json:"minFeatures,omitempty"`
	ImageDifferenceThreshold *int     `json:"imageDifferenceThreshold,omitempty"`
	EssentialMatProb         *float64 `json:"essentialMatProb,omitempty"`
	EssentialMatThreshold    *float64 `json:"essentialMatThreshold,omitempty"`
}

func (o FeatureMatchOverride) applyTo(p *FeatureMatchParams) {
	set(&p.FeatureThreshold, o.FeatureThreshold)
	set(&p.MinFeatures, o.MinFeatures)
	set(&p.ImageDifferenceThreshold, o.ImageDifferenceThreshold)
	set(&p.EssentialMatProb, o.EssentialMatProb)
	set(&p.EssentialMatThreshold, o.EssentialMatThreshold)
}
