package settings

import "github.com/andresmejia3/pipeconf/internal/types"

// CameraControls are the camera-side knobs every pipeline exposes. They form
// the always-configurable subset: a CameraOverride can be applied to any variant.
type CameraControls struct {
	ExposureRaw           float64             `json:"cameraExposureRaw"` // -1 lets the driver pick
	AutoExposure          bool                `json:"cameraAutoExposure"`
	Brightness            int                 `json:"cameraBrightness"` // 0-100
	Gain                  int                 `json:"cameraGain"`       // -1 = unsupported/auto
	RedGain               int                 `json:"cameraRedGain"`    // -1 = unsupported/auto
	BlueGain              int                 `json:"cameraBlueGain"`   // -1 = unsupported/auto
	AutoWhiteBalance      bool                `json:"cameraAutoWhiteBalance"`
	WhiteBalanceTemp      float64             `json:"cameraWhiteBalanceTemp"` // Kelvin
	VideoModeIndex        int                 `json:"cameraVideoModeIndex"`
	StreamingFrameDivisor int                 `json:"streamingFrameDivisor"` // 0=full, 1=half, 2=quarter, 3=sixth
	Rotation              types.ImageRotation `json:"inputImageRotationMode"`
	LEDMode               bool                `json:"ledMode"`
}

// Base holds the fields shared by every pipeline variant. It carries no
// discriminant; each variant type reports its own.
type Base struct {
	Nickname string `json:"pipelineNickname"`
	CameraControls
	InputShouldShow           bool              `json:"inputShouldShow"`
	OutputShouldShow          bool              `json:"outputShouldShow"`
	OutputShouldDraw          bool              `json:"outputShouldDraw"`
	OutputShowMultipleTargets bool              `json:"outputShowMultipleTargets"`
	SolvePNPEnabled           bool              `json:"solvePNPEnabled"`
	TargetModel               types.TargetModel `json:"targetModel"`
}

// Positional literals: adding a field without a default fails to compile.
var defaultBase = Base{
	"New Pipeline", // Nickname
	CameraControls{
		20,         // ExposureRaw
		false,      // AutoExposure
		50,         // Brightness
		-1,         // Gain
		-1,         // RedGain
		-1,         // BlueGain
		false,      // AutoWhiteBalance
		4000,       // WhiteBalanceTemp
		0,          // VideoModeIndex
		0,          // StreamingFrameDivisor
		types.Deg0, // Rotation
		true,       // LEDMode
	},
	false,                               // InputShouldShow
	true,                                // OutputShouldShow
	true,                                // OutputShouldDraw
	false,                               // OutputShowMultipleTargets
	false,                               // SolvePNPEnabled
	types.InfiniteRechargeHighGoalOuter, // TargetModel
}

// DefaultBase returns the generic defaults every variant starts from.
func DefaultBase() Base {
	return defaultBase
}

func (c CameraControls) check(ck *checker) {
	ck.floatAtLeast("cameraExposureRaw", c.ExposureRaw, -1)
	ck.intRange("cameraBrightness", c.Brightness, 0, 100)
	ck.intRange("cameraGain", c.Gain, -1, 100)
	ck.intRange("cameraRedGain", c.RedGain, -1, 100)
	ck.intRange("cameraBlueGain", c.BlueGain, -1, 100)
	ck.positive("cameraWhiteBalanceTemp", c.WhiteBalanceTemp)
	ck.atLeast("cameraVideoModeIndex", c.VideoModeIndex, 0)
	ck.intRange("streamingFrameDivisor", c.StreamingFrameDivisor, 0, 3)
	ck.valid("inputImageRotationMode", c.Rotation)
}

func (b Base) check(ck *checker) {
	if b.Nickname == "" {
		ck.fail("pipelineNickname", b.Nickname, "must not be empty")
	}
	b.CameraControls.check(ck)
	ck.valid("targetModel", b.TargetModel)
}

// CameraOverride patches CameraControls. A nil field keeps the current value.
type CameraOverride struct {
	ExposureRaw           *float64             `json:"cameraExposureRaw,omitempty"`
	AutoExposure          *bool                `json:"cameraAutoExposure,omitempty"`
	Brightness            *int                 `json:"cameraBrightness,omitempty"`
	Gain                  *int                 `json:"cameraGain,omitempty"`
	RedGain               *int                 `json:"cameraRedGain,omitempty"`
	BlueGain              *int                 `json:"cameraBlueGain,omitempty"`
	AutoWhiteBalance      *bool                `json:"cameraAutoWhiteBalance,omitempty"`
	WhiteBalanceTemp      *float64             `json:"cameraWhiteBalanceTemp,omitempty"`
	VideoModeIndex        *int                 `json:"cameraVideoModeIndex,omitempty"`
	StreamingFrameDivisor *int                 `json:"streamingFrameDivisor,omitempty"`
	Rotation              *types.ImageRotation `json:"inputImageRotationMode,omitempty"`
	LEDMode               *bool                `json:"ledMode,omitempty"`
}

func (o CameraOverride) applyTo(c *CameraControls) {
	set(&c.ExposureRaw, o.ExposureRaw)
	set(&c.AutoExposure, o.AutoExposure)
	set(&c.Brightness, o.Brightness)
	set(&c.Gain, o.Gain)
	set(&c.RedGain, o.RedGain)
	set(&c.BlueGain, o.BlueGain)
	set(&c.AutoWhiteBalance, o.AutoWhiteBalance)
	set(&c.WhiteBalanceTemp, o.WhiteBalanceTemp)
	set(&c.VideoModeIndex, o.VideoModeIndex)
	set(&c.StreamingFrameDivisor, o.StreamingFrameDivisor)
	set(&c.Rotation, o.Rotation)
	set(&c.LEDMode, o.LEDMode)
}

// BaseOverride patches Base.
type BaseOverride struct {
	Nickname *string `json:"pipelineNickname,omitempty"`
	CameraOverride
	InputShouldShow           *bool              `json:"inputShouldShow,omitempty"`
	OutputShouldShow          *bool              `json:"outputShouldShow,omitempty"`
	OutputShouldDraw          *bool              `json:"outputShouldDraw,omitempty"`
	OutputShowMultipleTargets *bool              `json:"outputShowMultipleTargets,omitempty"`
	SolvePNPEnabled           *bool              `json:"solvePNPEnabled,omitempty"`
	TargetModel               *types.TargetModel `json:"targetModel,omitempty"`
}

func (o BaseOverride) applyTo(b *Base) {
	set(&b.Nickname, o.Nickname)
	o.CameraOverride.applyTo(&b.CameraControls)
	set(&b.InputShouldShow, o.InputShouldShow)
	set(&b.OutputShouldShow, o.OutputShouldShow)
	set(&b.OutputShouldDraw, o.OutputShouldDraw)
	set(&b.OutputShowMultipleTargets, o.OutputShowMultipleTargets)
	set(&b.SolvePNPEnabled, o.SolvePNPEnabled)
	set(&b.TargetModel, o.TargetModel)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Ptr is a convenience for building overrides in code.
func Ptr[T any](v T) *T {
	return &v
}
