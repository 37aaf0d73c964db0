package choreo

import "github.com/ayusman/odissi/internal/gesture"

// Frame is one animation tick's renderer-consumable output: a transform per
// record keyed by stable index, colors only when a record set changed, plus
// the camera rig and hand telemetry.
type Frame struct {
	Timestamp int64             `json:"timestamp"`
	Mode      string            `json:"mode"`
	Elapsed   float64           `json:"elapsed"`
	Hand      gesture.HandState `json:"hand"`
	Rig       RigOffset         `json:"rig"`

	Foliage []Transform `json:"foliage"`
	Ribbons []Transform `json:"ribbons"`
	Photos  []Transform `json:"photos"`

	FoliageColors []Color `json:"foliageColors,omitempty"`
	RibbonColors  []Color `json:"ribbonColors,omitempty"`
	PhotoColors   []Color `json:"photoColors,omitempty"`

	FocusedPhoto string `json:"focusedPhoto,omitempty"`
}

// FrameSink consumes one frame per animation tick. Only the freshest frame
// matters; implementations drop rather than queue when a consumer is slow.
type FrameSink interface {
	PublishFrame(f *Frame)
}

// NullSink discards frames. Used in tests and headless runs.
type NullSink struct{}

// PublishFrame implements FrameSink.
func (NullSink) PublishFrame(*Frame) {}
