package camguard

import "fmt"

// PixelFormat is one of the pixel encodings a CameraConfiguration may
// request.
type PixelFormat string

const (
	RGB24  PixelFormat = "RGB24"
	YUV420 PixelFormat = "YUV420"
)

// CameraConfiguration is an immutable, validated configuration value:
// width, height and fps must all be strictly positive.
type CameraConfiguration struct {
	Width       int
	Height      int
	PixelFormat PixelFormat
	FPS         int
}

// NewCameraConfiguration validates and constructs a CameraConfiguration.
// Construction is the only place invalid values are rejected; once built,
// a value is immutable and trusted by every downstream component.
func NewCameraConfiguration(width, height, fps int, format PixelFormat) (CameraConfiguration, error) {
	cfg := CameraConfiguration{Width: width, Height: height, PixelFormat: format, FPS: fps}
	if err := cfg.validate(); err != nil {
		return CameraConfiguration{}, err
	}
	return cfg, nil
}

func (c CameraConfiguration) validate() error {
	if c.Width <= 0 {
		return fmt.Errorf("width must be strictly positive, got %d", c.Width)
	}
	if c.Height <= 0 {
		return fmt.Errorf("height must be strictly positive, got %d", c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be strictly positive, got %d", c.FPS)
	}
	if c.PixelFormat != RGB24 && c.PixelFormat != YUV420 {
		return fmt.Errorf("unsupported pixel format %q", c.PixelFormat)
	}
	return nil
}

// DefaultCameraConfiguration returns a sane default: 1280x720 @ 30fps,
// YUV420 — the resolution/format combination the teacher's camera config
// defaulted to.
func DefaultCameraConfiguration() CameraConfiguration {
	cfg, err := NewCameraConfiguration(1280, 720, 30, YUV420)
	if err != nil {
		// unreachable: the literals above are always valid.
		panic(err)
	}
	return cfg
}
