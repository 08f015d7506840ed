package config

import (
	"github.com/ayusman/flashgesture/internal/confirm"
	"github.com/ayusman/flashgesture/internal/gesture"
)

// Default values for settings that have no package-level default.
const (
	DefaultAddr        = ":8080"
	DefaultDSN         = ":memory:"
	DefaultMotion      = 1.0
	DefaultSampleEvery = 1
	// CameraDisabled turns the local camera pipeline off.
	CameraDisabled = -1
)

// Server holds HTTP settings.
type Server struct {
	Addr        string
	StaticDir   string
	CORSOrigins []string
}

// Store holds database settings.
type Store struct {
	DSN string
}

// Camera holds settings for the local camera pipeline.
type Camera struct {
	DeviceID     int
	MotionThresh float64
	SampleEvery  int
}

// Config is the full application configuration.
type Config struct {
	Server     Server
	Store      Store
	Camera     Camera
	Classifier gesture.ClassifierConfig
	Engine     confirm.Config
	Tray       bool
}

// Load reads FLASHGESTURE_* variables, falling back to defaults.
func Load() Config {
	c := New().Prefix("FLASHGESTURE_")
	cls := gesture.DefaultClassifierConfig()
	eng := confirm.DefaultConfig()

	return Config{
		Server: Server{
			Addr:        c.MayString("ADDR", DefaultAddr),
			StaticDir:   c.MayString("STATIC_DIR", ""),
			CORSOrigins: c.MayCSV("CORS_ORIGINS", []string{"*"}),
		},
		Store: Store{
			DSN: c.MayString("DB", DefaultDSN),
		},
		Camera: Camera{
			DeviceID:     c.MayInt("CAMERA", CameraDisabled),
			MotionThresh: c.MayFloat64("MOTION", DefaultMotion),
			SampleEvery:  c.MayInt("SAMPLE_EVERY", DefaultSampleEvery),
		},
		Classifier: gesture.ClassifierConfig{
			ThumbExtendedAngle: c.MayFloat64("THUMB_ANGLE", cls.ThumbExtendedAngle),
			VerticalThreshold:  c.MayFloat64("VERTICAL", cls.VerticalThreshold),
			SidewaysThreshold:  c.MayFloat64("SIDEWAYS", cls.SidewaysThreshold),
			Fallback2D:         c.MayBool("FALLBACK_2D", cls.Fallback2D),
			Thumb2DAngle:       cls.Thumb2DAngle,
			Offset2D:           cls.Offset2D,
		},
		Engine: confirm.Config{
			HoldDuration:   c.MayDuration("HOLD", eng.HoldDuration),
			OverallTimeout: c.MayDuration("TIMEOUT", eng.OverallTimeout),
		},
		Tray: c.MayBool("TRAY", false),
	}
}
