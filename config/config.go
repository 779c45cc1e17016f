// Package config holds the runtime settings of the quad demo.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
)

// Config defines the whole application configuration
type Config struct {
	Window   WindowConfiguration
	Renderer RendererConfiguration

	// LogLevel is any level name understood by logrus
	LogLevel string
}

// WindowConfiguration is used to configure the presentation window
type WindowConfiguration struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	EnableValidation bool

	// MaxFramesInFlight bounds how many frames the CPU may queue
	// ahead of the GPU
	MaxFramesInFlight int

	ShaderDirectory string
	VertexShader    string
	FragmentShader  string

	// MeshPath points at a Wavefront OBJ file. Empty means the built-in quad.
	MeshPath string

	ClearColor [4]float32
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Window: WindowConfiguration{
			Title:     "Vulkan",
			Width:     800,
			Height:    600,
			Resizable: true,
		},
		Renderer: RendererConfiguration{
			EnableValidation:  true,
			MaxFramesInFlight: 2,
			ShaderDirectory:   "shaders",
			VertexShader:      "vert.spv",
			FragmentShader:    "frag.spv",
			ClearColor:        [4]float32{0, 0, 0, 1},
		},
		LogLevel: "info",
	}
}

// Load reads the given dotenv files, if present, and applies QUAD_* environment
// overrides on top of Default.
func Load(files ...string) (Config, error) {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return Config{}, errors.Wrapf(err, "config: could not read %s", file)
		}
	}
	envy.Reload()

	cfg := Default()
	var err error

	cfg.Window.Title = envy.Get("QUAD_TITLE", cfg.Window.Title)
	if cfg.Window.Width, err = intVar("QUAD_WIDTH", cfg.Window.Width); err != nil {
		return Config{}, err
	}
	if cfg.Window.Height, err = intVar("QUAD_HEIGHT", cfg.Window.Height); err != nil {
		return Config{}, err
	}
	if cfg.Window.Resizable, err = boolVar("QUAD_RESIZABLE", cfg.Window.Resizable); err != nil {
		return Config{}, err
	}

	if cfg.Renderer.EnableValidation, err = boolVar("QUAD_VALIDATION", cfg.Renderer.EnableValidation); err != nil {
		return Config{}, err
	}
	if cfg.Renderer.MaxFramesInFlight, err = intVar("QUAD_FRAMES_IN_FLIGHT", cfg.Renderer.MaxFramesInFlight); err != nil {
		return Config{}, err
	}
	cfg.Renderer.ShaderDirectory = envy.Get("QUAD_SHADER_DIR", cfg.Renderer.ShaderDirectory)
	cfg.Renderer.VertexShader = envy.Get("QUAD_VERTEX_SHADER", cfg.Renderer.VertexShader)
	cfg.Renderer.FragmentShader = envy.Get("QUAD_FRAGMENT_SHADER", cfg.Renderer.FragmentShader)
	cfg.Renderer.MeshPath = envy.Get("QUAD_MESH", cfg.Renderer.MeshPath)
	if cfg.Renderer.ClearColor, err = colorVar("QUAD_CLEAR_COLOR", cfg.Renderer.ClearColor); err != nil {
		return Config{}, err
	}

	cfg.LogLevel = envy.Get("QUAD_LOG_LEVEL", cfg.LogLevel)

	return cfg, cfg.Validate()
}

// Validate rejects settings the renderer cannot run with
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Newf("config: window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Renderer.MaxFramesInFlight < 1 {
		return errors.Newf("config: max frames in flight must be at least 1, got %d", c.Renderer.MaxFramesInFlight)
	}
	return nil
}

func intVar(key string, fallback int) (int, error) {
	raw := envy.Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "config: %s", key)
	}
	return value, nil
}

func boolVar(key string, fallback bool) (bool, error) {
	raw := envy.Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.Wrapf(err, "config: %s", key)
	}
	return value, nil
}

// colorVar parses "r,g,b,a" with components in [0,1]
func colorVar(key string, fallback [4]float32) ([4]float32, error) {
	raw := envy.Get(key, "")
	if raw == "" {
		return fallback, nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return fallback, errors.Newf("config: %s needs 4 components, got %d", key, len(parts))
	}

	var color [4]float32
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return fallback, errors.Wrapf(err, "config: %s", key)
		}
		if value < 0 || value > 1 {
			return fallback, errors.Newf("config: %s component %d out of range: %v", key, i, value)
		}
		color[i] = float32(value)
	}
	return color, nil
}
