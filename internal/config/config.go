package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/aydinterzi/sisyphus-game/internal/controller"
	"github.com/aydinterzi/sisyphus-game/internal/input"
	"github.com/aydinterzi/sisyphus-game/internal/scene"
)

const (
	ModeView    = "view"
	ModeConsole = "console"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Mode       string           `yaml:"mode"`
	Loop       LoopConfig       `yaml:"loop"`
	Controller ControllerConfig `yaml:"controller"`
	Camera     CameraConfig     `yaml:"camera"`
	Scene      SceneConfig      `yaml:"scene"`
	Input      InputConfig      `yaml:"input"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

type LoopConfig struct {
	TickRate int `yaml:"tick_rate"`
}

type ControllerConfig struct {
	MoveSpeed    float64       `yaml:"move_speed"`
	AirControl   float64       `yaml:"air_control"`
	JumpSpeed    float64       `yaml:"jump_speed"`
	JumpDebounce time.Duration `yaml:"jump_debounce"`
	DashSpeed    float64       `yaml:"dash_speed"`
	DashCooldown time.Duration `yaml:"dash_cooldown"`
	Deadzone     float64       `yaml:"deadzone"`
	RotationLerp float64       `yaml:"rotation_lerp"`
	GroundProbe  float64       `yaml:"ground_probe"`
	GroundPolicy string        `yaml:"ground_policy"`

	CameraOffset     [3]float64 `yaml:"camera_offset"`
	CameraLookHeight float64    `yaml:"camera_look_height"`
	CameraLerpGround float64    `yaml:"camera_lerp_ground"`
	CameraLerpAir    float64    `yaml:"camera_lerp_air"`
}

type CameraConfig struct {
	Position [3]float64 `yaml:"position"`
	FOV      float64    `yaml:"fov"`
}

type SceneConfig struct {
	GroundSize      float64      `yaml:"ground_size"`
	GroundThickness float64      `yaml:"ground_thickness"`
	Gravity         float64      `yaml:"gravity"`
	Player          PlayerConfig `yaml:"player"`
	Props           []PropConfig `yaml:"props"`
}

type PlayerConfig struct {
	Name       string     `yaml:"name"`
	Spawn      [3]float64 `yaml:"spawn"`
	HalfHeight float64    `yaml:"half_height"`
	Radius     float64    `yaml:"radius"`
}

type PropConfig struct {
	Name        string     `yaml:"name"`
	Position    [3]float64 `yaml:"position"`
	HalfExtents [3]float64 `yaml:"half_extents"`
	Dynamic     bool       `yaml:"dynamic"`
}

// InputConfig maps action names to keys, e.g. jump: space.
type InputConfig struct {
	Keys map[string]string `yaml:"keys"`
	// Pulse is how long one key press keeps its action held in the terminal
	// front ends, which never see key releases.
	Pulse time.Duration `yaml:"pulse"`
}

// Default is the configuration a missing file or section falls back to.
func Default() *Config {
	p := controller.DefaultParams()
	s := scene.DefaultConfig()

	cfg := &Config{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Mode:    ModeView,
		Loop:    LoopConfig{TickRate: 60},
		Controller: ControllerConfig{
			MoveSpeed:        p.MoveSpeed,
			AirControl:       p.AirControl,
			JumpSpeed:        p.JumpSpeed,
			JumpDebounce:     p.JumpDebounce,
			DashSpeed:        p.DashSpeed,
			DashCooldown:     p.DashCooldown,
			Deadzone:         p.Deadzone,
			RotationLerp:     p.RotationLerp,
			GroundProbe:      p.GroundProbe,
			GroundPolicy:     p.GroundPolicy.String(),
			CameraOffset:     p.CameraOffset,
			CameraLookHeight: p.CameraLookHeight,
			CameraLerpGround: p.CameraLerpGround,
			CameraLerpAir:    p.CameraLerpAir,
		},
		Camera: CameraConfig{Position: [3]float64{0, 10, 20}, FOV: 60},
		Scene: SceneConfig{
			GroundSize:      s.GroundSize,
			GroundThickness: s.GroundThickness,
			Gravity:         s.Gravity,
			Player: PlayerConfig{
				Name:       s.PlayerName,
				Spawn:      s.PlayerSpawn,
				HalfHeight: s.PlayerHalfHeight,
				Radius:     s.PlayerRadius,
			},
		},
		Input: InputConfig{Pulse: 150 * time.Millisecond},
	}
	for _, prop := range s.Props {
		cfg.Scene.Props = append(cfg.Scene.Props, PropConfig{
			Name:        prop.Name,
			Position:    prop.Position,
			HalfExtents: prop.HalfExtents,
			Dynamic:     prop.Dynamic,
		})
	}
	return cfg
}

// Load reads a YAML file over Default and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Mode {
	case ModeView, ModeConsole:
	default:
		return fmt.Errorf("%w: mode %q, want %q or %q", ErrInvalidConfig, c.Mode, ModeView, ModeConsole)
	}
	if c.Loop.TickRate <= 0 || c.Loop.TickRate > 1000 {
		return fmt.Errorf("%w: tick rate %d out of range (1..1000)", ErrInvalidConfig, c.Loop.TickRate)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("%w: camera fov %v out of range", ErrInvalidConfig, c.Camera.FOV)
	}
	if c.Input.Pulse <= 0 {
		return fmt.Errorf("%w: input pulse must be positive", ErrInvalidConfig)
	}
	if _, err := c.Controller.Params(); err != nil {
		return fmt.Errorf("%w: controller: %v", ErrInvalidConfig, err)
	}
	if err := c.Scene.Scene().Validate(); err != nil {
		return fmt.Errorf("%w: scene: %v", ErrInvalidConfig, err)
	}
	if _, err := c.Input.Keymap(); err != nil {
		return fmt.Errorf("%w: input: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Params converts the controller section to validated tunables.
func (c ControllerConfig) Params() (controller.Params, error) {
	policy, err := controller.ParseGroundPolicy(c.GroundPolicy)
	if err != nil {
		return controller.Params{}, err
	}
	p := controller.Params{
		MoveSpeed:        c.MoveSpeed,
		AirControl:       c.AirControl,
		JumpSpeed:        c.JumpSpeed,
		JumpDebounce:     c.JumpDebounce,
		DashSpeed:        c.DashSpeed,
		DashCooldown:     c.DashCooldown,
		Deadzone:         c.Deadzone,
		RotationLerp:     c.RotationLerp,
		GroundProbe:      c.GroundProbe,
		GroundPolicy:     policy,
		CameraOffset:     mgl64.Vec3(c.CameraOffset),
		CameraLookHeight: c.CameraLookHeight,
		CameraLerpGround: c.CameraLerpGround,
		CameraLerpAir:    c.CameraLerpAir,
	}
	if err := p.Validate(); err != nil {
		return controller.Params{}, err
	}
	return p, nil
}

func (s SceneConfig) Scene() scene.Config {
	out := scene.Config{
		GroundSize:       s.GroundSize,
		GroundThickness:  s.GroundThickness,
		Gravity:          s.Gravity,
		PlayerName:       s.Player.Name,
		PlayerSpawn:      mgl64.Vec3(s.Player.Spawn),
		PlayerHalfHeight: s.Player.HalfHeight,
		PlayerRadius:     s.Player.Radius,
	}
	for _, p := range s.Props {
		out.Props = append(out.Props, scene.Prop{
			Name:        p.Name,
			Position:    mgl64.Vec3(p.Position),
			HalfExtents: mgl64.Vec3(p.HalfExtents),
			Dynamic:     p.Dynamic,
		})
	}
	return out
}

func (c CameraConfig) StartPosition() mgl64.Vec3 {
	return mgl64.Vec3(c.Position)
}

func (i InputConfig) Keymap() (input.Keymap, error) {
	return input.ParseKeymap(i.Keys)
}
