package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/aydinterzi/sisyphus-game/internal/controller"
	"github.com/aydinterzi/sisyphus-game/internal/input"
)

// TestLoad 使用表驱动测试覆盖配置加载的核心场景
func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		createFile bool
		content    string
		wantErr    bool
		validate   func(t *testing.T, cfg *Config, err error)
	}{
		{
			name:       "正常加载有效YAML",
			createFile: true,
			content: `logging:
  level: "debug"
  file: "sisyphus.log"
  format: "json"
mode: "console"
loop:
  tick_rate: 120
controller:
  move_speed: 8
  air_control: 0.5
  jump_debounce: 250ms
  dash_cooldown: 1.5s
  ground_policy: contact
  camera_offset: [0, 6, 12]
camera:
  position: [1, 2, 3]
  fov: 75
scene:
  ground_size: 40
  player:
    name: "hero"
    spawn: [1, 3, 1]
  props:
    - name: "crate"
      position: [4, 0.5, 4]
      half_extents: [0.5, 0.5, 0.5]
input:
  keys:
    jump: "j"
  pulse: 200ms
`,
			wantErr: false,
			validate: func(t *testing.T, cfg *Config, err error) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("Logging.Level = %q, 期望 %q", cfg.Logging.Level, "debug")
				}
				if cfg.Logging.File != "sisyphus.log" {
					t.Errorf("Logging.File = %q, 期望 %q", cfg.Logging.File, "sisyphus.log")
				}
				if cfg.Mode != ModeConsole {
					t.Errorf("Mode = %q, 期望 %q", cfg.Mode, ModeConsole)
				}
				if cfg.Loop.TickRate != 120 {
					t.Errorf("Loop.TickRate = %d, 期望 %d", cfg.Loop.TickRate, 120)
				}
				if cfg.Controller.JumpDebounce != 250*time.Millisecond {
					t.Errorf("Controller.JumpDebounce = %v, 期望 %v", cfg.Controller.JumpDebounce, 250*time.Millisecond)
				}
				if cfg.Controller.DashCooldown != 1500*time.Millisecond {
					t.Errorf("Controller.DashCooldown = %v, 期望 %v", cfg.Controller.DashCooldown, 1500*time.Millisecond)
				}
				// 未出现的字段保留默认值
				if cfg.Controller.JumpSpeed != 7 {
					t.Errorf("Controller.JumpSpeed = %v, 期望默认值 %v", cfg.Controller.JumpSpeed, 7)
				}
				p, perr := cfg.Controller.Params()
				if perr != nil {
					t.Fatalf("Params() error = %v", perr)
				}
				if p.GroundPolicy != controller.GroundContact {
					t.Errorf("GroundPolicy = %v, 期望 %v", p.GroundPolicy, controller.GroundContact)
				}
				if p.CameraOffset != (mgl64.Vec3{0, 6, 12}) {
					t.Errorf("CameraOffset = %v, 期望 %v", p.CameraOffset, mgl64.Vec3{0, 6, 12})
				}
				if cfg.Camera.StartPosition() != (mgl64.Vec3{1, 2, 3}) {
					t.Errorf("Camera.Position = %v, 期望 %v", cfg.Camera.Position, [3]float64{1, 2, 3})
				}
				sc := cfg.Scene.Scene()
				if sc.GroundSize != 40 || sc.PlayerName != "hero" {
					t.Errorf("Scene = %+v, 期望 ground 40 player hero", sc)
				}
				if sc.PlayerRadius != 0.5 {
					t.Errorf("Scene.PlayerRadius = %v, 期望默认值 0.5", sc.PlayerRadius)
				}
				if len(sc.Props) != 1 || sc.Props[0].Name != "crate" || sc.Props[0].Dynamic {
					t.Errorf("Scene.Props = %+v, 期望只有固定的 crate", sc.Props)
				}
				km, kerr := cfg.Input.Keymap()
				if kerr != nil {
					t.Fatalf("Keymap() error = %v", kerr)
				}
				if a, ok := km.Lookup('j'); !ok || a != input.Jump {
					t.Errorf("Lookup('j') = %v, %v, 期望 jump", a, ok)
				}
				if _, ok := km.Lookup(' '); ok {
					t.Errorf("空格仍然绑定了动作")
				}
				if cfg.Input.Pulse != 200*time.Millisecond {
					t.Errorf("Input.Pulse = %v, 期望 %v", cfg.Input.Pulse, 200*time.Millisecond)
				}
			},
		},
		{
			name:       "文件不存在",
			createFile: false,
			wantErr:    true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if !os.IsNotExist(err) {
					t.Errorf("期望文件不存在错误，实际: %v", err)
				}
			},
		},
		{
			name:       "YAML格式错误",
			createFile: true,
			content: `loop:
  tick_rate: [60
mode: "view"
`,
			wantErr: true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if err == nil || !strings.Contains(err.Error(), "yaml") {
					t.Errorf("期望返回YAML解析错误，实际: %v", err)
				}
			},
		},
		{
			name:       "非法时长",
			createFile: true,
			content: `controller:
  dash_cooldown: "soon"
`,
			wantErr: true,
		},
		{
			name:       "非法模式",
			createFile: true,
			content:    "mode: \"gui\"\n",
			wantErr:    true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("期望 ErrInvalidConfig，实际: %v", err)
				}
			},
		},
		{
			name:       "空气控制超出范围",
			createFile: true,
			content: `controller:
  air_control: 1.5
`,
			wantErr: true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("期望 ErrInvalidConfig，实际: %v", err)
				}
			},
		},
		{
			name:       "未知动作绑定",
			createFile: true,
			content: `input:
  keys:
    crouch: "c"
`,
			wantErr: true,
		},
		{
			name:       "空文件",
			createFile: true,
			content:    "",
			wantErr:    false,
			validate: func(t *testing.T, cfg *Config, err error) {
				// 空文件得到默认配置。
				def := Default()
				if cfg.Mode != def.Mode || cfg.Loop.TickRate != def.Loop.TickRate {
					t.Errorf("期望默认配置，实际 Mode=%q TickRate=%d", cfg.Mode, cfg.Loop.TickRate)
				}
				if len(cfg.Scene.Props) != 1 || cfg.Scene.Props[0].Name != "rock" {
					t.Errorf("期望默认的 rock，实际: %+v", cfg.Scene.Props)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			configPath := filepath.Join(tempDir, "config.yaml")

			if tt.createFile {
				if err := os.WriteFile(configPath, []byte(tt.content), 0o644); err != nil {
					t.Fatalf("创建测试配置文件失败: %v", err)
				}
			}

			cfg, err := Load(configPath)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err == nil && cfg == nil {
				t.Fatalf("Load() 返回了 nil 配置")
			}

			if tt.validate != nil {
				tt.validate(t, cfg, err)
			}
		})
	}
}

// TestDefaultIsValid 默认配置必须通过校验
func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}

	p, err := cfg.Controller.Params()
	if err != nil {
		t.Fatalf("Params() error = %v", err)
	}
	if p != controller.DefaultParams() {
		t.Errorf("Params() = %+v, 期望 %+v", p, controller.DefaultParams())
	}
}

// TestValidate 覆盖各个区段的边界
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "tick rate 为零", mutate: func(c *Config) { c.Loop.TickRate = 0 }},
		{name: "fov 过大", mutate: func(c *Config) { c.Camera.FOV = 180 }},
		{name: "pulse 为零", mutate: func(c *Config) { c.Input.Pulse = 0 }},
		{name: "未知地面策略", mutate: func(c *Config) { c.Controller.GroundPolicy = "magic" }},
		{name: "移动速度为零", mutate: func(c *Config) { c.Controller.MoveSpeed = 0 }},
		{name: "地面尺寸为负", mutate: func(c *Config) { c.Scene.GroundSize = -1 }},
		{name: "空格键多字符", mutate: func(c *Config) { c.Input.Keys = map[string]string{"jump": "spc"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, 期望 ErrInvalidConfig", err)
			}
		})
	}
}

// TestShippedConfig 仓库自带的配置文件必须可以加载，且与默认值一致
func TestShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	p, err := cfg.Controller.Params()
	if err != nil {
		t.Fatalf("Params() error = %v", err)
	}
	if p != controller.DefaultParams() {
		t.Errorf("Params() = %+v, 期望默认值 %+v", p, controller.DefaultParams())
	}
	km, err := cfg.Input.Keymap()
	if err != nil {
		t.Fatalf("Keymap() error = %v", err)
	}
	if len(km) != len(input.DefaultKeymap()) {
		t.Errorf("Keymap() = %v, 期望 %v", km, input.DefaultKeymap())
	}
	for r, a := range input.DefaultKeymap() {
		if got, ok := km.Lookup(r); !ok || got != a {
			t.Errorf("Lookup(%q) = %v, %v, 期望 %v", r, got, ok, a)
		}
	}
	if cfg.Logging.File == "" {
		t.Errorf("Logging.File 为空，终端前端需要日志文件")
	}
}
