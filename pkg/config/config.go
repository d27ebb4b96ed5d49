package config

import (
	// stdlib
	"errors"
	"fmt"
	"os"

	// internal
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/blob"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/enums"

	// external
	"github.com/pelletier/go-toml/v2"
)

var ERR_INVALID_CONFIG = errors.New("Can't use config")

// Config file structure

type ConfigFile struct {
	Logging     LoggingConfig
	Input       InputConfig
	Recognition RecognitionConfig
	Output      OutputConfig
	Webserver   WebserverConfig
	Workers     WorkersConfig
	Groups      GroupsConfig
}

type LoggingConfig struct {
	Level         string
	StatPeriodSec uint `toml:"stat_period_sec"`

	// points of consecutive frames further apart are not compared
	JitterRadius float64 `toml:"jitter_radius"`
}

type InputConfig struct {
	Type string
	Path string
	// webcam index
	Device int
	// image name filter of the folder input
	Pattern string
}

type RectConfig struct {
	X, Y int
	// zero width or height selects the whole frame
	W, H int
}

type RecognitionConfig struct {
	Method     string
	BorderSize int        `toml:"border_size"`
	CmPerPixel float64    `toml:"cm_per_pixel"`
	ROI        RectConfig `toml:"roi"`

	Contour    ContourConfig
	Color      ColorConfig
	MultiColor MultiColorConfig `toml:"multicolor"`
	Code       CodeConfig
}

type ContourConfig struct {
	Brightness          int
	IgnoreWithoutMarker bool    `toml:"ignore_without_marker"`
	AutoWB              bool    `toml:"auto_wb"`
	HeadSize            float64 `toml:"head_size"`
	Quadrangles         bool
}

// Colors are #rrggbb hex codes, only their hue, saturation and value count
type RangeConfig struct {
	From      string
	To        string
	InvertHue bool `toml:"invert_hue"`
}

type BlobConfig struct {
	MinArea     float64 `toml:"min_area"`
	MaxArea     float64 `toml:"max_area"`
	MaxRatio    float64 `toml:"max_ratio"`
	UseClose    bool    `toml:"use_close"`
	RadiusClose int     `toml:"radius_close"`
	UseOpen     bool    `toml:"use_open"`
	RadiusOpen  int     `toml:"radius_open"`
}

type ColorConfig struct {
	Range RangeConfig
	Blob  BlobConfig
}

type MultiColorConfig struct {
	Ranges  []RangeConfig
	Current int
	Blob    BlobConfig

	UseDot                bool    `toml:"use_dot"`
	DotSize               float64 `toml:"dot_size"`
	RestrictPosition      bool    `toml:"restrict_position"`
	UseCode               bool    `toml:"use_code"`
	IgnoreWithoutMarker   bool    `toml:"ignore_without_marker"`
	AutoCorrect           bool    `toml:"auto_correct"`
	AutoCorrectOnlyExport bool    `toml:"auto_correct_only_export"`
}

type CodeConfig struct {
	Dictionary          int
	IgnoreWithoutMarker bool `toml:"ignore_without_marker"`
	Params              blob.CodeParams
}

type MQTTConfig struct {
	Enabled  bool
	Address  string
	Topic    string
	ClientID string `toml:"client_id"`
	Username string
	Password string
}

type SQLiteConfig struct {
	Enabled bool
	Path    string
}

type OutputConfig struct {
	MQTT   MQTTConfig   `toml:"mqtt"`
	SQLite SQLiteConfig `toml:"sqlite"`
}

type WebserverConfig struct {
	Enabled            bool
	Port               uint
	ReadTimeoutSec     uint `toml:"read_timeout_sec"`
	WriteTimeoutSec    uint `toml:"write_timeout_sec"`
	ShutdownTimeoutSec uint `toml:"shutdown_timeout_sec"`
	W                  uint
	H                  uint

	// frames of points drawn behind the current one
	Trail uint
}

type WorkersConfig struct {
	Recognizers uint
	// frames buffered between stages
	Buffer uint
}

type GroupsConfig struct {
	Trajectories int
	Output       string
}

func Default() *ConfigFile {
	return &ConfigFile{
		Logging: LoggingConfig{Level: "info", StatPeriodSec: 5, JitterRadius: 20},
		Input:   InputConfig{Type: "file", Path: "../data/video.mp4", Pattern: "*.png"},
		Recognition: RecognitionConfig{
			Method:     "multicolor",
			CmPerPixel: 1,
			Contour:    ContourConfig{HeadSize: 40},
			Color: ColorConfig{
				Range: RangeConfig{From: "#14148c", To: "#6496ff"},
				Blob:  BlobConfig{MinArea: 100, MaxArea: 5000, MaxRatio: 2},
			},
			MultiColor: MultiColorConfig{
				Ranges: []RangeConfig{
					{From: "#14148c", To: "#6496ff"},
					{From: "#b4003c", To: "#ff7733", InvertHue: true},
				},
				Blob: BlobConfig{
					MinArea: 100, MaxArea: 5000, MaxRatio: 2,
					UseClose: true, RadiusClose: 5,
					UseOpen: true, RadiusOpen: 3,
				},
				DotSize: 5,
			},
			Code: CodeConfig{Dictionary: 0, Params: blob.DefaultCodeParams()},
		},
		Output: OutputConfig{
			MQTT:   MQTTConfig{Address: "127.0.0.1:1883", Topic: "petrack/detections", ClientID: "reco"},
			SQLite: SQLiteConfig{Path: "../data/detections.db"},
		},
		Webserver: WebserverConfig{
			Port: 8080, ReadTimeoutSec: 10, WriteTimeoutSec: 10, ShutdownTimeoutSec: 5, Trail: 10,
		},
		Workers: WorkersConfig{Recognizers: 2, Buffer: 4},
		Groups:  GroupsConfig{Trajectories: 0, Output: "../data/groups.json"},
	}
}

func Unmarshal(file_path string) (*ConfigFile, error) {
	config_file := Default()
	data, err := os.ReadFile(file_path)
	if err != nil {
		return nil,
			fmt.Errorf("Unable to read %s error: %w", file_path, err)
	}
	err = toml.Unmarshal(data, config_file)
	if err != nil {
		return nil,
			fmt.Errorf("Unable to unmarshal %s error: %w", file_path, err)
	}
	return config_file, nil
}

// Writes the default configuration to file_path
func CreateDefault(file_path string) error {
	data, err := toml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("Unable to marshal default config error: %w", err)
	}
	if err := os.WriteFile(file_path, data, 0o644); err != nil {
		return fmt.Errorf("Unable to write %s error: %w", file_path, err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ERR_INVALID_CONFIG, fmt.Sprintf(format, args...))
}

func (r RangeConfig) ColorRange() (blob.ColorRange, error) {
	from, err := blob.ParseHSV(r.From)
	if err != nil {
		return blob.ColorRange{}, invalid("bad range color %q", r.From)
	}
	to, err := blob.ParseHSV(r.To)
	if err != nil {
		return blob.ColorRange{}, invalid("bad range color %q", r.To)
	}
	return blob.ColorRange{From: from, To: to, InvertHue: r.InvertHue}, nil
}

func (b BlobConfig) validate(section string) error {
	switch {
	case b.MinArea < 0 || b.MaxArea < b.MinArea:
		return invalid("%s: area range %v..%v", section, b.MinArea, b.MaxArea)
	case b.MaxRatio < 1:
		return invalid("%s: max ratio %v below 1", section, b.MaxRatio)
	case b.UseClose && b.RadiusClose < 0, b.UseOpen && b.RadiusOpen < 0:
		return invalid("%s: negative morphology radius", section)
	}
	return nil
}

func (cfg *ConfigFile) Validate() error {
	if enums.LoggingLevels.Parse(cfg.Logging.Level) == nil {
		return invalid("logging level %q", cfg.Logging.Level)
	}
	if enums.InputTypes.Parse(cfg.Input.Type) == nil {
		return invalid("input type %q", cfg.Input.Type)
	}
	method := enums.RecognitionMethods.Parse(cfg.Recognition.Method)
	if method == nil {
		return invalid("recognition method %q", cfg.Recognition.Method)
	}
	if cfg.Recognition.CmPerPixel <= 0 {
		return invalid("cm per pixel must be larger than 0")
	}
	if cfg.Recognition.BorderSize < 0 {
		return invalid("negative border size")
	}

	switch *method {
	case enums.MethodJapan:
		if cfg.Recognition.Contour.HeadSize <= 0 {
			return invalid("japan markers need a head size")
		}
	case enums.MethodColor:
		if _, err := cfg.Recognition.Color.Range.ColorRange(); err != nil {
			return err
		}
		if err := cfg.Recognition.Color.Blob.validate("color"); err != nil {
			return err
		}
	case enums.MethodMultiColor:
		mc := cfg.Recognition.MultiColor
		if len(mc.Ranges) == 0 {
			return invalid("multicolor needs at least one range")
		}
		for _, r := range mc.Ranges {
			if _, err := r.ColorRange(); err != nil {
				return err
			}
		}
		if err := mc.Blob.validate("multicolor"); err != nil {
			return err
		}
		if mc.UseDot && mc.DotSize <= 0 {
			return invalid("black dot needs a dot size")
		}
		if mc.UseCode && !mc.UseDot {
			if err := cfg.Recognition.Code.Params.Validate(); err != nil {
				return err
			}
		}
	case enums.MethodCode:
		if err := cfg.Recognition.Code.Params.Validate(); err != nil {
			return err
		}
	}

	if cfg.Workers.Recognizers == 0 {
		return invalid("at least one recognizer worker")
	}
	if cfg.Output.MQTT.Enabled && cfg.Output.MQTT.Topic == "" {
		return invalid("mqtt output without topic")
	}
	if cfg.Output.SQLite.Enabled && cfg.Output.SQLite.Path == "" {
		return invalid("sqlite output without path")
	}
	if cfg.Logging.StatPeriodSec == 0 {
		return invalid("stat period must be at least one second")
	}
	if cfg.Logging.JitterRadius < 0 {
		return invalid("negative jitter radius")
	}
	return nil
}
