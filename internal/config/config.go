package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/kobzarvs/treesheets/internal/cell"
)

// Keymap binds key names (as produced by the viewer) to viewer actions.
type Keymap struct {
	View map[string]string `toml:"view"`
}

// Layout mirrors cell.Options, measured in terminal cells.
type Layout struct {
	DefaultTextSize int `toml:"default-text-size"`
	MinTextDelta    int `toml:"min-text-delta"`
	MaxTextDelta    int `toml:"max-text-delta"`
	MaxColumnWidth  int `toml:"max-column-width"`
	CellMargin      int `toml:"cell-margin"`
	GridMargin      int `toml:"grid-margin"`
	MarginExtra     int `toml:"margin-extra"`
	LineWidth       int `toml:"line-width"`
}

type Theme struct {
	Theme                string `toml:"theme"`
	Foreground           string `toml:"foreground"`
	Background           string `toml:"background"`
	Border               string `toml:"border"`
	SelectionForeground  string `toml:"selection-foreground"`
	SelectionBackground  string `toml:"selection-background"`
	StatuslineForeground string `toml:"statusline-foreground"`
	StatuslineBackground string `toml:"statusline-background"`
	Image                string `toml:"image"`
	UseCellColors        *bool  `toml:"use-cell-colors"`
}

type Images struct {
	Workers      int     `toml:"workers"`
	DisplayScale float64 `toml:"display-scale"`
}

type Config struct {
	Layout Layout `toml:"layout"`
	Theme  Theme  `toml:"theme"`
	Images Images `toml:"images"`
	Keymap Keymap `toml:"keymap"`
}

func Default() Config {
	useCellColors := true
	return Config{
		Layout: Layout{
			DefaultTextSize: 12,
			MinTextDelta:    8,
			MaxTextDelta:    32,
			MaxColumnWidth:  40,
			CellMargin:      0,
			GridMargin:      0,
			MarginExtra:     1,
			LineWidth:       1,
		},
		Theme: Theme{
			Theme:                "",
			Foreground:           "#B3B1AD",
			Background:           "#0A0E14",
			Border:               "#A0A0A0",
			SelectionForeground:  "#0A0E14",
			SelectionBackground:  "#E6B450",
			StatuslineForeground: "#B3B1AD",
			StatuslineBackground: "#0F1419",
			Image:                "#59C2FF",
			UseCellColors:        &useCellColors,
		},
		Images: Images{
			Workers:      0,
			DisplayScale: 1,
		},
		Keymap: Keymap{
			View: map[string]string{
				"h":         "move_left",
				"j":         "move_down",
				"k":         "move_up",
				"l":         "move_right",
				"left":      "move_left",
				"down":      "move_down",
				"up":        "move_up",
				"right":     "move_right",
				"enter":     "enter_grid",
				"tab":       "enter_grid",
				"esc":       "leave_grid",
				"backspace": "leave_grid",
				"space":     "toggle_fold",
				"+":         "zoom_in",
				"=":         "zoom_in",
				"-":         "zoom_out",
				"ctrl+y":    "scroll_up",
				"ctrl+e":    "scroll_down",
				"pgup":      "page_up",
				"pgdn":      "page_down",
				"home":      "scroll_home",
				"ctrl+s":    "save",
				"q":         "quit",
				"ctrl+c":    "quit",
			},
		},
	}
}

// Options converts the layout section for the layout engine.
func (l Layout) Options() cell.Options {
	return cell.Options{
		DefaultTextSize: l.DefaultTextSize,
		MinTextDelta:    l.MinTextDelta,
		MaxTextDelta:    l.MaxTextDelta,
		MaxColumnWidth:  l.MaxColumnWidth,
		CellMargin:      l.CellMargin,
		GridMargin:      l.GridMargin,
		LineWidth:       l.LineWidth,
	}
}

func (c Config) Validate() error {
	l := c.Layout
	switch {
	case l.DefaultTextSize < 1:
		return fmt.Errorf("layout.default-text-size must be positive, got %d", l.DefaultTextSize)
	case l.MinTextDelta < 0 || l.MaxTextDelta < 0:
		return fmt.Errorf("layout text deltas must not be negative, got %d/%d", l.MinTextDelta, l.MaxTextDelta)
	case l.MaxColumnWidth < 1:
		return fmt.Errorf("layout.max-column-width must be positive, got %d", l.MaxColumnWidth)
	case l.CellMargin < 0 || l.GridMargin < 0 || l.MarginExtra < 0 || l.LineWidth < 0:
		return fmt.Errorf("layout margins must not be negative")
	case c.Images.DisplayScale <= 0:
		return fmt.Errorf("images.display-scale must be positive, got %v", c.Images.DisplayScale)
	case c.Images.Workers < 0:
		return fmt.Errorf("images.workers must not be negative, got %d", c.Images.Workers)
	}
	return nil
}

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	md, err := toml.Decode(string(data), &userCfg)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	// Layout values may legitimately be zero, so presence decides.
	mergeInt := func(dst *int, v int, key string) {
		if md.IsDefined("layout", key) {
			*dst = v
		}
	}
	mergeInt(&cfg.Layout.DefaultTextSize, userCfg.Layout.DefaultTextSize, "default-text-size")
	mergeInt(&cfg.Layout.MinTextDelta, userCfg.Layout.MinTextDelta, "min-text-delta")
	mergeInt(&cfg.Layout.MaxTextDelta, userCfg.Layout.MaxTextDelta, "max-text-delta")
	mergeInt(&cfg.Layout.MaxColumnWidth, userCfg.Layout.MaxColumnWidth, "max-column-width")
	mergeInt(&cfg.Layout.CellMargin, userCfg.Layout.CellMargin, "cell-margin")
	mergeInt(&cfg.Layout.GridMargin, userCfg.Layout.GridMargin, "grid-margin")
	mergeInt(&cfg.Layout.MarginExtra, userCfg.Layout.MarginExtra, "margin-extra")
	mergeInt(&cfg.Layout.LineWidth, userCfg.Layout.LineWidth, "line-width")

	if userCfg.Theme.Theme != "" {
		cfg.Theme.Theme = userCfg.Theme.Theme
	}
	if cfg.Theme.Theme != "" {
		theme, err := LoadTheme(cfg.Theme.Theme)
		if err != nil {
			return cfg, err
		}
		mergeTheme(&cfg.Theme, theme)
	}
	mergeTheme(&cfg.Theme, userCfg.Theme)

	if md.IsDefined("images", "workers") {
		cfg.Images.Workers = userCfg.Images.Workers
	}
	if userCfg.Images.DisplayScale != 0 {
		cfg.Images.DisplayScale = userCfg.Images.DisplayScale
	}
	for k, v := range userCfg.Keymap.View {
		if v == "" {
			delete(cfg.Keymap.View, k)
			continue
		}
		cfg.Keymap.View[k] = v
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func mergeTheme(dst *Theme, src Theme) {
	if src.Foreground != "" {
		dst.Foreground = src.Foreground
	}
	if src.Background != "" {
		dst.Background = src.Background
	}
	if src.Border != "" {
		dst.Border = src.Border
	}
	if src.SelectionForeground != "" {
		dst.SelectionForeground = src.SelectionForeground
	}
	if src.SelectionBackground != "" {
		dst.SelectionBackground = src.SelectionBackground
	}
	if src.StatuslineForeground != "" {
		dst.StatuslineForeground = src.StatuslineForeground
	}
	if src.StatuslineBackground != "" {
		dst.StatuslineBackground = src.StatuslineBackground
	}
	if src.Image != "" {
		dst.Image = src.Image
	}
	if src.UseCellColors != nil {
		dst.UseCellColors = src.UseCellColors
	}
}

func ThemePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme", name+".toml"), nil
}

// LoadTheme reads theme/<name>.toml, either flat or under a [theme] table.
func LoadTheme(name string) (Theme, error) {
	path, err := ThemePath(name)
	if err != nil {
		return Theme{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	var wrap struct {
		Theme Theme `toml:"theme"`
	}
	md, err := toml.Decode(string(data), &wrap)
	if err != nil {
		return Theme{}, err
	}
	if md.IsDefined("theme") {
		return wrap.Theme, nil
	}
	var t Theme
	if _, err := toml.Decode(string(data), &t); err != nil {
		return Theme{}, err
	}
	return t, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("TREESHEETS_CONFIG_HOME"); v != "" {
		return filepath.Clean(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "treesheets"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "treesheets"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
