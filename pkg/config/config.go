package config

import "strings"

type Feature int

const (
	FeatConstFold Feature = iota // parser-time constant evaluation
	FeatCopyProp                 // IR value-table substitution
	FeatCount
)

type Warning int

const (
	WarnLongIdent Warning = iota
	WarnUnused
	WarnUninitialized
	WarnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Features   map[Feature]Info
	Warnings   map[Warning]Info
	FeatureMap map[string]Feature
	WarningMap map[string]Warning

	// MaxIdentLen is the identifier length above which the scanner emits a
	// long-identifier warning token.
	MaxIdentLen int
}

func NewConfig() *Config {
	cfg := &Config{
		Features:    make(map[Feature]Info),
		Warnings:    make(map[Warning]Info),
		FeatureMap:  make(map[string]Feature),
		WarningMap:  make(map[string]Warning),
		MaxIdentLen: 32,
	}

	features := map[Feature]Info{
		FeatConstFold: {"const-fold", true, "Evaluate constant right-hand sides while parsing."},
		FeatCopyProp:  {"copy-prop", true, "Substitute known values instead of emitting loads in the IR."},
	}

	warnings := map[Warning]Info{
		WarnLongIdent:     {"long-ident", true, "Warn on identifiers longer than the maximum length."},
		WarnUnused:        {"unused", true, "Warn about variables that are never read."},
		WarnUninitialized: {"uninitialized", true, "Warn about variables that never receive a concrete value."},
	}

	cfg.Features, cfg.Warnings = features, warnings
	for ft, info := range features {
		cfg.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}
	return cfg
}

func (c *Config) SetFeature(ft Feature, enabled bool) {
	if info, ok := c.Features[ft]; ok {
		info.Enabled = enabled
		c.Features[ft] = info
	}
}

func (c *Config) IsFeatureEnabled(ft Feature) bool { return c.Features[ft].Enabled }

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool { return c.Warnings[wt].Enabled }

func (c *Config) SetAllWarnings(enabled bool) {
	for i := Warning(0); i < WarnCount; i++ {
		c.SetWarning(i, enabled)
	}
}

// ApplyFlag processes one -W/-F style toggle with the leading dash stripped,
// e.g. "Wunused", "Wno-unused", "Fno-const-fold", "Wall".
func (c *Config) ApplyFlag(flag string) bool {
	trimmed := strings.TrimPrefix(flag, "-")
	isNo := strings.HasPrefix(trimmed, "Wno-") || strings.HasPrefix(trimmed, "Fno-")
	enable := !isNo

	var name string
	isWarning := true
	switch {
	case strings.HasPrefix(trimmed, "W"):
		name = strings.TrimPrefix(trimmed, "W")
	case strings.HasPrefix(trimmed, "F"):
		name = strings.TrimPrefix(trimmed, "F")
		isWarning = false
	default:
		return false
	}
	if isNo {
		name = strings.TrimPrefix(name, "no-")
	}

	if isWarning && name == "all" {
		c.SetAllWarnings(enable)
		return true
	}
	if isWarning {
		if w, ok := c.WarningMap[name]; ok {
			c.SetWarning(w, enable)
			return true
		}
		return false
	}
	if f, ok := c.FeatureMap[name]; ok {
		c.SetFeature(f, enable)
		return true
	}
	return false
}
