package version

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"gtkup/logging"

	"github.com/pelletier/go-toml"
)

// Pattern represents a single named regex for version extraction.
// Recognized capture groups: name, version, build, platform.
type Pattern struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Regex       string `toml:"regex"`
}

// PatternConfig holds all pattern configurations
type PatternConfig struct {
	Patterns []Pattern `toml:"patterns"`
}

// Info describes a bundle archive, as far as its file name tells
type Info struct {
	Pattern  string `json:"-"`
	Name     string `json:"name,omitempty"`
	Version  string `json:"version"`
	Build    string `json:"build,omitempty"`
	Platform string `json:"platform,omitempty"`
}

// Series returns the major.minor part of the version ("2.22" for "2.22.1")
func (i Info) Series() string {
	parts := strings.SplitN(i.Version, ".", 3)
	if len(parts) < 2 {
		return i.Version
	}
	return parts[0] + "." + parts[1]
}

const builtinPatterns = `
[[patterns]]
name = "gtk-bundle"
description = "GNOME GTK+ all-in-one Windows bundle"
regex = '(?i)^(?P<name>gtk\+-bundle)_(?P<version>\d+(?:\.\d+)+)-(?P<build>\d{8})_(?P<platform>win32|win64)\.'

[[patterns]]
name = "generic-version"
description = "Generic semantic versioning"
regex = '(?P<version>\d+\.\d+(?:\.\d+)?)'
`

type compiledPattern struct {
	Pattern
	re *regexp.Regexp
}

// Parser extracts bundle information from archive names
type Parser struct {
	patterns []compiledPattern
}

// NewParser creates a parser from the built-in patterns
func NewParser() (*Parser, error) {
	return NewParserFromTOML([]byte(builtinPatterns))
}

// NewParserFromTOML creates a parser from a TOML pattern list
func NewParserFromTOML(data []byte) (*Parser, error) {
	var config PatternConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse patterns: %w", err)
	}

	p := &Parser{}
	for _, pattern := range config.Patterns {
		re, err := regexp.Compile(pattern.Regex)
		if err != nil {
			return nil, fmt.Errorf("invalid regex for pattern %s: %w", pattern.Name, err)
		}
		if re.SubexpIndex("version") < 0 {
			return nil, fmt.Errorf("pattern %s has no version group", pattern.Name)
		}
		p.patterns = append(p.patterns, compiledPattern{Pattern: pattern, re: re})
	}

	logging.LogDebug("📦 Loaded %d version patterns", len(p.patterns))
	return p, nil
}

// Parse extracts bundle information from a download URL or file name
func (p *Parser) Parse(rawURL string) (Info, error) {
	name := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		name = u.Path
	}
	name = path.Base(name)

	for _, pattern := range p.patterns {
		matches := pattern.re.FindStringSubmatch(name)
		if matches == nil {
			continue
		}
		info := Info{Pattern: pattern.Name}
		for i, group := range pattern.re.SubexpNames() {
			switch group {
			case "name":
				info.Name = matches[i]
			case "version":
				info.Version = matches[i]
			case "build":
				info.Build = matches[i]
			case "platform":
				info.Platform = strings.ToLower(matches[i])
			}
		}
		logging.LogDebug("✅ Matched pattern '%s': %s → %s", pattern.Name, name, info.Version)
		return info, nil
	}

	return Info{}, fmt.Errorf("no pattern matched for %s", name)
}
