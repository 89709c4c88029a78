package envpath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gtkup/logging"
)

// blockMarker starts the block gtkup manages inside a shell rc file
const blockMarker = "# Added by gtkup - GTK configuration"

// RCFilePublisher persists the search path addition in a shell rc file.
// A block written by an earlier run is replaced.
type RCFilePublisher struct {
	Path string
}

// FindRCFile returns configured when set, otherwise the first existing rc
// file for shell under home
func FindRCFile(configured, shell, home string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	var rcFiles []string
	if strings.HasSuffix(shell, "zsh") {
		rcFiles = []string{
			filepath.Join(home, ".zshrc"),
			filepath.Join(home, ".bashrc"), // fallback
		}
	} else {
		rcFiles = []string{
			filepath.Join(home, ".bashrc"),
			filepath.Join(home, ".zshrc"), // fallback
		}
	}

	for _, file := range rcFiles {
		if _, err := os.Stat(file); err == nil {
			return file, nil
		}
	}

	return "", fmt.Errorf("no shell configuration file found (.zshrc or .bashrc). Please set shell_config_path in gtkup.toml")
}

// AddPath writes an export block for path
func (p *RCFilePublisher) AddPath(path string) error {
	content, err := os.ReadFile(p.Path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read rc file: %w", err)
	}

	newConfig := fmt.Sprintf("\n%s\nexport PATH=\"%s%c$PATH\"\n", blockMarker, path, os.PathListSeparator)
	newContent := strings.TrimRight(removeBlock(string(content)), "\n") + "\n" + newConfig
	if len(content) == 0 {
		newContent = strings.TrimLeft(newConfig, "\n")
	}

	if err := os.WriteFile(p.Path, []byte(newContent), 0644); err != nil {
		return fmt.Errorf("failed to update rc file: %w", err)
	}

	logging.LogInfo("✅ Successfully configured environment in %s", p.Path)
	logging.LogInfo("ℹ️  To apply these changes, run: source %s", p.Path)
	return nil
}

// Remove deletes the gtkup block; it reports whether a block was found
func (p *RCFilePublisher) Remove() (bool, error) {
	content, err := os.ReadFile(p.Path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read rc file: %w", err)
	}

	cleaned := removeBlock(string(content))
	if cleaned == string(content) {
		return false, nil
	}
	if err := os.WriteFile(p.Path, []byte(cleaned), 0644); err != nil {
		return false, fmt.Errorf("failed to update rc file: %w", err)
	}
	return true, nil
}

// removeBlock strips the marker line and the export lines following it
func removeBlock(content string) string {
	lines := strings.Split(content, "\n")
	var newLines []string
	inBlock := false
	for _, line := range lines {
		if strings.Contains(line, blockMarker) {
			inBlock = true
			continue
		}
		if inBlock {
			if strings.HasPrefix(strings.TrimSpace(line), "export ") {
				continue
			}
			inBlock = false
			if strings.TrimSpace(line) == "" {
				continue
			}
		}
		newLines = append(newLines, line)
	}
	return strings.Join(newLines, "\n")
}
