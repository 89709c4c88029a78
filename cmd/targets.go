package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"gtkup/logging"
	"gtkup/repository"
	"gtkup/repository/version"

	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/spf13/cobra"
)

// TargetInfo is a resolved target with what its archive name tells
type TargetInfo struct {
	repository.Target
	Bundle *version.Info `json:"bundle,omitempty"`
}

// HostInfo describes the machine gtkup runs on
type HostInfo struct {
	OS       string `json:"os"`
	Arch     string `json:"arch"`
	Platform string `json:"platform,omitempty"`
	Version  string `json:"version,omitempty"`
}

// TargetsOutput structure for JSON output
type TargetsOutput struct {
	Selector string       `json:"selector"`
	BaseDir  string       `json:"gtk_dir"`
	Targets  []TargetInfo `json:"targets"`
	Host     HostInfo     `json:"host"`
}

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the GTK+ bundles selected by --arch",
	Long: `List the GTK+ bundles selected by --arch with their download URL,
install directory and bundle version. Without --arch every known bundle is
listed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("configuration is not loaded")
		}

		in := resolveInputs(os.Getenv)
		out, err := buildTargets(cmd.Context(), in.Arch, in.GTKDir)
		if err != nil {
			return err
		}

		if GetJsonOutput() {
			return OutputJSON(out)
		}
		displayTargets(cmd.OutOrStdout(), out)
		return nil
	},
}

func buildTargets(ctx context.Context, selector, baseDir string) (*TargetsOutput, error) {
	parser, err := version.NewParser()
	if err != nil {
		return nil, fmt.Errorf("failed to load version patterns: %w", err)
	}

	var targets []repository.Target
	if selector == "" {
		for _, b := range repository.Bundles() {
			targets = append(targets, repository.Resolve(b.Selectors[0], baseDir)...)
		}
	} else {
		targets = repository.Resolve(selector, baseDir)
	}

	out := &TargetsOutput{
		Selector: selector,
		BaseDir:  baseDir,
		Targets:  make([]TargetInfo, 0, len(targets)),
		Host:     detectHost(ctx),
	}
	for _, t := range targets {
		ti := TargetInfo{Target: t}
		if info, err := parser.Parse(t.URL); err == nil {
			ti.Bundle = &info
		} else {
			logging.LogDebug("⚠️ No version found in %s: %v", t.URL, err)
		}
		out.Targets = append(out.Targets, ti)
	}
	return out, nil
}

// detectHost falls back to the runtime values when gopsutil cannot tell
func detectHost(ctx context.Context) HostInfo {
	h := HostInfo{OS: runtime.GOOS, Arch: runtime.GOARCH}
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		logging.LogDebug("⚠️ Host detection failed: %v", err)
		return h
	}
	h.Platform = info.Platform
	h.Version = info.PlatformVersion
	if info.KernelArch != "" {
		h.Arch = info.KernelArch
	}
	return h
}

func displayTargets(w io.Writer, out *TargetsOutput) {
	logging.LogInfo("💻 Host: %s/%s %s %s", out.Host.OS, out.Host.Arch, out.Host.Platform, out.Host.Version)
	if len(out.Targets) == 0 {
		logging.LogInfo("ℹ️  No GTK bundle matches arch %q", out.Selector)
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Arch", "Series", "Version", "Build", "Destination", "URL"})
	table.SetAutoWrapText(false)
	for _, t := range out.Targets {
		line := []string{t.Arch, "-", "-", "-", t.Destination, t.URL}
		if t.Bundle != nil {
			line[1], line[2], line[3] = t.Bundle.Series(), t.Bundle.Version, t.Bundle.Build
		}
		table.Append(line)
	}
	table.Render()
}
