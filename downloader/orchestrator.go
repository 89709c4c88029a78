package downloader

import (
	"context"
	"errors"
	"fmt"

	"gtkup/envpath"
	"gtkup/logging"
	"gtkup/repository"

	"golang.org/x/sync/errgroup"
)

// installer is the part of Manager the orchestrator depends on
type installer interface {
	Install(ctx context.Context, target repository.Target, section logging.Section) (*Result, error)
}

// Orchestrator installs every target selected by the arch input and
// publishes the install directories once all of them succeeded
type Orchestrator struct {
	installer installer
	publisher envpath.Publisher
	narrator  logging.Narrator
	resolve   func(selector, baseDir string) []repository.Target
}

// NewOrchestrator wires a Manager to a search path publisher and a narrator
func NewOrchestrator(manager *Manager, publisher envpath.Publisher, narrator logging.Narrator) *Orchestrator {
	if narrator == nil {
		narrator = logging.NewLogNarrator()
	}
	return &Orchestrator{
		installer: manager,
		publisher: publisher,
		narrator:  narrator,
		resolve:   repository.Resolve,
	}
}

// Run resolves the targets, installs them concurrently and, when every
// install succeeded, publishes their directories in resolution order.
// Sibling installs are never cancelled: all of them are awaited, and
// already installed bundles stay in place when another one fails. The
// returned error is the first failure in resolution order.
func (o *Orchestrator) Run(ctx context.Context, selector, baseDir string) (report *Report, err error) {
	report = &Report{Selector: selector, BaseDir: baseDir}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
			report.Errors = append(report.Errors, err.Error())
		}
	}()

	targets := o.resolve(selector, baseDir)
	report.Targets = targets
	if len(targets) == 0 {
		logging.LogInfo("ℹ️  No GTK bundle matches arch %q, nothing to install", selector)
		return report, nil
	}
	logging.LogDebug("🔍 Resolved %d target(s) for arch %q", len(targets), selector)

	results := make([]*Result, len(targets))
	errs := make([]error, len(targets))

	var g errgroup.Group
	for i, target := range targets {
		g.Go(func() error {
			results[i], errs[i] = o.installOne(ctx, target)
			return errs[i]
		})
	}
	// Every goroutine records its own error, Wait is only the barrier
	_ = g.Wait()

	var first error
	for i, e := range errs {
		if e == nil {
			report.Results = append(report.Results, results[i])
			continue
		}
		logging.LogError("❌ %v", e)
		report.Errors = append(report.Errors, e.Error())
		if first == nil {
			first = e
		}
	}
	if first != nil {
		return report, first
	}

	joined, err := envpath.Aggregate(repository.Destinations(targets), o.publisher)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report, err
	}
	report.Path = joined
	return report, nil
}

func (o *Orchestrator) installOne(ctx context.Context, target repository.Target) (result *Result, err error) {
	section := o.narrator.Group(fmt.Sprintf("Downloading %s to %s", target.URL, target.Destination))
	defer section.End()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("install of %s bundle panicked: %v", target.Arch, r)
		}
	}()

	result, err = o.installer.Install(ctx, target, section)
	if err == nil && result == nil {
		err = errors.New("installer returned no result")
	}
	return result, err
}
