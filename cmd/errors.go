package cmd

import (
	"errors"
	"os"

	"gtkup/action"
	"gtkup/config"
	"gtkup/downloader/core"
	"gtkup/logging"
)

var exit = os.Exit

// ExitWithError reports err once and terminates with status 1
func ExitWithError(err error) {
	logging.LogError("❌ %s", describe(err))

	if action.IsActions(os.Getenv) {
		action.FromEnvironment().Fail(err)
	}
	// A command that already printed its result carries the error in it
	if GetJsonOutput() && !jsonEmitted {
		_ = OutputJSON(CommandOutput{Error: err.Error()})
	}

	logging.Close()
	exit(1)
}

// describe adds a hint to errors the user can act on
func describe(err error) string {
	var cfgErr *config.Error
	switch {
	case errors.Is(err, core.ErrDestinationExists):
		return err.Error() + " (run 'gtkup clean' to remove the previous install)"
	case errors.As(err, &cfgErr):
		return err.Error() + " (check " + config.DefaultConfigFile + " or " + config.EnvConfigPath + ")"
	default:
		return err.Error()
	}
}
