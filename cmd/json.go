package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Global variables for JSON mode
var (
	jsonOutput bool // Flag for JSON output
	jsonLogs   bool // Flag for JSON logs
)

// GetJsonOutput returns the value of the JSON flag
func GetJsonOutput() bool {
	return jsonOutput
}

// CommandOutput structure for JSON output of failures and simple results
type CommandOutput struct {
	Removed []string `json:"removed,omitempty"`
	Error   string   `json:"error,omitempty"`
}

var (
	jsonWriter  io.Writer = os.Stdout
	jsonEmitted bool
)

// OutputJSON handles JSON output for all commands
func OutputJSON(data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %v", err)
	}
	fmt.Fprintln(jsonWriter, string(jsonData))
	jsonEmitted = true
	return nil
}
