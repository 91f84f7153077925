package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
)

// startSpinner shows progress while the sealing binary runs. In verbose or
// debug mode the spinner stays off so log lines remain readable. The
// returned cleanup stops the spinner and prints its FinalMSG on its own line.
func startSpinner(message string, verboseFlag, debugFlag bool) (*spinner.Spinner, func()) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	// Ignore color errors - continue without a colored spinner if it fails.
	_ = s.Color("cyan")

	if !verboseFlag && !debugFlag {
		s.Start()
	}

	cleanup := func() {
		finalMsg := s.FinalMSG
		if finalMsg != "" && !strings.HasSuffix(finalMsg, "\n") {
			finalMsg += "\n"
		}
		// Clear FinalMSG so Stop doesn't print it on the spinner line.
		s.FinalMSG = ""
		s.Stop()
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}
