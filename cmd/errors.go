package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// PrintError prints an error message without exiting, allowing for recovery.
// By default it prints the clean, user-friendly message; with --verbose it
// prints the full technical error.
func PrintError(userMsg string, technicalErr error) {
	if viper.GetBool("verbose") && technicalErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", technicalErr)
	} else {
		fmt.Fprintln(os.Stderr, userMsg)
	}
}
