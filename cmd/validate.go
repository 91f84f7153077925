package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stuttgart-things/sealkit/internal/validate"
)

var (
	validateDir    string
	validateOutput string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check sealed manifests against the credential registry",
	Long:  `Scans a manifest directory and checks every sealed manifest for schema conformance, required sections, and required encrypted keys, then verifies each registry secret exists exactly once. Ciphertext is never decrypted.`,
	Run:   runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateDir, "dir", "d", ".", "Directory holding the sealed manifests")
	validateCmd.Flags().StringVarP(&validateOutput, "output", "o", "table", "Output format (table or json)")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) {
	format, err := validate.ParseOutputFormat(validateOutput)
	if err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		os.Exit(1)
	}

	Logger.Debugf("validating manifests in %s", validateDir)

	report, err := validate.RunDirectory(validateDir, validate.Options{})
	if err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		os.Exit(1)
	}

	if err := validate.WriteReport(os.Stdout, report, format); err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		os.Exit(1)
	}

	if report.Failed() {
		os.Exit(1)
	}
}
