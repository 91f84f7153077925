package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stuttgart-things/sealkit/internal/registry"
)

var bindingsOutput string

var bindingsCmd = &cobra.Command{
	Use:   "bindings",
	Short: "List the credential bindings the deployment templates consume",
	Long:  `Lists every logical credential in the canonical registry: the secret name and data key it maps to, whether it is required and sensitive, and its suggested default.`,
	Run:   runBindings,
}

func init() {
	bindingsCmd.Flags().StringVarP(&bindingsOutput, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(bindingsCmd)
}

func runBindings(cmd *cobra.Command, args []string) {
	entries := registry.Entries()

	switch bindingsOutput {
	case "json":
		printBindingsJSON(entries)
	default:
		printBindingsTable(entries)
	}
}

func printBindingsTable(entries []registry.Entry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LOGICAL ID\tSECRET NAME\tKEY\tREQUIRED\tSENSITIVE\tDEFAULT")
	fmt.Fprintln(w, "----------\t-----------\t---\t--------\t---------\t-------")

	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%t\t%s\n",
			e.LogicalID, e.SecretName, e.Key, e.Required, e.Sensitive, e.Default)
	}

	w.Flush()
}

func printBindingsJSON(entries []registry.Entry) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("Error marshalling JSON: %v", err)))
		os.Exit(1)
	}
	fmt.Println(string(data))
}
