package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stuttgart-things/sealkit/internal/inventory"
)

var (
	listDir    string
	listOutput string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List provisioned sealed secrets",
	Long:  `Lists the records in a directory's sealed-inventory.yaml: which secrets were sealed, for which namespace and scope, into which files, and when.`,
	Run:   runList,
}

func init() {
	listCmd.Flags().StringVarP(&listDir, "dir", "d", ".", "Directory holding the sealed manifests")
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) {
	path := filepath.Join(listDir, inventory.DefaultFilename)

	inv, err := inventory.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("No sealed secrets recorded.")
			return
		}
		fmt.Println(errorStyle.Render(fmt.Sprintf("Error loading inventory: %v", err)))
		os.Exit(1)
	}

	if len(inv.Secrets) == 0 {
		fmt.Println("No sealed secrets recorded.")
		return
	}

	switch listOutput {
	case "json":
		printInventoryJSON(inv.Secrets)
	default:
		printInventoryTable(inv.Secrets)
	}
}

func printInventoryTable(records []inventory.Record) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tNAMESPACE\tSCOPE\tFILE\tKEYS\tSEALED AT\tSEALED BY")
	fmt.Fprintln(w, "----\t---------\t-----\t----\t----\t---------\t---------")

	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Name, r.Namespace, r.Scope, r.File, strings.Join(r.Keys, ","), r.SealedAt, r.SealedBy)
	}

	w.Flush()
}

func printInventoryJSON(records []inventory.Record) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("Error marshalling JSON: %v", err)))
		os.Exit(1)
	}
	fmt.Println(string(data))
}
