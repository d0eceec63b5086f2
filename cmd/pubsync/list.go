// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imslab/pubsync/internal/store"
	"github.com/imslab/pubsync/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list [key]",
	Short: "Print the publication store contents",
	Long: `List prints the stored publications, either a per-researcher overview or,
given a researcher key, that researcher's full paper table.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().String("store", "publications.json", "publication store JSON document")
	listCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("store")
	pubs, err := store.LoadPublications(path)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")

	if len(args) == 1 {
		slot, ok := pubs[args[0]]
		if !ok {
			return fmt.Errorf("no researcher %q in %s", args[0], path)
		}
		if asJSON {
			return writeJSON(slot)
		}
		printPapers(slot)
		return nil
	}

	if asJSON {
		return writeJSON(pubs)
	}

	keys := make([]string, 0, len(pubs))
	for k := range pubs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("%-12s  %-30s  %s\n", "Key", "Name", "Papers")
	fmt.Println(strings.Repeat("-", 52))
	total := 0
	for _, k := range keys {
		fmt.Printf("%-12s  %-30s  %d\n", k, truncate(pubs[k].Name, 30), len(pubs[k].Papers))
		total += len(pubs[k].Papers)
	}
	fmt.Printf("\n%d researchers, %d papers\n", len(keys), total)
	return nil
}

func printPapers(slot *types.ResearcherPubs) {
	fmt.Printf("%s\n\n", slot.Name)
	fmt.Printf("%-50s  %-4s  %-24s  %s\n", "Title", "Year", "DOI", "Source")
	fmt.Println(strings.Repeat("-", 90))
	for _, p := range slot.Papers {
		year := ""
		if p.Year != 0 {
			year = fmt.Sprintf("%d", p.Year)
		}
		fmt.Printf("%-50s  %-4s  %-24s  %s\n",
			truncate(p.Title, 50), year, truncate(p.DOI, 24), p.Source)
	}
	fmt.Printf("\n%d papers\n", len(slot.Papers))
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
