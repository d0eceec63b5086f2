// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/imslab/pubsync/internal/crossref"
	"github.com/imslab/pubsync/internal/merge"
	"github.com/imslab/pubsync/internal/orcid"
	"github.com/imslab/pubsync/internal/store"
	"github.com/imslab/pubsync/pkg/types"
)

const defaultUserAgent = "pubsync/0.1"

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch, enrich, and merge researcher publications",
	Long: `Sync processes every researcher in the mapping document, one at a time:
it lists their works from the ORCID registry, enriches each work with
CrossRef metadata (or harvests DOIs and rebuilds records purely from
CrossRef, depending on the strategy), falls back to a CrossRef author-name
search when the registry yields nothing, and appends the records that are
not already in the publication store.

External calls are strictly sequential with polite pacing between them.
Failures are contained per researcher and per work; only a missing or
empty mapping document aborts the run.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().String("researchers", "", "researcher mapping document, JSON or YAML (default researchers.json)")
	syncCmd.Flags().String("store", "", "publication store JSON document (default publications.json)")
	syncCmd.Flags().String("strategy", "", "enrichment strategy: per-work or harvest (default per-work)")
	syncCmd.Flags().Duration("registry-delay", 0, "pause between ORCID registry calls (default 2s)")
	syncCmd.Flags().Duration("lookup-delay", 0, "pause between CrossRef calls (default 1s)")
	syncCmd.Flags().Int("title-distance", 0, "edit-distance threshold for title dedup (default 6)")
	syncCmd.Flags().Int("author-rows", 0, "result cap for the author-search fallback (default 5)")
	syncCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	syncCmd.Flags().String("mailto", "", "contact address for polite API access")

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg := syncConfigFromFlags(cmd)

	researchers, err := store.LoadResearchers(cfg.ResearchersPath)
	if err != nil {
		return err
	}

	pubs, err := store.LoadPublications(cfg.StorePath)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: cfg.Timeout}
	syncer := &merge.Syncer{
		Registry: orcid.NewClient(client, cfg.UserAgent, cfg.RegistryDelay),
		Lookup:   crossref.NewClient(client, cfg.UserAgent, cfg.Mailto, cfg.LookupDelay),
		Config:   cfg,
	}

	summary := syncer.Run(cmd.Context(), researchers, pubs, os.Stdout)

	if err := store.SavePublications(cfg.StorePath, pubs); err != nil {
		return err
	}
	fmt.Printf("Store written to %s (%d new records)\n", cfg.StorePath, summary.Added)
	return nil
}

// syncConfigFromFlags assembles the pipeline configuration: explicit
// flags win, then config-file/env values via viper, then the package
// defaults.
func syncConfigFromFlags(cmd *cobra.Command) types.SyncConfig {
	cfg := types.SyncConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout: durationSetting(cmd, "timeout", "timeout"),
		},
		ResearchersPath:  stringSetting(cmd, "researchers", "researchers_path"),
		StorePath:        stringSetting(cmd, "store", "store_path"),
		Strategy:         types.EnrichmentStrategy(stringSetting(cmd, "strategy", "strategy")),
		RegistryDelay:    durationSetting(cmd, "registry-delay", "registry_delay"),
		LookupDelay:      durationSetting(cmd, "lookup-delay", "lookup_delay"),
		TitleDistance:    intSetting(cmd, "title-distance", "title_distance"),
		AuthorSearchRows: intSetting(cmd, "author-rows", "author_search_rows"),
		Mailto:           stringSetting(cmd, "mailto", "mailto"),
	}

	if cfg.ResearchersPath == "" {
		cfg.ResearchersPath = "researchers.json"
	}
	if cfg.StorePath == "" {
		cfg.StorePath = "publications.json"
	}
	cfg.Mailto = secretDefault("mailto", cfg.Mailto)
	cfg.UserAgent = defaultUserAgent
	if cfg.Mailto != "" {
		cfg.UserAgent = fmt.Sprintf("%s (mailto:%s)", defaultUserAgent, cfg.Mailto)
	}
	cfg.ApplyDefaults()
	return cfg
}

func stringSetting(cmd *cobra.Command, flag, key string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	return viper.GetString(key)
}

func durationSetting(cmd *cobra.Command, flag, key string) time.Duration {
	if v, _ := cmd.Flags().GetDuration(flag); v != 0 {
		return v
	}
	return viper.GetDuration(key)
}

func intSetting(cmd *cobra.Command, flag, key string) int {
	if v, _ := cmd.Flags().GetInt(flag); v != 0 {
		return v
	}
	return viper.GetInt(key)
}
