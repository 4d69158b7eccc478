package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the knowledge index",
	Long:  "Build the similarity index from a seed file and inspect the saved snapshot.",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Embed a seed file and save the index snapshot",
	RunE:  runIndexBuild,
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index size and snapshot details",
	RunE:  runIndexStats,
}

var (
	indexSeed  string
	indexForce bool
)

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexStatsCmd)

	indexBuildCmd.Flags().StringVar(&indexSeed, "seed", "", "Seed file to index (default: index.seed_file from config)")
	indexBuildCmd.Flags().BoolVar(&indexForce, "force", false, "Replace an existing snapshot")
}

func runIndexBuild(cmd *cobra.Command, _ []string) error {
	if indexSeed != "" {
		globalConfig.Index.SeedFile = indexSeed
	}
	if globalConfig.Index.SeedFile == "" {
		return errors.New("no seed file: pass --seed or set index.seed_file")
	}

	path := globalConfig.Index.Path
	if _, err := os.Stat(path); err == nil {
		if !indexForce {
			return fmt.Errorf("snapshot %s already exists (use --force to rebuild)", path)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove old snapshot: %w", err)
		}
	}

	// With no snapshot on disk, opening the app embeds the seed file and saves.
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents from %s into %s\n",
		a.Index.Len(), globalConfig.Index.SeedFile, path)
	return nil
}

type indexStats struct {
	Documents     int    `json:"documents"`
	Dimensions    int    `json:"dimensions"`
	Model         string `json:"model"`
	Path          string `json:"path"`
	SnapshotBytes int64  `json:"snapshot_bytes"`
	ModifiedAt    string `json:"modified_at,omitempty"`
}

func runIndexStats(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}

	stats := indexStats{
		Documents:  a.Index.Len(),
		Dimensions: a.Index.Dimension(),
		Model:      a.Index.Model(),
		Path:       globalConfig.Index.Path,
	}
	info, err := os.Stat(stats.Path)
	switch {
	case err == nil:
		stats.SnapshotBytes = info.Size()
		stats.ModifiedAt = info.ModTime().UTC().Format("2006-01-02 15:04:05")
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("stat snapshot: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Fprintf(out, "Documents:  %s\n", humanize.Comma(int64(stats.Documents)))
	fmt.Fprintf(out, "Dimensions: %d\n", stats.Dimensions)
	fmt.Fprintf(out, "Model:      %s\n", stats.Model)
	if stats.SnapshotBytes > 0 {
		fmt.Fprintf(out, "Snapshot:   %s (%s, modified %s)\n",
			stats.Path, humanize.Bytes(uint64(stats.SnapshotBytes)), humanize.Time(info.ModTime()))
	} else {
		fmt.Fprintf(out, "Snapshot:   %s (not saved)\n", stats.Path)
	}
	return nil
}
