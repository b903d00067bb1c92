package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/ragtools/internal/domain/chunk"
	"github.com/kailas-cloud/ragtools/internal/metrics"
)

// chunkSeparator divides chunks in plain text output.
const chunkSeparator = "\n---\n\n"

var chunkJSON bool

var chunkCmd = &cobra.Command{
	Use:   "chunk <file>",
	Short: "Convert a tabular file into text chunks",
	Long: `The chunk command loads a csv, tsv, xlsx or parquet file and prints a header chunk,
one chunk per row and a summary chunk.`,
	Args: cobra.ExactArgs(1),
	RunE: runChunk,
}

func init() {
	chunkCmd.Flags().BoolVar(&chunkJSON, "json", false, "print chunks as a JSON array with metadata")
	rootCmd.AddCommand(chunkCmd)
}

func runChunk(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	metrics.RegisterChunkingMetrics()

	chunks, err := a.chunks.ProcessFile(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("chunk %s: %w", args[0], err)
	}
	return writeChunks(cmd.OutOrStdout(), chunks, chunkJSON)
}

type chunkJSONItem struct {
	Kind     string `json:"kind"`
	Position int    `json:"position"`
	Source   string `json:"source"`
	Text     string `json:"text"`
}

func writeChunks(w io.Writer, chunks []chunk.Chunk, asJSON bool) error {
	if asJSON {
		items := make([]chunkJSONItem, len(chunks))
		for i, c := range chunks {
			items[i] = chunkJSONItem{
				Kind:     string(c.Kind()),
				Position: c.Position(),
				Source:   c.Source(),
				Text:     c.Text(),
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(items); err != nil {
			return fmt.Errorf("encode chunks: %w", err)
		}
		return nil
	}

	for i, c := range chunks {
		if i > 0 {
			if _, err := io.WriteString(w, chunkSeparator); err != nil {
				return fmt.Errorf("write chunks: %w", err)
			}
		}
		if _, err := io.WriteString(w, c.Text()); err != nil {
			return fmt.Errorf("write chunks: %w", err)
		}
	}
	return nil
}
