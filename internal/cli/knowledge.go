package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var knowledgeSource string

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the knowledge base used for AI replies",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var knowledgeIngestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Chunk and embed text files into the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runKnowledgeIngest,
}

var knowledgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge sources with chunk counts",
	RunE:  runKnowledgeList,
}

var knowledgeDeleteCmd = &cobra.Command{
	Use:   "delete <source>",
	Short: "Delete all chunks for a source",
	Args:  cobra.ExactArgs(1),
	RunE:  runKnowledgeDelete,
}

func init() {
	knowledgeIngestCmd.Flags().StringVar(&knowledgeSource, "source", "", "Ingest all files merged under this source label")
	knowledgeCmd.AddCommand(knowledgeIngestCmd)
	knowledgeCmd.AddCommand(knowledgeListCmd)
	knowledgeCmd.AddCommand(knowledgeDeleteCmd)
}

func runKnowledgeIngest(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if knowledgeSource != "" {
		var combined string
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			if combined != "" {
				combined += "\n\n---\n\n"
			}
			combined += string(data)
		}
		count, err := a.ingestor.Ingest(cmd.Context(), knowledgeSource, combined)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s: %d chunks\n", color.GreenString("✔"), knowledgeSource, count)
		return nil
	}

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		source := sourceFromPath(path)
		count, err := a.ingestor.Ingest(cmd.Context(), source, string(data))
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", source, err)
		}
		fmt.Printf("%s %s: %d chunks\n", color.GreenString("✔"), source, count)
	}
	return nil
}

func sourceFromPath(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext != "" && ext != base {
		return base[:len(base)-len(ext)]
	}
	return base
}

func runKnowledgeList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sources, err := a.searcher.ListSources()
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		fmt.Println("No knowledge sources ingested yet.")
		return nil
	}

	printHeader("📚 Knowledge Sources")
	for _, s := range sources {
		fmt.Printf("%-30s %4d chunks   updated %s\n", s.Source, s.ChunkCount, s.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runKnowledgeDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	source := args[0]
	if err := a.ingestor.DeleteSource(source); err != nil {
		return err
	}
	fmt.Printf("%s deleted %s\n", color.GreenString("✔"), source)
	return nil
}
