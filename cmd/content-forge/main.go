package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/content-forge/internal/auth"
	"github.com/fpang/content-forge/internal/config"
	"github.com/fpang/content-forge/internal/gateway"
	"github.com/fpang/content-forge/internal/history"
	"github.com/fpang/content-forge/internal/ingest"
	"github.com/fpang/content-forge/internal/logging"
	"github.com/fpang/content-forge/internal/pipeline"
)

// CLI flags
var (
	platformFlag string
	modelFlag    string
	forgeFlag    int
	outFlag      string
)

// rootCmd is the main Cobra command for the content-forge CLI.
var rootCmd = &cobra.Command{
	Use:   "content-forge <media-file>",
	Short: "AI-powered content strategy - analysis, SEO copy, and thumbnail concepts from one upload",
	Long: `Content Forge runs a photo or video through a three-stage AI pipeline:
deep media analysis, platform-tailored SEO copy, and a batch of ten
thumbnail concepts in ten distinct visual styles.

Completed runs are kept in a local history (newest first, capped at 20)
and can be recalled by id.

Examples:
  content-forge vacation.mp4
  content-forge sunset.jpg --platform instagram
  content-forge clip.mov -p twitter --forge 3 --out thumb.png
  content-forge history            # list past runs
  content-forge recall run-17...   # restore a past run's results`,
	Args: cobra.ExactArgs(1),
	Run:  runMain,
}

// historyCmd lists the persisted run history, newest first.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past pipeline runs",
	Run:   runHistory,
}

// recallCmd prints a past run's full results, optionally regenerating the
// SEO package for a different platform.
var recallCmd = &cobra.Command{
	Use:   "recall <run-id>",
	Short: "Show the full results of a past run",
	Args:  cobra.ExactArgs(1),
	Run:   runRecall,
}

var recallPlatformFlag string

func init() {
	rootCmd.Flags().StringVarP(&platformFlag, "platform", "p", string(gateway.PlatformYouTube), "Target platform (YouTube, Instagram, Twitter, Pinterest)")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Gemini model override (e.g., gemini-3-pro-preview)")
	rootCmd.Flags().IntVar(&forgeFlag, "forge", 0, "Render thumbnail concept N (1-10) after the run")
	rootCmd.Flags().StringVar(&outFlag, "out", "", "Output path for the rendered thumbnail (default <media>-thumb.<ext>)")

	recallCmd.Flags().StringVarP(&recallPlatformFlag, "platform", "p", "", "Regenerate the SEO package for this platform")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(recallCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads config and opens the history store shared by all subcommands.
func setup() (*config.Config, *history.Store) {
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	return cfg, history.NewStore(history.NewFileBlobStore(cfg.HistoryPath))
}

// newOrchestrator builds the Gemini-backed pipeline. Only commands that
// actually call the model pay the client setup cost.
func newOrchestrator(ctx context.Context, cfg *config.Config, hist *history.Store) *pipeline.Orchestrator {
	apiKey, err := auth.GetAPIKey()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve Gemini API key")
	}

	model := cfg.Model
	if modelFlag != "" {
		model = modelFlag
	}

	client, err := gateway.NewClient(ctx, apiKey, model, cfg.ImageModel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Gemini client")
	}

	return pipeline.New(client, hist)
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	cfg, hist := setup()

	platform, err := gateway.ParsePlatform(platformFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid platform")
	}
	if forgeFlag < 0 || forgeFlag > 10 {
		log.Fatal().Int("forge", forgeFlag).Msg("--forge must be between 1 and 10")
	}

	mediaPath := args[0]
	payload, err := ingest.LoadMedia(mediaPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", mediaPath).Msg("failed to load media")
	}

	ctx := context.Background()
	orch := newOrchestrator(ctx, cfg, hist)

	fmt.Println()
	fmt.Println("============================================")
	fmt.Println("Content Forge")
	fmt.Println("============================================")
	fmt.Printf("Media: %s (%s)\n", filepath.Base(mediaPath), payload.Kind)
	if meta := payload.Meta.Describe(); meta != "" {
		fmt.Printf("Captured: %s\n", meta)
	}
	fmt.Printf("Platform: %s\n", platform)
	fmt.Println("--------------------------------------------")
	fmt.Println("Running analysis, SEO, and thumbnail stages...")
	fmt.Println()

	record, err := orch.SubmitMedia(ctx, payload, platform)
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline run failed")
	}

	printRun(record)

	if forgeFlag > 0 {
		forgeConcept(ctx, orch, record, forgeFlag, mediaPath)
	}
}

// runHistory lists the persisted runs, newest first.
func runHistory(cmd *cobra.Command, args []string) {
	_, hist := setup()

	records := hist.All()
	if len(records) == 0 {
		fmt.Println("No runs in history.")
		return
	}

	fmt.Println()
	fmt.Println("============================================")
	fmt.Printf("Run History (%d of max %d)\n", len(records), history.MaxEntries)
	fmt.Println("============================================")
	for _, r := range records {
		fmt.Printf("  %s  %s  %-9s  %s\n",
			r.ID,
			r.Timestamp.Local().Format("2006-01-02 15:04"),
			r.Platform,
			truncateLine(r.Summary, 60))
	}
	fmt.Println()
}

// runRecall prints a past run's full results. With --platform it restores
// the run into the pipeline and regenerates the SEO package for the new
// target before printing.
func runRecall(cmd *cobra.Command, args []string) {
	cfg, hist := setup()

	record, err := hist.Recall(args[0])
	if err != nil {
		log.Fatal().Err(err).Str("id", args[0]).Msg("recall failed")
	}

	if recallPlatformFlag == "" {
		printRun(record)
		return
	}

	platform, err := gateway.ParsePlatform(recallPlatformFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid platform")
	}

	ctx := context.Background()
	orch := newOrchestrator(ctx, cfg, hist)
	if _, err := orch.RecallRun(record.ID); err != nil {
		log.Fatal().Err(err).Str("id", record.ID).Msg("recall failed")
	}

	fmt.Printf("\nRegenerating SEO for %s...\n", platform)
	seo, err := orch.ChangePlatform(ctx, platform)
	if err != nil {
		log.Fatal().Err(err).Msg("platform change failed")
	}

	switched := *record
	switched.Platform = platform
	switched.SEO = *seo
	printRun(&switched)
}

// forgeConcept renders concept n (1-based) from the completed run and writes
// the image next to the source media unless --out is given.
func forgeConcept(ctx context.Context, orch *pipeline.Orchestrator, record *history.RunRecord, n int, mediaPath string) {
	if n > len(record.Concepts) {
		log.Fatal().Int("forge", n).Int("concepts", len(record.Concepts)).Msg("concept index out of range")
	}
	concept := record.Concepts[n-1]

	fmt.Println("--------------------------------------------")
	fmt.Printf("Forging concept %d (%s)...\n", n, concept.Style)

	rendered, err := orch.ForgeThumbnail(ctx, concept.Prompt)
	if err != nil {
		log.Fatal().Err(err).Msg("thumbnail forge failed")
	}

	outPath := outFlag
	if outPath == "" {
		base := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
		outPath = base + "-thumb" + extensionForMIME(rendered.MIMEType)
	}

	if err := os.WriteFile(outPath, rendered.ImageData, 0o644); err != nil {
		log.Fatal().Err(err).Str("path", outPath).Msg("failed to write thumbnail")
	}

	fmt.Printf("Thumbnail written: %s (%d bytes, %s)\n", outPath, len(rendered.ImageData), rendered.MIMEType)
}

// printRun renders a completed run to the terminal.
func printRun(record *history.RunRecord) {
	fmt.Println("============================================")
	fmt.Printf("Run %s (%s, %s)\n", record.ID, record.Platform, record.Timestamp.Local().Format("2006-01-02 15:04"))
	fmt.Println("============================================")
	fmt.Println()

	a := record.Analysis
	fmt.Println("ANALYSIS")
	fmt.Println("--------------------------------------------")
	fmt.Printf("  Summary:   %s\n", a.Summary)
	fmt.Printf("  Category:  %s\n", a.Category)
	fmt.Printf("  Mood:      %s\n", a.Mood)
	fmt.Printf("  Sentiment: %s\n", a.Sentiment)
	if len(a.KeyScenes) > 0 {
		fmt.Println("  Key scenes:")
		for _, scene := range a.KeyScenes {
			fmt.Printf("    - %s\n", scene)
		}
	}
	if len(a.Controversies) > 0 {
		fmt.Println("  Sensitive topics:")
		for _, c := range a.Controversies {
			fmt.Printf("    - %s: %s\n", c.Topic, c.Explanation)
		}
	}
	fmt.Println()

	seo := record.SEO
	fmt.Printf("SEO PACKAGE (%s)\n", record.Platform)
	fmt.Println("--------------------------------------------")
	fmt.Printf("  Title: %s\n", seo.Title)
	fmt.Printf("  Description: %s\n", seo.Description)
	fmt.Println("  Hooks:")
	for i, hook := range seo.Hooks {
		fmt.Printf("    %d. %s\n", i+1, hook.Text)
		fmt.Printf("       (%s)\n", hook.Explanation)
	}
	fmt.Printf("  Keywords: %s\n", strings.Join(seo.Keywords, ", "))
	fmt.Printf("  Hashtags: %s\n", strings.Join(seo.Hashtags, " "))
	fmt.Println()

	fmt.Printf("THUMBNAIL CONCEPTS (%d)\n", len(record.Concepts))
	fmt.Println("--------------------------------------------")
	for i, concept := range record.Concepts {
		fmt.Printf("  %2d. [%s]\n", i+1, concept.Style)
		fmt.Printf("      %s\n", concept.Prompt)
	}
	fmt.Println()
}

// extensionForMIME picks a file extension for a rendered image.
func extensionForMIME(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

// truncateLine shortens s for single-line display.
func truncateLine(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
