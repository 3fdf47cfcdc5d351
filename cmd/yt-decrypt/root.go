package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/reddevil212/yt-decrypt/client"
	"github.com/reddevil212/yt-decrypt/internal/config"
	"github.com/reddevil212/yt-decrypt/internal/formats"
	"github.com/reddevil212/yt-decrypt/internal/output"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagOutput     string
	flagFormat     string
	flagSaveScript bool
	flagJSON       bool
	flagTimeout    int
	flagNoCache    bool
	flagDebug      bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "yt-decrypt <video-id-or-url>",
	Short: "Resolve YouTube stream formats into playable URLs",
	Long: `yt-decrypt fetches a video's watch page, extracts the URL transforms
from its player program, and prints every stream format with a fully
playable URL.`,
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              resolveRun,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "Directory for saved URL lists and scripts")
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "", "Format selector: best | bestaudio | res<=720 | itag=22")
	rootCmd.PersistentFlags().BoolVarP(&flagSaveScript, "script", "s", false, "Also save the extracted decode script")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Output resolved formats as JSON")
	rootCmd.PersistentFlags().IntVarP(&flagTimeout, "timeout", "t", 0, "Request timeout in seconds")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Disable the on-disk player program cache")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagOutput != "" {
		cfg.OutputDir = flagOutput
	}
	if flagSaveScript {
		cfg.SaveScript = true
	}
	if flagTimeout > 0 {
		cfg.TimeoutSec = flagTimeout
	}
	if flagDebug {
		cfg.Debug = true
	}
	if cfg.CacheDir == "" && !flagNoCache {
		if dir, err := config.DefaultCacheDir(); err == nil {
			cfg.CacheDir = dir
		}
	}
	if flagNoCache {
		cfg.CacheDir = ""
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.SetOutput(os.Stderr)
	if cfg.Debug {
		log.SetPrefix("[yt-decrypt] ")
	} else {
		log.SetFlags(0)
	}

	return nil
}

// resolveRun is the default command: yt-decrypt <video-id-or-url>
func resolveRun(cmd *cobra.Command, args []string) error {
	c := newClient()
	ctx := context.Background()

	videoID, err := client.ExtractVideoID(args[0])
	if err != nil {
		return fmt.Errorf("%w: %q", err, args[0])
	}
	debugf("resolving video: %s", videoID)

	resolved, err := c.GetFormatsMatching(ctx, videoID, flagFormat)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(resolved)
	}
	printFormats(resolved)

	urlsPath := filepath.Join(cfg.OutputDir, "urls_"+videoID+".txt")
	if err := output.SaveURLs(urlsPath, resolved); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Saved URLs: %s\n", urlsPath)

	if cfg.SaveScript {
		script, err := c.DecodeScript(ctx, videoID)
		if err != nil {
			return fmt.Errorf("extracting decode script: %w", err)
		}
		scriptPath := filepath.Join(cfg.OutputDir, "decode_"+videoID+".js")
		if err := output.SaveScript(scriptPath, script); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved script: %s\n", scriptPath)
	}
	return nil
}

func newClient() *client.Client {
	return client.New(client.Config{
		BaseURL:        cfg.BaseURL,
		UserAgent:      cfg.UserAgent,
		RequestTimeout: time.Duration(cfg.TimeoutSec) * time.Second,
		CacheDir:       cfg.CacheDir,
		Logger: client.LoggerFunc(func(format string, args ...any) {
			log.Printf("WARN "+format, args...)
		}),
	})
}

func printFormats(resolved []formats.Resolved) {
	for _, r := range resolved {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "itag %-4d %-14s %-30s FAILED: %v\n", r.Itag, r.QualityLabel, r.MimeType, r.Err)
			continue
		}
		fmt.Printf("itag %-4d %-14s %-30s %s\n", r.Itag, r.QualityLabel, r.MimeType, r.URL)
	}
}

func printJSON(resolved []formats.Resolved) error {
	type entry struct {
		Itag         int    `json:"itag"`
		QualityLabel string `json:"quality_label,omitempty"`
		MimeType     string `json:"mime_type,omitempty"`
		URL          string `json:"url,omitempty"`
		Error        string `json:"error,omitempty"`
	}
	out := make([]entry, 0, len(resolved))
	for _, r := range resolved {
		e := entry{Itag: r.Itag, QualityLabel: r.QualityLabel, MimeType: r.MimeType, URL: r.URL}
		if r.Err != nil {
			e.Error = r.Err.Error()
		}
		out = append(out, e)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// debugf logs a message if debug mode is enabled.
func debugf(format string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		log.Printf(format, args...)
	}
}
