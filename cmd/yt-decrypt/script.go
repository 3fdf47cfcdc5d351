package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reddevil212/yt-decrypt/client"
	"github.com/reddevil212/yt-decrypt/internal/output"
)

// scriptCmd extracts the decode script without resolving formats.
var scriptCmd = &cobra.Command{
	Use:   "script <video-id-or-url>",
	Short: "Extract the player program's decode script",
	Long: `script fetches the player program the video currently ships with,
extracts its signature and n-parameter transforms, and prints them as a
standalone script.`,
	Args: cobra.ExactArgs(1),
	RunE: scriptRun,
}

func scriptRun(cmd *cobra.Command, args []string) error {
	c := newClient()
	ctx := context.Background()

	videoID, err := client.ExtractVideoID(args[0])
	if err != nil {
		return fmt.Errorf("%w: %q", err, args[0])
	}

	script, err := c.DecodeScript(ctx, videoID)
	if err != nil {
		return err
	}

	if flagOutput != "" {
		path := filepath.Join(cfg.OutputDir, "decode_"+videoID+".js")
		if err := output.SaveScript(path, script); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved script: %s\n", path)
		return nil
	}
	fmt.Println(script)
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("yt-decrypt " + Version)
	},
}
