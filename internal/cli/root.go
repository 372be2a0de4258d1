package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/trimcast/internal/config"
	"github.com/mgpai22/trimcast/internal/logging"
)

// state shared by every command: flags from the root plus the loaded
// config and logger
type commandContext struct {
	verbose    bool
	configPath string

	cfg       *config.Config
	cfgPath   string
	cfgExists bool
	logger    *logging.Logger
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:   "trimcast",
		Short: "Condense spoken recordings by editing their transcript",
		Long: `Trimcast transcribes a recording, has a language model tighten the
transcript, and rebuilds the audio from the original words so the result
sounds like the speaker. Words the edit introduces can be synthesized.

Every run also writes progressive captions, a caption video and JSON
artifacts describing how the output was assembled.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx.logger = logging.NewLogger(ctx.verbose)
			if shouldSkipConfig(cmd) {
				return nil
			}
			return ctx.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().
		BoolVarP(&ctx.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newCondenseCommand(ctx))
	rootCmd.AddCommand(newClipsCommand(ctx))
	rootCmd.AddCommand(newAlignCommand(ctx))
	rootCmd.AddCommand(newCaptionsCommand(ctx))
	rootCmd.AddCommand(newExtractCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

// Execute runs the command line until it finishes or ctx is cancelled.
func Execute(ctx context.Context) error {
	return newRootCommand().ExecuteContext(ctx)
}

func (c *commandContext) loadConfig() error {
	cfg, path, exists, err := config.Load(strings.TrimSpace(c.configPath))
	if err != nil {
		return err
	}
	c.cfg, c.cfgPath, c.cfgExists = cfg, path, exists
	if exists {
		c.logger.Debugw("Loaded config", "path", path)
	}
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
