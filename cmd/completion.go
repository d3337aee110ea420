package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompletionCmd(rootCmd *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for sceneforge.

To load completions:

Bash:

  $ source <(sceneforge completion bash)

  To load completions for each session, execute once:
  Linux:
    $ sceneforge completion bash > /etc/bash_completion.d/sceneforge
  macOS:
    $ sceneforge completion bash > /usr/local/etc/bash_completion.d/sceneforge

Zsh:

  $ sceneforge completion zsh > "${fpath[1]}/_sceneforge"

Fish:

  $ sceneforge completion fish > ~/.config/fish/completions/sceneforge.fish
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(out)
			case "zsh":
				return rootCmd.GenZshCompletion(out)
			case "fish":
				return rootCmd.GenFishCompletion(out, true)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}
