package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for logshelf.

To load completions:

Bash:
  $ source <(logshelf completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ logshelf completion bash > /etc/bash_completion.d/logshelf
  # macOS:
  $ logshelf completion bash > $(brew --prefix)/etc/bash_completion.d/logshelf

Zsh:
  $ source <(logshelf completion zsh)
  # To load completions for each session, execute once:
  $ logshelf completion zsh > "${fpath[1]}/_logshelf"

Fish:
  $ logshelf completion fish | source
  # To load completions for each session, execute once:
  $ logshelf completion fish > ~/.config/fish/completions/logshelf.fish
`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			}
			return nil
		},
	}

	return cmd
}
