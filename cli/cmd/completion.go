package cmd

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for preppy.

To load completions:

Bash:
  $ source <(preppy completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ preppy completion bash > /etc/bash_completion.d/preppy
  # macOS:
  $ preppy completion bash > $(brew --prefix)/etc/bash_completion.d/preppy

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ preppy completion zsh > "${fpath[1]}/_preppy"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ preppy completion fish | source

  # To load completions for each session, execute once:
  $ preppy completion fish > ~/.config/fish/completions/preppy.fish

PowerShell:
  PS> preppy completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> preppy completion powershell > preppy.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletionV2(w, true)
		case "zsh":
			return cmd.Root().GenZshCompletion(w)
		case "fish":
			return cmd.Root().GenFishCompletion(w, true)
		default:
			return cmd.Root().GenPowerShellCompletionWithDesc(w)
		}
	},
}
