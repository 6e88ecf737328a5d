package cli

import "github.com/spf13/cobra"

// completionCmd generates shell completion scripts.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for dcrvault.

To load completions:

Bash:
  $ source <(dcrvault completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ dcrvault completion bash > /etc/bash_completion.d/dcrvault
  # macOS:
  $ dcrvault completion bash > $(brew --prefix)/etc/bash_completion.d/dcrvault

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ dcrvault completion zsh > "${fpath[1]}/_dcrvault"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ dcrvault completion fish | source

  # To load completions for each session, execute once:
  $ dcrvault completion fish > ~/.config/fish/completions/dcrvault.fish

PowerShell:
  PS> dcrvault completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> dcrvault completion powershell > dcrvault.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(w)
		case "zsh":
			return cmd.Root().GenZshCompletion(w)
		case "fish":
			return cmd.Root().GenFishCompletion(w, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(w)
		}
		return nil
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(completionCmd)
}
