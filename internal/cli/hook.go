package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var hookCmd = &cobra.Command{
	Use:   "hook <zsh|bash>",
	Short: "Print the shell hook for automatic capture",
	Long: `Print the shell snippet that records every command and checks for
relevant memories after failures.

Install it with:
  eval "$(recall hook zsh)"   # in ~/.zshrc
  eval "$(recall hook bash)"  # in ~/.bashrc`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"zsh", "bash"},
	RunE:      runHook,
}

func runHook(cmd *cobra.Command, args []string) error {
	switch args[0] {
	case "zsh":
		fmt.Print(zshHook)
	case "bash":
		fmt.Print(bashHook)
	default:
		return fmt.Errorf("unsupported shell %q (zsh or bash)", args[0])
	}
	return nil
}

const zshHook = `# recall shell hook (zsh)
_recall_preexec() {
  _RECALL_CMD="$1"
}
_recall_precmd() {
  local exit_code=$?
  [[ -z "$_RECALL_CMD" ]] && return
  local branch
  branch=$(git rev-parse --abbrev-ref HEAD 2>/dev/null)
  recall record --session "$$" --exit "$exit_code" --branch "$branch" -- "$_RECALL_CMD" >/dev/null 2>&1 &!
  if (( exit_code != 0 )); then
    recall check --session "$$" --exit "$exit_code" --branch "$branch" -- "$_RECALL_CMD"
  fi
  _RECALL_CMD=""
}
autoload -Uz add-zsh-hook
add-zsh-hook preexec _recall_preexec
add-zsh-hook precmd _recall_precmd
`

const bashHook = `# recall shell hook (bash)
_recall_prompt() {
  local exit_code=$?
  local last_cmd
  last_cmd=$(HISTTIMEFORMAT= history 1 | sed 's/^ *[0-9]* *//')
  [[ -z "$last_cmd" || "$last_cmd" == "$_RECALL_LAST" ]] && return
  _RECALL_LAST="$last_cmd"
  local branch
  branch=$(git rev-parse --abbrev-ref HEAD 2>/dev/null)
  (recall record --session "$$" --exit "$exit_code" --branch "$branch" -- "$last_cmd" >/dev/null 2>&1 &)
  if [[ $exit_code -ne 0 ]]; then
    recall check --session "$$" --exit "$exit_code" --branch "$branch" -- "$last_cmd"
  fi
}
PROMPT_COMMAND="_recall_prompt${PROMPT_COMMAND:+;$PROMPT_COMMAND}"
`
