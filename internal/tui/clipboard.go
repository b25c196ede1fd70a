package tui

import (
	"errors"
	"os/exec"
	"runtime"
	"strings"
)

type clipboardCmd struct {
	name string
	args []string
}

// clipboardCandidates lists the writers to try per platform, in order.
// Linux prefers Wayland, then the X11 fallbacks.
func clipboardCandidates() []clipboardCmd {
	switch runtime.GOOS {
	case "darwin":
		return []clipboardCmd{{name: "pbcopy"}}
	case "windows":
		return []clipboardCmd{
			{name: "cmd", args: []string{"/c", "clip"}},
			{name: "powershell", args: []string{"-NoProfile", "-Command", "Set-Clipboard"}},
		}
	default:
		return []clipboardCmd{
			{name: "wl-copy"},
			{name: "xclip", args: []string{"-selection", "clipboard"}},
			{name: "xsel", args: []string{"--clipboard", "--input"}},
		}
	}
}

func copyToClipboard(s string) error {
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var lastErr error
	for _, c := range clipboardCandidates() {
		if err := runClipboardCmd(c, s); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = errors.New("no clipboard command available")
	}
	return lastErr
}

func runClipboardCmd(c clipboardCmd, stdin string) error {
	if _, err := exec.LookPath(c.name); err != nil {
		return err
	}
	cmd := exec.Command(c.name, c.args...)
	cmd.Stdin = strings.NewReader(stdin)
	if err := cmd.Run(); err != nil {
		return errors.New(c.name + ": " + err.Error())
	}
	return nil
}
