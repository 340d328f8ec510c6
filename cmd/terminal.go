package cmd

import (
	"context"
	"os"
	"runtime"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// Swappable for tests.
var (
	stdinIsTerminal  = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
	openTerminalIOFn = openTerminalIO
)

// programOptions returns the Bubble Tea options for the current process.
// When stdin is piped the program reads keys from the controlling terminal
// instead.
func programOptions(ctx context.Context) ([]tea.ProgramOption, func()) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if stdinIsTerminal() {
		return opts, func() {}
	}

	ttyIn, ttyOut, err := openTerminalIOFn()
	if err != nil {
		// no controlling terminal (some CI environments); keep stdin
		return opts, func() {}
	}
	opts = append(opts, tea.WithInput(ttyIn))
	if ttyOut != nil {
		opts = append(opts, tea.WithOutput(ttyOut))
	}
	return opts, func() {
		_ = ttyIn.Close()
		if ttyOut != nil && ttyOut != ttyIn {
			_ = ttyOut.Close()
		}
	}
}

func openTerminalIO() (*os.File, *os.File, error) {
	in, out := terminalDeviceNames(runtime.GOOS)

	input, err := os.OpenFile(in, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	if out == "" || out == in {
		return input, input, nil
	}
	output, err := os.OpenFile(out, os.O_RDWR, 0)
	if err != nil {
		return input, nil, err
	}
	return input, output, nil
}

func terminalDeviceNames(goos string) (input string, output string) {
	if goos == "windows" {
		return "CONIN$", "CONOUT$"
	}
	return "/dev/tty", "/dev/tty"
}
