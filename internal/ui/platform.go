package ui

import "github.com/atotto/clipboard"

// copyToClipboardFn is the active clipboard implementation. Tests replace it
// via StubPlatformActions to prevent side effects.
var copyToClipboardFn = clipboard.WriteAll

// CopyToClipboard copies text to the system clipboard.
func CopyToClipboard(text string) error { return copyToClipboardFn(text) }

// StubPlatformActions replaces the clipboard with a recorder and returns the
// recorded values and a restore function.
func StubPlatformActions() (copied *[]string, restore func()) {
	orig := copyToClipboardFn
	var got []string
	copyToClipboardFn = func(s string) error {
		got = append(got, s)
		return nil
	}
	return &got, func() { copyToClipboardFn = orig }
}
