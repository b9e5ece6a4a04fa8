package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/pterm/pterm"
)

var outBuf bytes.Buffer

// setupStdoutCapture redirects pterm output into outBuf for assertions and
// restores the default writer when the test finishes.
func setupStdoutCapture(t *testing.T) {
	t.Helper()
	outBuf.Reset()
	pterm.DisableColor()
	pterm.SetDefaultOutput(&outBuf)
	// The package-level prefix printers captured os.Stdout at init time and
	// are not affected by SetDefaultOutput, so redirect them individually.
	printers := []*pterm.PrefixPrinter{
		&pterm.Info, &pterm.Success, &pterm.Warning, &pterm.Error, &pterm.Debug,
	}
	for _, p := range printers {
		p.Writer = &outBuf
	}
	t.Cleanup(func() {
		for _, p := range printers {
			p.Writer = os.Stdout
		}
		pterm.SetDefaultOutput(os.Stdout)
		pterm.EnableColor()
	})
}
