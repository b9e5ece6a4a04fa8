package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// PrefsService defines the subset of the token store that the preference
// commands use.
type PrefsService interface {
	ShowButtons() (bool, error)
	SetShowButtons(show bool) error
}

// PrefsCmd handles UI preference operations independent of cobra.
type PrefsCmd struct {
	store PrefsService
}

func (c PrefsCmd) Show() error {
	show, err := c.store.ShowButtons()
	if err != nil {
		return err
	}
	state := "on"
	if !show {
		state = "off"
	}
	pterm.Info.Printf("Page buttons: %s\n", state)
	return nil
}

func (c PrefsCmd) SetButtons(state string) error {
	switch state {
	case "on":
		if err := c.store.SetShowButtons(true); err != nil {
			return err
		}
		pterm.Success.Println("Page buttons enabled")
	case "off":
		if err := c.store.SetShowButtons(false); err != nil {
			return err
		}
		pterm.Success.Println("Page buttons disabled")
	default:
		return fmt.Errorf("unsupported value %q: use 'on' or 'off'", state)
	}
	return nil
}

// --- Cobra wiring ---

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Manage UI preferences",
	Long:  "Commands for the preferences shared with page tooling, like whether inline buttons are shown",
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current preferences",
	Args:  cobra.NoArgs,
	RunE:  runPrefsShow,
}

var prefsButtonsCmd = &cobra.Command{
	Use:       "buttons [on|off]",
	Short:     "Toggle inline page buttons",
	ValidArgs: []string{"on", "off"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:      runPrefsButtons,
}

func init() {
	prefsCmd.AddCommand(prefsShowCmd)
	prefsCmd.AddCommand(prefsButtonsCmd)

	rootCmd.AddCommand(prefsCmd)
}

func getPrefsCmd() (PrefsCmd, error) {
	cfg, err := loadConfig()
	if err != nil {
		return PrefsCmd{}, err
	}
	store, err := openStore(cfg)
	if err != nil {
		return PrefsCmd{}, err
	}
	return PrefsCmd{store: store}, nil
}

func runPrefsShow(cmd *cobra.Command, args []string) error {
	c, err := getPrefsCmd()
	if err != nil {
		return err
	}
	return c.Show()
}

func runPrefsButtons(cmd *cobra.Command, args []string) error {
	c, err := getPrefsCmd()
	if err != nil {
		return err
	}
	return c.SetButtons(args[0])
}
