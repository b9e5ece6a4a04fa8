package cmd

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/spendcloudtools/spendlink/pkg/token"
	"github.com/spendcloudtools/spendlink/pkg/util"
)

// TokenStoreService defines the subset of the token store that we use.
type TokenStoreService interface {
	List() ([]token.Record, error)
	Add(rec token.Record) (bool, error)
	Remove(tok string) (bool, error)
	Clear() error
}

// TokensCmd handles token operations independent of cobra.
type TokensCmd struct {
	store TokenStoreService
}

type TokensListInput struct {
	Output string
}

type TokensAddInput struct {
	Token  string
	URL    string
	Output string
}

type TokensDeleteInput struct {
	Token string
}

type TokensClearInput struct {
	SkipConfirm bool
}

type TokensSelectInput struct {
	Tenant string
	Env    string
	Output string
}

func (c TokensCmd) List(in TokensListInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	records, err := c.store.List()
	if err != nil {
		return err
	}

	if in.Output == "json" {
		if len(records) == 0 {
			fmt.Println("[]")
			return nil
		}
		return util.PrintPrettyJSON(records)
	}

	if len(records) == 0 {
		pterm.Info.Println("No tokens captured yet")
		return nil
	}

	tableData := pterm.TableData{{"Token", "Tenant", "Env", "Captured", "Expires", "Source"}}
	for _, rec := range records {
		expires := "-"
		if rec.ExpiryDate != nil {
			expires = util.FormatLocal(*rec.ExpiryDate)
		}
		tableData = append(tableData, []string{
			util.Truncate(rec.Token, 24),
			util.OrDash(rec.ClientEnvironment),
			rec.Environment(),
			util.FormatLocal(rec.Timestamp),
			expires,
			string(rec.Source),
		})
	}

	PrintTableNoPad(tableData, true)
	return nil
}

func (c TokensCmd) Add(in TokensAddInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	if in.Token == "" {
		return fmt.Errorf("a token value is required")
	}

	rec := token.NewRecord(in.Token, in.URL, token.SourceDirect, time.Now())
	added, err := c.store.Add(rec)
	if err != nil {
		return err
	}

	if in.Output == "json" {
		return util.PrintPrettyJSON(rec)
	}

	if !added {
		pterm.Info.Println("Token already stored")
		return nil
	}

	pterm.Success.Println("Token stored")
	tableData := pterm.TableData{
		{"Property", "Value"},
		{"Tenant", util.OrDash(rec.ClientEnvironment)},
		{"Env", rec.Environment()},
	}
	if rec.ExpiryDate != nil {
		tableData = append(tableData, []string{"Expires", util.FormatLocal(*rec.ExpiryDate)})
	}
	PrintTableNoPad(tableData, true)
	return nil
}

func (c TokensCmd) Delete(in TokensDeleteInput) error {
	removed, err := c.store.Remove(in.Token)
	if err != nil {
		return err
	}
	if !removed {
		pterm.Info.Println("No matching token found")
		return nil
	}
	pterm.Success.Println("Token deleted")
	return nil
}

func (c TokensCmd) Clear(in TokensClearInput) error {
	if !in.SkipConfirm {
		pterm.DefaultInteractiveConfirm.DefaultText = "Are you sure you want to delete all stored tokens?"
		ok, _ := pterm.DefaultInteractiveConfirm.Show()
		if !ok {
			pterm.Info.Println("Deletion cancelled")
			return nil
		}
	}

	if err := c.store.Clear(); err != nil {
		return err
	}
	pterm.Success.Println("All tokens deleted")
	return nil
}

func (c TokensCmd) Select(in TokensSelectInput, now time.Time) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	opts := token.Options{Tenant: in.Tenant}
	switch in.Env {
	case "":
	case "dev":
		dev := true
		opts.Dev = &dev
	case "prod":
		dev := false
		opts.Dev = &dev
	default:
		return fmt.Errorf("unsupported --env value: use 'dev' or 'prod'")
	}

	records, err := c.store.List()
	if err != nil {
		return err
	}
	rec, err := token.Select(records, opts, now)
	if err != nil {
		return err
	}

	if in.Output == "json" {
		return util.PrintPrettyJSON(rec)
	}

	// Print only the token so it can be piped into curl and friends.
	fmt.Println(rec.Token)
	return nil
}

// --- Cobra wiring ---

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Manage captured auth tokens",
	Long:  "Commands for listing, adding, selecting and deleting captured spend.cloud auth tokens",
}

var tokensListCmd = &cobra.Command{
	Use:   "list",
	Short: "List captured tokens, newest first",
	Args:  cobra.NoArgs,
	RunE:  runTokensList,
}

var tokensAddCmd = &cobra.Command{
	Use:   "add <token>",
	Short: "Add a token by hand",
	Long:  "Add a raw token (a leading 'Bearer ' prefix is stripped). Pass --url to tag it with a tenant.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokensAdd,
}

var tokensDeleteCmd = &cobra.Command{
	Use:   "delete <token>",
	Short: "Delete a stored token",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokensDelete,
}

var tokensClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored tokens",
	Args:  cobra.NoArgs,
	RunE:  runTokensClear,
}

var tokensSelectCmd = &cobra.Command{
	Use:   "select",
	Short: "Print the freshest valid token",
	Long:  "Print the most recently captured valid token, optionally narrowed by --tenant and --env",
	Args:  cobra.NoArgs,
	RunE:  runTokensSelect,
}

func init() {
	tokensListCmd.Flags().StringP("output", "o", "", "Output format (json)")

	tokensAddCmd.Flags().StringP("output", "o", "", "Output format (json)")
	tokensAddCmd.Flags().String("url", "", "spend.cloud URL the token belongs to (sets tenant and environment)")

	tokensClearCmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")

	tokensSelectCmd.Flags().StringP("output", "o", "", "Output format (json)")
	tokensSelectCmd.Flags().String("tenant", "", "Only consider tokens for this tenant")
	tokensSelectCmd.Flags().String("env", "", "Only consider tokens for this environment (dev or prod)")

	tokensCmd.AddCommand(tokensListCmd)
	tokensCmd.AddCommand(tokensAddCmd)
	tokensCmd.AddCommand(tokensDeleteCmd)
	tokensCmd.AddCommand(tokensClearCmd)
	tokensCmd.AddCommand(tokensSelectCmd)

	rootCmd.AddCommand(tokensCmd)
}

func getTokensCmd() (TokensCmd, error) {
	cfg, err := loadConfig()
	if err != nil {
		return TokensCmd{}, err
	}
	store, err := openStore(cfg)
	if err != nil {
		return TokensCmd{}, err
	}
	return TokensCmd{store: store}, nil
}

func runTokensList(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	c, err := getTokensCmd()
	if err != nil {
		return err
	}
	return c.List(TokensListInput{Output: output})
}

func runTokensAdd(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	rawURL, _ := cmd.Flags().GetString("url")

	c, err := getTokensCmd()
	if err != nil {
		return err
	}
	return c.Add(TokensAddInput{
		Token:  args[0],
		URL:    rawURL,
		Output: output,
	})
}

func runTokensDelete(cmd *cobra.Command, args []string) error {
	c, err := getTokensCmd()
	if err != nil {
		return err
	}
	return c.Delete(TokensDeleteInput{Token: args[0]})
}

func runTokensClear(cmd *cobra.Command, args []string) error {
	skip, _ := cmd.Flags().GetBool("yes")

	c, err := getTokensCmd()
	if err != nil {
		return err
	}
	return c.Clear(TokensClearInput{SkipConfirm: skip})
}

func runTokensSelect(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	tenant, _ := cmd.Flags().GetString("tenant")
	env, _ := cmd.Flags().GetString("env")

	c, err := getTokensCmd()
	if err != nil {
		return err
	}
	return c.Select(TokensSelectInput{
		Tenant: tenant,
		Env:    env,
		Output: output,
	}, time.Now())
}
