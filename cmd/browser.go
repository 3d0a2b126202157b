package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lijinlar/handsfree-windows/internal/browser"
	"github.com/lijinlar/handsfree-windows/internal/observability"
	"github.com/lijinlar/handsfree-windows/internal/output"
)

// BrowserResult is the common output of browser subcommands.
type BrowserResult struct {
	OK     bool   `yaml:"ok"               json:"ok"`
	URL    string `yaml:"url,omitempty"    json:"url,omitempty"`
	Title  string `yaml:"title,omitempty"  json:"title,omitempty"`
	Result string `yaml:"result,omitempty" json:"result,omitempty"`
	File   string `yaml:"file,omitempty"   json:"file,omitempty"`
}

var browserCmd = &cobra.Command{
	Use:   "browser",
	Short: "Drive a browser page directly",
	Long: `Drive web pages through a real browser instead of the accessibility tree.
Page state (last URL) persists across invocations, so subcommands compose:
open once, then click/type/eval against the same page.`,
}

func init() {
	rootCmd.AddCommand(browserCmd)
	browserCmd.PersistentFlags().Bool("headless", false, "Run the browser without a visible window")

	browserCmd.AddCommand(browserOpenCmd)
	browserCmd.AddCommand(browserNavigateCmd)

	browserClickCmd.Flags().String("selector", "", "CSS selector to click")
	browserClickCmd.Flags().String("text", "", "Visible text of the element to click")
	browserClickCmd.Flags().Bool("exact", false, "Require exact text match")
	browserCmd.AddCommand(browserClickCmd)

	browserTypeCmd.Flags().String("selector", "", "CSS selector of the input")
	browserTypeCmd.Flags().Bool("clear", true, "Clear the field before typing")
	browserCmd.AddCommand(browserTypeCmd)

	browserCmd.AddCommand(browserEvalCmd)
	browserCmd.AddCommand(browserLinksCmd)
	browserCmd.AddCommand(browserSnapshotCmd)

	browserScreenshotCmd.Flags().Bool("full-page", false, "Capture the full scrollable page")
	browserCmd.AddCommand(browserScreenshotCmd)

	browserFillCmd.Flags().StringArray("field", nil, "Field to fill as css-selector=text (repeatable)")
	browserCmd.AddCommand(browserFillCmd)
}

// browserDriver builds a page driver honoring the --headless flag.
func browserDriver(cmd *cobra.Command) *browser.Driver {
	bcfg := cfg.Browser
	if headless, _ := cmd.Flags().GetBool("headless"); headless {
		bcfg.Headless = true
	}
	return browser.New(bcfg, observability.Logger())
}

var browserOpenCmd = &cobra.Command{
	Use:   "open [url]",
	Short: "Open a URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := browserDriver(cmd).OpenInfo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return output.Print(BrowserResult{OK: true, URL: info.URL, Title: info.Title})
	},
}

var browserNavigateCmd = &cobra.Command{
	Use:   "navigate [url]",
	Short: "Navigate the current page to a URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := browserDriver(cmd).NavigateInfo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return output.Print(BrowserResult{OK: true, URL: info.URL, Title: info.Title})
	},
}

var browserClickCmd = &cobra.Command{
	Use:   "click",
	Short: "Click a page element",
	RunE: func(cmd *cobra.Command, args []string) error {
		css, _ := cmd.Flags().GetString("selector")
		text, _ := cmd.Flags().GetString("text")
		exact, _ := cmd.Flags().GetBool("exact")
		if css == "" && text == "" {
			return fmt.Errorf("specify --selector or --text")
		}
		info, err := browserDriver(cmd).ClickInfo(cmd.Context(), css, text, exact)
		if err != nil {
			return err
		}
		return output.Print(BrowserResult{OK: true, URL: info.URL, Title: info.Title})
	},
}

var browserTypeCmd = &cobra.Command{
	Use:   "type [text]",
	Short: "Type into a page input",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		css, _ := cmd.Flags().GetString("selector")
		if css == "" {
			return fmt.Errorf("--selector is required")
		}
		clear, _ := cmd.Flags().GetBool("clear")
		info, err := browserDriver(cmd).TypeInfo(cmd.Context(), css, args[0], clear)
		if err != nil {
			return err
		}
		return output.Print(BrowserResult{OK: true, URL: info.URL, Title: info.Title})
	},
}

var browserEvalCmd = &cobra.Command{
	Use:   "eval [javascript]",
	Short: "Evaluate JavaScript on the current page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, result, err := browserDriver(cmd).EvaluateInfo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return output.Print(BrowserResult{OK: true, URL: info.URL, Title: info.Title, Result: result})
	},
}

var browserLinksCmd = &cobra.Command{
	Use:   "links",
	Short: "List links on the current page",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, links, err := browserDriver(cmd).Links(cmd.Context())
		if err != nil {
			return err
		}
		return output.Print(links)
	},
}

var browserSnapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Dump the current page's visible text",
	RunE: func(cmd *cobra.Command, args []string) error {
		info, text, err := browserDriver(cmd).Snapshot(cmd.Context())
		if err != nil {
			return err
		}
		return output.Print(BrowserResult{OK: true, URL: info.URL, Title: info.Title, Result: text})
	},
}

var browserFillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill multiple form fields in one session",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetStringArray("field")
		if len(raw) == 0 {
			return fmt.Errorf("specify at least one --field css-selector=text")
		}
		fields := make([]browser.FormField, 0, len(raw))
		for _, f := range raw {
			sel, text, ok := strings.Cut(f, "=")
			if !ok || sel == "" {
				return fmt.Errorf("malformed --field %q, want css-selector=text", f)
			}
			fields = append(fields, browser.FormField{Selector: sel, Text: text})
		}
		info, err := browserDriver(cmd).FillForm(cmd.Context(), fields)
		if err != nil {
			return err
		}
		return output.Print(BrowserResult{OK: true, URL: info.URL, Title: info.Title})
	},
}

var browserScreenshotCmd = &cobra.Command{
	Use:   "screenshot [output.png]",
	Short: "Capture the current page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fullPage, _ := cmd.Flags().GetBool("full-page")
		info, err := browserDriver(cmd).Screenshot(cmd.Context(), args[0], fullPage)
		if err != nil {
			return err
		}
		return output.Print(BrowserResult{OK: true, URL: info.URL, Title: info.Title, File: args[0]})
	},
}
