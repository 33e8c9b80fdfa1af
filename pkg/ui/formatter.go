package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/grendel/keyscope/internal/wallet"
	"github.com/grendel/keyscope/pkg/balance"
)

const (
	// BoxWidth is the standard width for display boxes
	BoxWidth = 80
)

// ColorScheme defines a set of colors for consistent UI formatting
type ColorScheme struct {
	Out      io.Writer    // Destination for everything printed through the scheme
	Header   *color.Color // For box borders and section headers
	Title    *color.Color // For main titles
	Subtitle *color.Color // For section titles
	Normal   *color.Color // For normal text
	Param    *color.Color // For parameter names
	Address  *color.Color // For addresses
	Type     *color.Color // For type indicators
	Result   *color.Color // For result messages
	Example  *color.Color // For example commands
	Success  *color.Color // For valid results
	Error    *color.Color // For invalid results and errors
}

// DefaultColorScheme returns the default color scheme for the application
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Out:      os.Stdout,
		Header:   color.New(color.FgBlue, color.Bold),
		Title:    color.New(color.FgHiWhite, color.Bold),
		Subtitle: color.New(color.FgBlue),
		Normal:   color.New(color.FgWhite),
		Param:    color.New(color.FgCyan),
		Address:  color.New(color.FgHiCyan),
		Type:     color.New(color.FgHiWhite, color.Bold),
		Result:   color.New(color.FgBlue),
		Example:  color.New(color.FgGreen),
		Success:  color.New(color.FgGreen, color.Bold),
		Error:    color.New(color.FgRed),
	}
}

// PlainColorScheme is DefaultColorScheme with colors disabled, writing to out
func PlainColorScheme(out io.Writer) *ColorScheme {
	cs := DefaultColorScheme()
	cs.Out = out
	for _, c := range []*color.Color{cs.Header, cs.Title, cs.Subtitle, cs.Normal, cs.Param,
		cs.Address, cs.Type, cs.Result, cs.Example, cs.Success, cs.Error} {
		c.DisableColor()
	}
	return cs
}

// PrintHeader prints a formatted header box with the given title
func PrintHeader(cs *ColorScheme, title string) {
	padding := BoxWidth - 4 - len(title) // 4 is for "│  " and " │"
	if padding < 0 {
		padding = 0
	}

	fmt.Fprintln(cs.Out)
	cs.Header.Fprintln(cs.Out, "╭"+strings.Repeat("─", BoxWidth-3)+"╮")
	cs.Header.Fprint(cs.Out, "│  ")
	cs.Title.Fprint(cs.Out, title)
	cs.Header.Fprintf(cs.Out, "%s│\n", strings.Repeat(" ", padding))
	cs.Header.Fprintln(cs.Out, "╰"+strings.Repeat("─", BoxWidth-3)+"╯")
	fmt.Fprintln(cs.Out)
}

// PrintFooter prints a formatted footer box with the given message
func PrintFooter(cs *ColorScheme, message string) {
	// If message is too long, truncate it
	if len(message) > BoxWidth-6 {
		message = message[:BoxWidth-9] + "..."
	}

	padding := BoxWidth - 4 - len(message)
	if padding < 0 {
		padding = 0
	}

	fmt.Fprintln(cs.Out)
	cs.Header.Fprintln(cs.Out, "╭"+strings.Repeat("─", BoxWidth-2)+"╮")
	cs.Header.Fprint(cs.Out, "│  ")
	cs.Result.Fprint(cs.Out, message)
	cs.Header.Fprintf(cs.Out, "%s│\n", strings.Repeat(" ", padding))
	cs.Header.Fprintln(cs.Out, "╰"+strings.Repeat("─", BoxWidth-2)+"╯")
	fmt.Fprintln(cs.Out)
}

// PrintOption prints a command line option with description
func PrintOption(cs *ColorScheme, flag, description string) {
	cs.Normal.Fprint(cs.Out, "  ")
	cs.Param.Fprint(cs.Out, flag)
	cs.Normal.Fprintln(cs.Out, description)
}

// PrintExample prints a usage example
func PrintExample(cs *ColorScheme, example, description string) {
	cs.Example.Fprintf(cs.Out, "  %s", example)
	if description != "" {
		cs.Example.Fprintf(cs.Out, "  # %s", description)
	}
	fmt.Fprintln(cs.Out)
}

// PrintSectionHeader prints a section header
func PrintSectionHeader(cs *ColorScheme, title string) {
	cs.Subtitle.Fprintln(cs.Out, title)
}

func printField(cs *ColorScheme, name string, value string, c *color.Color) {
	cs.Param.Fprintf(cs.Out, "  %-12s ", name+":")
	c.Fprintln(cs.Out, value)
}

func printVerdict(cs *ColorScheme, valid bool) {
	if valid {
		printField(cs, "Valid", "yes", cs.Success)
	} else {
		printField(cs, "Valid", "no", cs.Error)
	}
}

// PrintAddressReport prints the outcome of an address check
func PrintAddressReport(cs *ColorScheme, r wallet.AddressReport) {
	printField(cs, "Address", r.Address, cs.Address)
	printField(cs, "Encoding", r.Kind.String(), cs.Type)
	printVerdict(cs, r.Valid)
	if r.Valid {
		printField(cs, "Type", r.Type, cs.Type)
		printField(cs, "Network", r.Network.String(), cs.Normal)
	}
}

// PrintKeyReport prints the outcome of a key check. Only the derived addresses
// are shown, never the key.
func PrintKeyReport(cs *ColorScheme, r wallet.KeyReport) {
	printField(cs, "Format", r.Kind.String(), cs.Type)
	printVerdict(cs, r.Valid)
	if !r.Valid {
		if r.Err != nil {
			printField(cs, "Reason", r.Err.Error(), cs.Error)
		}
		return
	}

	printField(cs, "Network", r.Addresses.Network.String(), cs.Normal)
	printField(cs, "Compressed", fmt.Sprintf("%t", r.Compressed), cs.Normal)
	printField(cs, "P2PKH", r.Addresses.P2PKH, cs.Address)
	printField(cs, "P2WPKH", r.Addresses.P2WPKH, cs.Address)
	printField(cs, "P2SH-P2WPKH", r.Addresses.P2SHP2WPKH, cs.Address)
}

func formatAmount(sats int64) string {
	return fmt.Sprintf("%d sats (%s BTC)", sats, balance.SatsToBtc(sats))
}

// PrintBalance prints a balance in satoshis and BTC
func PrintBalance(cs *ColorScheme, b balance.Balance) {
	printField(cs, "Confirmed", formatAmount(b.Confirmed), cs.Normal)
	printField(cs, "Pending", formatAmount(b.Pending), cs.Normal)
	printField(cs, "Total", formatAmount(b.Total), cs.Success)
}
