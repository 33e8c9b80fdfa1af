package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grendel/keyscope/internal/wallet"
	"github.com/grendel/keyscope/pkg/balance"
	"github.com/grendel/keyscope/pkg/crypto"
	"github.com/grendel/keyscope/pkg/fileutil"
	"github.com/grendel/keyscope/pkg/ui"
)

// ExplorerEnv overrides the balance explorer base URL for every network
const ExplorerEnv = "KEYSCOPE_EXPLORER_URL"

const appTitle = "keyscope - Bitcoin address and key inspector"

// DisplayHelp shows usage information for the application
func DisplayHelp(cs *ui.ColorScheme) {
	ui.PrintHeader(cs, appTitle)

	ui.PrintSectionHeader(cs, "USAGE:")
	cs.Normal.Fprintln(cs.Out, "  keyscope <command> [options] <input>")
	fmt.Fprintln(cs.Out)

	ui.PrintSectionHeader(cs, "COMMANDS:")
	ui.PrintOption(cs, "address  ", "Validate one or more addresses (Base58Check, Bech32, Bech32m)")
	ui.PrintOption(cs, "key      ", "Validate a WIF or hex private key and derive its addresses")
	ui.PrintOption(cs, "balance  ", "Look up an address balance on a block explorer")
	fmt.Fprintln(cs.Out)

	ui.PrintSectionHeader(cs, "OPTIONS:")
	ui.PrintOption(cs, "--network     ", "mainnet or testnet (address also accepts any)")
	ui.PrintOption(cs, "-f, --file    ", "Read addresses from a file, one per line (\"-\" for stdin)")
	ui.PrintOption(cs, "--uncompressed", "Derive from the uncompressed public key (hex keys only)")
	ui.PrintOption(cs, "--explorer    ", "Esplora base URL, also read from "+ExplorerEnv)
	ui.PrintOption(cs, "--timeout     ", fmt.Sprintf("Balance lookup timeout (default: %s)", balance.DefaultTimeout))
	ui.PrintOption(cs, "-v, --verbose ", "Log diagnostics to stderr")
	fmt.Fprintln(cs.Out)

	ui.PrintSectionHeader(cs, "EXAMPLES:")
	ui.PrintExample(cs, "keyscope address 1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", "")
	ui.PrintExample(cs, "keyscope address --network testnet mipcBbFg9gMiCh81Kj8tqqdgoZub1ZJRfn", "")
	ui.PrintExample(cs, "keyscope address --file watchlist.txt", "")
	ui.PrintExample(cs, "keyscope key -                 ", "Read the key from stdin")
	ui.PrintExample(cs, "keyscope key --network testnet 0x<64 hex digits>", "")
	ui.PrintExample(cs, "keyscope balance bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", "")
	fmt.Fprintln(cs.Out)

	ui.PrintSectionHeader(cs, "DESCRIPTION:")
	cs.Normal.Fprintln(cs.Out, "")
	cs.Normal.Fprintln(cs.Out, "  Everything except balance runs locally. Keys are never printed or stored;")
	cs.Normal.Fprintln(cs.Out, "  pass \"-\" to read a key from stdin and keep it out of shell history.")
	cs.Normal.Fprintln(cs.Out, "")
}

type rootOptions struct {
	verbose bool
	logger  *zap.Logger
}

// NewRootCommand builds the command tree writing to out and reading keys from in
func NewRootCommand(out io.Writer, in io.Reader) *cobra.Command {
	opts := &rootOptions{logger: zap.NewNop()}
	cs := ui.DefaultColorScheme()
	cs.Out = out

	root := &cobra.Command{
		Use:           "keyscope",
		Short:         "Validate Bitcoin addresses and private keys",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !opts.verbose {
				return nil
			}
			logger, err := zap.NewDevelopment()
			if err != nil {
				return errors.Wrap(err, "create logger")
			}
			opts.logger = logger
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			DisplayHelp(cs)
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log diagnostics to stderr")

	root.AddCommand(
		newAddressCommand(cs, in),
		newKeyCommand(cs, in),
		newBalanceCommand(cs, opts),
	)
	return root
}

// Execute runs the command line against the process streams
func Execute() error {
	cmd := NewRootCommand(os.Stdout, os.Stdin)
	err := cmd.Execute()
	if err != nil {
		cs := ui.DefaultColorScheme()
		cs.Out = os.Stderr
		cs.Error.Fprintf(cs.Out, "Error: %v\n", err)
	}
	return err
}

// parseNetworks maps the --network flag to the networks to accept. "any" is
// allowed only when allowAny is set.
func parseNetworks(name string, allowAny bool) ([]crypto.Network, error) {
	if allowAny && strings.EqualFold(name, "any") {
		return crypto.Networks, nil
	}
	if name == "" {
		return nil, nil
	}
	net, err := crypto.ParseNetwork(name)
	if err != nil {
		return nil, err
	}
	return []crypto.Network{net}, nil
}

// readAddressList collects the entries of the --file list, "-" meaning in
func readAddressList(path string, in io.Reader) ([]string, error) {
	var addresses []string
	collect := func(line string, _ int) error {
		addresses = append(addresses, line)
		return nil
	}

	var err error
	if path == "-" {
		err = fileutil.ReadLines(in, collect)
	} else {
		err = fileutil.ReadFileLines(path, fileutil.DefaultMaxFileSize, collect)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read address list")
	}
	return addresses, nil
}

func newAddressCommand(cs *ui.ColorScheme, in io.Reader) *cobra.Command {
	var network, file string

	cmd := &cobra.Command{
		Use:   "address [address]...",
		Short: "Validate Bitcoin addresses",
		Long: `Validate Base58Check (P2PKH, P2SH) and Bech32/Bech32m (segwit) addresses.

Without --network, segwit addresses of either network and Base58 addresses of
mainnet are accepted. Testnet Base58 addresses need --network testnet or any.

--file reads one address per line ("-" for stdin); blank lines and lines
starting with # are skipped.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if file == "" && len(args) == 0 {
				return errors.New("requires at least one address or --file")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			nets, err := parseNetworks(network, true)
			if err != nil {
				return err
			}
			if file != "" {
				listed, err := readAddressList(file, in)
				if err != nil {
					return err
				}
				args = append(args, listed...)
			}

			tracker := wallet.Tracker{}
			var invalid int
			for _, address := range args {
				if tracker.IsDuplicate(address) {
					continue
				}
				report := wallet.InspectAddress(address, nets...)
				ui.PrintAddressReport(cs, report)
				fmt.Fprintln(cs.Out)
				if !report.Valid {
					invalid++
				}
			}

			ui.PrintFooter(cs, fmt.Sprintf("%d of %d addresses valid", len(tracker)-invalid, len(tracker)))
			if invalid > 0 {
				return errors.Errorf("%d of %d addresses invalid", invalid, len(tracker))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&network, "network", "", "mainnet, testnet or any")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read addresses from a file, one per line")
	return cmd
}

// readKey returns the key argument, or the first line of in when the argument is "-"
func readKey(arg string, in io.Reader) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.Wrap(err, "read key from stdin")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newKeyCommand(cs *ui.ColorScheme, in io.Reader) *cobra.Command {
	var (
		network      string
		uncompressed bool
		curveName    string
	)

	cmd := &cobra.Command{
		Use:   "key <wif|hex|->",
		Short: "Validate a private key and derive its addresses",
		Long: `Validate a WIF or 64-digit hex private key and print the P2PKH, P2WPKH and
P2SH-P2WPKH addresses it controls.

WIF keys carry their own network and compression flag. Hex keys do not, so
--network and --uncompressed apply to them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := crypto.ParseNetwork(network)
			if err != nil {
				return err
			}
			codec, err := codecFor(curveName)
			if err != nil {
				return err
			}
			input, err := readKey(args[0], in)
			if err != nil {
				return err
			}

			report := wallet.InspectKey(codec, input, net, !uncompressed)
			ui.PrintKeyReport(cs, report)
			if !report.Valid {
				return errors.New("invalid private key")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&network, "network", "mainnet", "network for hex keys")
	cmd.Flags().BoolVar(&uncompressed, "uncompressed", false, "use the uncompressed public key for hex keys")
	cmd.Flags().StringVar(&curveName, "curve", "btcec", "secp256k1 backend: btcec or ethereum")
	return cmd
}

func codecFor(name string) (crypto.Codec, error) {
	switch strings.ToLower(name) {
	case "btcec", "":
		return crypto.NewCodec(crypto.Secp256k1{}), nil
	case "ethereum", "geth":
		return crypto.NewCodec(crypto.EthereumCurve{}), nil
	default:
		return crypto.Codec{}, errors.Errorf("unknown curve backend %q", name)
	}
}

// balanceNetwork resolves the network of a lookup. Without --network a segwit
// address names its own network; Base58 falls back to mainnet.
func balanceNetwork(flag, address string) (crypto.Network, error) {
	if flag != "" {
		return crypto.ParseNetwork(flag)
	}
	if crypto.ClassifyAddress(address) == crypto.AddressBech32 {
		if decoded, err := crypto.DecodeSegwitAddress(address); err == nil {
			if net, ok := crypto.NetworkForHRP(decoded.HRP); ok {
				return net, nil
			}
		}
	}
	return crypto.Mainnet, nil
}

func newBalanceCommand(cs *ui.ColorScheme, root *rootOptions) *cobra.Command {
	var (
		network  string
		explorer string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "balance <address>",
		Short: "Look up the confirmed and pending balance of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := balanceNetwork(network, args[0])
			if err != nil {
				return err
			}
			if explorer == "" {
				explorer = os.Getenv(ExplorerEnv)
			}

			opts := []balance.Option{balance.WithTimeout(timeout), balance.WithLogger(root.logger)}
			if explorer != "" {
				opts = append(opts, balance.WithEndpoint(net, explorer))
			}
			client := balance.NewClient(opts...)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			bal, err := client.Fetch(ctx, args[0], net)
			switch {
			case errors.Is(err, balance.ErrLookupUnavailable):
				cs.Error.Fprintln(cs.Out, "Balance unknown: the explorer could not be reached")
				return err
			case err != nil:
				return err
			}

			ui.PrintAddressReport(cs, wallet.InspectAddress(args[0], net))
			ui.PrintBalance(cs, bal)
			return nil
		},
	}
	cmd.Flags().StringVar(&network, "network", "", "mainnet or testnet (default: from a segwit prefix, else mainnet)")
	cmd.Flags().StringVar(&explorer, "explorer", "", "Esplora base URL (default: blockstream.info)")
	cmd.Flags().DurationVar(&timeout, "timeout", balance.DefaultTimeout, "lookup timeout")
	return cmd
}
