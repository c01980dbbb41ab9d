package cli

import (
	"os"

	"github.com/spf13/cobra"

	"rsars/logging"
	"rsars/rsa"
)

var opts = rsa.DefaultOptions()
var configFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rsars",
	Short: "Educational RSA key generation and bulk encryption",
	Long: `rsars generates RSA key pairs and encrypts or decrypts byte
streams with them, preserving the exact input length.

This is a teaching tool: it implements Miller-Rabin primality testing,
a parallel prime search and a block cipher pipeline from first
principles. It is not a production cryptosystem; there is no message
padding scheme and no side-channel hardening.`,
	SilenceUsage: true,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			if err := applyConfigFile(cmd); err != nil {
				return err
			}
		}
		// writing cipher output to the terminal pipe must not be
		// interleaved with logs or a progress bar
		if opts.Output == "stdout" && (opts.Mode == "encode" || opts.Mode == "decode") {
			opts.Silent = true
		}
		logging.SetSilent(opts.Silent)
		logging.Infof("run options: %+v", opts)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return opts.Run()
	},
}

// applyConfigFile overlays the YAML options file, keeping every flag the
// user set explicitly on the command line.
func applyConfigFile(cmd *cobra.Command) error {
	fileOpts := opts
	if err := fileOpts.LoadFile(configFile); err != nil {
		return err
	}

	flagOpts := opts
	opts = fileOpts
	fl := cmd.Flags()
	if fl.Changed("mode") {
		opts.Mode = flagOpts.Mode
	}
	if fl.Changed("key") {
		opts.Key = flagOpts.Key
	}
	if fl.Changed("comment") {
		opts.Comment = flagOpts.Comment
	}
	if fl.Changed("binary") {
		opts.Binary = flagOpts.Binary
	}
	if fl.Changed("input") {
		opts.Input = flagOpts.Input
	}
	if fl.Changed("output") {
		opts.Output = flagOpts.Output
	}
	if fl.Changed("prime-min") {
		opts.PrimeMin = flagOpts.PrimeMin
	}
	if fl.Changed("prime-max") {
		opts.PrimeMax = flagOpts.PrimeMax
	}
	if fl.Changed("rounds") {
		opts.Rounds = flagOpts.Rounds
	}
	if fl.Changed("time-max") {
		opts.TimeMax = flagOpts.TimeMax
	}
	if fl.Changed("silent") {
		opts.Silent = flagOpts.Silent
	}
	if fl.Changed("retry") {
		opts.Retry = flagOpts.Retry
	}
	if fl.Changed("threads") {
		opts.Threads = flagOpts.Threads
	}
	return nil
}

// Execute runs the root command. It is called by main.main() and only
// needs to happen once.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&opts.Mode, "mode", "m", opts.Mode, "run mode: generate, encode, decode or test")
	f.StringVarP(&opts.Key, "key", "k", opts.Key, "key path stem; the pair lives at <stem> and <stem>.pub")
	f.StringVarP(&opts.Comment, "comment", "c", opts.Comment, "comment embedded in key files")
	f.BoolVar(&opts.Binary, "binary", opts.Binary, "write key files in raw binary instead of base64")
	f.StringVarP(&opts.Input, "input", "i", opts.Input, "input file or the literal 'stdin'")
	f.StringVarP(&opts.Output, "output", "o", opts.Output, "output file or the literal 'stdout'")
	f.UintVar(&opts.PrimeMin, "prime-min", opts.PrimeMin, "minimum prime bit length")
	f.UintVar(&opts.PrimeMax, "prime-max", opts.PrimeMax, "maximum prime bit length")
	f.IntVarP(&opts.Rounds, "rounds", "r", opts.Rounds, "Miller-Rabin witness count")
	f.Int64Var(&opts.TimeMax, "time-max", opts.TimeMax, "per-search time budget in milliseconds")
	f.BoolVarP(&opts.Silent, "silent", "s", opts.Silent, "suppress log output")
	f.BoolVar(&opts.Retry, "retry", opts.Retry, "retry prime search on timeout")
	f.IntVarP(&opts.Threads, "threads", "t", opts.Threads, "worker pool size")
	f.StringVar(&configFile, "config", "", "YAML file supplying option defaults")
}
