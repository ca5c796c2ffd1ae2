// This binary is the command line entrypoint for RSA weak-modulus recovery.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/colour"
	glog "github.com/golang/glog"
	"github.com/google/subcommands"
	"github.com/mahdiidarabi/rsa-factor/pkg/rsafactor"
)

// The current version, displayed via the `version` subcommand.
const rsarecoverVersion string = "0.1.0"

// commonFlags are shared by the factor, decrypt and bench commands.
type commonFlags struct {
	configFile string
	cacheDir   string
	parallel   bool
	oracle     bool
	timeout    time.Duration
}

func (c *commonFlags) register(f *flag.FlagSet) {
	f.StringVar(&c.configFile, "config", "", "Path to a YAML config file. Optional.")
	f.StringVar(&c.cacheDir, "cache-dir", "", "Directory for remembered factorizations. Optional.")
	f.BoolVar(&c.parallel, "parallel", false, "Race every strategy instead of trying them in order.")
	f.BoolVar(&c.oracle, "oracle", false, "Consult FactorDB after the local strategies.")
	f.DurationVar(&c.timeout, "timeout", 0, "Overall deadline, e.g. 2m. Overrides the config file when set.")
}

func (c *commonFlags) load(f *flag.FlagSet) (rsafactor.FactorConfig, error) {
	cfg := rsafactor.DefaultFactorConfig()
	if c.configFile != "" {
		var err error
		if cfg, err = rsafactor.LoadConfig(c.configFile); err != nil {
			return cfg, err
		}
	}
	// Flags only override the file when given explicitly.
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "parallel":
			cfg.Parallel = c.parallel
		case "oracle":
			cfg.EnableExternalOracle = c.oracle
		case "timeout":
			cfg.TotalTimeout = c.timeout
		case "cache-dir":
			cfg.CacheDir = c.cacheDir
		}
	})
	return cfg, cfg.Validate()
}

// factorCmd handles CLI options for the factor command.
type factorCmd struct {
	commonFlags
	n string
}

func (*factorCmd) Name() string     { return "factor" }
func (*factorCmd) Synopsis() string { return "splits a modulus into two factors" }
func (*factorCmd) Usage() string {
	return `Usage: rsarecover factor [--config=<config_file>] [--parallel] [--oracle] (--n=<N> | <N>)

Example:
  $ rsarecover factor --n=3233
  [+] 3233 = 53 * 61 (SmallFactors)

Flags:
`
}
func (c *factorCmd) SetFlags(f *flag.FlagSet) {
	c.register(f)
	f.StringVar(&c.n, "n", "", "Modulus N to factor.")
}

func (c *factorCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	n, err := modulusArg(c.n, f)
	if err != nil {
		glog.Errorf("Failed to parse modulus: %v", err)
		return subcommands.ExitUsageError
	}
	cfg, err := c.load(f)
	if err != nil {
		glog.Errorf("Failed to load config: %v", err)
		return subcommands.ExitFailure
	}

	res, err := rsafactor.NewOrchestrator(cfg).Run(ctx, n)
	if err != nil {
		glog.Errorf("Failed to factor modulus: %v", err)
		return subcommands.ExitFailure
	}

	colour.Printf("^2[+]^R %s = %s * %s (%s)\n", n, res.Pair.P, res.Pair.Q, res.Pair.Strategy)
	for _, a := range res.Attempts {
		glog.V(1).Infof("  %-15s %-10s %v", a.Strategy, a.Outcome, a.Elapsed)
	}
	return subcommands.ExitSuccess
}

// decryptCmd handles CLI options for the decrypt command.
type decryptCmd struct {
	commonFlags
	n, e, c string
	input   string
}

func (*decryptCmd) Name() string { return "decrypt" }
func (*decryptCmd) Synopsis() string {
	return "recovers the private key for (N, e) and decrypts C"
}
func (*decryptCmd) Usage() string {
	return `Usage: rsarecover decrypt [--config=<config_file>] (--n=<N> --c=<C> [--e=<e>] | --input=<challenges_file>)

Examples:
  Decrypt a single ciphertext:
    $ rsarecover decrypt --n=3233 --e=17 --c=2790

  Decrypt every challenge in a JSON or CSV file:
    $ rsarecover decrypt --input=fixtures/challenges.json

Numbers are decimal unless prefixed with 0x.

Flags:
`
}
func (d *decryptCmd) SetFlags(f *flag.FlagSet) {
	d.register(f)
	f.StringVar(&d.n, "n", "", "RSA modulus N.")
	f.StringVar(&d.e, "e", "65537", "Public exponent e.")
	f.StringVar(&d.c, "c", "", "Ciphertext C.")
	f.StringVar(&d.input, "input", "", "Path to a JSON or CSV challenge file.")
}

func (d *decryptCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := d.load(f)
	if err != nil {
		glog.Errorf("Failed to load config: %v", err)
		return subcommands.ExitFailure
	}

	if d.input != "" {
		return d.decryptFile(ctx, cfg)
	}

	if d.n == "" || d.c == "" {
		glog.Errorf("Either --input or both --n and --c are required")
		return subcommands.ExitUsageError
	}
	ch := &rsafactor.Challenge{Name: "cli"}
	for _, v := range []struct {
		dst  **big.Int
		name string
		s    string
	}{{&ch.N, "n", d.n}, {&ch.E, "e", d.e}, {&ch.C, "c", d.c}} {
		if *v.dst, err = rsafactor.ParseBigInt(v.s); err != nil {
			glog.Errorf("Failed to parse --%s: %v", v.name, err)
			return subcommands.ExitUsageError
		}
	}

	dec, err := rsafactor.NewClient().WithConfig(cfg).Decrypt(ctx, ch)
	if err != nil {
		glog.Errorf("Failed to decrypt: %v", err)
		return subcommands.ExitFailure
	}
	printDecryption(ch, dec)
	return subcommands.ExitSuccess
}

func (d *decryptCmd) decryptFile(ctx context.Context, cfg rsafactor.FactorConfig) subcommands.ExitStatus {
	client := rsafactor.NewClient().
		WithConfig(cfg).
		WithParser(rsafactor.ParserForFile(d.input))

	results, err := client.DecryptFile(ctx, d.input)
	if err != nil {
		glog.Errorf("Failed to decrypt %s: %v", d.input, err)
		return subcommands.ExitFailure
	}

	status := subcommands.ExitSuccess
	for _, r := range results {
		if r.Err != nil {
			colour.Printf("^1[-]^R %s: %v\n", r.Challenge.Name, r.Err)
			status = subcommands.ExitFailure
			continue
		}
		printDecryption(r.Challenge, r.Decryption)
	}
	return status
}

func printDecryption(ch *rsafactor.Challenge, dec *rsafactor.Decryption) {
	colour.Printf("^2[+]^R %s\n", ch.Name)
	fmt.Printf("    p = %s\n", dec.Pair.P)
	fmt.Printf("    q = %s\n", dec.Pair.Q)
	fmt.Printf("    phi = %s\n", dec.Key.Phi)
	fmt.Printf("    d = %s\n", dec.D)
	fmt.Printf("    m = %s (0x%s, %d bits)\n", dec.Plaintext, dec.Message.Hex(), dec.Message.BitLen)
	fmt.Printf("    bytes: %q\n", dec.Message.Bytes)
	if dec.Message.HasText {
		fmt.Printf("    text: %q\n", dec.Message.Text)
	}
	fmt.Printf("    bytes (little-endian): %q\n", dec.Message.LittleEndian)
	if dec.Message.HasLittleEndianText {
		fmt.Printf("    text (little-endian): %q\n", dec.Message.LittleEndianText)
	}
	fmt.Printf("    strategy: %s\n", dec.Pair.Strategy)
	if !dec.Consistent {
		colour.Printf("    ^3warning:^R re-encryption does not reproduce C\n")
	}
}

// modulusArg reads N from --n or, failing that, the single positional
// argument.
func modulusArg(flagValue string, f *flag.FlagSet) (*big.Int, error) {
	switch {
	case flagValue != "" && f.NArg() == 0:
		return rsafactor.ParseBigInt(flagValue)
	case flagValue == "" && f.NArg() == 1:
		return rsafactor.ParseBigInt(f.Arg(0))
	}
	return nil, fmt.Errorf("expected exactly one modulus via --n or as an argument")
}

// versionCmd handles CLI options for the version command.
type versionCmd struct{}

func (*versionCmd) Name() string           { return "version" }
func (*versionCmd) Synopsis() string       { return "prints the current version" }
func (*versionCmd) Usage() string          { return "Usage: rsarecover version" }
func (*versionCmd) SetFlags(*flag.FlagSet) {}
func (*versionCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	fmt.Printf("rsarecover version %s\n", rsarecoverVersion)
	return subcommands.ExitSuccess
}

func main() {
	flag.Parse()

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&factorCmd{}, "")
	subcommands.Register(&decryptCmd{}, "")
	subcommands.Register(&benchCmd{}, "")
	subcommands.Register(&versionCmd{}, "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := subcommands.Execute(ctx)
	stop()
	glog.Flush()
	os.Exit(int(status))
}
