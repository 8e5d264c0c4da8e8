package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"pet-market/internal/app"
	"pet-market/internal/config"
	"pet-market/internal/logger"
	"pet-market/internal/service"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// command is one subcommand. Commands with auth set run after a login
// with --user and --password.
type command struct {
	usage string
	auth  bool
	admin bool
	nargs int
	run   func(ctx context.Context, c *cli, args []string) error
}

type cli struct {
	app     *app.App
	session *service.Session
	flags   *options
}

type options struct {
	dataDir   string
	user      string
	password  string
	firstName string
	lastName  string
	contact   string
	limit     int
}

var commands = map[string]command{
	"register":   {usage: "register --user U --password P --first F --last L [--contact N]", run: runRegister},
	"catalog":    {usage: "catalog", run: runCatalog},
	"buy":        {usage: "buy <position>", auth: true, nargs: 1, run: runBuy},
	"inventory":  {usage: "inventory", auth: true, run: runInventory},
	"sell":       {usage: "sell <pet-id>", auth: true, nargs: 1, run: runSell},
	"rename":     {usage: "rename <pet-id> <name>", auth: true, nargs: 2, run: runRename},
	"list":       {usage: "list <pet-id> <price>", auth: true, nargs: 2, run: runList},
	"market":     {usage: "market", run: runMarket},
	"market-buy": {usage: "market-buy <position>", auth: true, nargs: 1, run: runMarketBuy},
	"delist":     {usage: "delist <pet-id>", auth: true, admin: true, nargs: 1, run: runDelist},
	"redeem":     {usage: "redeem <code>", auth: true, nargs: 1, run: runRedeem},
	"gen-codes":  {usage: "gen-codes <value> <count>", auth: true, admin: true, nargs: 2, run: runGenCodes},
	"top":        {usage: "top [--limit N]", run: runTop},
	"history":    {usage: "history", auth: true, run: runHistory},
	"announce":   {usage: "announce <text>", auth: true, admin: true, nargs: 1, run: runAnnounce},
	"activity":   {usage: "activity [username] [--limit N]", auth: true, admin: true, run: runActivity},
}

func main() {
	os.Exit(run())
}

// run executes one command and returns the process exit code
func run() int {
	// .env also feeds the PETMARKET_* credentials read below
	_ = godotenv.Load()
	cfg := config.Load()

	opts := &options{}
	flags := pflag.NewFlagSet("petmarket", pflag.ContinueOnError)
	flags.StringVar(&opts.dataDir, "data-dir", cfg.Storage.DataDir, "directory holding the data files")
	flags.StringVarP(&opts.user, "user", "u", os.Getenv("PETMARKET_USER"), "username")
	flags.StringVarP(&opts.password, "password", "p", os.Getenv("PETMARKET_PASSWORD"), "password")
	flags.StringVar(&opts.firstName, "first", "", "first name (register)")
	flags.StringVar(&opts.lastName, "last", "", "last name (register)")
	flags.StringVar(&opts.contact, "contact", "", "contact number (register)")
	flags.IntVarP(&opts.limit, "limit", "n", 10, "number of rows to show")
	flags.Usage = func() { printUsage(flags) }

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	cfg.Storage.DataDir = opts.dataDir

	args := flags.Args()
	if len(args) == 0 {
		printUsage(flags)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		printUsage(flags)
		return 2
	}
	args = args[1:]
	if len(args) < cmd.nargs {
		fmt.Fprintf(os.Stderr, "usage: petmarket %s\n", cmd.usage)
		return 2
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to open data directory", zap.Error(err))
		return 1
	}
	defer a.Close()

	c := &cli{app: a, flags: opts}
	if cmd.auth {
		c.session, err = a.Accounts.Login(ctx, opts.user, opts.password)
		if err != nil {
			return fail(err)
		}
		if cmd.admin && !c.session.IsAdmin {
			return fail(service.ErrNotAdmin)
		}
		for _, alert := range c.session.Alerts() {
			fmt.Println("*", alert)
		}
	}

	if err := cmd.run(ctx, c, args); err != nil {
		return fail(err)
	}
	return 0
}

func printUsage(flags *pflag.FlagSet) {
	fmt.Fprintln(os.Stderr, "usage: petmarket [flags] <command> [args]")
	fmt.Fprintln(os.Stderr, "\ncommands:")
	for _, name := range sortedCommands() {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
	}
	fmt.Fprintln(os.Stderr, "\nflags:")
	flags.PrintDefaults()
}

// fail reports an error and returns the exit code for it
func fail(err error) int {
	fmt.Fprintln(os.Stderr, "error:", err)
	return 1
}

func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, service.ErrInvalidSelection
	}
	return n, nil
}

func parseGold(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}
