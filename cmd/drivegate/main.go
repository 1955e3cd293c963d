// drivegate serves a read-only, password-protected view of a Google Drive
// folder tree. Listings require a session cookie; files are streamed
// through short-lived signed download links.
//
// Configuration comes from config.yml, .env and the environment, in that
// order of increasing precedence. See config.yml in this directory.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/kbukum/drivegate/auth/password"
	"github.com/kbukum/drivegate/bootstrap"
	"github.com/kbukum/drivegate/config"
	"github.com/kbukum/drivegate/drive"
	"github.com/kbukum/drivegate/gateway"
	"github.com/kbukum/drivegate/observability"
	"github.com/kbukum/drivegate/server"
	"github.com/kbukum/drivegate/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	configFile   string
	envFile      string
	showVersion  bool
	help         bool
	hashPassword bool
	genSecret    bool
}

func parseFlags(args []string, out io.Writer) (*flags, *pflag.FlagSet, error) {
	f := &flags{}
	fs := pflag.NewFlagSet("drivegate", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVarP(&f.configFile, "config", "c", "", "path to config.yml (default: search ./ and ./config/)")
	fs.StringVar(&f.envFile, "env-file", "", "path to a .env file (default: search ./ and ./config/)")
	fs.BoolVar(&f.showVersion, "version", false, "print version and exit")
	fs.BoolVar(&f.hashPassword, "hash-password", false, "read a password from stdin, print its hash for auth.password_hash and exit")
	fs.BoolVar(&f.genSecret, "gen-secret", false, "print a random secret suitable for auth.*_secret and exit")
	fs.BoolVarP(&f.help, "help", "h", false, "show help")
	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	return f, fs, nil
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	f, fs, err := parseFlags(args, stdout)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stdout, fs)
			return nil
		}
		return err
	}

	switch {
	case f.help:
		printHelp(stdout, fs)
		return nil
	case f.showVersion:
		fmt.Fprintf(stdout, "drivegate %s\n", version.Short())
		return nil
	case f.genSecret:
		secret, err := password.GenerateSecret(32)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, secret)
		return nil
	}

	cfg, err := gateway.Load(loaderOptions(f)...)
	if err != nil {
		return err
	}

	if f.hashPassword {
		return hashPassword(cfg, stdin, stdout)
	}

	return serve(context.Background(), cfg)
}

func loaderOptions(f *flags) []config.LoaderOption {
	var opts []config.LoaderOption
	if f.configFile != "" {
		opts = append(opts, config.WithConfigFile(f.configFile))
	}
	if f.envFile != "" {
		opts = append(opts, config.WithEnvFile(f.envFile))
	}
	return opts
}

func hashPassword(cfg *gateway.Config, stdin io.Reader, stdout io.Writer) error {
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read password: %w", err)
	}
	plain := strings.TrimRight(line, "\r\n")
	if plain == "" {
		return errors.New("empty password")
	}
	hash, err := password.NewHasher(cfg.Auth.Hashing).Hash(plain)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, hash)
	return nil
}

func serve(ctx context.Context, cfg *gateway.Config) error {
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}

	gw, err := gateway.New(cfg)
	if err != nil {
		return err
	}
	srv := server.New(cfg.Server, app.Logger)

	// Registration order is start order; observability stops last and the
	// listener stops first.
	if err := app.RegisterComponent(observability.NewComponent(cfg.Observability)); err != nil {
		return err
	}
	if err := app.RegisterComponent(drive.NewComponent(gw.Drive())); err != nil {
		return err
	}
	if err := app.RegisterComponent(gw.Component()); err != nil {
		return err
	}
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return err
	}

	srv.ApplyDefaults(cfg.Name, app.Components, observability.DefaultMetrics())
	gw.RegisterRoutes(srv.GinEngine())
	for _, r := range srv.GinEngine().Routes() {
		app.Summary.TrackRoute(r.Method, r.Path)
	}
	for _, m := range cfg.Missing() {
		app.Summary.AddNote("not configured: " + m)
	}
	if desc := cfg.Auth.Describe(); desc != "" {
		app.Summary.AddNote(desc)
	}

	return app.Run(ctx)
}

func printHelp(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, `drivegate %s

Serve a Google Drive folder tree behind a shared password.

Usage:
  drivegate [flags]

Flags:
%s
Environment:
  Every config key can be set as an upper-case variable, e.g.
  AUTH_SESSION_SECRET or DRIVE_ROOT_ID. CLIENT_ID, CLIENT_SECRET,
  REFRESH_TOKEN, ROOT_FOLDER_ID, SECRET_KEY, JWT_SECRET and
  ACCESS_PASSWORD are also accepted.
`, version.Short(), fs.FlagUsages())
}
