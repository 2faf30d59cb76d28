package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	_ "github.com/joho/godotenv/autoload"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Command names.
const (
	cmdCopy      = "copy"
	cmdExport    = "export"
	cmdRenderAll = "render-all"
	cmdNumber    = "number"
	cmdTag       = "tag"
	cmdPreview   = "preview"
	cmdMCP       = "mcp"
	cmdDoctor    = "doctor"
	cmdVersion   = "version"
	cmdHelp      = "help"
)

var commands = []string{
	cmdCopy, cmdExport, cmdRenderAll, cmdNumber, cmdTag,
	cmdPreview, cmdMCP, cmdDoctor, cmdVersion, cmdHelp,
}

func isCommand(name string) bool {
	return slices.Contains(commands, name)
}

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, os.Args, DefaultEnv())
	stop()
	os.Exit(code)
}

// runMain dispatches args to a command and returns the exit code.
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	name, rest := args[1], args[2:]
	switch name {
	case cmdVersion, "--version":
		fmt.Fprintf(env.Stdout, "md2card %s\n", Version)
		return ExitSuccess
	case cmdHelp, "--help", "-h":
		return runHelp(rest, env)
	}
	if !isCommand(name) {
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", name)
		printUsage(env.Stderr)
		return ExitUsage
	}

	flags, positional, err := parseCommandFlags(name, rest, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		return reportError(env, err)
	}

	switch name {
	case cmdDoctor:
		return runDoctorCmd(flags, env)
	case cmdTag:
		err = runTag(positional, flags, env)
	default:
		err = runVaultCommand(ctx, name, positional, flags, env)
	}
	if err != nil {
		return reportError(env, err)
	}
	return ExitSuccess
}

// reportError prints err with a hint and returns its exit code.
func reportError(env *Environment, err error) int {
	fmt.Fprintf(env.Stderr, "md2card: %v%s\n", err, hintFor(err))
	return exitCodeFor(err)
}
