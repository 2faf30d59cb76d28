package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2card <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render Markdown notes as 238x332 card images.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  copy       Render a note and copy the card to the clipboard")
	fmt.Fprintln(w, "  export     Render a note, save the card, and link it from the note")
	fmt.Fprintln(w, "  render-all Export a card for every note with the card tag")
	fmt.Fprintln(w, "  number     Number the tagged notes that have no number yet")
	fmt.Fprintln(w, "  tag        Show or set the card tag")
	fmt.Fprintln(w, "  preview    Serve a live preview of the active note")
	fmt.Fprintln(w, "  mcp        Serve the card tools over MCP (stdio)")
	fmt.Fprintln(w, "  doctor     Check the browser, vault, and system")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2card help <command>' for details on a specific command.")
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Vault:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (default md2card)")
	fmt.Fprintln(w, "      --vault <dir>         Vault folder (default: config or current directory)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --style <s>           Style name, CSS file path, or inline CSS")
	fmt.Fprintln(w, "      --css <s>             Extra CSS appended to every card")
	fmt.Fprintln(w, "      --template <name>     Card template name")
	fmt.Fprintln(w, "      --asset-path <dir>    Folder with styles/ and templates/")
	fmt.Fprintln(w, "  -t, --timeout <d>         Render timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "  -d, --density <n>         Pixels per CSS pixel, 1-8 (default 4)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Batch selection:")
	fmt.Fprintln(w, "      --tag <s>             Card tag (default: config cardTag or \"card\")")
	fmt.Fprintln(w, "      --include <glob>      Only notes matching these globs (repeatable)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging")
	fmt.Fprintln(w, "      --log-level <s>       debug, info, warn, error, disabled")
	fmt.Fprintln(w, "      --log-json            Log as JSON")
}

// printCommandUsage prints usage for one command.
func printCommandUsage(w io.Writer, name string) {
	switch name {
	case cmdCopy:
		fmt.Fprintln(w, "Usage: md2card copy <note> [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Render a note at clipboard density and copy the card.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "      --stdout              Write the PNG to stdout instead")
		fmt.Fprintln(w, "      --html-only           Write the card HTML to stdout, skip the browser")
		fmt.Fprintln(w)
		printCommonFlags(w)
	case cmdExport:
		fmt.Fprintln(w, "Usage: md2card export <note> [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Render a note, save it as cf-<type>-<number>-<title>.png in the")
		fmt.Fprintln(w, "attachment folder, and set the note's image property to the card.")
		fmt.Fprintln(w)
		printCommonFlags(w)
	case cmdRenderAll:
		fmt.Fprintln(w, "Usage: md2card render-all [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Export a card for every note with the card tag, one at a time.")
		fmt.Fprintln(w, "The templates folder is skipped. A failing note does not stop the batch.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "      --json                Print the report as JSON")
		fmt.Fprintln(w)
		printCommonFlags(w)
	case cmdNumber:
		fmt.Fprintln(w, "Usage: md2card number [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Give every tagged note without a number the next free number,")
		fmt.Fprintln(w, "in alphabetical path order.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "      --json                Print the report as JSON")
		fmt.Fprintln(w)
		printCommonFlags(w)
	case cmdTag:
		fmt.Fprintln(w, "Usage: md2card tag [value] [--config <name>]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show the card tag, or set it and save the config file.")
	case cmdPreview:
		fmt.Fprintln(w, "Usage: md2card preview [note] [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Serve a live card preview that reloads when the note changes.")
		fmt.Fprintln(w, "POST /active {\"path\": \"...\"} switches the previewed note.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "      --host <addr>         Listen address (default 127.0.0.1)")
		fmt.Fprintln(w, "  -p, --port <n>            Listen port (default 7348)")
		fmt.Fprintln(w)
		printCommonFlags(w)
	case cmdMCP:
		fmt.Fprintln(w, "Usage: md2card mcp [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Serve the card tools to an MCP client over stdin/stdout.")
		fmt.Fprintln(w)
		printCommonFlags(w)
	case cmdDoctor:
		fmt.Fprintln(w, "Usage: md2card doctor [--vault <dir>] [--json]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Check that Chrome, the vault, and the system are ready.")
	case cmdVersion:
		fmt.Fprintln(w, "Usage: md2card version")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show version information.")
	case cmdHelp:
		fmt.Fprintln(w, "Usage: md2card help [command]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show help for a command.")
	}
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}
	if !isCommand(args[0]) {
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	printCommandUsage(env.Stdout, args[0])
	return ExitSuccess
}
