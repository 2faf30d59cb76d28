package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/alnah/go-md2card/internal/cards"
	"github.com/alnah/go-md2card/internal/hints"
	"github.com/alnah/go-md2card/internal/mcpserver"
	"github.com/alnah/go-md2card/internal/preview"
	"github.com/alnah/go-md2card/internal/sink"
)

// ErrBatchIncomplete means at least one note of a batch failed.
var ErrBatchIncomplete = errors.New("batch finished with failures")

// runVaultCommand runs a command that needs the vault and the renderer.
func runVaultCommand(ctx context.Context, name string, args []string, f *commandFlags, env *Environment) error {
	a, err := newApp(f, env)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			a.log.Warn("closing renderer failed", "error", cerr)
		}
	}()

	switch name {
	case cmdCopy:
		return runCopy(ctx, a, args, f.copy, env)
	case cmdExport:
		return runExport(ctx, a, args, env)
	case cmdRenderAll:
		return runRenderAll(ctx, a, args, f.json, env)
	case cmdNumber:
		return runNumber(ctx, a, args, f.json, env)
	case cmdPreview:
		return runPreview(ctx, a, args, env)
	case cmdMCP:
		return runMCP(a, args, env)
	}
	return fmt.Errorf("%w: %q", cards.ErrUnknownCommand, name)
}

// noteArg returns the action context for an optional note argument.
func noteArg(args []string) (cards.ActionContext, error) {
	switch len(args) {
	case 0:
		return cards.ActionContext{}, nil
	case 1:
		return cards.ActionContext{Active: args[0]}, nil
	default:
		return cards.ActionContext{}, fmt.Errorf("%w: expected one note, got %d", errUsage, len(args))
	}
}

func noArgs(name string, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: %s takes no arguments", errUsage, name)
	}
	return nil
}

func runCopy(ctx context.Context, a *app, args []string, f copyFlags, env *Environment) error {
	ac, err := noteArg(args)
	if err != nil {
		return err
	}

	var out cards.ImageSink = sink.Writer{W: env.Stdout}
	if !f.stdout {
		out = env.NewClipboard()
	}
	svc, err := a.service(cards.WithSink(out), cards.WithNotifier(stderrNotifier{w: env.Stderr, quiet: a.quiet}))
	if err != nil {
		return err
	}

	if f.htmlOnly {
		if ac.Active == "" {
			return cards.ErrNoActiveDocument
		}
		res, err := svc.Preview(ctx, ac.Active, true)
		if err != nil {
			return err
		}
		_, err = env.Stdout.Write(res.HTML)
		return err
	}

	_, err = svc.Run(ctx, cards.CommandCopy, ac, nil)
	return err
}

func runExport(ctx context.Context, a *app, args []string, env *Environment) error {
	ac, err := noteArg(args)
	if err != nil {
		return err
	}
	svc, err := a.service(cards.WithNotifier(stderrNotifier{w: env.Stderr, quiet: a.quiet}))
	if err != nil {
		return err
	}
	res, err := svc.Run(ctx, cards.CommandExport, ac, nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, res.Export.Asset)
	return nil
}

func runRenderAll(ctx context.Context, a *app, args []string, asJSON bool, env *Environment) error {
	if err := noArgs(cmdRenderAll, args); err != nil {
		return err
	}
	svc, err := a.service(cards.WithNotifier(stderrNotifier{w: env.Stderr, quiet: a.quiet}))
	if err != nil {
		return err
	}

	progress := func(p cards.Progress) {
		if a.quiet {
			return
		}
		if p.Err != nil {
			fmt.Fprintf(env.Stderr, "[%d/%d] %s: %v\n", p.Index, p.Total, p.Note, p.Err)
			return
		}
		fmt.Fprintf(env.Stderr, "[%d/%d] %s -> %s\n", p.Index, p.Total, p.Note, p.Asset)
	}

	res, err := svc.Run(ctx, cards.CommandRenderAll, cards.ActionContext{}, progress)
	if errors.Is(err, cards.ErrBatchLocked) {
		return fmt.Errorf("%w%s", err, hints.ForBatchLocked(svc.LockPath()))
	}
	if err != nil {
		return err
	}
	if asJSON {
		if err := writeJSON(env, res.Batch); err != nil {
			return err
		}
	}
	if len(res.Batch.Failed) > 0 {
		return fmt.Errorf("%w: %d of %d cards failed", ErrBatchIncomplete,
			len(res.Batch.Failed), len(res.Batch.Failed)+len(res.Batch.Exported)+res.Batch.Skipped)
	}
	return ctx.Err()
}

func runNumber(ctx context.Context, a *app, args []string, asJSON bool, env *Environment) error {
	if err := noArgs(cmdNumber, args); err != nil {
		return err
	}
	svc, err := a.service(cards.WithNotifier(stderrNotifier{w: env.Stderr, quiet: a.quiet}))
	if err != nil {
		return err
	}

	res, err := svc.Run(ctx, cards.CommandNumber, cards.ActionContext{}, nil)
	if errors.Is(err, cards.ErrBatchLocked) {
		return fmt.Errorf("%w%s", err, hints.ForBatchLocked(svc.LockPath()))
	}
	if err != nil {
		return err
	}

	if asJSON {
		if err := writeJSON(env, res.Numbers); err != nil {
			return err
		}
	} else {
		for _, as := range res.Numbers.Assigned {
			fmt.Fprintf(env.Stdout, "%s\t%d\n", as.Note, as.Number)
		}
	}
	if len(res.Numbers.Failed) > 0 {
		return fmt.Errorf("%w: %d notes could not be numbered", ErrBatchIncomplete, len(res.Numbers.Failed))
	}
	return nil
}

func runPreview(ctx context.Context, a *app, args []string, env *Environment) error {
	ac, err := noteArg(args)
	if err != nil {
		return err
	}

	broker := preview.NewBroker()
	tracker := &cards.Tracker{}
	if ac.Active != "" {
		tracker.SetActive(ac.Active)
	}
	svc, err := a.service(cards.WithSink(env.NewClipboard()), cards.WithNotifier(preview.Notifier(broker)))
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(a.cfg.Preview.Host, strconv.Itoa(a.cfg.Preview.Port))
	if !a.quiet {
		fmt.Fprintf(env.Stderr, "Preview at http://%s\n", addr)
	}
	return preview.NewServer(svc, tracker, broker, a.log).Run(ctx, addr)
}

func runMCP(a *app, args []string, env *Environment) error {
	if err := noArgs(cmdMCP, args); err != nil {
		return err
	}

	// stdout carries the protocol; notices go to the log.
	notifier := cards.NotifierFunc(func(n cards.Notice) {
		a.log.Info(n.Message, "action", n.Action, "level", string(n.Level), "note", n.Path)
	})
	svc, err := a.service(cards.WithSink(env.NewClipboard()), cards.WithNotifier(notifier))
	if err != nil {
		return err
	}
	return mcpserver.New(svc, &cards.Tracker{}, Version).ServeStdio()
}

func writeJSON(env *Environment, v any) error {
	enc := json.NewEncoder(env.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
