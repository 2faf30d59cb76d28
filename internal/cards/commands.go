package cards

import (
	"context"
	"fmt"
)

// Command names shared by the CLI, the preview server and the MCP server.
const (
	CommandCopy      = "copy"
	CommandExport    = "export"
	CommandRenderAll = "render-all"
	CommandNumber    = "number"
)

// CommandNames lists the commands in display order.
func CommandNames() []string {
	return []string{CommandCopy, CommandExport, CommandRenderAll, CommandNumber}
}

// Result is the outcome of a named command.
type Result struct {
	Command string        `json:"command"`
	Message string        `json:"message"`
	Export  *Exported     `json:"export,omitempty"`
	Batch   *BatchReport  `json:"batch,omitempty"`
	Numbers *NumberReport `json:"numbers,omitempty"`
}

// Run executes the named command. Interactive commands act on ac; batch
// commands discover their notes first.
func (s *Service) Run(ctx context.Context, name string, ac ActionContext, progress ProgressFunc) (Result, error) {
	res := Result{Command: name}

	switch name {
	case CommandCopy:
		if err := s.Copy(ctx, ac); err != nil {
			return res, err
		}
		res.Message = "card copied"

	case CommandExport:
		out, err := s.Export(ctx, ac)
		if err != nil {
			return res, err
		}
		res.Export = &out
		res.Message = "card saved to " + out.Asset

	case CommandRenderAll:
		docs, err := s.Discover(ctx)
		if err != nil {
			return res, s.fail(name, "", err)
		}
		report, err := s.RenderAll(ctx, docs, progress)
		res.Batch = &report
		if err != nil {
			return res, s.fail(name, "", err)
		}
		res.Message = fmt.Sprintf("rendered %d of %d cards", len(report.Exported), len(docs))
		s.notifyBatch(name, res.Message, len(report.Failed))

	case CommandNumber:
		docs, err := s.Discover(ctx)
		if err != nil {
			return res, s.fail(name, "", err)
		}
		report, err := s.AssignNumbers(ctx, docs)
		res.Numbers = &report
		if err != nil {
			return res, s.fail(name, "", err)
		}
		res.Message = fmt.Sprintf("numbered %d cards", len(report.Assigned))
		s.notifyBatch(name, res.Message, len(report.Failed))

	default:
		return res, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return res, nil
}

func (s *Service) notifyBatch(action, msg string, failed int) {
	n := Notice{Level: LevelInfo, Action: action, Message: msg}
	if failed > 0 {
		n.Level = LevelError
		n.Message = fmt.Sprintf("%s, %d failed", msg, failed)
	}
	s.notifier.Notify(n)
}
