package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/trac2md/internal/config"
	"git.home.luguber.info/inful/trac2md/internal/convert"
	"git.home.luguber.info/inful/trac2md/internal/foundation/errors"
	"git.home.luguber.info/inful/trac2md/internal/migrate"
)

// VisualizeCmd implements the 'visualize' command.
type VisualizeCmd struct {
	Format string `short:"f" help:"Output format: text, mermaid, dot, json" default:"text" enum:"text,mermaid,dot,json"`
	Output string `short:"o" help:"Output file path (optional, prints to stdout if not specified)" type:"path"`
	List   bool   `short:"l" help:"List available formats and exit"`
}

// Run executes the visualize command.
func (cmd *VisualizeCmd) Run(g *Global, _ *CLI) error {
	return RunVisualize(g.Stdout, cmd.Format, cmd.Output, cmd.List, g.Logger)
}

// RunVisualize renders the default pipeline in format to file, or to out
// when file is empty.
func RunVisualize(out io.Writer, format, file string, list bool, logger *slog.Logger) error {
	if list {
		_, _ = fmt.Fprintln(out, "Available visualization formats:")
		for _, f := range convert.SupportedFormats() {
			_, _ = fmt.Fprintf(out, "  %s\n", f)
		}
		return nil
	}

	opts := migrate.PipelineOptions(config.Default(), nil, logger)
	rendered, err := convert.VisualizePipeline(convert.Transforms(opts), convert.VisualizationFormat(format))
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "failed to visualize pipeline").Build()
	}

	if file == "" {
		_, err := io.WriteString(out, rendered)
		return err
	}
	if err := os.WriteFile(file, []byte(rendered), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write visualization").
			WithContext("path", file).
			Build()
	}
	logger.Info("Pipeline visualization written", "file", file, "format", format)
	return nil
}
