package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/lbview/internal/corpus"
	"github.com/verte-zerg/lbview/internal/export"
)

var errNotConfirmed = errors.New("refusing to export without confirmation on a non-interactive terminal (use --yes)")

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all filtered results as CSV",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportOut, "out", "", "output directory (default: configured export dir)")
	cmd.Flags().BoolVar(&exportYes, "yes", false, "skip the confirmation prompt")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	dir := s.exportDir
	if strings.TrimSpace(exportOut) != "" {
		dir = exportOut
	}

	if !exportYes {
		prompt := fmt.Sprintf("Export all %d pages with the current filters and sorting to %s? [y/N] ", s.pages, dir)
		ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), prompt)
		if err != nil {
			return err
		}
		if !ok {
			logErrln("Export cancelled.")
			return nil
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	agg := newAggregator(s)
	art, err := export.New(agg).Build(ctx, s.selection.Query(), time.Now())
	if err != nil {
		return err
	}
	path, err := export.Save(dir, art)
	if err != nil {
		return err
	}
	if len(art.FailedPages) > 0 {
		logErrln(corpus.Result{FailedPages: art.FailedPages}.Warning())
	}
	logErrf("Wrote %d rows to %s\n", art.Rows, path)
	return nil
}

// confirm asks a yes/no question. Only "y" or "yes" confirms.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return false, errNotConfirmed
	}
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
