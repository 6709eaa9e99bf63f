package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"mediaextract/internal/media"
	"mediaextract/internal/pipeline"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const statusLabelWidth = 18

func writeJSON(cmd *cobra.Command, value any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	var status string
	switch kind {
	case statusOK:
		status = "OK"
	case statusWarn:
		status = "WARN"
	case statusError:
		status = "ERROR"
	default:
		status = "INFO"
	}
	if message != "" {
		status = fmt.Sprintf("[%s] %s", status, message)
	} else {
		status = fmt.Sprintf("[%s]", status)
	}
	line := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", status)
	if !colorize {
		return line
	}
	switch kind {
	case statusOK:
		return ansiGreen + line + ansiReset
	case statusWarn:
		return ansiYellow + line + ansiReset
	case statusError:
		return ansiRed + line + ansiReset
	default:
		return ansiBlue + line + ansiReset
	}
}

func shouldColorize(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func renderRecords(records []media.Metadata) string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.Type.String(),
			rec.Title,
			rec.Year,
			rec.Author,
			rec.Description,
		})
	}
	return renderTable([]tableColumn{
		{header: "Type"},
		{header: "Title"},
		{header: "Year", align: alignRight},
		{header: "Author"},
		{header: "Description", maxWidth: descriptionWidth},
	}, rows)
}

func renderDiagnostics(diags []pipeline.Diagnostic) string {
	rows := make([][]string, 0, len(diags))
	for _, d := range diags {
		rows = append(rows, []string{
			fmt.Sprintf("%d", d.Index),
			d.Reason,
			strings.TrimSpace(string(d.Raw)),
		})
	}
	return renderTable([]tableColumn{
		{header: "#", align: alignRight},
		{header: "Reason"},
		{header: "Candidate", maxWidth: descriptionWidth},
	}, rows)
}
