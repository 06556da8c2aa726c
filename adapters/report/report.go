// Package report renders a run manifest as a Markdown or HTML summary.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/run"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal/errors"
)

// Writer is a ports.ReportSink. Paths ending in .html or .htm get a complete
// HTML page; anything else gets the Markdown source.
type Writer struct {
	path string
}

// NewWriter creates a report writer for path
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// WriteReport renders and writes the report
func (w *Writer) WriteReport(ctx context.Context, manifest *run.Manifest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	md := Markdown(manifest)
	out := md
	switch strings.ToLower(filepath.Ext(w.path)) {
	case ".html", ".htm":
		out = ToHTML(md, "graphfeat run "+manifest.RunID.String())
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return errors.IOError("create directory", filepath.Dir(w.path), err)
	}
	if err := os.WriteFile(w.path, out, 0o644); err != nil {
		return errors.IOError("write report", w.path, err)
	}
	return nil
}

// Markdown renders the manifest as a Markdown document
func Markdown(m *run.Manifest) []byte {
	var b strings.Builder
	s := m.Summary

	fmt.Fprintf(&b, "# Graph feature extraction run\n\n")
	fmt.Fprintf(&b, "- **Run:** `%s`\n", m.RunID)
	fmt.Fprintf(&b, "- **Started:** %s\n", m.CreatedAt.Time().Format("2006-01-02 15:04:05 MST"))
	if !m.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "- **Duration:** %s\n", m.FinishedAt.Time().Sub(m.CreatedAt.Time()).Round(time.Millisecond))
	}
	fmt.Fprintf(&b, "- **Labels:** `%s`\n", m.Inputs.Labels)
	fmt.Fprintf(&b, "- **Matrices:** `%s`\n", m.Inputs.Matrices)
	if m.Output != "" {
		size := ""
		if info, err := os.Stat(m.Output); err == nil {
			size = " (" + humanize.Bytes(uint64(info.Size())) + ")"
		}
		fmt.Fprintf(&b, "- **Output:** `%s`%s\n", m.Output, size)
	}
	fmt.Fprintf(&b, "- **Fingerprint:** `%s`\n\n", m.Fingerprint.Fingerprint)

	fmt.Fprintf(&b, "## Subjects\n\n")
	fmt.Fprintf(&b, "| outcome | count |\n|---|---:|\n")
	fmt.Fprintf(&b, "| used | %s |\n", humanize.Comma(int64(s.Used)))
	fmt.Fprintf(&b, "| skipped, no label | %s |\n", humanize.Comma(int64(s.SkippedNoLabel)))
	fmt.Fprintf(&b, "| skipped, error | %s |\n\n", humanize.Comma(int64(s.SkippedError)))

	fmt.Fprintf(&b, "## Table\n\n")
	fmt.Fprintf(&b, "- nodes per matrix: %d\n", s.Nodes)
	fmt.Fprintf(&b, "- edge columns per subject: %s\n", humanize.Comma(int64(s.EdgesPerSubject)))
	fmt.Fprintf(&b, "- total columns: %s\n\n", humanize.Comma(int64(s.Columns)))

	if len(m.Profile) > 0 {
		fmt.Fprintf(&b, "## Global features (before z-scoring)\n\n")
		fmt.Fprintf(&b, "| feature | n | undefined | mean | std | min | median | max | outliers |\n")
		fmt.Fprintf(&b, "|---|---:|---:|---:|---:|---:|---:|---:|---:|\n")
		for _, p := range m.Profile {
			flag := ""
			if p.Constant {
				flag = " (constant)"
			}
			fmt.Fprintf(&b, "| %s%s | %d | %d | %.4g | %.4g | %.4g | %.4g | %.4g | %d |\n",
				p.Name, flag, p.Count, p.Undefined, p.Mean, p.StdDev, p.Min, p.Median, p.Max, p.Outliers)
		}
		b.WriteString("\n")
	}

	if len(m.Settings) > 0 {
		keys := make([]string, 0, len(m.Settings))
		for k := range m.Settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintf(&b, "## Settings\n\n| key | value |\n|---|---|\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "| %s | `%s` |\n", k, m.Settings[k])
		}
		b.WriteString("\n")
	}

	if len(s.Skips) > 0 {
		fmt.Fprintf(&b, "## Skipped subjects\n\n| subject | file | reason | detail |\n|---|---|---|---|\n")
		for _, sk := range s.Skips {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", sk.Subject, sk.Source, sk.Reason, escapeCell(sk.Detail))
		}
		b.WriteString("\n")
	}

	return []byte(b.String())
}

// ToHTML converts Markdown to a complete HTML page
func ToHTML(md []byte, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(md)

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: title,
	})
	return markdown.Render(doc, renderer)
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
