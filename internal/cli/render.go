package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/1A7432/wcf-onebot/internal/domain"
)

const (
	formatPretty = "pretty"
	formatJSON   = "json"
	formatYAML   = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatPretty, formatJSON, formatYAML, "":
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json|yaml)", format)
	}
}

type prettyRenderer struct {
	w     io.Writer
	label lipgloss.Style
	fail  lipgloss.Style
}

// newPrettyRenderer binds styles to w, so nothing is colored unless w is a terminal.
func newPrettyRenderer(w io.Writer) *prettyRenderer {
	r := lipgloss.NewRenderer(w)
	return &prettyRenderer{
		w:     w,
		label: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

func (p *prettyRenderer) printProbe(res domain.ProbeResult) {
	fmt.Fprintln(p.w, p.label.Render(fmt.Sprintf("=== %s (%s) ===", res.Description, res.Path)))

	if res.Error != nil {
		fmt.Fprintln(p.w, p.fail.Render("请求失败: "+res.Error.Message))
		fmt.Fprintln(p.w)
		return
	}

	fmt.Fprintln(p.w, res.Body)
	fmt.Fprintf(p.w, "响应状态码: %d\n", res.StatusCode)
	fmt.Fprintln(p.w)
}

func printHeader(w io.Writer, baseURL string) {
	fmt.Fprintf(w, "WCF 地址: %s\n\n", baseURL)
}

func printSummary(w io.Writer, run domain.ProbeRun, reportID string) {
	fmt.Fprintf(w, "完成: %d 个探测, %d 个失败\n", len(run.Results), run.FailedCount())
	if reportID != "" {
		fmt.Fprintf(w, "报告: %s\n", reportID)
	}
}

func printRun(w io.Writer, run domain.ProbeRun, reportID string, format string) error {
	// Wrap so the report id travels with the run without changing the domain model.
	payload := struct {
		ReportID string          `json:"report_id,omitempty" yaml:"report_id,omitempty"`
		Run      domain.ProbeRun `json:"run" yaml:"run"`
	}{reportID, run}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(payload)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(payload); err != nil {
			return err
		}
		return enc.Close()
	default:
		return checkFormat(format)
	}
}
