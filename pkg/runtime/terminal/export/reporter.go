package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/evidence-atlas/pkg/services/orchestrator"
)

type TableConfig struct {
	CheckWidth   int
	ControlWidth int
	StateWidth   int
	VerdictWidth int
	NoteWidth    int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		CheckWidth:   34,
		ControlWidth: 12,
		StateWidth:   10,
		VerdictWidth: 14,
		NoteWidth:    48,
	}
}

type row struct {
	Check   string
	Control string
	State   string
	Verdict string
	Note    string
}

type view struct {
	Group  string
	Status string
	Error  string
	Rows   []row
	Passed int
	Total  int
}

// Reporter prints one table per group run.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) Handle(result orchestrator.GroupResult) error {
	funcMap := template.FuncMap{
		"formatRow": func(check, control, state, verdict, note string) string {
			return fmt.Sprintf("| %-*s | %-*s | %-*s | %-*s | %-*s |",
				c.config.CheckWidth, truncate(check, c.config.CheckWidth),
				c.config.ControlWidth, truncate(control, c.config.ControlWidth),
				c.config.StateWidth, state,
				c.config.VerdictWidth, verdict,
				c.config.NoteWidth, truncate(note, c.config.NoteWidth))
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.CheckWidth+2),
				strings.Repeat("-", c.config.ControlWidth+2),
				strings.Repeat("-", c.config.StateWidth+2),
				strings.Repeat("-", c.config.VerdictWidth+2),
				strings.Repeat("-", c.config.NoteWidth+2))
		},
	}

	tmpl := `
=== {{.Group}} ({{.Status}}) ===
Passed: {{.Passed}}/{{.Total}}
{{if .Error}}Error: {{.Error}}
{{end}}
{{separator}}
{{formatRow "Check" "Control" "State" "Verdict" "Note"}}
{{separator}}
{{range .Rows}}{{formatRow .Check .Control .State .Verdict .Note}}
{{end}}{{separator}}
`

	t, err := template.New("group").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, c.view(result))
}

func (c *Reporter) view(result orchestrator.GroupResult) view {
	v := view{Group: result.Group, Status: "persisted", Total: len(result.Checks)}
	if result.Failed() {
		v.Status = "failed"
		v.Error = result.Err.Error()
	}

	for _, status := range result.Checks {
		r := row{Check: status.Name, State: string(status.State)}
		switch status.State {
		case orchestrator.StateReported:
			report, _ := result.Bundle.Get(status.Name)
			r.Control = report.Control
			r.Note = report.Note
			r.Verdict = verdict(report.Passed, report.NonCompliant(), status.Outcome)
			if report.Passed {
				v.Passed++
			}
		case orchestrator.StateFailed:
			r.Verdict = "error"
			if status.Err != nil {
				r.Note = status.Err.Error()
			}
		default:
			r.Verdict = "not run"
		}
		v.Rows = append(v.Rows, r)
	}
	return v
}

func verdict(passed bool, nonCompliant int, outcome orchestrator.State) string {
	switch {
	case outcome == orchestrator.StateSkipped:
		return "skipped"
	case outcome == orchestrator.StateDenied:
		return "denied"
	case passed:
		return "pass"
	default:
		return fmt.Sprintf("fail (%d)", nonCompliant)
	}
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}
