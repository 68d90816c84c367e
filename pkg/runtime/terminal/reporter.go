package terminal

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/evidence-atlas/pkg/services/config"
)

type CatalogEntry struct {
	Name        string
	Control     string
	Description string
	Existence   bool
}

type GroupCatalog struct {
	Group  string
	Checks []CatalogEntry
}

// Reporter prints plain listings (profiles, control catalog) to the console.
type Reporter struct {
	writer io.Writer
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) Catalog(groups []GroupCatalog) error {
	tmpl := `{{range .}}
=== {{.Group}} ===
{{range $i, $c := .Checks}}{{inc $i}}. {{$c.Name}} [{{$c.Control}}]{{if $c.Existence}} (existence required){{end}}
   {{$c.Description}}
{{end}}{{end}}`

	t, err := template.New("catalog").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, groups)
}

func (c *Reporter) Profiles(profiles []*config.Profile) error {
	tmpl := `{{if not .}}No AWS profiles found.
{{end}}{{range .}}- {{.Name}}{{if .Region}} ({{.Region}}){{end}}{{if .SSO}} [sso]{{end}}{{if .RoleARN}} [role {{.RoleARN}}]{{end}}
{{end}}`

	t, err := template.New("profiles").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, profiles)
}
