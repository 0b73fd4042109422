package convert

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"

	"cstyle/config"
	"cstyle/state"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Name       string
	Scope      string
	SourceFile string
	Date       string
}

func expandTemplate(name config.TemplateFieldName, field, src, scope string, env *state.LocalEnv) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:    string(name),
		Name:       sourceStem(src, env.Cfg.Styling.SourceExtensions),
		Scope:      strings.TrimPrefix(scope, "."),
		SourceFile: src,
		Date:       time.Now().Format("2006-01-02"),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
