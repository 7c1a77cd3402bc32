package util

import (
	"strings"
	"text/template"
)

var templateFuncs = template.FuncMap{
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"join": func(sep string, items []string) string {
		return strings.Join(items, sep)
	},
	"quote": func(items []string) []string {
		quoted := make([]string, 0, len(items))
		for _, s := range items {
			quoted = append(quoted, "'"+s+"'")
		}
		return quoted
	},
}

// RenderTemplate executes text as a text/template against data. Missing map
// keys are errors. Text without "{{" is returned as is.
func RenderTemplate(text string, data any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := template.New("instruction").Funcs(templateFuncs).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
