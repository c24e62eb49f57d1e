package util

import (
	"bytes"
	"strings"
	"text/template"
)

// RenderTemplate executes text as a Go text/template against data. Prompt
// templates in the configuration use this to substitute the user task, agent
// count and collected responses. Text without template markers is returned
// unchanged without invoking the template engine.
func RenderTemplate(text string, data any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
