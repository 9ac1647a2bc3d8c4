package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"io"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// SubscriptionReceipt is sent after a premium payment is recorded.
const SubscriptionReceipt = "subscription_receipt"

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() {
			return fallback
		}
		if rv.IsZero() {
			return fallback
		}
		return value
	}
}

func baseFuncs() map[string]any {
	return map[string]any{
		"formatTime": func(t time.Time, layout string) string { return t.UTC().Format(layout) },
		"upper":      strings.ToUpper,
		"default":    defaultFn,
	}
}

var (
	htmlFuncMap = htmpl.FuncMap(baseFuncs())
	textFuncMap = texttpl.FuncMap(baseFuncs())
)

// Rendered is one email in its three parts.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

type executor interface {
	Execute(w io.Writer, data any) error
}

func parse(filename string, isHTML bool) (executor, error) {
	if isHTML {
		return htmpl.New(filename).Funcs(htmlFuncMap).ParseFS(FS, filename)
	}
	return texttpl.New(filename).Funcs(textFuncMap).ParseFS(FS, filename)
}

func renderFile(filename string, isHTML bool, data any) (string, error) {
	tpl, err := parse(filename, isHTML)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", filename, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", filename, err)
	}
	return buf.String(), nil
}

// Render renders <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
func Render(name string, data any) (Rendered, error) {
	var out Rendered
	parts := []struct {
		suffix string
		html   bool
		dst    *string
	}{
		{".subject.tmpl", false, &out.Subject},
		{".text.tmpl", false, &out.Text},
		{".html.tmpl", true, &out.HTML},
	}
	for _, p := range parts {
		s, err := renderFile(name+p.suffix, p.html, data)
		if err != nil {
			return Rendered{}, err
		}
		*p.dst = s
	}
	out.Subject = strings.TrimSpace(out.Subject)
	return out, nil
}
