package report

import (
	"html/template"
	"io"
)

var indexTemplate = template.Must(template.New("index").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Tag}}: classifier comparison</title></head>
<body>
<h1>{{.Tag}}: classifier comparison</h1>
<p>Run {{.RunID}}</p>
{{- if .Comments}}
<ul>
{{- range .Comments}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
{{- range $i, $f := .Figures}}
<h2>Fig. {{inc $i}}: {{$f.Title}}</h2>
<a href="{{$f.File}}"><img src="{{if $f.Thumb}}{{$f.Thumb}}{{else}}{{$f.File}}{{end}}" alt="{{$f.Name}}"></a>
{{- end}}
</body>
</html>
`))

type indexPage struct {
	Tag      string
	RunID    string
	Comments []string
	Figures  []Figure
}

// RenderIndex writes the HTML index of figs.
func RenderIndex(out io.Writer, tag, runID string, figs []Figure, comments []string) error {
	return indexTemplate.Execute(out, indexPage{Tag: tag, RunID: runID, Comments: comments, Figures: figs})
}

// WriteIndex writes <tag>.html referencing every figure.
func (w *Writer) WriteIndex(figs []Figure, comments []string) (string, error) {
	path := w.Path(".html")
	return path, create(path, func(out io.Writer) error {
		return RenderIndex(out, w.Tag, w.RunID, figs, comments)
	})
}
