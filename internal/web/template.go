package web

import (
	"html/template"
	"io"
	"strconv"

	"github.com/sweeney/drpiro/internal/shell"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"seconds": func(s float64) string {
		return strconv.FormatFloat(s, 'f', -1, 64)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{if .NoticeVisible}}<meta http-equiv="refresh" content="1">{{end}}
<title>DR Piro</title>
<style>
body { font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 4em 1em 1em; }
header { position: fixed; top: 0; left: 0; right: 0; background: #0d6efd; color: #fff; padding: 0.5em 1em; display: flex; justify-content: space-between; align-items: center; }
header form { margin: 0; }
header button { background: none; border: 1px solid #fff; color: #fff; padding: 4px 10px; cursor: pointer; }
.launcher { display: flex; flex-wrap: wrap; align-items: center; gap: 1em; margin-bottom: 0.8em; }
.launcher .name { width: 8em; }
.launcher form { margin: 0; }
button.fire { background: #dc3545; color: #fff; border: 0; padding: 6px 18px; cursor: pointer; }
button.fire:disabled { background: #6c757d; cursor: default; }
.alert { width: 100%; padding: 6px 10px; border-radius: 4px; }
.notice { background: #e2e3e5; }
.warning { background: #fff3cd; }
.panel { border: 1px solid #ccc; border-radius: 6px; padding: 1em; margin-bottom: 2em; }
.panel h2 { margin-top: 0; font-size: 1.2em; display: flex; justify-content: space-between; }
.panel form { margin-bottom: 0.8em; }
.panel .disable button { width: 100%; }
.empty { color: #888; }
</style>
</head>
<body>
<header>
<strong>DR Piro</strong>
<form method="post" action="/config/toggle"><button type="submit" title="Settings">&#9881; Settings</button></form>
</header>

{{if .Panel.Shown}}
<section class="panel" id="config">
<h2>Configs <form method="post" action="/config/close"><button type="submit" title="Close">&times;</button></form></h2>
{{if .Panel.Error}}<div class="alert warning">{{.Panel.Error}}</div>{{end}}
<form method="post" action="/config/duration">
<label>Duration <input type="number" step="any" name="duration" placeholder="{{seconds .Config.Duration}}"></label>
<button type="submit">Save</button>
</form>
<form method="post" action="/config/enable">
<label>Pin <input type="number" name="pin"></label>
<button type="submit">Enable</button>
</form>
{{range .DisableButtons}}
<form class="disable" method="post" action="/config/pins/{{.Pin}}/disable"><button type="submit">{{.Text}}</button></form>
{{end}}
</section>
{{end}}

<main>
{{range .Launchers}}
<div class="launcher" id="launcher-{{.Label}}">
<span class="name">Launcher {{.Label}}</span>
<form method="post" action="/launchers/{{.Label}}/fire"><button class="fire" type="submit"{{if .Disabled}} disabled{{end}}>Fire</button></form>
{{if .Clicked}}<div class="alert notice">Launching {{.Label}}</div>{{end}}
{{if .Error}}<div class="alert warning">{{.Error}}</div>{{end}}
</div>
{{else}}
<p class="empty">No launchers configured.</p>
{{end}}
</main>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, v shell.View) error {
	return indexTmpl.Execute(w, v)
}
