package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/patura/shelterd/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"celsius": func(v float64) string {
		return fmt.Sprintf("%.1f°C", v)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Cat Shelter</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.warn { color: orange; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Cat Shelter — {{.Config.DeviceID}}</h1>

<h2>Mode</h2>
<table>
<tr><th>Operating mode</th><td class="{{if .SafeMode}}warn{{end}}">{{.Mode}}</td></tr>
<tr><th>Boot attempts</th><td>{{.BootAttempts}}</td></tr>
</table>

<h2>Shelter</h2>
<table>
<tr><th>Cat present</th><td class="{{if .Presence.Present}}on{{else}}off{{end}}">{{if .Presence.Present}}yes{{else}}no{{end}}</td></tr>
<tr><th>Blanket</th><td class="{{if .Blanket.On}}on{{else}}off{{end}}">{{if .Blanket.On}}ON{{else}}OFF{{end}}{{if .Blanket.Override}} (manual){{end}}</td></tr>
<tr><th>Temperature</th><td>{{celsius .Environment.EffectiveTemp}}{{if .Environment.UsingFallback}} <span class="warn">(fallback)</span>{{end}}</td></tr>
<tr><th>Humidity</th><td>{{printf "%.0f%%" .Environment.RawHumidity}}</td></tr>
<tr><th>Sensor</th><td class="{{if .Environment.SensorHealthy}}connected{{else}}disconnected{{end}}">{{if .Environment.SensorHealthy}}healthy{{else}}faulted{{end}}</td></tr>
</table>

<h2>Camera</h2>
<table>
<tr><th>Camera</th><td class="{{if .CameraOK}}connected{{else}}disconnected{{end}}">{{if .CameraOK}}available{{else}}unavailable{{end}}</td></tr>
{{if not .LastCapture.Time.IsZero}}<tr><th>Last photo</th><td>{{.LastCapture.Time.UTC.Format "2006-01-02T15:04:05Z"}} ({{.LastCapture.Reason}}{{if not .LastCapture.Success}}, failed{{end}})</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Sample</th><td>{{.Config.SampleMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/status.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
