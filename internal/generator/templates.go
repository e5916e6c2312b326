package generator

// Single-column mobile-first layout: header, intro banner, what's inside,
// top-story cards, quick hits, sources footer.
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1.0">
  <title>Your Daily Brief — {{.DateLabel}}</title>
</head>
<body style="margin:0;padding:0;background:#f8f9fa;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Helvetica,Arial,sans-serif;">
<div style="max-width:620px;margin:0 auto;padding:24px 16px;">

  <div style="background:#1a1a2e;border-radius:10px 10px 0 0;padding:28px 32px;text-align:center;">
    <div style="font-size:11px;color:rgba(255,255,255,0.6);text-transform:uppercase;letter-spacing:2px;margin-bottom:6px;">Your Daily Brief</div>
    <h1 style="margin:0;font-size:26px;font-weight:800;color:#fff;">{{.DateLabel}}</h1>
    <div style="width:40px;height:3px;background:#e94560;margin:12px auto 0;border-radius:2px;"></div>
  </div>

  <div style="background:#16213e;border-radius:0 0 10px 10px;padding:18px 32px 22px;margin-bottom:20px;">
    <p style="margin:0;font-size:15px;line-height:1.7;color:rgba(255,255,255,0.85);">{{.Intro}}</p>
  </div>

{{if .InsideTitles}}  <div style="background:#ffffff;border-radius:8px;padding:16px 24px;margin-bottom:20px;border:1px solid #e8e8e8;">
    <p style="margin:0 0 8px;font-size:12px;font-weight:700;color:#e94560;text-transform:uppercase;letter-spacing:1px;">In Today's Brief</p>
    <ul style="margin:0;padding-left:18px;font-size:14px;color:#444;line-height:1.8;">
{{range .InsideTitles}}      <li><strong>{{.}}</strong></li>
{{end}}{{if .QuickHits}}      <li>+ {{len .QuickHits}} quick hits</li>
{{end}}    </ul>
  </div>
{{end}}
  <h3 style="margin:0 0 12px;font-size:13px;font-weight:700;color:#6c757d;text-transform:uppercase;letter-spacing:1px;padding-left:4px;">Top Stories</h3>
{{range .TopStories}}  <div style="background:#ffffff;border-radius:8px;padding:20px 24px;margin-bottom:16px;border:1px solid #e8e8e8;">
    <div style="margin-bottom:10px;">
      <span style="background:#eef2ff;color:#4361ee;font-size:11px;font-weight:700;padding:2px 8px;border-radius:12px;text-transform:uppercase;letter-spacing:0.5px;">{{.Category}}</span>
{{if .Date}}      <span style="color:#6c757d;font-size:12px;">{{.Date}}</span>
{{end}}    </div>
    <h2 style="margin:0 0 10px;font-size:18px;line-height:1.4;font-weight:700;">
      <a href="{{.URL}}" style="color:#1a1a2e;text-decoration:none;" target="_blank">{{.Title}}</a>
    </h2>
{{if .Hook}}    <p style="margin:0 0 10px;font-style:italic;color:#555;font-size:15px;">{{.Hook}}</p>
{{end}}{{if .Summary}}    <p style="margin:0 0 10px;font-size:15px;line-height:1.6;color:#222;">{{.Summary}}</p>
{{end}}{{if .Takeaway}}    <div style="background:#f0f4ff;border-left:4px solid #e94560;padding:10px 14px;margin:12px 0 0;border-radius:0 4px 4px 0;">
      <span style="font-size:12px;font-weight:700;text-transform:uppercase;color:#e94560;letter-spacing:0.5px;">Key Takeaway</span>
      <p style="margin:4px 0 0;font-size:14px;color:#333;line-height:1.5;">{{.Takeaway}}</p>
    </div>
{{end}}    <div style="margin-top:14px;font-size:13px;color:#6c757d;">
      Source: <a href="{{.URL}}" style="color:#e94560;text-decoration:none;" target="_blank">{{.Source}}</a>
      &nbsp;&middot;&nbsp;
      <a href="{{.URL}}" style="color:#6c757d;font-size:12px;" target="_blank">Read full article &rarr;</a>
    </div>
  </div>
{{end}}
{{if .QuickHits}}  <div style="background:#ffffff;border-radius:8px;padding:20px 24px;margin-bottom:16px;border:1px solid #e8e8e8;">
    <h3 style="margin:0 0 4px;font-size:13px;font-weight:700;color:#e94560;text-transform:uppercase;letter-spacing:1px;">Quick Hits</h3>
    <p style="margin:0 0 14px;font-size:12px;color:#6c757d;">Stories worth a click</p>
{{range .QuickHits}}    <div style="padding:12px 0;border-bottom:1px solid #eee;">
      <div style="font-size:11px;color:#6c757d;text-transform:uppercase;letter-spacing:0.5px;margin-bottom:4px;">{{.Category}}</div>
      <a href="{{.URL}}" style="font-size:15px;font-weight:600;color:#1a1a2e;text-decoration:none;line-height:1.4;" target="_blank">{{.Title}}</a>
{{if .Summary}}      <p style="margin:4px 0 0;font-size:13px;color:#555;line-height:1.4;">{{.Summary}}</p>
{{end}}      <div style="margin-top:4px;font-size:12px;color:#6c757d;">{{.Source}}</div>
    </div>
{{end}}  </div>
{{end}}
{{if .Sources}}  <div style="background:#ffffff;border-radius:8px;padding:16px 24px;margin-bottom:20px;border:1px solid #e8e8e8;">
    <p style="margin:0 0 8px;font-size:11px;font-weight:700;color:#6c757d;text-transform:uppercase;letter-spacing:1px;">Sources</p>
    <p style="margin:0;font-size:12px;color:#6c757d;line-height:1.8;">{{range $i, $s := .Sources}}{{if $i}} &middot; {{end}}{{$s}}{{end}}</p>
  </div>
{{end}}
  <div style="text-align:center;padding:20px 0 12px;">
    <p style="margin:0 0 6px;font-size:12px;color:#6c757d;">You're receiving this because you subscribed to My Daily Brief.</p>
    <p style="margin:0;font-size:12px;">
      <a href="{{.UnsubscribeURL}}" style="color:#6c757d;text-decoration:underline;">Unsubscribe</a>
    </p>
    <p style="margin:12px 0 0;font-size:11px;color:#bbb;">My Daily Brief &copy; {{.Year}}</p>
  </div>

</div>
</body>
</html>
`

// Plain-text fallback for clients that don't render HTML.
const plainTemplate = `MY DAILY BRIEF — {{.DateLabel}}
==================================================

{{.Intro}}

TOP STORIES
--------------------------------------------------
{{range .TopStories}}
{{.Index}}. {{.Title}}
   Source: {{.Source}} | {{.URL}}
{{- if .Hook}}
   Why it matters: {{.Hook}}
{{- end}}
{{- if .Summary}}
   {{.Summary}}
{{- end}}
{{- if .Takeaway}}
   Key takeaway: {{.Takeaway}}
{{- end}}
{{end}}
{{- if .QuickHits}}
QUICK HITS
--------------------------------------------------
{{range .QuickHits}}
- {{.Title}}
  {{.Source}} | {{.URL}}
{{end}}
{{- end}}
==================================================
My Daily Brief
Unsubscribe: {{.UnsubscribeURL}}
`
