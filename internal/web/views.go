package web

// views.go renders the HTML pages. Components are plain templ.ComponentFunc
// values so the package needs no generation step.

import (
	"context"
	"database/sql/driver"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/rowmap/internal/core"
	"github.com/JonMunkholm/rowmap/internal/logging"
	"github.com/JonMunkholm/rowmap/internal/table"
)

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}
table{border-collapse:collapse;font-size:.875rem}
th,td{border:1px solid #d1d5db;padding:.25rem .5rem;text-align:left}
th{background:#f3f4f6}
td.null{color:#9ca3af}
.meta{color:#6b7280}
.error{border:1px solid #fca5a5;background:#fef2f2;padding:1rem}`

// htmlWriter remembers the first write error so components can emit markup
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(parts ...string) {
	for _, p := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, p)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// render writes a component with the given status.
func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "path", r.URL.Path, "error", err)
	}
}

// page wraps body in the HTML document.
func page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		h.text(title)
		h.raw(`</title><style>`, pageStyle, `</style></head><body><main>`)
		if h.err != nil {
			return h.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		h.raw(`</main></body></html>`)
		return h.err
	})
}

// queryIndex lists queries by group, in group order.
func queryIndex(groups []string, byGroup map[string][]core.QueryInfo) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>Queries</h1>`)
		if len(groups) == 0 {
			h.raw(`<p class="meta">No queries are registered.</p>`)
		}
		for _, group := range groups {
			h.raw(`<section><h2>`)
			h.text(group)
			h.raw(`</h2><ul>`)
			for _, info := range byGroup[group] {
				h.raw(`<li><a href="`)
				h.text(queryPath(info.Key))
				h.raw(`">`)
				h.text(info.Label)
				h.raw(`</a>`)
				if info.Description != "" {
					h.raw(` <span class="meta">`)
					h.text(info.Description)
					h.raw(`</span>`)
				}
				h.raw(`</li>`)
			}
			h.raw(`</ul></section>`)
		}
		return h.err
	})
}

// resultView shows the argument form and, when res is set, the rows that
// were mapped.
func resultView(info core.QueryInfo, args []string, res *core.RunResult) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<p><a href="/">All queries</a></p><h1>`)
		h.text(info.Label)
		h.raw(`</h1>`)
		if info.Description != "" {
			h.raw(`<p class="meta">`)
			h.text(info.Description)
			h.raw(`</p>`)
		}

		if len(info.Params) > 0 {
			h.raw(`<form method="get">`)
			for i, p := range info.Params {
				value := ""
				if i < len(args) {
					value = args[i]
				}
				h.raw(`<label>`)
				h.text(p.Name)
				h.raw(` <input name="arg" placeholder="`)
				h.text(string(p.Type))
				h.raw(`" value="`)
				h.text(value)
				h.raw(`"></label> `)
			}
			h.raw(`<button type="submit">Run</button></form>`)
		}

		if res == nil {
			return h.err
		}

		h.raw(`<p class="meta">`)
		h.text(fmt.Sprintf("%d rows mapped onto %s (%s) in %s", res.RowCount, res.Target, res.Shape, res.Duration.Round(time.Millisecond)))
		h.raw(` · <a href="`)
		h.text(apiPath(info.Key, args))
		h.raw(`">JSON</a></p>`)

		writeTable(h, res.Table)
		return h.err
	})
}

// writeTable renders the raw result set.
func writeTable(h *htmlWriter, rs *table.ResultSet) {
	if rs == nil {
		return
	}

	h.raw(`<table><thead><tr>`)
	for _, col := range rs.Columns() {
		h.raw(`<th title="`)
		h.text(col.Type.String())
		h.raw(`">`)
		h.text(col.Name)
		h.raw(`</th>`)
	}
	h.raw(`</tr></thead><tbody>`)
	for _, row := range rs.Rows() {
		h.raw(`<tr>`)
		for _, v := range row.Values() {
			if v == nil {
				h.raw(`<td class="null">NULL</td>`)
				continue
			}
			h.raw(`<td>`)
			h.text(formatCell(v))
			h.raw(`</td>`)
		}
		h.raw(`</tr>`)
	}
	h.raw(`</tbody></table>`)
}

// errorAlert renders a user-facing error.
func errorAlert(msg core.UserMessage) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="error" role="alert"><strong>`)
		h.text(msg.Message)
		h.raw(`</strong>`)
		if msg.Action != "" {
			h.raw(`<p>`)
			h.text(msg.Action)
			h.raw(`</p>`)
		}
		h.raw(`<p class="meta">Code `)
		h.text(msg.Code)
		h.raw(`</p></div><p><a href="/">All queries</a></p>`)
		return h.err
	})
}

// formatCell converts a raw column value to display text.
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		if val.Equal(val.Truncate(24 * time.Hour)) {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case driver.Valuer:
		inner, err := val.Value()
		if err != nil || inner == nil {
			return ""
		}
		return formatCell(inner)
	default:
		return fmt.Sprint(val)
	}
}

func queryPath(key string) string {
	return "/queries/" + url.PathEscape(key)
}

func apiPath(key string, args []string) string {
	p := "/api/queries/" + url.PathEscape(key)
	if len(args) > 0 {
		p += "?" + url.Values{"arg": args}.Encode()
	}
	return p
}
