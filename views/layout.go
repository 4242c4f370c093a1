package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const styles = `
*{box-sizing:border-box}
body{margin:0;font-family:system-ui,sans-serif;background:#fafaf9;color:#1c1917}
header{display:flex;align-items:center;justify-content:space-between;padding:1rem 1.5rem;border-bottom:1px solid #e7e5e4;background:#fff}
header h1{margin:0;font-size:1.25rem}
header p{margin:.25rem 0 0;color:#78716c;font-size:.875rem}
main{padding:1.5rem;max-width:1400px;margin:0 auto}
a{color:inherit}
button,.button{cursor:pointer;border:1px solid #1c1917;background:#1c1917;color:#fff;border-radius:6px;padding:.4rem .9rem;font:inherit;text-decoration:none}
button.secondary,.button.secondary{background:#fff;color:#1c1917}
.masonry{column-count:1;column-gap:1rem}
@media(min-width:640px){.masonry{column-count:2}}
@media(min-width:960px){.masonry{column-count:3}}
@media(min-width:1280px){.masonry{column-count:4}}
.pin{break-inside:avoid;margin:0 0 1rem;position:relative;background:#fff;border-radius:10px;overflow:hidden;box-shadow:0 1px 3px rgba(0,0,0,.08)}
.pin img{display:block;width:100%;height:auto}
.pin figcaption{padding:.5rem .75rem;font-size:.75rem;color:#78716c}
.pin form{position:absolute;top:.5rem;right:.5rem}
.pin form button{background:#dc2626;border-color:#dc2626;padding:.25rem .6rem;font-size:.75rem}
.upload{display:flex;gap:.75rem;align-items:center;margin-bottom:1.5rem;padding:1rem;background:#fff;border:1px dashed #a8a29e;border-radius:10px}
.notice{padding:1rem;border-radius:10px;margin-bottom:1.5rem}
.notice.error{background:#fef2f2;border:1px solid #fecaca;color:#991b1b}
.notice.empty{background:#fff;border:1px solid #e7e5e4;color:#78716c;text-align:center;padding:3rem}
.card{max-width:360px;margin:4rem auto;background:#fff;padding:2rem;border-radius:12px;box-shadow:0 1px 3px rgba(0,0,0,.08)}
.card label{display:block;margin:.75rem 0 .25rem;font-size:.875rem}
.card input{width:100%;padding:.5rem;border:1px solid #d6d3d1;border-radius:6px;font:inherit}
.card button{margin-top:1rem;width:100%}
#status{font-size:.875rem;margin:.5rem 0 0;min-height:1.25rem}
`

// layout wraps body in the shared document shell.
func layout(site SiteConfig, title string, body func(w *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw("<!doctype html><html lang=\"en\"><head><meta charset=\"utf-8\">")
		w.raw("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
		w.raw("<title>")
		if title != "" {
			w.text(title + " · ")
		}
		w.text(site.Name)
		w.raw("</title>")
		if site.Description != "" {
			w.raw("<meta name=\"description\"")
			w.attr("content", site.Description)
			w.raw(">")
		}
		w.raw("<style>" + styles + "</style></head><body>")
		body(w)
		w.raw("</body></html>")
		return w.err
	})
}
