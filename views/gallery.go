package views

import (
	"strconv"

	"github.com/a-h/templ"
)

const uploadScript = `
document.getElementById('upload-form').addEventListener('submit', async (ev) => {
  ev.preventDefault();
  const input = ev.target.querySelector('input[type=file]');
  const status = document.getElementById('status');
  if (!input.files.length) { status.textContent = 'Choose an image first.'; return; }
  const file = input.files[0];
  if (file.size > 4 * 1024 * 1024) {
    status.textContent = 'File size exceeds the limit of 4MB. Your file is ' + (file.size / (1024 * 1024)).toFixed(2) + 'MB';
    return;
  }
  if (!file.type.startsWith('image/')) {
    status.textContent = 'Invalid file type: ' + file.type + '. Only image files are allowed.';
    return;
  }
  const body = new FormData();
  body.append('file', file);
  status.textContent = 'Uploading…';
  const res = await fetch('/api/images/upload', { method: 'POST', body });
  const out = await res.json().catch(() => ({ error: res.statusText }));
  if (!res.ok || !out.success) { status.textContent = out.error || 'Upload failed'; return; }
  location.reload();
});
`

const adminScript = `
document.querySelectorAll('form.delete').forEach((form) => {
  form.addEventListener('submit', async (ev) => {
    ev.preventDefault();
    if (!confirm('Delete this image?')) return;
    const res = await fetch('/api/images/delete', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify({ pathname: form.dataset.pathname }),
    });
    const out = await res.json().catch(() => ({}));
    if (!res.ok || !out.success) { alert(out.error || 'Delete failed'); return; }
    form.closest('figure').remove();
  });
});
document.getElementById('logout').addEventListener('click', async () => {
  await fetch('/api/auth/logout', { method: 'POST' });
  location.reload();
});
`

// Gallery renders the masonry grid with admin controls when allowed.
func Gallery(page GalleryPage) templ.Component {
	return layout(page.Site, "", func(w *writer) {
		w.raw("<header><div><h1>")
		w.text(page.Site.Name)
		w.raw("</h1>")
		if page.Site.Description != "" {
			w.raw("<p>")
			w.text(page.Site.Description)
			w.raw("</p>")
		}
		w.raw("</div>")
		if page.IsAdmin {
			w.raw("<button id=\"logout\" class=\"secondary\" type=\"button\">Log out</button>")
		} else {
			w.raw("<a class=\"button secondary\" href=\"/login\">Admin login</a>")
		}
		w.raw("</header><main>")

		if page.CanUpload {
			w.raw("<form id=\"upload-form\" class=\"upload\"><input type=\"file\" name=\"file\" accept=\"image/*\">")
			w.raw("<button type=\"submit\">Upload</button><p id=\"status\"></p></form>")
		}

		switch {
		case page.Error != "":
			w.raw("<div class=\"notice error\"><strong>Could not load images.</strong><p>")
			w.text(page.Error)
			w.raw("</p>")
			if page.Details != "" {
				w.raw("<p>")
				w.text(page.Details)
				w.raw("</p>")
			}
			w.raw("</div>")
		case len(page.Images) == 0:
			w.raw("<div class=\"notice empty\">No images yet.")
			if page.CanUpload {
				w.raw(" Upload the first one above.")
			}
			w.raw("</div>")
		default:
			w.raw("<div class=\"masonry\">")
			for _, img := range page.Images {
				w.raw("<figure class=\"pin\"><img loading=\"lazy\"")
				w.attr("src", img.URL)
				w.attr("alt", AltText(img.Pathname))
				if img.Width > 0 && img.Height > 0 {
					w.raw(" width=\"" + strconv.Itoa(img.Width) + "\" height=\"" + strconv.Itoa(img.Height) + "\"")
				}
				w.raw(">")
				if c := Caption(img); c != "" {
					w.raw("<figcaption>")
					w.text(c)
					w.raw("</figcaption>")
				}
				if page.IsAdmin {
					w.raw("<form class=\"delete\"")
					w.attr("data-pathname", img.Pathname)
					w.raw("><button type=\"submit\">Delete</button></form>")
				}
				w.raw("</figure>")
			}
			w.raw("</div>")
		}
		w.raw("</main>")

		if page.CanUpload {
			w.raw("<script>" + uploadScript + "</script>")
		}
		if page.IsAdmin {
			w.raw("<script>" + adminScript + "</script>")
		}
	})
}

// Login renders the admin login form.
func Login(site SiteConfig) templ.Component {
	return layout(site, "Admin login", func(w *writer) {
		w.raw("<main><form id=\"login-form\" class=\"card\"><h1>Admin login</h1>")
		w.raw("<label for=\"email\">Email</label><input id=\"email\" name=\"email\" type=\"email\" autocomplete=\"username\" required>")
		w.raw("<label for=\"password\">Password</label><input id=\"password\" name=\"password\" type=\"password\" autocomplete=\"current-password\" required>")
		w.raw("<button type=\"submit\">Log in</button><p id=\"status\"></p>")
		w.raw("<p><a href=\"/\">Back to gallery</a></p></form></main>")
		w.raw(`<script>
document.getElementById('login-form').addEventListener('submit', async (ev) => {
  ev.preventDefault();
  const form = ev.target;
  const res = await fetch('/api/auth/admin-login', {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify({ email: form.email.value, password: form.password.value }),
  });
  if (res.ok) { location.href = '/'; return; }
  const out = await res.json().catch(() => ({}));
  document.getElementById('status').textContent = out.error || 'Login failed';
});
</script>`)
	})
}

// NotFound renders the 404 page.
func NotFound(site SiteConfig) templ.Component {
	return errorPage(site, "Not found", "That page does not exist.")
}

// ServerError renders the 500 page.
func ServerError(site SiteConfig) templ.Component {
	return errorPage(site, "Something went wrong", "Please try again in a moment.")
}

func errorPage(site SiteConfig, title, msg string) templ.Component {
	return layout(site, title, func(w *writer) {
		w.raw("<main><div class=\"card\"><h1>")
		w.text(title)
		w.raw("</h1><p>")
		w.text(msg)
		w.raw("</p><p><a href=\"/\">Back to gallery</a></p></div></main>")
	})
}
