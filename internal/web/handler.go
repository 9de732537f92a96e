package web

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Минимальная страница привязки устройства: форма, которая постит JSON
// в /enroll/claim. Именно сюда ведёт enroll_url из ответа create.
func Attach(r *mux.Router) {
	r.HandleFunc("/enroll", servePage).Methods(http.MethodGet)
	r.HandleFunc("/static/style.css", serveCSS).Methods(http.MethodGet)
	r.HandleFunc("/static/app.js", serveJS).Methods(http.MethodGet)
}

func servePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Attach device</title>
<link rel="stylesheet" href="/static/style.css">
</head>
<body>
<header><div class="container"><h2>Attach a new device</h2></div></header>
<div class="container">
  <div class="card">
    <p class="small">Enter the 8-character code from your dashboard. Codes expire in 15 minutes.</p>
    <div class="grid">
      <input id="code" class="mono" maxlength="8" placeholder="CODE" autocomplete="off">
      <input id="device_name" maxlength="80" placeholder="Device name (optional)">
      <input id="platform" maxlength="20" placeholder="Platform (optional)">
      <button id="claim" class="btn btn-primary">Attach</button>
    </div>
    <pre id="out" hidden></pre>
  </div>
</div>
<script src="/static/app.js"></script>
</body>
</html>`))
}
