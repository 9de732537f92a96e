package web

import "net/http"

func serveCSS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css")
	_, _ = w.Write([]byte(`body{font-family:system-ui,Segoe UI,Roboto,Arial,sans-serif;margin:0;background:#0b0c0f;color:#e6e6e6}
header{padding:12px 20px;border-bottom:1px solid #1b1d22;background:#111318}
.container{max-width:560px;margin:0 auto;padding:20px}
.btn{display:inline-block;padding:8px 12px;border:1px solid #2a2d34;background:#1a1d26;color:#e6e6e6;border-radius:6px;cursor:pointer}
.btn-primary{background:#2563eb;border-color:#2563eb}
input{width:100%;padding:8px;background:#0f1116;color:#e6e6e6;border:1px solid #2a2d34;border-radius:6px;box-sizing:border-box}
.grid{display:grid;gap:12px}
.card{border:1px solid #2a2d34;border-radius:10px;padding:16px;background:#0f1116}
.small{opacity:.7} .mono{font-family:ui-monospace,Menlo,Consolas,monospace;text-transform:uppercase;letter-spacing:.2em}
pre{background:#0f1116;border:1px solid #2a2d34;border-radius:8px;padding:8px;white-space:pre-wrap}`))
}

func serveJS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	_, _ = w.Write([]byte(`const qs=new URLSearchParams(location.search);
if(qs.get('code'))document.getElementById('code').value=qs.get('code');
document.getElementById('claim').addEventListener('click',async()=>{
  const body={code:document.getElementById('code').value,
    device_name:document.getElementById('device_name').value,
    platform:document.getElementById('platform').value};
  const r=await fetch('/enroll/claim',{method:'POST',headers:{'Content-Type':'application/json'},body:JSON.stringify(body)});
  const out=document.getElementById('out');
  out.hidden=false;out.textContent=JSON.stringify(await r.json(),null,2)});
`))
}
