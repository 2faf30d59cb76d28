package preview

import (
	"html/template"
	"net/http"

	"github.com/alnah/go-md2card/internal/cards"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>md2card preview</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; background: #f4f4f5; }
main { display: flex; gap: 2rem; align-items: flex-start; }
iframe { width: 238px; height: 332px; border: 0; background: #fff; box-shadow: 0 2px 8px rgba(0,0,0,.15); }
#note { font-family: monospace; color: #52525b; }
#notices { list-style: none; padding: 0; max-width: 28rem; }
#notices li { margin: .25rem 0; padding: .4rem .6rem; border-radius: 4px; background: #e4e4e7; }
#notices li.error { background: #fecaca; }
</style>
</head>
<body>
<p id="note">{{if .Note}}{{.Note}}{{else}}no active note{{end}}</p>
<main>
<iframe id="card" src="/card.html" title="card"></iframe>
<section>
{{range .Commands}}<button type="button" data-command="{{.}}">{{.}}</button>
{{end}}<ul id="notices"></ul>
</section>
</main>
<script>
const frame = document.getElementById("card");
const note = document.getElementById("note");
const notices = document.getElementById("notices");

function reload() { frame.src = "/card.html?t=" + Date.now(); }

function notice(level, text) {
  const li = document.createElement("li");
  li.className = level;
  li.textContent = text;
  notices.prepend(li);
  setTimeout(() => li.remove(), 8000);
}

const events = new EventSource("/events");
events.addEventListener("card.updated", reload);
events.addEventListener("active", (e) => {
  const ac = JSON.parse(e.data);
  note.textContent = ac.active || ac.fallback || "no active note";
  reload();
});
events.addEventListener("notice", (e) => {
  const n = JSON.parse(e.data);
  notice(n.level, n.message);
});
events.addEventListener("progress", (e) => {
  const p = JSON.parse(e.data);
  notice(p.error ? "error" : "info", p.index + "/" + p.total + " " + p.note + (p.error ? ": " + p.error : ""));
});

document.querySelectorAll("button[data-command]").forEach((b) => {
  b.addEventListener("click", () => fetch("/commands/" + b.dataset.command, { method: "POST" }));
});
</script>
</body>
</html>
`))

type pageData struct {
	Note     string
	Commands []string
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := pageData{Note: s.current(""), Commands: cards.CommandNames()}
	if err := pageTemplate.Execute(w, data); err != nil {
		s.log.Error("render preview page failed", "error", err)
	}
}
