package handlers

import (
	"html/template"
	"net/http"

	"fryerbot/internal/config"
)

// The panel replaces the old Streamlit UI, same port, same two actions:
// upload a catalog sheet and sanity-check the pipeline with a question.
var adminPage = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html lang="ru">
<head>
<meta charset="utf-8">
<title>Админ-панель базы знаний</title>
<style>
  body { font-family: sans-serif; max-width: 640px; margin: 40px auto; }
  fieldset { margin-bottom: 24px; padding: 16px; }
  button { padding: 6px 16px; }
</style>
</head>
<body>
<h1>База знаний: {{.Collection}}</h1>

<fieldset>
<legend>Загрузка каталога (.xlsx, .xls, .csv)</legend>
<form action="/ingest" method="post" enctype="multipart/form-data">
  <p><input type="file" name="catalog" accept=".xlsx,.xls,.csv" required></p>
  <p><label><input type="checkbox" name="recreate" checked> Пересоздать коллекцию</label></p>
  <p><button type="submit">Индексировать</button></p>
</form>
</fieldset>

<fieldset>
<legend>Проверка</legend>
<p>POST /query — задать вопрос, GET /status/{id} — статус задачи, GET /stats — состояние базы.</p>
</fieldset>
</body>
</html>`))

// IndexHandler serves the upload page.
func IndexHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := adminPage.Execute(w, struct{ Collection string }{Collection: config.CollectionName()}); err != nil {
			logRH.Error("Error rendering admin page: %v", err)
		}
	}
}
