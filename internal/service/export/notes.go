package export

import (
	"fmt"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// escapeNotes escapes the five HTML special characters and turns line
// breaks into <br> so the note log keeps its layout.
func escapeNotes(notes string) string {
	return strings.ReplaceAll(htmlEscaper.Replace(notes), "\n", "<br>")
}

const notesTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Notes: %[1]s</title>
  <style>
    body {
      font-family: Arial, sans-serif;
      line-height: 1.6;
      margin: 40px;
      color: #333;
    }
    h1 {
      color: #2563eb;
      border-bottom: 1px solid #e5e7eb;
      padding-bottom: 10px;
    }
    h2 {
      color: #4b5563;
      margin-top: 20px;
    }
  </style>
</head>
<body>
  <h1>Study Notes</h1>
  <h2>Module: %[2]s - Topic: %[1]s</h2>
  <div class="notes">
    %[3]s
  </div>
</body>
</html>
`

// notesHTML renders a topic's notes as a printable page
func notesHTML(notes, topicName, moduleName string) []byte {
	return []byte(fmt.Sprintf(notesTemplate,
		htmlEscaper.Replace(topicName),
		htmlEscaper.Replace(moduleName),
		escapeNotes(notes),
	))
}
