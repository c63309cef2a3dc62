package ai

import (
	"bytes"
	"text/template"
)

// extractionPromptTmpl is the prompt sent for each document. It demands a
// bare JSON object so the response can be parsed strictly.
var extractionPromptTmpl = template.Must(template.New("extraction").Parse(`You are a bibliographic metadata extraction system. The text below is the first page of an academic PDF. Identify the work's own bibliographic identity, not that of any cited work.

Respond with a JSON object with exactly these fields:
- "title": the full title of the work as printed
- "authors": an array of author names in printed order, each as one string
- "year": the four-digit publication year as a string, or "" if not printed

Do not include any text outside the JSON object. Do not invent metadata that is not present in the text.

Example response:
{"title": "Example Study", "authors": ["Smith, J.", "Doe, A."], "year": "2021"}

First page:
{{.Text}}
`))

// renderPrompt executes the extraction prompt template with the given text.
func renderPrompt(text string) (string, error) {
	var buf bytes.Buffer
	if err := extractionPromptTmpl.Execute(&buf, struct{ Text string }{Text: text}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
