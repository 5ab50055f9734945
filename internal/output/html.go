package output

import (
	"bytes"
	"fmt"
	"io"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Report text quotes page content, so rendered HTML is sanitized before it
// is wrapped in the page shell.
var sanitizer = bluemonday.UGCPolicy()

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Accessibility audit</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 72rem; margin: 2rem auto; padding: 0 1rem; color: #1f1f1f; }
table { border-collapse: collapse; margin-bottom: 1.5rem; }
th, td { border: 1px solid #767676; padding: 0.25rem 0.5rem; text-align: left; vertical-align: top; }
code { background: #f2f2f2; }
</style>
</head>
<body>
<main>
`

const htmlFoot = "</main>\n</body>\n</html>\n"

// RenderHTML converts a Markdown document into a standalone HTML page.
func RenderHTML(w io.Writer, md []byte) error {
	var body bytes.Buffer
	if err := markdown.Convert(md, &body); err != nil {
		return fmt.Errorf("markdown render: %w", err)
	}
	if _, err := io.WriteString(w, htmlHead); err != nil {
		return err
	}
	if _, err := w.Write(sanitizer.SanitizeBytes(body.Bytes())); err != nil {
		return err
	}
	_, err := io.WriteString(w, htmlFoot)
	return err
}
