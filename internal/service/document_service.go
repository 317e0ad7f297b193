package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"html/template"
	"io"
	"net/http"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/text-materials-api/internal/models"
)

// Export formats for StreamApproved
const (
	ExportNDJSON = "ndjson"
	ExportJSON   = "json"
)

// Material content is user-authored rich text. richText keeps safe markup
// for HTML documents; plainText drops all of it.
var (
	richText  = bluemonday.UGCPolicy()
	plainText = bluemonday.StrictPolicy()
)

var htmlDocument = template.Must(template.New("material").Funcs(template.FuncMap{
	"rich": func(s string) template.HTML { return template.HTML(richText.Sanitize(s)) },
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Material.Title}}</title></head>
<body>
<h1>{{.Material.Title}}</h1>
<p><em>{{.Material.CategoryTitle}}</em>{{if .Material.AuthorName}} by {{.Material.AuthorName}}{{end}}, {{.Material.DatePublished.Format "2006-01-02"}}</p>
<article>{{rich .Material.Content}}</article>
{{- if .Comments}}
<h2>Comments</h2>
<ul>
{{- range .Comments}}
<li><strong>{{.AuthorName}}</strong>: {{.Content}}
{{- if .Replies}}
<ul>
{{- range .Replies}}
<li><strong>{{.AuthorName}}</strong>: {{.Content}}</li>
{{- end}}
</ul>
{{- end}}
</li>
{{- end}}
</ul>
{{- end}}
</body>
</html>
`))

// documentData is what every format renders
type documentData struct {
	Material *models.TextMaterial    `json:"material"`
	Comments []*models.CommentThread `json:"comments,omitempty"`
}

// documentService is the concrete implementation of DocumentService
type documentService struct {
	*deps
	notifier  Notifier
	materials *materialService
	log       zerolog.Logger
}

func newDocumentService(d *deps, notifier Notifier, materials *materialService) *documentService {
	return &documentService{
		deps:      d,
		notifier:  notifier,
		materials: materials,
		log:       d.log.With().Str("service", "document").Logger(),
	}
}

// Render produces a downloadable document for a material the caller can see
func (s *documentService) Render(ctx context.Context, caller *models.Identity, id int64, opts models.DocumentOptions) (*models.Document, error) {
	if opts.Format == "" {
		opts.Format = models.FormatText
	}
	if err := s.validate(&opts); err != nil {
		return nil, err
	}

	m, err := s.materials.loadVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	data := documentData{Material: m}
	if opts.IncludeComments {
		comments, err := s.repos.Comment.ListByMaterial(ctx, id)
		if err != nil {
			return nil, wrap(err, "failed to list comments")
		}
		data.Comments = buildThreads(comments)
	}

	var buf bytes.Buffer
	var contentType string
	switch opts.Format {
	case models.FormatHTML:
		contentType = "text/html; charset=utf-8"
		err = htmlDocument.Execute(&buf, data)
	case models.FormatJSON:
		contentType = "application/json"
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(data)
	default:
		contentType = "text/plain; charset=utf-8"
		writeText(&buf, data)
	}
	if err != nil {
		return nil, wrap(err, "failed to render document")
	}

	return &models.Document{
		FileName:    fileName(m.Title, string(opts.Format)),
		ContentType: contentType,
		Data:        buf.Bytes(),
	}, nil
}

func writeText(w io.Writer, data documentData) {
	m := data.Material
	fmt.Fprintf(w, "%s\n%s\n\n", m.Title, strings.Repeat("=", len([]rune(m.Title))))
	fmt.Fprintf(w, "Category: %s\n", m.CategoryTitle)
	if m.AuthorName != "" {
		fmt.Fprintf(w, "Author: %s\n", m.AuthorName)
	}
	fmt.Fprintf(w, "Published: %s\n\n%s\n", m.DatePublished.Format("2006-01-02"), stripMarkup(m.Content))

	if len(data.Comments) == 0 {
		return
	}
	fmt.Fprint(w, "\nComments\n--------\n")
	for _, t := range data.Comments {
		fmt.Fprintf(w, "%s: %s\n", t.AuthorName, t.Content)
		for _, r := range t.Replies {
			fmt.Fprintf(w, "    %s: %s\n", r.AuthorName, r.Content)
		}
	}
}

func stripMarkup(content string) string {
	return html.UnescapeString(plainText.Sanitize(content))
}

// fileName builds a file name from the title, keeping letters and digits
func fileName(title, ext string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	name := strings.TrimSuffix(b.String(), "-")
	if name == "" {
		name = "material"
	}
	return name + "." + ext
}

// Send renders the material and emails it to the caller as an attachment
func (s *documentService) Send(ctx context.Context, caller *models.Identity, id int64, opts models.DocumentOptions) error {
	if err := requireUser(caller); err != nil {
		return err
	}
	doc, err := s.Render(ctx, caller, id, opts)
	if err != nil {
		return err
	}

	user, err := s.repos.User.GetByID(ctx, caller.UserID)
	if err != nil {
		return wrap(err, "failed to get user")
	}
	if user == nil {
		return notFound("user", caller.UserID)
	}
	m, err := s.materials.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.notifier.SendAsDocument(ctx, user, m, doc); err != nil {
		s.log.Warn().Err(err).Int64("material_id", id).Msg("Failed to queue document")
		return notificationFailed(err)
	}
	s.log.Info().Int64("material_id", id).Int64("user_id", user.ID).Str("file", doc.FileName).Msg("Document queued")
	return nil
}

// StreamApproved writes every approved material to w as ndjson or a JSON
// array, flushing periodically when w supports it
func (s *documentService) StreamApproved(ctx context.Context, w io.Writer, format string) error {
	if format != ExportNDJSON && format != ExportJSON {
		return invalidf("format", "unsupported format: %s", format)
	}
	s.log.Info().Str("format", format).Msg("Starting text materials export")

	flusher, _ := w.(http.Flusher)
	count := 0

	if format == ExportJSON {
		if _, err := io.WriteString(w, "["); err != nil {
			return err
		}
	}

	err := s.repos.Material.StreamApproved(ctx, func(m *models.TextMaterial) error {
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		if format == ExportJSON && count > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		if format == ExportNDJSON {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		count++

		// Flush every 100 records for streaming
		if count%100 == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	if format == ExportJSON && err == nil {
		_, err = io.WriteString(w, "]")
	}

	s.log.Info().Int("count", count).Msg("Text materials export completed")
	if err != nil {
		return wrap(err, "failed to export text materials")
	}
	return nil
}
