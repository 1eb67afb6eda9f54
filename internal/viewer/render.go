package viewer

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/danmuck/menuqr/internal/menu"
)

const defaultPageTitle = "Menu"

// Messages shown on the viewer page when there is no menu to render.
const (
	MessageNoData  = "No menu data found in the link."
	MessageCorrupt = "Could not display the menu. The link may be corrupted."
)

type pageItem struct {
	Name        string
	Price       string
	Description string
	Image       template.URL
}

type pageSection struct {
	Name  string
	Items []pageItem
}

type pageData struct {
	Title    string
	Sections []pageSection
	Error    string
}

var pageTemplate = template.Must(template.New("menu").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<main id="menu">
<h1>{{.Title}}</h1>
{{- if .Error}}
<p class="error">{{.Error}}</p>
{{- end}}
{{- range .Sections}}
<section class="menu-section">
{{- if .Name}}
<h2>{{.Name}}</h2>
{{- end}}
{{- range .Items}}
<article class="menu-item">
{{- if .Image}}
<img class="item-image" src="{{.Image}}" alt="{{.Name}}">
{{- end}}
<div class="item-header"><span class="item-name">{{.Name}}</span><span class="item-price">{{.Price}}</span></div>
{{- if .Description}}
<p class="item-description">{{.Description}}</p>
{{- end}}
</article>
{{- end}}
</section>
{{- end}}
</main>
</body>
</html>
`))

// RenderMenu writes the viewer page for m. Sections without a name and without
// items are skipped, as are items without a name and without a price.
func RenderMenu(m menu.Menu) ([]byte, error) {
	return renderPage(buildPage(m))
}

// RenderError writes the viewer page carrying only msg.
func RenderError(msg string) ([]byte, error) {
	return renderPage(pageData{Title: defaultPageTitle, Error: msg})
}

func buildPage(m menu.Menu) pageData {
	page := pageData{Title: defaultPageTitle}
	if m.Version == menu.V2 && strings.TrimSpace(m.Title) != "" {
		page.Title = m.Title
	}
	for _, s := range m.Sections {
		if s.Name == "" && len(s.Items) == 0 {
			continue
		}
		section := pageSection{Name: s.Name}
		for _, item := range s.Items {
			if item.Name == "" && item.Price == "" {
				continue
			}
			section.Items = append(section.Items, pageItem{
				Name:        item.Name,
				Price:       item.Price,
				Description: item.Description,
				Image:       inlineImage(item.Image),
			})
		}
		page.Sections = append(page.Sections, section)
	}
	return page
}

// inlineImage trusts only data:image/ URLs; anything else is dropped.
func inlineImage(img *string) template.URL {
	if img == nil {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(*img), "data:image/") {
		return ""
	}
	return template.URL(*img)
}

func renderPage(page pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
