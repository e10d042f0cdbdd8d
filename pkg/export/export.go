package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/richard-senior/rfef/pkg/league"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts json, html, markdown and md
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "html":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "application/json"
	}
}

func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Row is one line of an exported table
type Row struct {
	Position     int         `json:"position"`
	Zone         league.Zone `json:"zone"`
	ID           int         `json:"id"`
	Name         string      `json:"name"`
	Played       int         `json:"played"`
	Won          int         `json:"won"`
	Drawn        int         `json:"drawn"`
	Lost         int         `json:"lost"`
	GoalsFor     int         `json:"goalsFor"`
	GoalsAgainst int         `json:"goalsAgainst"`
	GoalDiff     int         `json:"goalDifference"`
	Points       int         `json:"points"`
}

// Rows numbers the standings, which must already be sorted
func Rows(standings []league.Team) []Row {
	rows := make([]Row, len(standings))
	for i, t := range standings {
		rows[i] = Row{
			Position:     i + 1,
			Zone:         league.ZoneFor(i + 1),
			ID:           t.ID,
			Name:         t.Name,
			Played:       t.Played,
			Won:          t.Won,
			Drawn:        t.Drawn,
			Lost:         t.Lost,
			GoalsFor:     t.GoalsFor,
			GoalsAgainst: t.GoalsAgainst,
			GoalDiff:     t.GoalDifference(),
			Points:       t.Points,
		}
	}
	return rows
}

var tableTemplate = template.Must(template.New("standings").Parse(`<table>
<thead>
<tr><th>Pos</th><th>Team</th><th>P</th><th>W</th><th>D</th><th>L</th><th>GF</th><th>GA</th><th>GD</th><th>Pts</th><th>Zone</th></tr>
</thead>
<tbody>
{{- range .}}
<tr><td>{{.Position}}</td><td>{{.Name}}</td><td>{{.Played}}</td><td>{{.Won}}</td><td>{{.Drawn}}</td><td>{{.Lost}}</td><td>{{.GoalsFor}}</td><td>{{.GoalsAgainst}}</td><td>{{.GoalDiff}}</td><td>{{.Points}}</td><td>{{.Zone}}</td></tr>
{{- end}}
</tbody>
</table>
`))

func RenderHTML(standings []league.Team) ([]byte, error) {
	var buf bytes.Buffer
	if err := tableTemplate.Execute(&buf, Rows(standings)); err != nil {
		return nil, fmt.Errorf("failed to render standings: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderMarkdown converts the HTML table to a markdown table
func RenderMarkdown(standings []league.Team) ([]byte, error) {
	page, err := RenderHTML(standings)
	if err != nil {
		return nil, err
	}
	conv := htmltomarkdown.NewConverter(
		htmltomarkdown.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	md, err := conv.ConvertString(string(page))
	if err != nil {
		return nil, fmt.Errorf("failed to convert standings to markdown: %w", err)
	}
	return []byte(md), nil
}

func RenderJSON(standings []league.Team) ([]byte, error) {
	return json.MarshalIndent(Rows(standings), "", "  ")
}

// Render renders standings in the given format
func Render(f Format, standings []league.Team) ([]byte, error) {
	switch f {
	case FormatHTML:
		return RenderHTML(standings)
	case FormatMarkdown:
		return RenderMarkdown(standings)
	case FormatJSON:
		return RenderJSON(standings)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
