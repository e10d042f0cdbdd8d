package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/richard-senior/rfef/pkg/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table() []league.Team {
	return []league.Team{
		{ID: 1, Name: "CD Tenerife", Played: 21, Won: 15, Drawn: 4, Lost: 2, GoalsFor: 40, GoalsAgainst: 12, Points: 49},
		{ID: 3, Name: "Pontevedra CF", Played: 21, Won: 12, Drawn: 5, Lost: 4, GoalsFor: 30, GoalsAgainst: 20, Points: 41},
		{ID: 9, Name: "Real Avilés <Industrial>", Played: 21, Won: 3, Drawn: 4, Lost: 14, GoalsFor: 15, GoalsAgainst: 38, Points: 13},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatJSON, "JSON": FormatJSON, "html": FormatHTML, "md": FormatMarkdown, "markdown": FormatMarkdown} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("pdf")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
	assert.Equal(t, "md", FormatMarkdown.Extension())
	assert.Equal(t, "text/html; charset=utf-8", FormatHTML.ContentType())
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(table())
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "direct promotion", rows[0]["zone"])
	assert.Equal(t, float64(28), rows[0]["goalDifference"])
	assert.Equal(t, "promotion playoff", rows[1]["zone"])
}

func TestRenderHTMLEscapes(t *testing.T) {
	data, err := RenderHTML(table())
	require.NoError(t, err)
	page := string(data)
	assert.Contains(t, page, "<td>CD Tenerife</td>")
	assert.Contains(t, page, "Real Avilés &lt;Industrial&gt;")
	assert.Equal(t, 4, strings.Count(page, "<tr>"))
}

func TestRenderMarkdown(t *testing.T) {
	data, err := RenderMarkdown(table())
	require.NoError(t, err)
	md := string(data)
	assert.Contains(t, md, "CD Tenerife")
	assert.Contains(t, md, "|")
	assert.NotContains(t, md, "<td>")
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	b, _ := io.ReadAll(params.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Upload(t *testing.T) {
	p := &fakePutter{}
	u := NewS3UploaderWithClient(p, "rfef-exports")

	loc, err := u.Upload(context.Background(), "standings/latest.md", FormatMarkdown.ContentType(), []byte("# table"))
	require.NoError(t, err)
	assert.Equal(t, "s3://rfef-exports/standings/latest.md", loc)
	assert.Equal(t, "rfef-exports", *p.input.Bucket)
	assert.Equal(t, "text/markdown; charset=utf-8", *p.input.ContentType)
	assert.Equal(t, "# table", p.body)

	p.err = errors.New("access denied")
	_, err = u.Upload(context.Background(), "k", "text/plain", nil)
	assert.Error(t, err)
}
