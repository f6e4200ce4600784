package srcview

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Golden test format: every listed link must appear among the markers of
// its file. Href is optional; variable anchors depend on offsets.
type goldenFile struct {
	Links []goldenLink `json:"links"`
}

type goldenLink struct {
	File  string  `json:"file"`
	Text  string  `json:"text"`
	Class string  `json:"class"`
	Href  *string `json:"href,omitempty"`
}

func (l goldenLink) String() string {
	href := "*"
	if l.Href != nil {
		href = *l.Href
	}
	return fmt.Sprintf("%s %q %s -> %s", l.File, l.Text, l.Class, href)
}

// TestGolden renders each testdata/java/<case>/src tree and checks it
// against the case's golden.json.
func TestGolden(t *testing.T) {
	t.Parallel()
	cases, err := os.ReadDir(filepath.Join("testdata", "java"))
	if err != nil {
		t.Skip("no testdata directory found")
	}

	for _, c := range cases {
		if !c.IsDir() {
			continue
		}
		dir := filepath.Join("testdata", "java", c.Name())
		t.Run(c.Name(), func(t *testing.T) {
			t.Parallel()
			data, err := os.ReadFile(filepath.Join(dir, "golden.json"))
			require.NoError(t, err)
			var golden goldenFile
			require.NoError(t, json.Unmarshal(data, &golden))

			src := filepath.Join(dir, "src")
			out := t.TempDir()
			e, err := New("", WithWorkers(2))
			require.NoError(t, err)
			defer e.Close()

			_, err = e.RenderDirectory(context.Background(), src, out)
			require.NoError(t, err)

			rendered := make(map[string][]goldenLink)
			for _, want := range golden.Links {
				if _, ok := rendered[want.File]; !ok {
					rendered[want.File] = readLinks(t, src, out, want.File)
				}
				require.True(t, containsLink(rendered[want.File], want),
					"missing %s\nrendered:\n%s", want, formatLinks(rendered[want.File]))
			}
		})
	}
}

// readLinks decodes the markers record of a compact artifact. Golden
// sources are ASCII, so marker offsets index bytes.
func readLinks(t *testing.T, src, out, unit string) []goldenLink {
	t.Helper()
	source, err := os.ReadFile(filepath.Join(src, filepath.FromSlash(unit)))
	require.NoError(t, err)
	artifact, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(unit)+ArtifactExt))
	require.NoError(t, err)

	text := string(artifact)
	start := strings.Index(text, "markers(")
	require.GreaterOrEqual(t, start, 0, "no markers record in %s", unit)
	body := strings.TrimSuffix(strings.TrimSpace(text[start+len("markers("):]), ");")

	var markers [][]any
	require.NoError(t, json.Unmarshal([]byte(body), &markers))

	links := make([]goldenLink, len(markers))
	for i, m := range markers {
		require.Len(t, m, 6)
		s, e := int(m[0].(float64)), int(m[1].(float64))
		href := m[2].(string)
		links[i] = goldenLink{File: unit, Text: string(source[s:e]), Class: m[3].(string), Href: &href}
	}
	return links
}

func containsLink(links []goldenLink, want goldenLink) bool {
	for _, l := range links {
		if l.Text != want.Text || l.Class != want.Class {
			continue
		}
		if want.Href == nil || *want.Href == *l.Href {
			return true
		}
	}
	return false
}

func formatLinks(links []goldenLink) string {
	var b strings.Builder
	for _, l := range links {
		fmt.Fprintf(&b, "  %s\n", l)
	}
	return b.String()
}
