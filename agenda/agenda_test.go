package agenda

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHTML = `<html>
<head><title>Weekly Sync</title><style>body { color: red; }</style></head>
<body>
<nav>Home | About</nav>
<script>console.log("tracking")</script>
<h1>Weekly Sync</h1>
<ul>
<li>Budget Review</li>
<li>Hiring Plan</li>
</ul>
<footer>Copyright</footer>
</body>
</html>`

func TestHTMLToMarkdown(t *testing.T) {
	markdown, err := HTMLToMarkdown(sampleHTML)
	require.NoError(t, err)

	assert.Contains(t, markdown, "# Weekly Sync")
	assert.Contains(t, markdown, "Budget Review")
	assert.Contains(t, markdown, "Hiring Plan")

	// Non-content elements are stripped before conversion.
	assert.NotContains(t, markdown, "console.log")
	assert.NotContains(t, markdown, "color: red")
	assert.NotContains(t, markdown, "Home | About")
	assert.NotContains(t, markdown, "Copyright")
}

func TestHTMLToMarkdownFragment(t *testing.T) {
	markdown, err := HTMLToMarkdown("<h2>Topics</h2><p>Just one.</p>")
	require.NoError(t, err)
	assert.Contains(t, markdown, "## Topics")
	assert.Contains(t, markdown, "Just one.")
}

func TestLoadInlineText(t *testing.T) {
	text, err := NewLoader().Load(context.Background(), "1. Budget\n2. Hiring")
	require.NoError(t, err)
	assert.Equal(t, "1. Budget\n2. Hiring", text)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "agenda.md")
	require.NoError(t, os.WriteFile(plain, []byte("# Agenda\n- Budget"), 0644))

	text, err := NewLoader().Load(context.Background(), plain)
	require.NoError(t, err)
	assert.Equal(t, "# Agenda\n- Budget", text)

	htmlFile := filepath.Join(dir, "agenda.html")
	require.NoError(t, os.WriteFile(htmlFile, []byte(sampleHTML), 0644))

	text, err = NewLoader().Load(context.Background(), htmlFile)
	require.NoError(t, err)
	assert.Contains(t, text, "# Weekly Sync")
	assert.NotContains(t, text, "<h1>")
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/agenda.html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(sampleHTML))
		case "/agenda.txt":
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("plain agenda"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	loader := NewLoader()

	text, err := loader.Load(context.Background(), srv.URL+"/agenda.html")
	require.NoError(t, err)
	assert.Contains(t, text, "# Weekly Sync")
	assert.NotContains(t, text, "<body>")

	text, err = loader.Load(context.Background(), srv.URL+"/agenda.txt")
	require.NoError(t, err)
	assert.Equal(t, "plain agenda", text)

	_, err = loader.Load(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
