package templates

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, base, rel, content string) {
	t.Helper()
	path := filepath.Join(base, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRegistryLoadAndRender(t *testing.T) {
	base := t.TempDir()
	writeTemplate(t, base, "layout/base.tmpl", `{{define "layout"}}<main>{{template "content" .}}</main>{{end}}`)
	writeTemplate(t, base, "pages/hello.tmpl", `{{template "layout" .}}{{define "content"}}Hello {{.Name}}{{end}}`)
	writeTemplate(t, base, "pages/bye.tmpl", `{{template "layout" .}}{{define "content"}}Bye {{.Name}}{{end}}`)

	reg, err := NewRegistry(base)
	require.NoError(t, err)

	ids := reg.List()
	sort.Strings(ids)
	assert.Equal(t, []string{"pages/bye", "pages/hello"}, ids, "layout files are not pages")

	rendered, err := reg.Render("pages/hello", map[string]string{"Name": "<b>Asep</b>"})
	require.NoError(t, err)
	assert.Equal(t, "<main>Hello &lt;b&gt;Asep&lt;/b&gt;</main>", rendered)

	rendered, err = reg.Render("pages/bye", map[string]string{"Name": "Asep"})
	require.NoError(t, err)
	assert.Equal(t, "<main>Bye Asep</main>", rendered, "pages do not share content blocks")

	writeTemplate(t, base, "pages/hello.tmpl", `{{template "layout" .}}{{define "content"}}Hi{{end}}`)
	rendered, err = reg.Render("pages/hello", map[string]string{"Name": "Asep"})
	require.NoError(t, err)
	assert.Equal(t, "<main>Hello Asep</main>", rendered, "registry keeps the initial content")
}

func TestRegistryLazyLoad(t *testing.T) {
	base := t.TempDir()
	writeTemplate(t, base, "layout/base.tmpl", `{{define "layout"}}[{{template "content" .}}]{{end}}`)

	reg, err := NewRegistry(base)
	require.NoError(t, err)

	writeTemplate(t, base, "pages/late.tmpl", `{{template "layout" .}}{{define "content"}}{{comma .}}{{end}}`)

	rendered, err := reg.Render("pages/late", 1234567.0)
	require.NoError(t, err)
	assert.Equal(t, "[1,234,567]", rendered)

	_, err = reg.Render("layout/base", nil)
	assert.Error(t, err)
	_, err = reg.Render("pages/missing", nil)
	assert.Error(t, err)
}

func TestEmbeddedPages(t *testing.T) {
	reg := Get()
	for _, id := range []string{"pages/home", "pages/eda", "pages/clustering", "pages/map", "pages/lookup", "pages/error"} {
		_, err := reg.GetTemplate(id)
		assert.NoError(t, err, id)
	}

	page := map[string]any{
		"Title":  "Galat",
		"Active": "home",
		"View":   map[string]any{"Status": 404, "Message": "wilayah tidak ditemukan"},
	}
	out, err := reg.Render("pages/error", page)
	require.NoError(t, err)
	assert.Contains(t, out, "wilayah tidak ditemukan")
	assert.True(t, strings.Contains(out, `href="/lookup"`))
}

func TestFuncs(t *testing.T) {
	assert.Equal(t, "1,594.20", Funcs["commaf"].(func(float64) string)(1594.2))
	assert.Equal(t, "2.50", Funcs["fixed"].(func(int, float64) string)(2, 2.5))
	assert.Equal(t, "Kota Bandung", Funcs["title"].(func(string) string)("KOTA  bandung"))
	assert.Equal(t, Palette[1], ClusterColor(1))
	assert.Equal(t, Palette[0], ClusterColor(len(Palette)))
	assert.Equal(t, NoDataColor, ClusterColor(-1))
}

func TestTitleHandlesMultibyteInitials(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Equal(t, "Élan Kota", Title("élan kota"))
		assert.Equal(t, "Kab. Östlich", Title("KAB. ÖSTLICH"))
	})
	assert.Equal(t, "", Title("   "))
}
