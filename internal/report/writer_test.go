package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aletheia-intel/aletheia/models"
)

func TestSlug(t *testing.T) {
	assert.Equal(t, "rates-outlook-q3", Slug("Rates Outlook: Q3!"))
	assert.Equal(t, "report", Slug("???"))

	long := strings.Repeat("abcde ", 30)
	assert.LessOrEqual(t, len(Slug(long)), 60)
}

func TestWriteMarkdown(t *testing.T) {
	dir := t.TempDir()
	r := &models.Report{
		ID:        "r-1",
		Title:     "Semiconductor Supply Update",
		Directive: "analyze semiconductor supply chains",
		Content:   "## Executive Summary\nSupply is normalizing.",
		CreatedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}

	path, err := WriteMarkdown(dir, r)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2026-03-14_semiconductor-supply-update.md"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "# Semiconductor Supply Update")
	assert.Contains(t, content, "Report ID: r-1")
	assert.Contains(t, content, "Supply is normalizing.")
	assert.True(t, strings.HasSuffix(content, "\n"))
}
