package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/aletheia-intel/aletheia/models"
)

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a report title into a filesystem-safe name fragment.
func Slug(title string) string {
	slug := unsafeChars.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "report"
	}
	const maxSlug = 60
	if len(slug) > maxSlug {
		slug = strings.Trim(slug[:maxSlug], "-")
	}
	return slug
}

// FileName builds the markdown file name for a report.
func FileName(r *models.Report) string {
	return fmt.Sprintf("%s_%s.md", r.CreatedAt.Format("2006-01-02"), Slug(r.Title))
}

// WriteMarkdown renders a report with a metadata header and writes it under
// dir, returning the full path.
func WriteMarkdown(dir string, r *models.Report) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory %s: %w", dir, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	fmt.Fprintf(&b, "- Report ID: %s\n", r.ID)
	fmt.Fprintf(&b, "- Directive: %s\n", r.Directive)
	fmt.Fprintf(&b, "- Generated: %s\n\n", r.CreatedAt.Format("2006-01-02 15:04 MST"))
	b.WriteString(r.Content)
	if !strings.HasSuffix(r.Content, "\n") {
		b.WriteString("\n")
	}

	path := filepath.Join(dir, FileName(r))
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}
	log.Info().Str("path", path).Msg("report written")
	return path, nil
}
