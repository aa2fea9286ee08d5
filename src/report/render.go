package report

import (
	"fmt"
	"strings"

	"hygieia-reporter/src/artifact"
	"hygieia-reporter/src/contracts"
	"hygieia-reporter/src/notify"
	"hygieia-reporter/src/scm"
)

// Column widths of the attempt table.
const (
	kindWidth   = 16
	codeWidth   = 5
	minNameCell = 12
)

// Renderer formats reports for a terminal of the given width.
type Renderer struct {
	Styles *StyleConfig
	Width  int
}

// NewRenderer returns a renderer with the default styles. A width of zero
// means 100 columns.
func NewRenderer(width int) *Renderer {
	if width <= 0 {
		width = 100
	}
	return &Renderer{Styles: DefaultStyles(), Width: width}
}

// Report renders the status line, the commits of the build event and one
// row per collector request.
func (r *Renderer) Report(rep *notify.Report) string {
	var b strings.Builder

	b.WriteString(r.Styles.TitleStyle().Render("Hygieia " + rep.Phase))
	b.WriteString("  ")
	b.WriteString(r.Styles.LabelStyle(rep.Status).Render(rep.Status.Display()))
	b.WriteString("\n")
	if rep.StatusMessage != "" {
		b.WriteString(r.Styles.MutedStyle().Render(Truncate(rep.StatusMessage, r.Width, true)))
		b.WriteString("\n")
	}

	if rep.Event != nil && len(rep.Event.SourceChangeSet) > 0 {
		b.WriteString("\n")
		b.WriteString(r.Commits(rep.Event.SourceChangeSet))
	}

	if len(rep.Attempts) == 0 {
		b.WriteString("\n")
		b.WriteString(r.Styles.MutedStyle().Render("Nothing published"))
		b.WriteString("\n")
		return b.String()
	}

	nameWidth := r.innerWidth() - kindWidth - codeWidth - 2
	if nameWidth < minNameCell {
		nameWidth = minNameCell
	}

	var rows []string
	rows = append(rows, r.Styles.MutedStyle().Render(
		TruncateAndPad("KIND", kindWidth, false)+" "+TruncateAndPad("NAME", nameWidth, false)+" "+"CODE"))
	for _, a := range rep.Attempts {
		code := fmt.Sprintf("%d", a.Response.Code)
		if a.Response.Code == 0 {
			code = "ERR"
		}
		rows = append(rows,
			TruncateAndPad(a.Kind, kindWidth, true)+" "+
				TruncateAndPad(a.Name, nameWidth, true)+" "+
				r.Styles.CodeStyle(a.Response.Created()).Render(code))
	}

	b.WriteString("\n")
	b.WriteString(r.Styles.BoxStyle().Render(strings.Join(rows, "\n")))
	b.WriteString("\n")

	if failed := rep.Failed(); len(failed) > 0 {
		b.WriteString(r.Styles.CodeStyle(false).Render(
			fmt.Sprintf("%d of %d requests failed", len(failed), len(rep.Attempts))))
		b.WriteString("\n")
	}
	return b.String()
}

// Commits renders one line per commit: short revision, author and the
// first line of the message.
func (r *Renderer) Commits(commits []scm.Commit) string {
	var b strings.Builder
	for _, c := range commits {
		rev := Truncate(c.RevisionID, 8, false)
		head, _, _ := strings.Cut(c.Message, "\n")
		line := fmt.Sprintf("%s %s %s",
			TruncateAndPad(rev, 8, false),
			TruncateAndPad(c.Author, 16, true),
			head)
		b.WriteString(Truncate(line, r.Width, true))
		b.WriteString("\n")
	}
	return b.String()
}

// Artifacts renders a table of resolved descriptors.
func (r *Renderer) Artifacts(descriptors []artifact.Descriptor) string {
	if len(descriptors) == 0 {
		return r.Styles.MutedStyle().Render("No artifacts matched") + "\n"
	}

	col := (r.innerWidth() - 3) / 4
	if col < minNameCell {
		col = minNameCell
	}
	rows := []string{r.Styles.MutedStyle().Render(strings.Join([]string{
		TruncateAndPad("FILE", col, false),
		TruncateAndPad("NAME", col, false),
		TruncateAndPad("VERSION", col, false),
		"GROUP",
	}, " "))}
	for _, d := range descriptors {
		rows = append(rows, strings.Join([]string{
			TruncateAndPad(d.CanonicalName, col, true),
			TruncateAndPad(d.ArtifactName, col, true),
			TruncateAndPad(d.Version, col, true),
			Truncate(d.Group, col, true),
		}, " "))
	}
	return r.Styles.BoxStyle().Render(strings.Join(rows, "\n")) + "\n"
}

// Records renders the ledger entries of one build, oldest first.
func (r *Renderer) Records(recs []contracts.PublishRecord) string {
	if len(recs) == 0 {
		return r.Styles.MutedStyle().Render("No publish records") + "\n"
	}

	const phaseWidth = 10
	nameWidth := r.innerWidth() - phaseWidth - kindWidth - codeWidth - 3
	if nameWidth < minNameCell {
		nameWidth = minNameCell
	}

	rows := []string{r.Styles.MutedStyle().Render(
		TruncateAndPad("PHASE", phaseWidth, false) + " " +
			TruncateAndPad("KIND", kindWidth, false) + " " +
			TruncateAndPad("ENDPOINT", nameWidth, false) + " CODE")}
	failed := 0
	for _, rec := range recs {
		code := fmt.Sprintf("%d", rec.ResponseCode)
		if rec.ResponseCode == 0 {
			code = "ERR"
		}
		if !rec.Succeeded {
			failed++
		}
		rows = append(rows,
			TruncateAndPad(rec.Phase, phaseWidth, true)+" "+
				TruncateAndPad(rec.Kind, kindWidth, true)+" "+
				TruncateAndPad(rec.Endpoint, nameWidth, true)+" "+
				r.Styles.CodeStyle(rec.Succeeded).Render(code))
	}

	out := r.Styles.BoxStyle().Render(strings.Join(rows, "\n")) + "\n"
	if failed > 0 {
		out += r.Styles.CodeStyle(false).Render(
			fmt.Sprintf("%d of %d requests failed", failed, len(recs))) + "\n"
	}
	return out
}

// innerWidth is the width left inside a box's border and padding.
func (r *Renderer) innerWidth() int {
	return r.Width - 4
}
