// Package report renders task listings as PDF documents.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/abatilo/taskman/internal/manager"
	"github.com/abatilo/taskman/internal/task"
)

const (
	fontFamily = "Helvetica"
	margin     = 15.0
	rowHeight  = 7.0
)

// column widths in mm; they add up to the printable A4 width.
var columns = []struct {
	title string
	width float64
}{
	{"ID", 22},
	{"Title", 70},
	{"Status", 28},
	{"Priority", 22},
	{"Due Date", 38},
}

// Write renders tasks and stats as an A4 PDF to w. now stamps the header.
func Write(w io.Writer, tasks []*task.Task, stats manager.Stats, now time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Task Report", false)
	pdf.SetAuthor("taskman", false)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-margin)
		pdf.SetFont(fontFamily, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 18)
	pdf.CellFormat(0, 10, "Task Report", "", 1, "C", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	pdf.CellFormat(0, 6, "Generated "+now.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	hr(pdf)

	sectionTitle(pdf, "Summary")
	kvLine(pdf, "Total Tasks", fmt.Sprintf("%d", stats.Total))
	kvLine(pdf, "Completed", fmt.Sprintf("%d", stats.Completed))
	kvLine(pdf, "Pending", fmt.Sprintf("%d", stats.Pending))
	kvLine(pdf, "In Progress", fmt.Sprintf("%d", stats.InProgress))
	kvLine(pdf, "Completion Rate", fmt.Sprintf("%.2f%%", stats.CompletionRate))
	hr(pdf)

	sectionTitle(pdf, "Tasks")
	if len(tasks) == 0 {
		pdf.SetFont(fontFamily, "I", 11)
		pdf.CellFormat(0, rowHeight, "No tasks found.", "", 1, "L", false, 0, "")
	} else {
		tableHeader(pdf)
		pdf.SetFont(fontFamily, "", 10)
		for i, t := range tasks {
			if pdf.GetY()+rowHeight > 297-2*margin {
				pdf.AddPage()
				tableHeader(pdf)
				pdf.SetFont(fontFamily, "", 10)
			}
			due := t.DueDate
			if due == "" {
				due = "Not set"
			}
			cells := []string{task.ShortID(t.ID), fitText(pdf, tr(t.Title), columns[1].width-2), string(t.Status), string(t.Priority), due}
			fill := i%2 == 1
			for j, c := range columns {
				pdf.CellFormat(c.width, rowHeight, cells[j], "1", 0, "L", fill, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func tableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, rowHeight, c.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFillColor(245, 245, 245)
}

func sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(fontFamily, "B", 12)
	pdf.CellFormat(0, 8, s, "", 1, "L", false, 0, "")
}

func kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(fontFamily, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(margin, y, 210-margin, y)
	pdf.SetY(y + 3)
}

// fitText trims s with an ellipsis until it fits in width at the current font.
// s is already translated to the single-byte core font encoding.
func fitText(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
