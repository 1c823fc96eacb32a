// Package export renders care note lists as downloadable Excel and PDF
// documents for the admin reporting screens.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"ward-notes-server/internal/models"
)

var columns = []string{"Date & Time", "Ward", "Patient ID", "Patient Name", "Staff", "Note"}

// staffLabel resolves the display name for a note's author: PDF-imported
// notes carry the staff name from the source document, API notes the
// username of the author.
func staffLabel(n models.CareNote) string {
	if n.IsPDFNote {
		return n.StaffName
	}
	return n.Username
}

// Excel writes the notes to a single-sheet workbook.
func Excel(notes []models.CareNote) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Care Notes"
	f.SetSheetName("Sheet1", sheet)

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "F1", headerStyle); err != nil {
		return nil, err
	}

	for i, n := range notes {
		row := i + 2
		values := []interface{}{
			n.Timestamp.Format("2006-01-02 15:04"),
			n.WardID,
			n.PatientID,
			n.PatientName,
			staffLabel(n),
			n.Note,
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 18); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "F", "F", 60); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PDF writes the notes to a landscape A4 table, one wrapped row per note.
func PDF(notes []models.CareNote) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, "Care Notes Export")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s, %d notes", time.Now().Format("2006-01-02 15:04"), len(notes)))
	pdf.Ln(10)

	widths := []float64{32, 22, 24, 40, 32, 127}
	pdf.SetFont("Helvetica", "B", 9)
	for i, col := range columns {
		pdf.CellFormat(widths[i], 7, col, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, n := range notes {
		cells := []string{
			n.Timestamp.Format("2006-01-02 15:04"),
			n.WardID,
			n.PatientID,
			n.PatientName,
			staffLabel(n),
		}
		lines := pdf.SplitText(n.Note, widths[5]-2)
		height := 6 * float64(len(lines))
		if height < 6 {
			height = 6
		}

		x, y := pdf.GetXY()
		for i, cell := range cells {
			pdf.CellFormat(widths[i], height, cell, "1", 0, "L", false, 0, "")
		}
		pdf.MultiCell(widths[5], 6, n.Note, "1", "L", false)
		pdf.SetXY(x, y+height)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
