package pdfparse

import (
	"regexp"
	"strings"
)

var (
	idRe     = regexp.MustCompile(`Patient ID:\s*(\d+)`)
	nameRe   = regexp.MustCompile(`Name:\s*([^\n]+)`)
	wardRe   = regexp.MustCompile(`Ward:\s*([^\n]+)`)
	dobRe    = regexp.MustCompile(`DOB:\s*([^\n]+)`)
	genderRe = regexp.MustCompile(`Gender:\s*(\w+)`)
	ageRe    = regexp.MustCompile(`Age:\s*(\d+)`)

	// noteStampRe finds the timestamps that open each note row; the text
	// between two stamps is one note chunk.
	noteStampRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}`)

	// noteChunkRe splits a chunk into timestamp, staff and note text. The
	// staff column may carry a ", ROLE" suffix; two or more spaces separate
	// it from the note.
	noteChunkRe = regexp.MustCompile(`(?s)^(\d{4}-\d{2}-\d{2} \d{2}:\d{2})\s+([^,\n]+(?:, [A-Z]+)?)\s{2,}(.+)$`)

	// noteLineRe anchors the fallback line scan on a leading timestamp.
	noteLineRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2})`)
)

// RegexExtractor matches labels and values on the same line with capture
// groups, the layout of the later report generator. Care notes are parsed by
// chunking the notes text on timestamps; when that finds nothing a
// line-oriented heuristic takes over.
type RegexExtractor struct{}

// Extract implements Extractor.
func (RegexExtractor) Extract(pages []string, targetID string) map[string]Record {
	out := make(map[string]Record)
	var current *Record
	inNotes := false

	flush := func() {
		if current == nil || current.ID == "" {
			current = nil
			return
		}
		if targetID == "" || current.ID == targetID {
			out[current.ID] = *current
		}
		current = nil
	}

	for _, text := range pages {
		if text == "" {
			continue
		}

		if strings.Contains(text, patientTitle) {
			flush()
			current = &Record{Name: unknownName}
			inNotes = false
		}
		if current == nil {
			continue
		}

		if current.ID == "" {
			if m := idRe.FindStringSubmatch(text); m != nil {
				current.ID = strings.TrimSpace(m[1])
			}
		}
		if current.Name == unknownName {
			if m := nameRe.FindStringSubmatch(text); m != nil {
				current.Name = strings.TrimSpace(m[1])
			}
		}
		if current.Info.Ward == "" {
			if m := wardRe.FindStringSubmatch(text); m != nil {
				current.Info.Ward = strings.TrimSpace(m[1])
			}
		}
		if current.Info.DOB == "" {
			if m := dobRe.FindStringSubmatch(text); m != nil {
				current.Info.DOB = strings.TrimSpace(m[1])
			}
		}
		if current.Info.Gender == "" {
			if m := genderRe.FindStringSubmatch(text); m != nil {
				current.Info.Gender = strings.TrimSpace(m[1])
			}
		}
		if current.Info.Age == "" {
			if m := ageRe.FindStringSubmatch(text); m != nil {
				current.Info.Age = strings.TrimSpace(m[1])
			}
		}

		notesText := ""
		if strings.Contains(text, notesHeading) {
			inNotes = true
			if _, after, ok := strings.Cut(text, notesHeading); ok {
				notesText = strings.TrimSpace(after)
			}
		} else if inNotes {
			// Continuation page: the notes table resumed without a heading.
			notesText = text
		}
		if notesText != "" {
			current.CareNotes = append(current.CareNotes, parseNotes(notesText)...)
		}
	}
	flush()
	return out
}

// parseNotes extracts note rows from the text following the section heading.
func parseNotes(text string) []CareNote {
	text = stripTableHeader(text)

	notes := chunkNotes(text)
	if len(notes) == 0 {
		notes = lineNotes(text)
	}
	return notes
}

// stripTableHeader removes the "Date & Time  Staff Member  Notes" header row
// when present.
func stripTableHeader(text string) string {
	if !strings.Contains(text, tableHeader) || !strings.Contains(text, "Staff Member") {
		return text
	}
	pos := strings.Index(text, "Notes")
	if pos < 0 {
		return text
	}
	end := strings.Index(text[pos:], "\n")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(text[pos+end:])
}

// chunkNotes is the primary strategy: split on timestamps, then capture
// staff and note inside each chunk.
func chunkNotes(text string) []CareNote {
	idxs := noteStampRe.FindAllStringIndex(text, -1)
	if len(idxs) == 0 {
		return nil
	}

	var notes []CareNote
	for i, idx := range idxs {
		end := len(text)
		if i+1 < len(idxs) {
			end = idxs[i+1][0]
		}
		chunk := strings.TrimSpace(text[idx[0]:end])
		m := noteChunkRe.FindStringSubmatch(chunk)
		if m == nil {
			continue
		}
		date, staff, note := strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), strings.TrimSpace(m[3])
		if date != "" && staff != "" && note != "" {
			notes = append(notes, CareNote{Date: date, Staff: staff, Note: note})
		}
	}
	return notes
}

// lineNotes is the fallback: a line starting with a timestamp opens a note,
// the remainder splits on a double-space boundary into staff and note, and
// following lines without a timestamp continue the same note.
func lineNotes(text string) []CareNote {
	lines := strings.Split(text, "\n")
	var notes []CareNote

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		m := noteLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		date := m[1]
		rest := strings.TrimSpace(line[len(date):])
		staff, noteStart, ok := strings.Cut(rest, "  ")
		if !ok {
			continue
		}

		noteLines := []string{strings.TrimSpace(noteStart)}
		j := i + 1
		for j < len(lines) && !noteLineRe.MatchString(strings.TrimSpace(lines[j])) {
			if l := strings.TrimSpace(lines[j]); l != "" {
				noteLines = append(noteLines, l)
			}
			j++
		}
		notes = append(notes, CareNote{
			Date:  date,
			Staff: strings.TrimSpace(staff),
			Note:  strings.Join(noteLines, "\n"),
		})
		i = j - 1
	}
	return notes
}
