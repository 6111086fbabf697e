// Package ingest turns the raw FAQ spreadsheet export into clean Q&A entries
// and loads their embeddings into a vector index.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Raw export layout: column 1 holds the running number, column 2 holds
// alternating "Q. ..." / "A. ..." rows.
const (
	rawNumCol  = 1
	rawTextCol = 2
)

// ErrNoEntries is returned when a CSV yields no Q&A pairs.
var ErrNoEntries = errors.New("no Q&A entries found")

var (
	qPrefix = regexp.MustCompile(`^Q\.\s*`)
	aPrefix = regexp.MustCompile(`^A\.\s*`)
)

// Entry is one cleaned FAQ pair.
type Entry struct {
	ID       string
	Num      *int
	Question string
	Answer   string
	Category string
}

// Text is the document embedded for the entry.
func (e Entry) Text() string {
	return "Q: " + e.Question + "\nA: " + e.Answer
}

// decoder returns a reader yielding UTF-8 for the named source encoding.
func decoder(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "cp949", "euc-kr", "euckr":
		return transform.NewReader(r, korean.EUCKR.NewDecoder()), nil
	case "", "utf-8", "utf8", "utf-8-sig":
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// ParseRawCSV extracts Q/A pairs from the raw export. The first line is a
// header. A question whose next row is not an answer is skipped.
func ParseRawCSV(r io.Reader, encoding string) ([]Entry, error) {
	dr, err := decoder(r, encoding)
	if err != nil {
		return nil, err
	}
	rows, err := newCSVReader(dr).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read raw csv: %w", err)
	}
	if len(rows) > 0 {
		rows = rows[1:]
	}

	var out []Entry
	for i, row := range rows {
		text := cell(row, rawTextCol)
		if !strings.HasPrefix(text, "Q.") {
			continue
		}
		next := ""
		if i+1 < len(rows) {
			next = cell(rows[i+1], rawTextCol)
		}
		if !strings.HasPrefix(next, "A.") {
			continue
		}

		e := Entry{
			Question: strings.TrimSpace(qPrefix.ReplaceAllString(text, "")),
			Answer:   strings.TrimSpace(aPrefix.ReplaceAllString(next, "")),
		}
		e.Num = parseNum(cell(row, rawNumCol))
		if e.Num != nil {
			e.ID = fmt.Sprintf("QA_%03d", *e.Num)
		} else {
			e.ID = fmt.Sprintf("QA_%03d", len(out)+1)
		}
		e.Category = Categorize(e.Question)
		out = append(out, e)
	}
	return out, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// parseNum accepts integers and integral floats ("3", "3.0").
func parseNum(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int(f)
	return &n
}

var categoryRules = []struct {
	name     string
	keywords []string
}{
	{"pricing", []string{"요금제", "요금", "가격"}},
	{"language", []string{"언어"}},
	{"feature", []string{"기능"}},
	{"overview", []string{"어떤 서비스", "어떤 회사"}},
	{"support", []string{"고객센터", "문의"}},
}

// Categorize assigns a keyword category; the first matching rule wins.
func Categorize(question string) string {
	for _, rule := range categoryRules {
		for _, k := range rule.keywords {
			if strings.Contains(question, k) {
				return rule.name
			}
		}
	}
	return "general"
}

var cleanHeader = []string{"id", "num", "question", "answer", "category"}

// WriteCleanCSV writes entries as UTF-8 with a BOM.
func WriteCleanCSV(w io.Writer, entries []Entry) error {
	tw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(tw)
	if err := cw.Write(cleanHeader); err != nil {
		return err
	}
	for _, e := range entries {
		num := ""
		if e.Num != nil {
			num = strconv.Itoa(*e.Num)
		}
		if err := cw.Write([]string{e.ID, num, e.Question, e.Answer, e.Category}); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return tw.Close()
}

// ReadCleanCSV reads a clean CSV by header name. id, question and answer are
// required; num and category are optional.
func ReadCleanCSV(r io.Reader) ([]Entry, error) {
	dr, _ := decoder(r, "utf-8")
	cr := newCSVReader(dr)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoEntries
	}
	if err != nil {
		return nil, fmt.Errorf("read clean csv header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, req := range []string{"id", "question", "answer"} {
		if _, ok := idx[req]; !ok {
			return nil, fmt.Errorf("clean csv: missing column %q", req)
		}
	}
	get := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok {
			return ""
		}
		return cell(row, i)
	}

	var out []Entry
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read clean csv: %w", err)
		}
		out = append(out, Entry{
			ID:       get(row, "id"),
			Num:      parseNum(get(row, "num")),
			Question: get(row, "question"),
			Answer:   get(row, "answer"),
			Category: get(row, "category"),
		})
	}
	return out, nil
}
