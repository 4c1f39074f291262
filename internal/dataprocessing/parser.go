package dataprocessing

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/toshiakit/string-vs-cell/internal/errors"
	"github.com/toshiakit/string-vs-cell/pkg/contracts/domain"
)

// Column positions of the fixed source schema
const (
	ColumnName   = 1
	ColumnSex    = 2
	ColumnBirths = 3

	schemaWidth = 3
)

// SourceColumns is the header a source file may carry on its first row
var SourceColumns = []string{"name", "sex", "births"}

// utf8BOM is written by some editors and by spreadsheet CSV exports
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseOptions controls how a source file is split into fields
type ParseOptions struct {
	// Whitespace splits rows on runs of spaces and tabs instead of commas
	Whitespace bool
	// SkipValidation disables struct-tag validation of parsed records
	SkipValidation bool
}

// Parser turns 3-column name files into records.
// Records come back without a year; the caller stamps it.
type Parser struct {
	opts     ParseOptions
	validate *validator.Validate
	logger   *slog.Logger
}

// NewParser creates a parser. A nil logger uses slog.Default().
func NewParser(opts ParseOptions, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		opts:     opts,
		validate: validator.New(),
		logger:   logger,
	}
}

// ParseFile is a convenience wrapper around NewParser(opts, nil).ParseFile(path)
func ParseFile(path string, opts ParseOptions) ([]domain.Record, error) {
	return NewParser(opts, nil).ParseFile(path)
}

// ParseFile opens path and parses its rows
func (p *Parser) ParseFile(path string) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewFileNotFoundError(path, err)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open %s", path), err).
			WithContext(apperrors.ContextPath, path)
	}
	defer f.Close()

	return p.ParseReader(f, path)
}

// ParseReader parses rows from r. name identifies the source in errors.
func (p *Parser) ParseReader(r io.Reader, name string) ([]domain.Record, error) {
	var (
		records []domain.Record
		err     error
	)
	r = skipBOM(r)
	if p.opts.Whitespace {
		records, err = p.parseWhitespace(r, name)
	} else {
		records, err = p.parseDelimited(r, name)
	}
	if err != nil {
		return nil, err
	}

	p.logger.Debug("Parsed source file",
		slog.String("path", name),
		slog.Int("rows", len(records)))

	return records, nil
}

// skipBOM drops a leading UTF-8 byte order mark so it never ends up in the
// first name or hides the header row
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

func (p *Parser) parseDelimited(r io.Reader, name string) ([]domain.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	var records []domain.Record
	first := true
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			line := 0
			if errors.As(err, &csvErr) {
				line = csvErr.Line
			}
			return nil, parseError(name, line, 0, "malformed row", err)
		}

		line, _ := reader.FieldPos(0)
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		if first {
			first = false
			if isHeader(fields) {
				continue
			}
		}

		rec, err := p.parseFields(fields, name, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (p *Parser) parseWhitespace(r io.Reader, name string) ([]domain.Record, error) {
	scanner := bufio.NewScanner(r)

	var records []domain.Record
	line := 0
	first := true
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if first {
			first = false
			if isHeader(fields) {
				continue
			}
		}

		rec, err := p.parseFields(fields, name, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, parseError(name, line, 0, "failed to read", err)
	}
	return records, nil
}

// parseFields converts one row to a record
func (p *Parser) parseFields(fields []string, name string, line int) (domain.Record, error) {
	if len(fields) != schemaWidth {
		return domain.Record{}, apperrors.NewSchemaMismatchError(
			fmt.Sprintf("%s:%d: expected %d columns, got %d", name, line, schemaWidth, len(fields))).
			WithContext(apperrors.ContextPath, name).
			WithContext(apperrors.ContextLine, line)
	}

	sex := domain.Sex(strings.TrimSpace(fields[ColumnSex-1]))
	if !sex.Valid() {
		return domain.Record{}, parseError(name, line, ColumnSex,
			fmt.Sprintf("invalid sex %q", fields[ColumnSex-1]), nil)
	}

	raw := strings.TrimSpace(fields[ColumnBirths-1])
	births, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return domain.Record{}, parseError(name, line, ColumnBirths,
			fmt.Sprintf("births %q is not an integer", raw), err)
	}
	if births < 0 {
		return domain.Record{}, parseError(name, line, ColumnBirths,
			fmt.Sprintf("births %d is negative", births), nil)
	}

	rec := domain.Record{
		Name:   strings.TrimSpace(fields[ColumnName-1]),
		Sex:    sex,
		Births: births,
	}

	if !p.opts.SkipValidation {
		if err := p.validate.StructExcept(rec, "Year"); err != nil {
			return domain.Record{}, parseError(name, line, 0, "invalid record", err)
		}
	}
	return rec, nil
}

// isHeader reports whether fields spell the source header, ignoring case and spacing
func isHeader(fields []string) bool {
	if len(fields) != len(SourceColumns) {
		return false
	}
	for i, f := range fields {
		if !strings.EqualFold(strings.TrimSpace(f), SourceColumns[i]) {
			return false
		}
	}
	return true
}

func parseError(name string, line, column int, msg string, cause error) *apperrors.AppError {
	prefix := fmt.Sprintf("%s:%d", name, line)
	if column > 0 {
		prefix = fmt.Sprintf("%s:%d:%d", name, line, column)
	}
	e := apperrors.NewParsingError(prefix+": "+msg, cause).
		WithContext(apperrors.ContextPath, name).
		WithContext(apperrors.ContextLine, line)
	if column > 0 {
		e.WithContext(apperrors.ContextColumn, column)
	}
	return e
}
