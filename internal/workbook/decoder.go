// Package workbook decodes spreadsheet files into in-memory cell grids.
package workbook

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/dutyroster/internal/models"
)

var (
	// ErrUnsupportedFormat is returned for file types the decoder cannot read.
	ErrUnsupportedFormat = errors.New("unsupported workbook format")
	// ErrEmptyWorkbook is returned when the content holds no sheets.
	ErrEmptyWorkbook = errors.New("empty workbook")
)

var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Decoder reads .xlsx, .xls and .ods workbooks.
type Decoder struct {
	logger *zap.Logger
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) DecoderOption {
	return func(d *Decoder) {
		d.logger = l
	}
}

// NewDecoder returns a new Decoder.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	return d
}

// Extensions returns the file extensions the decoder accepts.
func Extensions() []string {
	return []string{".xlsx", ".xlsm", ".xls", ".ods"}
}

// Supported reports whether ext (with leading dot) is a readable workbook type.
func Supported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range Extensions() {
		if e == ext {
			return true
		}
	}
	return false
}

// Open reads and decodes the workbook at path. The format comes from the
// extension, or from the content when the extension is not a workbook type.
func (d *Decoder) Open(path string) (*models.Workbook, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(ext) {
		ext = Sniff(content)
	}
	wb, err := d.Decode(content, ext)
	if err != nil {
		return nil, err
	}
	wb.Name = filepath.Base(path)
	return wb, nil
}

// Decode parses content according to ext, which should include the leading dot.
// An empty ext is resolved with Sniff.
func (d *Decoder) Decode(content []byte, ext string) (*models.Workbook, error) {
	if len(content) == 0 {
		return nil, ErrEmptyWorkbook
	}
	if ext == "" {
		ext = Sniff(content)
	}

	var (
		wb  *models.Workbook
		err error
	)
	switch strings.ToLower(ext) {
	case ".xlsx", ".xlsm":
		wb, err = decodeXLSX(content)
	case ".xls":
		wb, err = decodeXLS(content)
	case ".ods":
		wb, err = decodeODS(content)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	if len(wb.Sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}
	d.logger.Debug("Decoded workbook",
		zap.String("format", ext),
		zap.Strings("sheets", wb.SheetNames()))
	return wb, nil
}

// Sniff guesses the workbook extension from the leading bytes. It returns ""
// when the content is not a recognizable workbook.
func Sniff(content []byte) string {
	switch {
	case bytes.HasPrefix(content, oleMagic):
		return ".xls"
	case bytes.HasPrefix(content, []byte("PK")):
		zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
		if err != nil {
			return ""
		}
		for _, f := range zr.File {
			switch f.Name {
			case odsContentPath:
				return ".ods"
			case "xl/workbook.xml":
				return ".xlsx"
			}
		}
	}
	return ""
}

// IsSpreadsheet reports whether content starts with a zip or OLE2 signature.
func IsSpreadsheet(content []byte) bool {
	return bytes.HasPrefix(content, []byte("PK")) || bytes.HasPrefix(content, oleMagic)
}
