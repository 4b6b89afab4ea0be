package service

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog"

	"github.com/gvr2111/statement-importer/dto"
)

// minDocumentText is the extracted-text length below which a statement is
// treated as scanned and routed through OCR.
const minDocumentText = 40

// PDFProcessor turns a statement document into ordered per-page text.
type PDFProcessor interface {
	ExtractPages(pdfData []byte, password string) ([]dto.PageText, error)
}

// OCRClient extracts text from a page image on disk.
type OCRClient interface {
	ExtractTextFromImage(imagePath string) (string, error)
}

type pdfProcessor struct {
	ocr    OCRClient
	logger zerolog.Logger
}

// NewPDFProcessor returns the default processor. ocr may be nil, which
// disables the scanned-statement fallback.
func NewPDFProcessor(ocr OCRClient, logger zerolog.Logger) PDFProcessor {
	return &pdfProcessor{ocr: ocr, logger: logger}
}

// ExtractPages extracts row-ordered text per page, decrypting first when a
// password is supplied. Encrypted statements with a missing or rejected
// password fail with dto.ErrAuthentication. When the whole document yields
// almost no text it is re-read as page images and OCRed.
func (p *pdfProcessor) ExtractPages(pdfData []byte, password string) ([]dto.PageText, error) {
	data := pdfData

	if password != "" {
		dec, err := decryptPDF(pdfData, password)
		switch {
		case err == nil:
			data = dec
		case strings.Contains(err.Error(), "not encrypted"):
			// Password supplied for a plain document; use it as-is.
		default:
			return nil, fmt.Errorf("statement password rejected: %w", dto.ErrAuthentication)
		}
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if password == "" && strings.Contains(strings.ToLower(err.Error()), "encrypt") {
			return nil, fmt.Errorf("open statement: %w", dto.ErrAuthentication)
		}
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	var pages []dto.PageText
	var totalText int
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		pg := r.Page(pageIndex)
		if pg.V.IsNull() {
			continue
		}

		rows, rerr := pg.GetTextByRow()
		if rerr != nil {
			p.logger.Warn().Int("page", pageIndex).Err(rerr).Msg("page text extraction failed")
			continue
		}

		page := dto.PageText{Number: pageIndex}
		for _, row := range rows {
			var line dto.TextLine
			var sb strings.Builder
			for _, word := range row.Content {
				sb.WriteString(word.S)
				line.Spans = append(line.Spans, dto.TextSpan{Text: word.S, X: word.X})
			}
			line.Text = sb.String()
			totalText += len(strings.TrimSpace(line.Text))
			page.Lines = append(page.Lines, line)
		}
		pages = append(pages, page)
	}

	if totalText < minDocumentText {
		if p.ocr == nil {
			return nil, dto.ErrNoTextExtracted
		}
		p.logger.Info().Msg("statement appears scanned, falling back to image OCR")
		pages, err = p.ocrPages(data, password)
		if err != nil {
			return nil, err
		}
	}

	if len(pages) == 0 {
		return nil, dto.ErrNoTextExtracted
	}
	return pages, nil
}

// ocrPages extracts page images with pdfcpu and runs each through OCR.
// OCR pages carry no span offsets, so the position classifier cannot be used
// on them.
func (p *pdfProcessor) ocrPages(pdfData []byte, password string) ([]dto.PageText, error) {
	tempDir, err := os.MkdirTemp("", "stmt_images")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	tempFile, err := os.CreateTemp("", "stmt-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(pdfData); err != nil {
		tempFile.Close()
		return nil, fmt.Errorf("failed to write pdf data: %w", err)
	}
	tempFile.Close()

	conf := model.NewDefaultConfiguration()
	if password != "" {
		conf.UserPW = password
	}

	// nil selects all pages.
	if err := api.ExtractImagesFile(tempFile.Name(), tempDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract page images: %w", err)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var pages []dto.PageText
	for i, name := range names {
		text, ocrErr := p.ocr.ExtractTextFromImage(filepath.Join(tempDir, name))
		if ocrErr != nil {
			p.logger.Warn().Str("image", name).Err(ocrErr).Msg("OCR failed for page image")
			continue
		}

		page := dto.PageText{Number: i + 1}
		for _, ln := range strings.Split(text, "\n") {
			page.Lines = append(page.Lines, dto.TextLine{Text: ln})
		}
		pages = append(pages, page)
	}

	if len(pages) == 0 {
		return nil, dto.ErrNoTextExtracted
	}
	return pages, nil
}

func decryptPDF(data []byte, password string) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password

	var out bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(data), &out, conf); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
