package web

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/hsclassify/internal/core"
	"github.com/JonMunkholm/hsclassify/internal/hscode"
	"github.com/JonMunkholm/hsclassify/internal/logging"
)

// multipartOverhead is allowed on top of the file size for form fields and boundaries.
const multipartOverhead = 1 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type uploadResponse struct {
	Filename       string           `json:"filename"`
	BatchID        string           `json:"batch_id"`
	Rows           []core.RowResult `json:"rows"`
	TotalProcessed int              `json:"total_processed"`
	Successful     int              `json:"successful"`
	Failed         int              `json:"failed"`
	Skipped        int              `json:"skipped"`
}

// handleUploadExcel classifies every row of an uploaded .xlsx workbook.
//
// With ?format=xlsx the response is the uploaded workbook with result columns
// appended; otherwise it is JSON.
func (s *Server) handleUploadExcel(w http.ResponseWriter, r *http.Request) {
	maxSize := s.service.MaxFileSize()
	if maxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.respondError(w, r, fmt.Errorf("%w: %w", core.ErrFileTooLarge, err))
			return
		}
		s.respondError(w, r, fmt.Errorf("%w form: %w", errInvalidRequest, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, core.ErrNoFile)
		return
	}
	defer file.Close()

	wb, err := core.ParseWorkbook(header.Filename, file, maxSize)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	log := logging.FromContext(r.Context())
	log.Info("workbook received",
		"filename", header.Filename,
		"sheet", wb.Sheet,
		"rows", len(wb.Descriptions),
	)

	country := hscode.Jurisdiction(r.FormValue("country"))
	report, err := s.service.ClassifyWorkbook(r.Context(), wb, country)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "xlsx") {
		out, err := core.AnnotateWorkbook(wb, report)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", annotatedName(header.Filename)))
		if _, err := w.Write(out); err != nil {
			log.Error("write workbook", "error", err)
		}
		return
	}

	writeJSON(w, r, uploadResponse{
		Filename:       header.Filename,
		BatchID:        report.ID,
		Rows:           report.Rows,
		TotalProcessed: report.TotalProcessed,
		Successful:     report.Successful,
		Failed:         report.Failed,
		Skipped:        report.Skipped,
	})
}

// annotatedName turns "products.xlsx" into "products_hsc.xlsx".
func annotatedName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_hsc.xlsx"
}
