package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/tenderpricing/internal/importer"
	"github.com/Simplici0/tenderpricing/internal/observability"
	"github.com/Simplici0/tenderpricing/internal/pricing"
	"github.com/Simplici0/tenderpricing/internal/report"
	"github.com/Simplici0/tenderpricing/internal/tools"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

func (s *server) handleModel(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req, err := tools.DecodeModelRequest(data)
	if err != nil {
		s.svc.Reject(r.Context(), tools.NameBuildModel, err)
		s.writeError(w, r, err)
		return
	}

	view, err := s.svc.BuildModel(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *server) handleCompare(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req, err := tools.DecodeCompareRequest(data)
	if err != nil {
		s.svc.Reject(r.Context(), tools.NameCompare, err)
		s.writeError(w, r, err)
		return
	}

	view, err := s.svc.Compare(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// reportDocument decodes a report request body into a renderer document.
func (s *server) reportDocument(w http.ResponseWriter, r *http.Request) (report.Document, bool) {
	data, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return report.Document{}, false
	}
	req, err := tools.DecodeReportRequest(data)
	if err != nil {
		s.svc.Reject(r.Context(), tools.NameReportHTML, err)
		s.writeError(w, r, err)
		return report.Document{}, false
	}
	return s.svc.Document(req), true
}

func (s *server) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	d, ok := s.reportDocument(w, r)
	if !ok {
		return
	}
	out, err := tools.Render(r.Context(), s.svc, d, "html", report.HTML)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Report-ID", d.ID)
	_, _ = w.Write([]byte(out))
}

func (s *server) handleReportXLSX(w http.ResponseWriter, r *http.Request) {
	s.writeBinaryReport(w, r, "xlsx", contentTypeXLSX, report.XLSX)
}

func (s *server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	s.writeBinaryReport(w, r, "pdf", contentTypePDF, report.PDF)
}

func (s *server) writeBinaryReport(w http.ResponseWriter, r *http.Request, format, contentType string, render func(report.Document) ([]byte, error)) {
	d, ok := s.reportDocument(w, r)
	if !ok {
		return
	}
	out, err := tools.Render(r.Context(), s.svc, d, format, render)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="pricing-%s.%s"`, d.ID, format))
	w.Header().Set("X-Report-ID", d.ID)
	_, _ = w.Write(out)
}

type importResponse struct {
	FileName     string         `json:"file_name"`
	Count        int            `json:"count"`
	PricingItems []pricing.Item `json:"pricing_items"`
}

// handleImport turns an uploaded schedule in the "file" form field into
// pricing items ready for build_pricing_model.
func (s *server) handleImport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		s.importDone(r.Context(), "", 0, start, &tools.ArgumentError{Err: fmt.Errorf("parse upload: %w", err)})
		s.writeError(w, r, &tools.ArgumentError{Err: errors.New("expected a multipart upload with a file field")})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, &tools.ArgumentError{Err: errors.New("file field is required")})
		return
	}
	defer file.Close()

	items, err := importer.Parse(file, header.Filename)
	s.importDone(r.Context(), header.Filename, len(items), start, err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, importResponse{
		FileName:     header.Filename,
		Count:        len(items),
		PricingItems: items,
	})
}

func (s *server) importDone(ctx context.Context, fileName string, count int, start time.Time, err error) {
	event := observability.Event{
		Type:      observability.EventScheduleImport,
		Level:     slog.LevelInfo,
		Timestamp: time.Now(),
		Operation: "import_schedule",
		Duration:  time.Since(start),
		Err:       err,
		Data:      map[string]any{"file": fileName, "items": count},
	}
	if err != nil {
		event.Type = observability.EventRequestRejected
		event.Level = slog.LevelWarn
	}
	s.observer.OnEvent(ctx, event)
}

func (s *server) handleToolList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.tools.List()})
}

// handleToolCall runs a named tool. Domain failures come back as a 200 with
// is_error set, the way a tool client expects them.
func (s *server) handleToolCall(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	name := chi.URLParam(r, "name")
	res, err := s.tools.Execute(r.Context(), name, json.RawMessage(data))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
