package dashboard

import (
	"bytes"
	"fmt"
	"net/http"

	"sampahkita/internal/adapters/charts"
	"sampahkita/internal/domain/region"
)

// writeBuffered renders into memory first so a failure can still set the status
func (h *Handler) writeBuffered(w http.ResponseWriter, r *http.Request, contentType string, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		w.Header().Del("Content-Disposition")
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleBarHTML(w http.ResponseWriter, r *http.Request) {
	h.withYear(w, r, func(year region.Year) {
		h.writeBuffered(w, r, "text/html; charset=utf-8", func(buf *bytes.Buffer) error {
			bar, err := h.reports.WasteBar(r.Context(), year)
			if err != nil {
				return err
			}
			return charts.RenderBarHTML(buf, bar)
		})
	})
}

func (h *Handler) handleScatterHTML(w http.ResponseWriter, r *http.Request) {
	h.withYear(w, r, func(year region.Year) {
		h.writeBuffered(w, r, "text/html; charset=utf-8", func(buf *bytes.Buffer) error {
			sc, err := h.reports.ProjectionScatter(r.Context(), year)
			if err != nil {
				return err
			}
			return charts.RenderScatterHTML(buf, sc)
		})
	})
}

func (h *Handler) handleBarPNG(w http.ResponseWriter, r *http.Request) {
	h.withYear(w, r, func(year region.Year) {
		h.writeBuffered(w, r, "image/png", func(buf *bytes.Buffer) error {
			bar, err := h.reports.WasteBar(r.Context(), year)
			if err != nil {
				return err
			}
			return charts.RenderBarPNG(buf, bar)
		})
	})
}

func (h *Handler) handleScatterPNG(w http.ResponseWriter, r *http.Request) {
	h.withYear(w, r, func(year region.Year) {
		h.writeBuffered(w, r, "image/png", func(buf *bytes.Buffer) error {
			sc, err := h.reports.ProjectionScatter(r.Context(), year)
			if err != nil {
				return err
			}
			return charts.RenderScatterPNG(buf, sc)
		})
	})
}

func (h *Handler) handleWorkbook(w http.ResponseWriter, r *http.Request) {
	h.withYear(w, r, func(year region.Year) {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="sampahkita_cluster_%d.xlsx"`, year))
		h.writeBuffered(w, r, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", func(buf *bytes.Buffer) error {
			return h.reports.WriteWorkbook(r.Context(), buf, year)
		})
	})
}

func (h *Handler) withYear(w http.ResponseWriter, r *http.Request, fn func(region.Year)) {
	year, err := pathYear(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	fn(year)
}
