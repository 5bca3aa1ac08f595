package dashboard

import (
	"net/http"

	"sampahkita/internal/domain/region"
	"sampahkita/internal/services/report"
)

// Page is the data every dashboard template receives
type Page struct {
	Title  string
	Active string
	Years  []region.Year
	Year   region.Year
	View   any
}

type errorView struct {
	Status  int
	Message string
}

func newPage(title, active string, year region.Year, view any) Page {
	return Page{
		Title:  title,
		Active: active,
		Years:  region.SupportedYears,
		Year:   year,
		View:   view,
	}
}

// queryYear reads ?year=, defaulting to the first supported year
func queryYear(r *http.Request) (region.Year, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return region.SupportedYears[0], nil
	}
	return region.ParseYear(raw)
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/home", newPage("Beranda", "home", 0, h.reports.Home()))
}

func (h *Handler) handleEDA(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	view, err := h.reports.EDA(r.Context(), year)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, "pages/eda", newPage("Data & EDA", "eda", year, view))
}

func (h *Handler) handleClustering(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	view, err := h.reports.Clustering(r.Context(), year)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, "pages/clustering", newPage("Clustering", "clustering", year, view))
}

func (h *Handler) handleMap(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	view, err := h.reports.Map(r.Context(), year)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, "pages/map", newPage("Peta Cluster", "map", year, view))
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, err := report.ParseMode(q.Get("mode"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	var year region.Year
	if mode == report.ModeYear {
		if year, err = queryYear(r); err != nil {
			h.renderError(w, r, err)
			return
		}
	}

	view, err := h.reports.Lookup(r.Context(), mode, year, q.Get("region"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, "pages/lookup", newPage("Cari Kabupaten", "lookup", year, view))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, id string, page Page) {
	h.renderStatus(w, r, http.StatusOK, id, page)
}

func (h *Handler) renderStatus(w http.ResponseWriter, r *http.Request, status int, id string, page Page) {
	body, err := h.pages.Render(id, page)
	if err != nil {
		h.log.Errorw("Failed to render page", "template", id, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	h.logError(r, status, err)
	h.renderStatus(w, r, status, "pages/error", newPage("Galat", "", 0, errorView{
		Status:  status,
		Message: messageFor(status, err),
	}))
}
