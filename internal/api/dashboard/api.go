package dashboard

import (
	"net/http"
	"strconv"

	"sampahkita/internal/domain/region"
	"sampahkita/pkg/errors"
)

// pathYear validates the {year} path segment
func pathYear(r *http.Request) (region.Year, error) {
	return region.ParseYear(r.PathValue("year"))
}

func (h *Handler) handleYears(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"years": region.SupportedYears,
	})
}

func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.reports.EDA(r.Context(), year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleClusters(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.clusters.Year(r.Context(), year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	fc, err := h.maps.GeoJSON(r.Context(), year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		h.writeError(w, r, errors.Wrap(err, "encode feature collection"))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(data)
}

func (h *Handler) handleRegions(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	names, err := h.clusters.Regions(r.Context(), year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"year":    year,
		"regions": names,
	})
}

// handleRegion returns one region for ?year=, or every year when year is absent
func (h *Handler) handleRegion(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := region.ParseYear(raw)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		res, err := h.clusters.Region(r.Context(), year, name)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
		return
	}

	results, err := h.clusters.RegionAllYears(r.Context(), name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) handleNarratives(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.clusters.Narratives().List())
}

// handleTrainingRuns lists recorded runs; year 0 selects pooled runs
func (h *Handler) handleTrainingRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		h.writeError(w, r, errors.NewDomainError("registry_disabled", "training run registry is not configured", errors.ErrUnavailable))
		return
	}

	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		h.writeError(w, r, errors.NewValidationError("year", "not a number", q.Get("year")))
		return
	}
	if year != 0 && !region.Year(year).Valid() {
		h.writeError(w, r, errors.Wrapf(errors.ErrUnsupportedYear, "year %d", year))
		return
	}

	limit := 20
	if raw := q.Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 1 {
			h.writeError(w, r, errors.NewValidationError("limit", "must be a positive number", raw))
			return
		}
	}

	runs, err := h.runs.ListByYear(r.Context(), year, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}
