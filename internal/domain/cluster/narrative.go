package cluster

import "sort"

// Narrative is the display title and description for a cluster identifier
type Narrative struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Known       bool   `json:"known"`
}

// Table maps cluster identifiers to narratives
type Table map[int]Narrative

// Fallback title and description for identifiers outside the table
const (
	UnknownTitle       = "Tidak Dikenal"
	UnknownDescription = "Belum ada deskripsi untuk cluster ini."
)

// DefaultTable is the narrative table for the k=3 waste management models
var DefaultTable = Table{
	0: {
		ID:          0,
		Title:       "Pengelolaan Rendah",
		Description: "Wilayah dengan volume sampah rendah dan jumlah armada terbatas. Cocok untuk pendekatan pengelolaan sederhana dan efisien, dengan fokus pada edukasi masyarakat dan optimalisasi TPS.",
		Known:       true,
	},
	1: {
		ID:          1,
		Title:       "Pengelolaan Sedang",
		Description: "Kabupaten dengan tingkat produksi sampah sedang dan distribusi armada yang cukup. Perlu strategi pengelolaan menengah yang seimbang antara operasional dan edukasi lingkungan.",
		Known:       true,
	},
	2: {
		ID:          2,
		Title:       "Pengelolaan Tinggi",
		Description: "Wilayah dengan intensitas produksi sampah tinggi dan kebutuhan armada besar. Biasanya mencerminkan area urban padat yang memerlukan sistem pengelolaan kompleks dan terintegrasi.",
		Known:       true,
	},
}

// Lookup never fails: unknown identifiers get the fallback narrative
func (t Table) Lookup(id int) Narrative {
	if n, ok := t[id]; ok {
		return n
	}
	return Narrative{
		ID:          id,
		Title:       UnknownTitle,
		Description: UnknownDescription,
	}
}

// Covers reports whether every identifier in 0..k-1 has an entry
func (t Table) Covers(k int) bool {
	for id := 0; id < k; id++ {
		if _, ok := t[id]; !ok {
			return false
		}
	}
	return true
}

// List returns the known narratives ordered by identifier
func (t Table) List() []Narrative {
	out := make([]Narrative, 0, len(t))
	for _, n := range t {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
