package report

import "sampahkita/internal/domain/region"

// NewsItem is one card on the home page
type NewsItem struct {
	Title   string
	Image   string
	Summary string
	URL     string
}

// Content is the static text of the home page
type Content struct {
	Title       string
	Subtitle    string
	Intro       string
	Goal        string
	Methodology []string
	News        []NewsItem
	Footer      string
}

// HomeView is the landing page
type HomeView struct {
	Content
	Years []region.Year
}

// DefaultContent is the home page shipped with the dashboard
var DefaultContent = Content{
	Title:    "SampahKita",
	Subtitle: "Analisis Clustering Pengelolaan Sampah Kabupaten Jawa Barat",
	Intro: "Aplikasi analitik berbasis Machine Learning menggunakan K-Means Clustering dan " +
		"Principal Component Analysis (PCA) untuk membantu pengambilan keputusan pengelolaan " +
		"sampah berkelanjutan di Jawa Barat.",
	Goal: "Mengelompokkan kabupaten/kota di Jawa Barat berdasarkan karakteristik pengelolaan " +
		"sampah menggunakan K-Means Clustering.",
	Methodology: []string{
		"Normalisasi data (StandardScaler)",
		"Reduksi dimensi menggunakan PCA",
		"Clustering menggunakan K-Means",
		"Visualisasi spasial menggunakan peta interaktif",
	},
	News: []NewsItem{
		{
			Title:   "Volume Sampah di Jawa Barat Tembus 29 Ribu Ton per Hari, Jadi Tantangan Besar Pengelolaan",
			Image:   "https://asset.kompas.com/crops/LzE1yzwz7Lhg7HJTiv5KvswqCy8=/0x0:0x0/1200x800/data/photo/2025/07/31/688b7374ce1dc.jpeg",
			Summary: "Sampah di Jawa Barat kini mencapai sekitar 29 ribu ton per hari, menuntut solusi pengelolaan yang lebih efektif.",
			URL:     "https://bandung.kompas.com/read/2025/08/01/054003378/ungkap-sampah-di-jabar-tembus-29-ribu-ton-per-hari-sekda-yang-menyedihkan",
		},
		{
			Title:   "Dedi Mulyadi Turun ke Sungai Cipalabuhan untuk Bersihkan Sampah yang Menyumbat Aliran Air",
			Image:   "https://asset.kompas.com/crops/nxpuRDSR0zaQwsamjWmBFJhj9Nc=/0x0:1280x853/1200x800/data/photo/2025/03/08/67cc48d363b10.jpg",
			Summary: "Dedi Mulyadi turun langsung ke sungai untuk membersihkan sampah dan menyoroti kerusakan lingkungan di Jawa Barat.",
			URL:     "https://www.kompas.com/jawa-barat/read/2025/03/08/204314988/turun-ke-sungai-bersihkan-sampah-dedi-mulyadi-hutan-dirusak-malah",
		},
		{
			Title:   "Tingginya Produksi Sampah Harian di Jawa Barat Jadi Tantangan Serius Pengelolaan Lingkungan",
			Image:   "https://images.bisnis.com/posts/2023/05/09/1654204/screenshot_20230509-161253_photopictureresizer_copy_1000x667.jpg",
			Summary: "Jawa Barat menghasilkan puluhan ribu ton sampah per hari, namun pengelolaannya belum optimal.",
			URL:     "https://bapenda.jabarprov.go.id/2025/10/09/gubernur-jawa-barat-umumkan-pembangunan-pembangkit-listrik-tenaga-sampah-di-seluruh-wilayah-jabar/",
		},
	},
	Footer: "K-Means Clustering + PCA | Jawa Barat",
}

// Home returns the landing page view
func (s *Service) Home() HomeView {
	return HomeView{
		Content: s.content,
		Years:   region.SupportedYears,
	}
}
