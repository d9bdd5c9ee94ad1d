package pricing

// Work categories in display order.
const (
	SitePreparation     = "Site Preparation"
	Earthwork           = "Earthwork"
	FoundationStructure = "Foundation & Structure"
	Walls               = "Walls"
	Flooring            = "Flooring"
	Roofing             = "Roofing"
	Ceiling             = "Ceiling"
	DoorsWindows        = "Doors & Windows"
	Painting            = "Painting"
	Electrical          = "Electrical"
	SanitaryPlumbing    = "Sanitary & Plumbing"
)

// Fallback unit prices used when no active catalog row matches a keyword.
const (
	fbPekerja       = 110000
	fbMandor        = 180000
	fbTukangBatu    = 150000
	fbTukangKayu    = 150000
	fbTukangBesi    = 150000
	fbTukangCat     = 140000
	fbTukangListrik = 160000
	fbTukangPipa    = 150000

	fbSemen       = 65000
	fbPasirPasang = 280000
	fbPasirCor    = 300000
	fbBatuSplit   = 350000
	fbBesiBeton   = 14000
	fbPapanKayu   = 2500000
	fbKeramik     = 85000
	fbCatTembok   = 35000
	fbKabel       = 12000
	fbPipaPVC     = 45000
)

// entries lists every formula in display order. Coefficients are material or
// labor consumption per unit of work.
var entries = []Entry{
	{SitePreparation, "Pembersihan lahan (m²)", terms(
		labor("Pekerja", 0.1, fbPekerja),
	)},
	{SitePreparation, "Pengukuran dan pemasangan bouwplank (m¹)", terms(
		material("Papan Kayu", 0.012, fbPapanKayu),
		labor("Tukang Kayu", 0.1, fbTukangKayu),
		labor("Pekerja", 0.1, fbPekerja),
	)},
	{SitePreparation, "Direksi keet dan gudang sementara (m²)", fixed(750000)},
	{SitePreparation, "Mobilisasi dan demobilisasi (ls)", fixed(3500000)},

	{Earthwork, "Galian pondasi (m³)", terms(
		labor("Pekerja", 0.75, fbPekerja),
		labor("Mandor", 0.025, fbMandor),
	)},
	{Earthwork, "Urugan tanah kembali (m³)", terms(
		labor("Pekerja", 0.33, fbPekerja),
	)},
	{Earthwork, "Urugan pasir bawah pondasi (m³)", terms(
		material("Pasir Urug", 1.2, 200000),
		labor("Pekerja", 0.3, fbPekerja),
	)},
	{Earthwork, "Urugan tanah peninggian lantai (m³)", terms(
		material("Tanah Urug", 1.2, 150000),
		labor("Pekerja", 0.5, fbPekerja),
	)},
	{Earthwork, "Pemadatan tanah (m²)", Formula{Fixed: 5000, Terms: []Term{
		labor("Pekerja", 0.1, fbPekerja),
	}}},

	{FoundationStructure, "Pasangan batu kali pondasi (m³)", terms(
		material("Batu Kali", 1, 450000),
		material("Semen", 7, fbSemen),
		material("Pasir Pasang", 0.5, fbPasirPasang),
		labor("Tukang Batu", 1.5, fbTukangBatu),
	)},
	{FoundationStructure, "Pondasi footplat beton bertulang (m³)", terms(
		material("Semen", 8, fbSemen),
		material("Pasir Cor", 0.5, fbPasirCor),
		material("Batu Split", 0.8, fbBatuSplit),
		material("Besi Beton", 150, fbBesiBeton),
		labor("Tukang Besi", 1, fbTukangBesi),
		labor("Pekerja", 2, fbPekerja),
	)},
	{FoundationStructure, "Sloof beton bertulang 15x20 (m³)", terms(
		material("Semen", 7.5, fbSemen),
		material("Pasir Cor", 0.5, fbPasirCor),
		material("Batu Split", 0.8, fbBatuSplit),
		material("Besi Beton", 120, fbBesiBeton),
		material("Papan Kayu", 0.2, fbPapanKayu),
		labor("Tukang Besi", 1, fbTukangBesi),
		labor("Tukang Kayu", 1, fbTukangKayu),
		labor("Pekerja", 2, fbPekerja),
	)},
	{FoundationStructure, "Kolom beton bertulang (m³)", terms(
		material("Semen", 8, fbSemen),
		material("Pasir Cor", 0.5, fbPasirCor),
		material("Batu Split", 0.8, fbBatuSplit),
		material("Besi Beton", 150, fbBesiBeton),
		material("Papan Kayu", 0.3, fbPapanKayu),
		labor("Tukang Besi", 1.2, fbTukangBesi),
		labor("Tukang Kayu", 1.2, fbTukangKayu),
		labor("Pekerja", 2.5, fbPekerja),
	)},
	{FoundationStructure, "Balok ring beton bertulang (m³)", terms(
		material("Semen", 8, fbSemen),
		material("Pasir Cor", 0.5, fbPasirCor),
		material("Batu Split", 0.8, fbBatuSplit),
		material("Besi Beton", 130, fbBesiBeton),
		material("Papan Kayu", 0.28, fbPapanKayu),
		labor("Tukang Besi", 1.2, fbTukangBesi),
		labor("Tukang Kayu", 1.2, fbTukangKayu),
		labor("Pekerja", 2.5, fbPekerja),
	)},
	{FoundationStructure, "Plat lantai beton bertulang (m³)", terms(
		material("Semen", 8.5, fbSemen),
		material("Pasir Cor", 0.5, fbPasirCor),
		material("Batu Split", 0.8, fbBatuSplit),
		material("Besi Beton", 100, fbBesiBeton),
		material("Papan Kayu", 0.25, fbPapanKayu),
		labor("Tukang Besi", 1, fbTukangBesi),
		labor("Tukang Kayu", 1, fbTukangKayu),
		labor("Pekerja", 2, fbPekerja),
	)},

	// "Bata" matches both red brick and lightweight block; whichever is stored first is used.
	{Walls, "Pasangan bata merah/batako ringan (m²)", terms(
		material("Bata", 70, 800),
		material("Semen", 0.2, fbSemen),
		labor("Tukang Batu", 0.3, fbTukangBatu),
	)},
	{Walls, "Plesteran dinding 1:4 (m²)", terms(
		material("Semen", 0.12, fbSemen),
		material("Pasir Pasang", 0.025, fbPasirPasang),
		labor("Tukang Batu", 0.15, fbTukangBatu),
		labor("Pekerja", 0.3, fbPekerja),
	)},
	{Walls, "Acian dinding (m²)", terms(
		material("Semen", 0.07, fbSemen),
		labor("Tukang Batu", 0.1, fbTukangBatu),
		labor("Pekerja", 0.2, fbPekerja),
	)},
	{Walls, "Pasangan roster beton (m²)", terms(
		material("Roster", 25, 6000),
		material("Semen", 0.15, fbSemen),
		labor("Tukang Batu", 0.3, fbTukangBatu),
	)},

	{Flooring, "Lantai kerja beton tumbuk (m³)", terms(
		material("Semen", 5, fbSemen),
		material("Pasir Cor", 0.55, fbPasirCor),
		material("Batu Split", 0.8, fbBatuSplit),
		labor("Pekerja", 1.2, fbPekerja),
	)},
	{Flooring, "Pemasangan keramik lantai 40x40 (m²)", terms(
		material("Keramik", 1.05, fbKeramik),
		material("Semen", 0.2, fbSemen),
		material("Pasir Pasang", 0.045, fbPasirPasang),
		labor("Tukang Batu", 0.35, fbTukangBatu),
	)},
	{Flooring, "Pemasangan granit lantai 60x60 (m²)", terms(
		material("Granit", 1.05, 210000),
		material("Semen", 0.25, fbSemen),
		labor("Tukang Batu", 0.4, fbTukangBatu),
	)},
	{Flooring, "Pemasangan plint keramik (m¹)", terms(
		material("Keramik", 0.12, fbKeramik),
		material("Semen", 0.05, fbSemen),
		labor("Tukang Batu", 0.1, fbTukangBatu),
	)},

	{Roofing, "Rangka atap baja ringan (m²)", terms(
		material("Baja Ringan", 1.2, 95000),
		labor("Tukang Besi", 0.1, fbTukangBesi),
	)},
	{Roofing, "Penutup atap genteng keramik (m²)", terms(
		material("Genteng", 14, 6500),
		labor("Tukang Kayu", 0.1, fbTukangKayu),
		labor("Pekerja", 0.1, fbPekerja),
	)},
	{Roofing, "Penutup atap spandek (m²)", terms(
		material("Spandek", 1.1, 75000),
		labor("Tukang Besi", 0.08, fbTukangBesi),
	)},
	{Roofing, "Pemasangan nok bubungan (m¹)", terms(
		material("Nok", 3, 12000),
		material("Semen", 0.05, fbSemen),
		labor("Tukang Batu", 0.1, fbTukangBatu),
	)},
	{Roofing, "Talang air PVC (m¹)", terms(
		material("Talang", 1.05, 65000),
		labor("Tukang Pipa", 0.1, fbTukangPipa),
	)},

	{Ceiling, "Rangka plafon hollow galvalum (m²)", terms(
		material("Hollow", 3.5, 22000),
		labor("Tukang Kayu", 0.1, fbTukangKayu),
	)},
	{Ceiling, "Plafon gypsum board 9 mm (m²)", terms(
		material("Gypsum", 0.36, 75000),
		labor("Tukang Kayu", 0.1, fbTukangKayu),
		labor("Pekerja", 0.05, fbPekerja),
	)},
	{Ceiling, "Plafon GRC board (m²)", terms(
		material("GRC", 0.36, 70000),
		labor("Tukang Kayu", 0.1, fbTukangKayu),
	)},
	{Ceiling, "List profil plafon (m¹)", terms(
		material("List Profil", 1.05, 18000),
		labor("Tukang Kayu", 0.05, fbTukangKayu),
	)},

	{DoorsWindows, "Kusen pintu kayu (unit)", terms(
		material("Kusen Kayu", 1, 1250000),
		labor("Tukang Kayu", 1, fbTukangKayu),
		labor("Pekerja", 0.5, fbPekerja),
	)},
	{DoorsWindows, "Daun pintu panel kayu (unit)", terms(
		material("Daun Pintu", 1, 1650000),
		labor("Tukang Kayu", 0.5, fbTukangKayu),
	)},
	{DoorsWindows, "Jendela kaca aluminium (m²)", terms(
		material("Aluminium", 1, 650000),
		material("Kaca", 1, 150000),
		labor("Tukang Kayu", 0.3, fbTukangKayu),
	)},
	{DoorsWindows, "Pemasangan kunci dan engsel (set)", fixed(350000)},

	{Painting, "Pengecatan dinding interior (m²)", terms(
		material("Cat Tembok", 0.26, fbCatTembok),
		labor("Tukang Cat", 0.063, fbTukangCat),
		labor("Pekerja", 0.02, fbPekerja),
	)},
	{Painting, "Pengecatan dinding eksterior (m²)", terms(
		material("Cat Eksterior", 0.3, 55000),
		labor("Tukang Cat", 0.07, fbTukangCat),
	)},
	{Painting, "Pengecatan kusen dan pintu kayu (m²)", terms(
		material("Cat Kayu", 0.2, 60000),
		labor("Tukang Cat", 0.1, fbTukangCat),
	)},
	{Painting, "Pengecatan plafon (m²)", terms(
		material("Cat Tembok", 0.2, fbCatTembok),
		labor("Tukang Cat", 0.06, fbTukangCat),
	)},

	{Electrical, "Instalasi titik lampu (titik)", terms(
		material("Kabel", 12, fbKabel),
		material("Fitting Lampu", 1, 25000),
		labor("Tukang Listrik", 0.25, fbTukangListrik),
	)},
	{Electrical, "Instalasi stop kontak (titik)", terms(
		material("Kabel", 10, fbKabel),
		material("Stop Kontak", 1, 35000),
		labor("Tukang Listrik", 0.25, fbTukangListrik),
	)},
	{Electrical, "Pemasangan panel MCB (unit)", fixed(1750000)},
	{Electrical, "Penyambungan daya PLN (ls)", fixed(2500000)},

	{SanitaryPlumbing, "Instalasi pipa air bersih (m¹)", terms(
		material("Pipa PVC", 0.3, fbPipaPVC),
		labor("Tukang Pipa", 0.05, fbTukangPipa),
	)},
	{SanitaryPlumbing, "Instalasi pipa air kotor (m¹)", terms(
		material("Pipa PVC", 0.35, fbPipaPVC),
		labor("Tukang Pipa", 0.06, fbTukangPipa),
	)},
	{SanitaryPlumbing, "Pemasangan kloset duduk (unit)", terms(
		material("Kloset", 1, 1850000),
		labor("Tukang Pipa", 1, fbTukangPipa),
	)},
	{SanitaryPlumbing, "Pemasangan wastafel (unit)", terms(
		material("Wastafel", 1, 750000),
		labor("Tukang Pipa", 0.5, fbTukangPipa),
	)},
	{SanitaryPlumbing, "Pembuatan septic tank (unit)", fixed(8500000)},
	{SanitaryPlumbing, "Sumur resapan (unit)", fixed(3200000)},
}

func material(keyword string, coefficient, fallback float64) Term {
	return Term{Kind: MaterialTerm, Keyword: keyword, Coefficient: coefficient, Fallback: fallback}
}

func labor(keyword string, coefficient, fallback float64) Term {
	return Term{Kind: LaborTerm, Keyword: keyword, Coefficient: coefficient, Fallback: fallback}
}

func terms(t ...Term) Formula {
	return Formula{Terms: t}
}

func fixed(price float64) Formula {
	return Formula{Fixed: price}
}
