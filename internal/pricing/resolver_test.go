package pricing

import (
	"math"
	"testing"

	"github.com/Simplici0/rab.works/internal/catalog"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func stoneFoundationCatalog() catalog.Snapshot {
	return catalog.Snapshot{
		Materials: []catalog.MaterialRate{
			{Name: "Semen Portland", UnitPrice: 65000, Status: catalog.StatusActive},
			{Name: "Batu Kali", UnitPrice: 450000, Status: catalog.StatusActive},
			{Name: "Pasir Pasang", UnitPrice: 280000, Status: catalog.StatusActive},
		},
		Labor: []catalog.LaborRate{
			{JobType: "Tukang Batu", UnitPrice: 150000, Status: catalog.StatusActive},
		},
	}
}

func TestResolveAutoPrice_StoneFoundationFromCatalog(t *testing.T) {
	got := ResolveAutoPrice("Pasangan batu kali pondasi (m³)", stoneFoundationCatalog())
	nearlyEqual(t, "stone foundation", got, 1270000)
}

func TestResolveAutoPrice_FallbacksWithEmptyCatalog(t *testing.T) {
	empty := catalog.Snapshot{}

	tests := []struct {
		label string
		want  float64
	}{
		{"Pasangan bata merah/batako ringan (m²)", 114000},
		{"Galian pondasi (m³)", 87000},
		{"Pemadatan tanah (m²)", 16000},
		{"Pembuatan septic tank (unit)", 8500000},
		{"Pasangan batu kali pondasi (m³)", 1270000},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			nearlyEqual(t, tt.label, ResolveAutoPrice(tt.label, empty), tt.want)
		})
	}
}

// Every label priced with nothing in the catalog, so each term falls back.
var fallbackPrices = []struct {
	label string
	want  float64
}{
		{"Pembersihan lahan (m²)", 11000},
		{"Pengukuran dan pemasangan bouwplank (m¹)", 56000},
		{"Direksi keet dan gudang sementara (m²)", 750000},
		{"Mobilisasi dan demobilisasi (ls)", 3500000},
		{"Galian pondasi (m³)", 87000},
		{"Urugan tanah kembali (m³)", 36300},
		{"Urugan pasir bawah pondasi (m³)", 273000},
		{"Urugan tanah peninggian lantai (m³)", 235000},
		{"Pemadatan tanah (m²)", 16000},
		{"Pasangan batu kali pondasi (m³)", 1270000},
		{"Pondasi footplat beton bertulang (m³)", 3420000},
		{"Sloof beton bertulang 15x20 (m³)", 3617500},
		{"Kolom beton bertulang (m³)", 4435000},
		{"Balok ring beton bertulang (m³)", 4105000},
		{"Plat lantai beton bertulang (m³)", 3527500},
		{"Pasangan bata merah/batako ringan (m²)", 114000},
		{"Plesteran dinding 1:4 (m²)", 70300},
		{"Acian dinding (m²)", 41550},
		{"Pasangan roster beton (m²)", 204750},
		{"Lantai kerja beton tumbuk (m³)", 902000},
		{"Pemasangan keramik lantai 40x40 (m²)", 167350},
		{"Pemasangan granit lantai 60x60 (m²)", 296750},
		{"Pemasangan plint keramik (m¹)", 28450},
		{"Rangka atap baja ringan (m²)", 129000},
		{"Penutup atap genteng keramik (m²)", 117000},
		{"Penutup atap spandek (m²)", 94500},
		{"Pemasangan nok bubungan (m¹)", 54250},
		{"Talang air PVC (m¹)", 83250},
		{"Rangka plafon hollow galvalum (m²)", 92000},
		{"Plafon gypsum board 9 mm (m²)", 47500},
		{"Plafon GRC board (m²)", 40200},
		{"List profil plafon (m¹)", 26400},
		{"Kusen pintu kayu (unit)", 1455000},
		{"Daun pintu panel kayu (unit)", 1725000},
		{"Jendela kaca aluminium (m²)", 845000},
		{"Pemasangan kunci dan engsel (set)", 350000},
		{"Pengecatan dinding interior (m²)", 20120},
		{"Pengecatan dinding eksterior (m²)", 26300},
		{"Pengecatan kusen dan pintu kayu (m²)", 26000},
		{"Pengecatan plafon (m²)", 15400},
		{"Instalasi titik lampu (titik)", 209000},
		{"Instalasi stop kontak (titik)", 195000},
		{"Pemasangan panel MCB (unit)", 1750000},
		{"Penyambungan daya PLN (ls)", 2500000},
		{"Instalasi pipa air bersih (m¹)", 21000},
		{"Instalasi pipa air kotor (m¹)", 24750},
		{"Pemasangan kloset duduk (unit)", 2000000},
		{"Pemasangan wastafel (unit)", 825000},
		{"Pembuatan septic tank (unit)", 8500000},
		{"Sumur resapan (unit)", 3200000},
}

func TestResolveAutoPrice_EveryEntryFallbackPrice(t *testing.T) {
	if len(fallbackPrices) != len(entries) || len(Table) != len(entries) {
		t.Fatalf("expected %d labels, table has %d entries and %d keys", len(fallbackPrices), len(entries), len(Table))
	}

	empty := catalog.Snapshot{}
	for i, tt := range fallbackPrices {
		t.Run(tt.label, func(t *testing.T) {
			if entries[i].SubCategory != tt.label {
				t.Fatalf("entry %d is %q, want %q", i, entries[i].SubCategory, tt.label)
			}
			nearlyEqual(t, tt.label, ResolveAutoPrice(tt.label, empty), tt.want)
		})
	}
}

func TestResolveAutoPrice_NilSourceUsesFallbacks(t *testing.T) {
	nearlyEqual(t, "nil source", ResolveAutoPrice("Galian pondasi (m³)", nil), 87000)
}

func TestResolveAutoPrice_UnknownLabelIsZero(t *testing.T) {
	for _, label := range []string{"", "Custom", "pasangan batu kali pondasi (m³)"} {
		if got := ResolveAutoPrice(label, stoneFoundationCatalog()); got != 0 {
			t.Errorf("ResolveAutoPrice(%q) = %v, want 0", label, got)
		}
		if _, ok := Explain(label, stoneFoundationCatalog()); ok {
			t.Errorf("Explain(%q) reported a formula", label)
		}
	}
}

func TestResolveAutoPrice_Deterministic(t *testing.T) {
	src := stoneFoundationCatalog()
	first := ResolveAutoPrice("Plesteran dinding 1:4 (m²)", src)
	for i := 0; i < 10; i++ {
		if got := ResolveAutoPrice("Plesteran dinding 1:4 (m²)", src); got != first {
			t.Fatalf("run %d = %v, want %v", i, got, first)
		}
	}
}

func TestResolveAutoPrice_FirstStoredMatchWins(t *testing.T) {
	label := "Pasangan bata merah/batako ringan (m²)"
	ringan := catalog.MaterialRate{Name: "Bata Ringan", UnitPrice: 9000, Status: catalog.StatusActive}
	merah := catalog.MaterialRate{Name: "Bata Merah", UnitPrice: 800, Status: catalog.StatusActive}

	got := ResolveAutoPrice(label, catalog.Snapshot{Materials: []catalog.MaterialRate{ringan, merah}})
	nearlyEqual(t, "ringan first", got, 70*9000+13000+45000)

	got = ResolveAutoPrice(label, catalog.Snapshot{Materials: []catalog.MaterialRate{merah, ringan}})
	nearlyEqual(t, "merah first", got, 114000)
}

func TestResolveAutoPrice_InactiveRowsIgnored(t *testing.T) {
	src := catalog.Snapshot{
		Labor: []catalog.LaborRate{
			{JobType: "Pekerja", UnitPrice: 500000, Status: catalog.StatusInactive},
		},
	}
	nearlyEqual(t, "inactive labor", ResolveAutoPrice("Pembersihan lahan (m²)", src), 11000)
}

func TestExplain_ReportsMatchesAndFallbacks(t *testing.T) {
	src := catalog.Snapshot{
		Materials: []catalog.MaterialRate{
			{Name: "Semen Tiga Roda", UnitPrice: 70000, Status: catalog.StatusActive},
		},
	}

	exp, ok := Explain("Acian dinding (m²)", src)
	if !ok {
		t.Fatalf("expected formula")
	}
	if exp.Category != Walls || exp.Unit != "m²" {
		t.Fatalf("unexpected header: %+v", exp)
	}
	if len(exp.Terms) != 3 {
		t.Fatalf("expected 3 terms, got %d", len(exp.Terms))
	}

	semen := exp.Terms[0]
	if semen.UsedFallback || semen.MatchedName != "Semen Tiga Roda" {
		t.Fatalf("expected catalog match for semen, got %+v", semen)
	}
	nearlyEqual(t, "semen amount", semen.Amount, 0.07*70000)

	tukang := exp.Terms[1]
	if !tukang.UsedFallback || tukang.MatchedName != "" {
		t.Fatalf("expected fallback for tukang batu, got %+v", tukang)
	}
	nearlyEqual(t, "price", exp.Price, 0.07*70000+0.1*150000+0.2*110000)
}

func TestExplanations_CoverTable(t *testing.T) {
	all := Explanations(catalog.Snapshot{})
	if len(all) != len(Table) {
		t.Fatalf("expected %d explanations, got %d", len(Table), len(all))
	}
	for _, exp := range all {
		if exp.Price <= 0 {
			t.Errorf("%s priced at %v with fallbacks", exp.SubCategory, exp.Price)
		}
	}
}
