package report

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Key", "Count", "Share"}
	rows := [][]string{
		{"A", "1200", "97.5%"},
		{"Space", "8", "0.7%"},
		{"←", "3", "0.2%"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines[0] != "Key    Count  Share" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "A       1200  97.5%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Space      8   0.7%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
	if lines[3] != "←          3   0.2%" {
		t.Fatalf("unexpected row line: %q", lines[3])
	}
}

func TestFormatters(t *testing.T) {
	if got := Meters(1500); got != "1.50 m" {
		t.Fatalf("Meters = %q", got)
	}
	if got := Kilometers(2_500_000); got != "2.50 km" {
		t.Fatalf("Kilometers = %q", got)
	}
	cases := map[uint64]string{999: "999", 1500: "1.5k", 25_000: "25k", 3_200_000: "3.2M"}
	for n, want := range cases {
		if got := Compact(n); got != want {
			t.Fatalf("Compact(%d) = %q, want %q", n, got, want)
		}
	}
	if got := Share(1, 4); got != "25.0%" {
		t.Fatalf("Share = %q", got)
	}
	if got := Share(1, 0); got != "0.0%" {
		t.Fatalf("Share with zero total = %q", got)
	}
}
