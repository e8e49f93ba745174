package edgarindex

import (
	"strings"
	"testing"
	"time"
)

const masterIndexText = `Description:           Master Index of EDGAR Dissemination Feed
Last Data Received:    January 2, 2015
Comments:              webmaster@sec.gov
Anonymous FTP:         ftp://ftp.sec.gov/edgar/



CIK|Company Name|Form Type|Date Filed|Filename
--------------------------------------------------------------------------------
1000032|BINCH JAMES G|4|2015-01-02|edgar/data/1000032/0001209191-15-000044.txt
100020|ADVANCED MICRO DEVICES INC|8-K|2015-01-02|edgar/data/100020/0000002488-15-000002.txt
1000275|ROYAL BANK OF CANADA|424B2|2015-01-02|edgar/data/1000275/0000891092-15-000016.txt
`

func TestParseIndex(t *testing.T) {
	records, err := parseIndex([]byte(masterIndexText))
	if err != nil {
		t.Fatalf("parseIndex() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("parseIndex() returned %d records, want 3", len(records))
	}

	first := records[0]
	if first.CIK != "1000032" {
		t.Errorf("CIK = %q, want 1000032", first.CIK)
	}
	if first.CompanyName != "BINCH JAMES G" {
		t.Errorf("CompanyName = %q, want BINCH JAMES G", first.CompanyName)
	}
	if first.FormType != "4" {
		t.Errorf("FormType = %q, want 4", first.FormType)
	}
	if !first.DateFiled.Equal(date(2015, time.January, 2)) {
		t.Errorf("DateFiled = %v, want 2015-01-02", first.DateFiled)
	}
	if first.Filename != "edgar/data/1000032/0001209191-15-000044.txt" {
		t.Errorf("Filename = %q, prefix should be preserved", first.Filename)
	}

	// rows must come out in file order
	if records[1].CIK != "100020" || records[2].CIK != "1000275" {
		t.Errorf("record order = %s, %s; want 100020, 1000275", records[1].CIK, records[2].CIK)
	}
}

func TestParseIndexPrependsPrefix(t *testing.T) {
	text := "header\n--------------\n1|A Co|10-K|2015-01-02|data/x.txt\n"
	records, err := parseIndex([]byte(text))
	if err != nil {
		t.Fatalf("parseIndex() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("parseIndex() returned %d records, want 1", len(records))
	}
	if records[0].Filename != "edgar/data/x.txt" {
		t.Errorf("Filename = %q, want edgar/data/x.txt", records[0].Filename)
	}
}

func TestParseIndexCRLF(t *testing.T) {
	text := "header\r\n--------------\r\n1|A Co|10-K|2015-01-02|edgar/data/x.txt\r\n"
	records, err := parseIndex([]byte(text))
	if err != nil {
		t.Fatalf("parseIndex() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("parseIndex() returned %d records, want 1", len(records))
	}
	if records[0].Filename != "edgar/data/x.txt" {
		t.Errorf("Filename = %q, want edgar/data/x.txt", records[0].Filename)
	}
}

func TestParseIndexNoDivider(t *testing.T) {
	text := "just a header\nno divider anywhere\n1|A Co|10-K|2015-01-02|data/x.txt\n"
	records, err := parseIndex([]byte(text))
	if err != nil {
		t.Fatalf("parseIndex() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("parseIndex() returned %d records, want 0 without a divider", len(records))
	}
}

func TestParseIndexSkipsBlankLines(t *testing.T) {
	text := "header\n--------------\n\n1|A Co|10-K|2015-01-02|data/x.txt\n\n"
	records, err := parseIndex([]byte(text))
	if err != nil {
		t.Fatalf("parseIndex() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("parseIndex() returned %d records, want 1", len(records))
	}
}

func TestParseIndexMalformedRow(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{name: "four fields", row: "1|A Co|10-K|2015-01-02"},
		{name: "six fields", row: "1|A Co|10-K|2015-01-02|data/x.txt|extra"},
		{name: "unparseable date", row: "1|A Co|10-K|01/02/2015|data/x.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := "header\n--------------\n" + tt.row + "\n"
			if _, err := parseIndex([]byte(text)); err == nil {
				t.Errorf("parseIndex() expected error for row %q", tt.row)
			}
		})
	}
}

func TestFixFilePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "data/1000032/file.txt", want: "edgar/data/1000032/file.txt"},
		{in: "edgar/data/1000032/file.txt", want: "edgar/data/1000032/file.txt"},
	}

	for _, tt := range tests {
		if got := fixFilePath(tt.in); got != tt.want {
			t.Errorf("fixFilePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	// normalization must be stable when applied twice
	if got := fixFilePath(fixFilePath("data/x.txt")); got != "edgar/data/x.txt" {
		t.Errorf("double fixFilePath = %q, want edgar/data/x.txt", got)
	}
}

func TestParseIndexLongDivider(t *testing.T) {
	divider := strings.Repeat("-", 80)
	text := "CIK|Company Name|Form Type|Date Filed|Filename\n" + divider + "\n1|A Co|10-K|2015-01-02|data/x.txt\n"
	records, err := parseIndex([]byte(text))
	if err != nil {
		t.Fatalf("parseIndex() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("parseIndex() returned %d records, want 1", len(records))
	}
}
