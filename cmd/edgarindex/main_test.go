package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/joeychilson/edgarindex"
)

func sampleRecords() []*edgarindex.IndexRecord {
	return []*edgarindex.IndexRecord{
		{
			CIK:         "1000032",
			CompanyName: "BINCH JAMES G",
			FormType:    "4",
			DateFiled:   time.Date(2015, time.January, 2, 0, 0, 0, 0, time.UTC),
			Filename:    "edgar/data/1000032/0001209191-15-000044.txt",
		},
		{
			CIK:         "100020",
			CompanyName: "ADVANCED MICRO DEVICES, INC.",
			FormType:    "8-K",
			DateFiled:   time.Date(2015, time.January, 2, 0, 0, 0, 0, time.UTC),
			Filename:    "edgar/data/100020/0000002488-15-000002.txt",
		},
	}
}

func TestWriteRecordsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := writeRecords(&buf, "csv", sampleRecords()); err != nil {
		t.Fatalf("writeRecords() error = %v", err)
	}

	want := "cik,company_name,form_type,date_filed,filename\n" +
		"1000032,BINCH JAMES G,4,2015-01-02,edgar/data/1000032/0001209191-15-000044.txt\n" +
		"100020,\"ADVANCED MICRO DEVICES, INC.\",8-K,2015-01-02,edgar/data/100020/0000002488-15-000002.txt\n"
	if buf.String() != want {
		t.Errorf("writeRecords() output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteRecordsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeRecords(&buf, "json", sampleRecords()); err != nil {
		t.Fatalf("writeRecords() error = %v", err)
	}

	var decoded []*edgarindex.IndexRecord
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("decoded %d records, want 2", len(decoded))
	}
	if decoded[0].CIK != "1000032" {
		t.Errorf("decoded[0].CIK = %q, want 1000032", decoded[0].CIK)
	}
	if decoded[1].CompanyName != "ADVANCED MICRO DEVICES, INC." {
		t.Errorf("decoded[1].CompanyName = %q", decoded[1].CompanyName)
	}
}

func TestWriteRecordsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := writeRecords(&buf, "xml", sampleRecords()); err == nil {
		t.Error("writeRecords() expected error for unknown format")
	}
}

func TestDateOptions(t *testing.T) {
	cmd := newDailyCmd()
	if err := cmd.ParseFlags([]string{"--start", "1998-05-01", "--end", "1998-05-20"}); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}

	opts, err := dateOptions(cmd)
	if err != nil {
		t.Fatalf("dateOptions() error = %v", err)
	}
	if !opts.Start.Equal(time.Date(1998, time.May, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Start = %v, want 1998-05-01", opts.Start)
	}
	if !opts.End.Equal(time.Date(1998, time.May, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("End = %v, want 1998-05-20", opts.End)
	}
}

func TestDateOptionsUnset(t *testing.T) {
	cmd := newDailyCmd()
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}

	opts, err := dateOptions(cmd)
	if err != nil {
		t.Fatalf("dateOptions() error = %v", err)
	}
	if !opts.Start.IsZero() || !opts.End.IsZero() {
		t.Errorf("opts = %+v, want zero dates when flags are unset", opts)
	}
}

func TestDateOptionsInvalid(t *testing.T) {
	cmd := newDailyCmd()
	if err := cmd.ParseFlags([]string{"--start", "05/01/1998"}); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}

	if _, err := dateOptions(cmd); err == nil {
		t.Error("dateOptions() expected error for a malformed date")
	}
}
