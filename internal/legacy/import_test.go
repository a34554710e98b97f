package legacy

import (
	"reflect"
	"strings"
	"testing"
)

const sampleFeed = `<?xml version="1.0" encoding="utf-8"?>
<publications>
	<publication>
		<id>4711</id>
		<Organisation>EI</Organisation>
		<Category>Journal Article</Category>
		<Title>Genome assembly of a fungus</Title>
		<DOI>10.1093/molbev/msy227</DOI>
		<ContributorIds>jdoe, rroe , jdoe</ContributorIds>
	</publication>
	<publication>
		<id>4712</id>
		<Category>Journal Article</Category>
		<Title>No identifier here</Title>
		<DOI>NA</DOI>
	</publication>
	<publication>
		<id>4713</id>
		<Category>PrePrint</Category>
		<Title>An early draft</Title>
		<DOI>doi:10.1101/2021.01.01.425001</DOI>
	</publication>
</publications>`

func TestParse(t *testing.T) {
	entries, skipped, err := Parse([]byte(sampleFeed))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].OldID != "4711" || entries[0].DOI != "10.1093/molbev/msy227" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if want := []string{"jdoe", "rroe", "jdoe"}; !reflect.DeepEqual(entries[0].ContributorIDs, want) {
		t.Errorf("ContributorIDs = %v, want %v", entries[0].ContributorIDs, want)
	}
	if entries[1].OldID != "4713" || entries[1].DOI != "10.1101/2021.01.01.425001" {
		t.Errorf("entries[1] = %+v", entries[1])
	}
	if entries[1].ContributorIDs != nil {
		t.Errorf("ContributorIDs = %v, want none", entries[1].ContributorIDs)
	}

	if len(skipped) != 1 {
		t.Fatalf("len(skipped) = %d, want 1", len(skipped))
	}
	if msg := skipped[0].Error(); !strings.Contains(msg, "4712") || !strings.Contains(msg, "no DOI") {
		t.Errorf("skipped[0] = %q", msg)
	}
}

func TestParse_WrongRoot(t *testing.T) {
	_, _, err := Parse([]byte(`<works><work/></works>`))
	if err == nil {
		t.Error("Parse() error = nil, want root element error")
	}
}

func TestSplitContributorIDs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"jdoe, rroe", []string{"jdoe", "rroe"}},
		{"jdoe", []string{"jdoe"}},
		{" jdoe ,, rroe ", []string{"jdoe", "rroe"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := splitContributorIDs(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitContributorIDs(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
