package store

import (
	"reflect"
	"testing"

	"github.com/ucformula/sponsor-scout/internal/sponsor"
)

func TestMergeCandidatesUpsertsByName(t *testing.T) {
	existing := &sponsor.Candidates{Items: []*sponsor.Candidate{
		{Name: "Acme", Website: "https://old.acme.example"},
		{Name: "Globex"},
	}}
	incoming := &sponsor.Candidates{Items: []*sponsor.Candidate{
		{Name: "Initech"},
		{Name: "Acme", Website: "https://acme.example"},
	}}

	merged := MergeCandidates(existing, incoming)

	if got := merged.Names(); !reflect.DeepEqual(got, []string{"Acme", "Globex", "Initech"}) {
		t.Fatalf("unexpected names: %v", got)
	}
	if merged.Items[0].Website != "https://acme.example" {
		t.Fatalf("expected Acme to be overwritten, got %q", merged.Items[0].Website)
	}
}
