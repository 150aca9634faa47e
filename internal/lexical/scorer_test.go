package lexical

import (
	"reflect"
	"testing"

	"github.com/agrodex/searchd/internal/core"
	"github.com/agrodex/searchd/internal/synonyms"
)

func newTestScorer() *Scorer {
	return NewScorer(synonyms.NewDictionary())
}

func TestScore_EmptyQueryIsAbsent(t *testing.T) {
	s := newTestScorer()
	doc := core.Document{ID: 1, Name: "Fungicida Alpha"}

	if _, ok := s.Score("", doc); ok {
		t.Error("expected absent result for empty query")
	}
	// Stopwords only: tokenization yields nothing.
	if _, ok := s.Score("para de com", doc); ok {
		t.Error("expected absent result for stopword-only query")
	}
}

func TestScore_NoMatchIsAbsentNotZero(t *testing.T) {
	s := newTestScorer()
	doc := core.Document{ID: 1, Name: "Arado de disco", Description: "Implemento"}

	if res, ok := s.Score("fungicida soja", doc); ok {
		t.Errorf("expected absent result, got score %v", res.Score)
	}
}

func TestScore_FieldWeightsAreAdditive(t *testing.T) {
	s := newTestScorer()
	// Token "herbicida" matches name (3.5) and description (2.5) plus the
	// 0.5 token bonus and the 2.0 treatment bonus.
	doc := core.Document{
		ID:          1,
		Name:        "Herbicida Total",
		Description: "Herbicida de amplo espectro",
	}

	res, ok := s.Score("herbicida", doc)
	if !ok {
		t.Fatal("expected a match")
	}
	want := 3.5 + 2.5 + 0.5 + 2.0
	if res.Score != want {
		t.Errorf("score = %v, want %v", res.Score, want)
	}
	if !reflect.DeepEqual(res.Signals.MatchedTokens, []string{"herbicida"}) {
		t.Errorf("matched tokens = %v", res.Signals.MatchedTokens)
	}
	if got := res.Signals.MatchedFields[FieldName]; !reflect.DeepEqual(got, []string{"herbicida"}) {
		t.Errorf("name field matches = %v", got)
	}
}

func TestScore_CultureTreatmentPairBonus(t *testing.T) {
	s := newTestScorer()
	doc := core.Document{
		ID:          1,
		Name:        "Fungicida Premium",
		Description: "Controle de ferrugem na soja",
		Category:    "Defensivos",
	}

	res, ok := s.Score("fungicida soja", doc)
	if !ok {
		t.Fatal("expected a match")
	}
	if !res.Signals.HasCultureTreatmentPair {
		t.Error("expected culture/treatment pair")
	}
	if _, found := res.Signals.CultureMatches["soja"]; !found {
		t.Errorf("culture matches = %v, want soja", res.Signals.CultureMatches)
	}
	if _, found := res.Signals.TreatmentMatches["fungicida"]; !found {
		t.Errorf("treatment matches = %v, want fungicida", res.Signals.TreatmentMatches)
	}

	// fungicida: name 3.5 + description 2.5 + token 0.5
	// soja: description 2.5 + token 0.5
	// bonuses: culture 2.0 + treatment 2.0 + pair 5.0
	want := 3.5 + 2.5 + 0.5 + 2.5 + 0.5 + 2.0 + 2.0 + 5.0
	if res.Score != want {
		t.Errorf("score = %v, want %v", res.Score, want)
	}
}

func TestScore_CultureTagBonus(t *testing.T) {
	s := newTestScorer()
	doc := core.Document{
		ID:   1,
		Name: "Inoculante Premium",
		Tags: []string{"soja", "plantio"},
	}

	res, ok := s.Score("soja", doc)
	if !ok {
		t.Fatal("expected a match")
	}
	// tags 4.0 + token 0.5 + culture-tag 1.0 + culture 2.0
	want := 4.0 + 0.5 + 1.0 + 2.0
	if res.Score != want {
		t.Errorf("score = %v, want %v", res.Score, want)
	}
}

func TestScore_SynonymExpansionMatches(t *testing.T) {
	s := newTestScorer()
	// The query says "ferrugem", the product only says "fungicida"; the
	// expansion set bridges them.
	doc := core.Document{ID: 1, Name: "Fungicida Beta", Category: "Defensivos"}

	res, ok := s.Score("ferrugem", doc)
	if !ok {
		t.Fatal("expected a match via synonym expansion")
	}
	if _, found := res.Signals.TreatmentMatches["fungicida"]; !found {
		t.Errorf("expected canonical fungicida in treatment matches, got %v", res.Signals.TreatmentMatches)
	}
}

func TestScore_SubstringContainment(t *testing.T) {
	s := newTestScorer()
	// "soja" matches inside "sojicultura": matching is plain substring
	// containment, not word-boundary-aware.
	doc := core.Document{ID: 1, Description: "Indicado para sojicultura intensiva"}

	if _, ok := s.Score("soja", doc); !ok {
		t.Error("expected substring containment to match inside a longer word")
	}
}

func TestScore_Deterministic(t *testing.T) {
	s := newTestScorer()
	doc := core.Document{
		ID:           1,
		Name:         "Herbicida Gamma",
		Description:  "Dessecação pré-plantio de soja e milho",
		Category:     "Herbicidas",
		Manufacturer: "AgroQuímica",
		Tags:         []string{"soja", "milho"},
	}

	first, ok1 := s.Score("herbicida para soja", doc)
	second, ok2 := s.Score("herbicida para soja", doc)
	if ok1 != ok2 || first.Score != second.Score {
		t.Fatalf("scores differ: %v vs %v", first.Score, second.Score)
	}
	if !reflect.DeepEqual(first.Signals, second.Signals) {
		t.Errorf("signals differ:\n%+v\n%+v", first.Signals, second.Signals)
	}
}
