// Package synonyms holds the static agro-domain synonym tables used to
// expand query tokens before lexical matching.
package synonyms

import "github.com/agrodex/searchd/internal/textutil"

// Category classifies a query token by which synonym table recognizes it.
type Category int

const (
	// CategoryGeneric covers tokens outside the crop and treatment tables.
	CategoryGeneric Category = iota

	// CategoryCulture covers crop/culture terms (soja, milho, ...).
	CategoryCulture

	// CategoryTreatment covers agricultural-treatment terms (fungicida, ...).
	CategoryTreatment
)

// String returns the category name used in logs.
func (c Category) String() string {
	switch c {
	case CategoryCulture:
		return "culture"
	case CategoryTreatment:
		return "treatment"
	default:
		return "generic"
	}
}

// cultureTable maps each canonical crop term to its synonyms. Terms are
// stored in normalized form (lowercase, no diacritics).
var cultureTable = map[string][]string{
	"soja":     {"soy", "glycine"},
	"milho":    {"corn", "milharal"},
	"cafe":     {"cafeeiro", "cafezal"},
	"algodao":  {"algodoeiro", "cotton"},
	"cana":     {"cana de acucar", "canavial"},
	"trigo":    {"triticale", "wheat"},
	"feijao":   {"feijoeiro"},
	"arroz":    {"arrozal"},
	"tomate":   {"tomateiro"},
	"citros":   {"laranja", "limao", "tangerina", "citricos"},
	"pastagem": {"pasto", "braquiaria", "capim"},
	"batata":   {"batatal", "batata inglesa"},
}

// treatmentTable maps each canonical treatment term to its synonyms,
// including the pests and symptoms the treatment targets.
var treatmentTable = map[string][]string{
	"fungicida":    {"fungo", "ferrugem", "mofo", "antracnose", "oidio"},
	"herbicida":    {"mato", "daninha", "capina", "dessecante", "dessecacao"},
	"inseticida":   {"lagarta", "percevejo", "pulgao", "inseto", "mosca branca", "cigarrinha"},
	"acaricida":    {"acaro"},
	"nematicida":   {"nematoide"},
	"fertilizante": {"adubo", "adubacao", "npk", "nutricao"},
	"semente":      {"sementes", "plantio"},
	"inoculante":   {"inoculacao", "bradyrhizobium", "azospirillum"},
	"adjuvante":    {"espalhante", "oleo mineral"},
	"biologico":    {"biodefensivo", "bioinsumo", "trichoderma"},
}

// genericTable maps commerce and usage terms that carry no culture or
// treatment meaning but still benefit from expansion.
var genericTable = map[string][]string{
	"preco":     {"valor", "custo", "barato"},
	"entrega":   {"frete", "envio", "prazo"},
	"comprar":   {"compra", "pedido", "adquirir"},
	"dosagem":   {"dose", "dosagens", "quantidade"},
	"embalagem": {"litro", "galao", "saco", "frasco"},
	"garantia":  {"devolucao", "troca"},
	"aplicacao": {"aplicar", "pulverizacao"},
}

// Dictionary is the compiled, read-only view of the three synonym tables.
// Build one at startup with NewDictionary and share it freely; lookups are
// safe for concurrent use.
type Dictionary struct {
	cultureByTerm   map[string]string
	treatmentByTerm map[string]string
	genericByTerm   map[string]string

	cultureSets   map[string][]string
	treatmentSets map[string][]string
	genericSets   map[string][]string
}

// NewDictionary compiles the static tables into reverse lookups
// (normalized synonym -> canonical term, with the canonical term mapping to
// itself) and per-canonical expansion sets.
func NewDictionary() *Dictionary {
	d := &Dictionary{}
	d.cultureByTerm, d.cultureSets = compile(cultureTable)
	d.treatmentByTerm, d.treatmentSets = compile(treatmentTable)
	d.genericByTerm, d.genericSets = compile(genericTable)
	return d
}

func compile(table map[string][]string) (map[string]string, map[string][]string) {
	byTerm := make(map[string]string)
	sets := make(map[string][]string, len(table))

	for canonical, syns := range table {
		canonical = textutil.Normalize(canonical)
		set := make([]string, 0, len(syns)+1)
		seen := map[string]struct{}{canonical: {}}
		set = append(set, canonical)
		byTerm[canonical] = canonical

		for _, syn := range syns {
			syn = textutil.Normalize(syn)
			if syn == "" {
				continue
			}
			byTerm[syn] = canonical
			if _, dup := seen[syn]; dup {
				continue
			}
			seen[syn] = struct{}{}
			set = append(set, syn)
		}
		sets[canonical] = set
	}
	return byTerm, sets
}

// Resolve classifies a token: culture if the culture table knows it, else
// treatment, else generic.
func (d *Dictionary) Resolve(token string) Category {
	if _, ok := d.cultureByTerm[token]; ok {
		return CategoryCulture
	}
	if _, ok := d.treatmentByTerm[token]; ok {
		return CategoryTreatment
	}
	return CategoryGeneric
}

// Canonical returns the canonical term for token within the given category.
// For generic tokens not present in the generic table, the token itself is
// returned with ok=false.
func (d *Dictionary) Canonical(token string, cat Category) (string, bool) {
	var canonical string
	var ok bool
	switch cat {
	case CategoryCulture:
		canonical, ok = d.cultureByTerm[token]
	case CategoryTreatment:
		canonical, ok = d.treatmentByTerm[token]
	default:
		canonical, ok = d.genericByTerm[token]
	}
	if !ok {
		return token, false
	}
	return canonical, true
}

// Expand returns the deduplicated expansion set for token. Culture and
// treatment tokens expand to {canonical} plus the canonical term's
// synonyms. Generic tokens expand the same way when the generic table
// recognizes them, and to just {token} otherwise.
func (d *Dictionary) Expand(token string, cat Category) []string {
	canonical, ok := d.Canonical(token, cat)
	if !ok {
		return []string{token}
	}
	var set []string
	switch cat {
	case CategoryCulture:
		set = d.cultureSets[canonical]
	case CategoryTreatment:
		set = d.treatmentSets[canonical]
	default:
		set = d.genericSets[canonical]
	}
	out := make([]string, len(set))
	copy(out, set)
	return out
}
