package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInvalidFilters = errors.New("filtres invalides")

// Filters est le contrat d'entrée d'une requête de navigation catégorie.
type Filters struct {
	Category       string
	Subcategory    string
	SubSubcategory string

	Subcategories []string
	Colors        []string
	Brands        []string

	MinPrice *float64
	MaxPrice *float64

	Page  int
	Limit int
}

// Validate vérifie le contrat avant toute requête vers le store.
func (f Filters) Validate() error {
	if strings.TrimSpace(f.Category) == "" {
		return fmt.Errorf("%w: le paramètre 'category' est obligatoire", ErrInvalidFilters)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return fmt.Errorf("%w: minPrice ne peut pas dépasser maxPrice", ErrInvalidFilters)
	}
	if f.Page < 0 {
		return fmt.Errorf("%w: page doit être >= 0", ErrInvalidFilters)
	}
	return nil
}

// Canonical retourne une copie avec les valeurs de taxonomie ramenées à leur
// forme d'affichage ("summer-dresses" → "Summer Dresses") et la pagination
// bornée. La forme canonique sert à la fois de prédicat de requête et de base
// du fingerprint.
func (f Filters) Canonical(maxLimit int) Filters {
	c := f
	c.Category = DisplayForm(f.Category)
	c.Subcategory = DisplayForm(f.Subcategory)
	c.SubSubcategory = DisplayForm(f.SubSubcategory)

	if c.Limit <= 0 || c.Limit > maxLimit {
		c.Limit = maxLimit
	}
	return c
}

// Fingerprint sérialise le jeu de filtres en clé de cache déterministe.
// Les filtres de type liste sont triés : l'ordre d'arrivée ne change pas la clé.
func (f Filters) Fingerprint() string {
	var b strings.Builder
	b.WriteString("cat=")
	b.WriteString(strings.ToLower(f.Category))
	b.WriteString("|sub=")
	b.WriteString(strings.ToLower(f.Subcategory))
	b.WriteString("|subsub=")
	b.WriteString(strings.ToLower(f.SubSubcategory))
	b.WriteString("|subs=")
	b.WriteString(sortedKey(f.Subcategories))
	b.WriteString("|colors=")
	b.WriteString(sortedKey(f.Colors))
	b.WriteString("|brands=")
	b.WriteString(sortedKey(f.Brands))
	b.WriteString("|min=")
	if f.MinPrice != nil {
		fmt.Fprintf(&b, "%g", *f.MinPrice)
	}
	b.WriteString("|max=")
	if f.MaxPrice != nil {
		fmt.Fprintf(&b, "%g", *f.MaxPrice)
	}
	fmt.Fprintf(&b, "|page=%d|limit=%d", f.Page, f.Limit)
	return b.String()
}

func sortedKey(values []string) string {
	if len(values) == 0 {
		return ""
	}
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	sort.Strings(cleaned)
	return strings.Join(cleaned, ",")
}

// DisplayForm ramène une valeur de taxonomie à sa forme d'affichage :
// mots séparés par tirets ou espaces, chacun avec une majuscule initiale.
func DisplayForm(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	words := strings.FieldsFunc(value, func(r rune) bool {
		return r == '-' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
