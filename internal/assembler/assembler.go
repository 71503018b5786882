package assembler

import (
	"sort"

	"github.com/actuallystonmai/product-recommendation-service/internal/domain"
)

// Assemble reconciles parsed entries with the catalog snapshot used for the request.
// Entries naming a product outside the snapshot are dropped, as are repeats of a
// product already accepted. The result is ordered by confidence descending with
// ties broken by catalog position. No entry is ever synthesized.
func Assemble(entries []domain.ParsedRecommendation, explanation string, products []domain.Product, personalized bool) domain.RecommendationResult {
	index := domain.IndexProducts(products)

	type ranked struct {
		rec     domain.ProductRecommendation
		catalog int
	}
	matched := make([]ranked, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))

	for _, e := range entries {
		pos, ok := index[e.ProductID]
		if !ok {
			continue
		}
		if _, dup := seen[e.ProductID]; dup {
			continue
		}
		seen[e.ProductID] = struct{}{}

		p := products[pos]
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		matched = append(matched, ranked{
			catalog: pos,
			rec: domain.ProductRecommendation{
				ProductID:       p.ID,
				Name:            p.Name,
				Category:        p.Category,
				Price:           p.Price,
				Tags:            tags,
				Reason:          e.Reason,
				ConfidenceScore: e.ConfidenceScore,
			},
		})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].rec.ConfidenceScore != matched[j].rec.ConfidenceScore {
			return matched[i].rec.ConfidenceScore > matched[j].rec.ConfidenceScore
		}
		return matched[i].catalog < matched[j].catalog
	})

	recs := make([]domain.ProductRecommendation, len(matched))
	for i, m := range matched {
		recs[i] = m.rec
	}
	return domain.RecommendationResult{
		Recommendations: recs,
		Explanation:     explanation,
		Personalized:    personalized,
	}
}
