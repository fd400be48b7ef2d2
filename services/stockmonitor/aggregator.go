package main

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// BuildAlertBundle agrupa achados primeiro por depósito (Full antes de
// Principal, ordem fixa do template) e, dentro do depósito, por produto pai.
// Variações ficam aninhadas no grupo do pai, ordenadas por SKU; produtos sem
// vínculo entram como avulsos na ordem de chegada. A montagem é determinística
// para o mesmo conjunto de achados na mesma ordem.
func BuildAlertBundle(findings []StockFinding, generatedAt time.Time) *AlertBundle {
	bundle := &AlertBundle{
		ID:          uuid.New().String(),
		GeneratedAt: generatedAt,
	}

	for _, wh := range warehouseOrder {
		section := buildSection(wh, findings)
		if len(section.Parents) > 0 || len(section.Standalones) > 0 {
			bundle.Sections = append(bundle.Sections, section)
		}
	}

	return bundle
}

func buildSection(wh Warehouse, findings []StockFinding) WarehouseSection {
	section := WarehouseSection{Warehouse: wh}
	groupIndex := make(map[string]int)

	for _, finding := range findings {
		if finding.Warehouse != wh {
			continue
		}

		if finding.Product.IsVariant {
			idx, ok := groupIndex[finding.Product.ParentSKU]
			if !ok {
				idx = len(section.Parents)
				groupIndex[finding.Product.ParentSKU] = idx
				section.Parents = append(section.Parents, ParentGroup{
					ParentSKU:  finding.Product.ParentSKU,
					ParentName: finding.Product.ParentName,
				})
			}
			section.Parents[idx].Variants = append(section.Parents[idx].Variants, finding)
			continue
		}

		section.Standalones = append(section.Standalones, finding)
	}

	for i := range section.Parents {
		variants := section.Parents[i].Variants
		sort.Slice(variants, func(a, b int) bool {
			return variants[a].Product.SKU < variants[b].Product.SKU
		})
	}

	// O achado do próprio pai não vira entrada avulsa quando o grupo dele já
	// aparece na seção: o cabeçalho do grupo o representa
	if len(groupIndex) > 0 {
		filtered := section.Standalones[:0]
		for _, finding := range section.Standalones {
			if _, isGroupParent := groupIndex[finding.Product.SKU]; isGroupParent {
				continue
			}
			filtered = append(filtered, finding)
		}
		section.Standalones = filtered
	}

	return section
}
