package main

import "strings"

// minNameSuffix é o excedente mínimo de tamanho do nome da variação sobre o
// nome do pai para a heurística de contenção considerar o vínculo real
const minNameSuffix = 3

// VariantRule infere o SKU pai a partir do SKU de uma variação segundo uma
// convenção de nomenclatura configurada. Retorna ok falso quando o SKU não
// segue a convenção.
type VariantRule func(sku string) (parentSKU string, ok bool)

// PrefixVariantRule cria uma VariantRule que trata tudo antes do último
// separador como SKU pai (ex.: "PAI01-P" -> "PAI01" com separador "-")
func PrefixVariantRule(sep string) VariantRule {
	return func(sku string) (string, bool) {
		idx := strings.LastIndex(sku, sep)
		if idx <= 0 {
			return "", false
		}
		return sku[:idx], true
	}
}

// RelationResolver resolve vínculos pai/variação entre produtos
type RelationResolver struct {
	rule VariantRule
}

// NewRelationResolver cria uma nova instância de RelationResolver.
// A regra de SKU é opcional; sem ela somente o vínculo explícito e a
// heurística de nomes do lote são aplicados.
func NewRelationResolver(rule VariantRule) *RelationResolver {
	return &RelationResolver{rule: rule}
}

// ResolveBatch resolve a identidade de cada produto de um lote, indexada por
// SKU. A resolução é melhor-esforço: um vínculo não inferido nunca descarta
// o produto, que segue alertável como avulso.
func (r *RelationResolver) ResolveBatch(events []StockEvent) map[string]ProductRef {
	names := make(map[string]string, len(events))
	for _, ev := range events {
		names[ev.SKU] = ev.ProductName
	}

	refs := make(map[string]ProductRef, len(events))
	for _, ev := range events {
		refs[ev.SKU] = r.resolve(ev, events, names)
	}
	return refs
}

func (r *RelationResolver) resolve(ev StockEvent, batch []StockEvent, names map[string]string) ProductRef {
	// Vínculo explícito no payload é confiado sem inferência
	if ev.ParentSKU != "" {
		return NewVariantRef(ev.SKU, ev.ProductName, ev.ParentSKU, names[ev.ParentSKU])
	}

	if parentSKU, parentName, ok := findParentByName(ev, batch); ok {
		return NewVariantRef(ev.SKU, ev.ProductName, parentSKU, parentName)
	}

	if r.rule != nil {
		if parentSKU, ok := r.rule(ev.SKU); ok {
			return NewVariantRef(ev.SKU, ev.ProductName, parentSKU, names[parentSKU])
		}
	}

	return NewStandaloneRef(ev.SKU, ev.ProductName)
}

// findParentByName procura no lote um produto cujo nome esteja contido no
// nome do evento com folga suficiente ("Camiseta" é pai de "Camiseta P Azul").
// Havendo mais de um candidato, vence o de nome mais longo (mais específico).
func findParentByName(ev StockEvent, batch []StockEvent) (string, string, bool) {
	var bestSKU, bestName string

	for _, candidate := range batch {
		if candidate.SKU == ev.SKU || candidate.ProductName == "" || ev.ProductName == "" {
			continue
		}
		if candidate.ProductName == ev.ProductName {
			continue
		}
		if !strings.Contains(ev.ProductName, candidate.ProductName) {
			continue
		}
		if len(ev.ProductName) <= len(candidate.ProductName)+minNameSuffix {
			continue
		}
		if len(candidate.ProductName) > len(bestName) {
			bestSKU = candidate.SKU
			bestName = candidate.ProductName
		}
	}

	return bestSKU, bestName, bestSKU != ""
}
