package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var aggregatedAt = time.Date(2025, 8, 14, 15, 4, 0, 0, time.UTC)

func variantFinding(wh Warehouse, sku, name, parentSKU, parentName string, quantity int) StockFinding {
	return StockFinding{
		Warehouse:  wh,
		Product:    NewVariantRef(sku, name, parentSKU, parentName),
		Quantity:   quantity,
		DetectedAt: aggregatedAt,
	}
}

func standaloneFinding(wh Warehouse, sku, name string, quantity int) StockFinding {
	return StockFinding{
		Warehouse:  wh,
		Product:    NewStandaloneRef(sku, name),
		Quantity:   quantity,
		DetectedAt: aggregatedAt,
	}
}

func TestBuildAlertBundleWarehouseOrder(t *testing.T) {
	// Arrange: achados chegam com Principal antes de Full
	findings := []StockFinding{
		standaloneFinding(WarehousePrincipal, "IND02", "Produto B", 0),
		standaloneFinding(WarehouseFull, "IND01", "Produto A", 0),
	}

	// Act
	bundle := BuildAlertBundle(findings, aggregatedAt)

	// Assert: a ordem das seções é fixa, Full antes de Principal
	assert.Len(t, bundle.Sections, 2)
	assert.Equal(t, WarehouseFull, bundle.Sections[0].Warehouse)
	assert.Equal(t, WarehousePrincipal, bundle.Sections[1].Warehouse)
	assert.NotEmpty(t, bundle.ID)
	assert.Equal(t, aggregatedAt, bundle.GeneratedAt)
}

func TestBuildAlertBundleGroupsVariantsSortedBySKU(t *testing.T) {
	// Arrange: grupo {A: 0, C: -2}; B (5) já foi filtrado pelo classificador
	findings := []StockFinding{
		variantFinding(WarehouseFull, "VC", "Kit Base: Cinza", "KIT01", "Kit Base", -2),
		variantFinding(WarehouseFull, "VA", "Kit Base: Azul", "KIT01", "Kit Base", 0),
	}

	// Act
	bundle := BuildAlertBundle(findings, aggregatedAt)

	// Assert
	assert.Len(t, bundle.Sections, 1)
	parents := bundle.Sections[0].Parents
	assert.Len(t, parents, 1)
	assert.Equal(t, "KIT01", parents[0].ParentSKU)
	assert.Len(t, parents[0].Variants, 2)
	assert.Equal(t, "VA", parents[0].Variants[0].Product.SKU)
	assert.Equal(t, "VC", parents[0].Variants[1].Product.SKU)
}

func TestBuildAlertBundleParentNotDuplicatedAsStandalone(t *testing.T) {
	// O achado do próprio pai não vira entrada avulsa quando o grupo dele já
	// está na seção
	findings := []StockFinding{
		standaloneFinding(WarehouseFull, "KIT01", "Kit Base", 0),
		variantFinding(WarehouseFull, "VA", "Kit Base: Azul", "KIT01", "Kit Base", 0),
	}

	bundle := BuildAlertBundle(findings, aggregatedAt)

	section := bundle.Sections[0]
	assert.Len(t, section.Parents, 1)
	assert.Empty(t, section.Standalones)
}

func TestBuildAlertBundleKeepsUnrelatedStandalone(t *testing.T) {
	findings := []StockFinding{
		variantFinding(WarehouseFull, "VA", "Kit Base: Azul", "KIT01", "Kit Base", 0),
		standaloneFinding(WarehouseFull, "IND01", "Produto Avulso", -5),
	}

	bundle := BuildAlertBundle(findings, aggregatedAt)

	section := bundle.Sections[0]
	assert.Len(t, section.Parents, 1)
	assert.Len(t, section.Standalones, 1)
	assert.Equal(t, "IND01", section.Standalones[0].Product.SKU)
}

func TestBuildAlertBundleSeparatesWarehouses(t *testing.T) {
	// O estoque de um depósito não interfere na classificação do outro: o
	// mesmo SKU pode aparecer nas duas seções
	findings := []StockFinding{
		standaloneFinding(WarehouseFull, "IND01", "Produto", 0),
		standaloneFinding(WarehousePrincipal, "IND01", "Produto", -1),
	}

	bundle := BuildAlertBundle(findings, aggregatedAt)

	assert.Len(t, bundle.Sections, 2)
	assert.Equal(t, 0, bundle.Sections[0].Standalones[0].Quantity)
	assert.Equal(t, -1, bundle.Sections[1].Standalones[0].Quantity)
}

func TestBuildAlertBundleEmptyFindings(t *testing.T) {
	bundle := BuildAlertBundle(nil, aggregatedAt)

	assert.True(t, bundle.Empty())
	assert.Empty(t, bundle.Sections)
}
