package main

import (
	"testing"
	"time"
)

func TestNewVariantRef(t *testing.T) {
	// Arrange
	sku := "VAR01"
	name := "Camiseta Básica: P Azul"
	parentSKU := "PAI01"
	parentName := "Camiseta Básica"

	// Act
	ref := NewVariantRef(sku, name, parentSKU, parentName)

	// Assert
	if ref.SKU != sku {
		t.Errorf("Expected SKU %s, got %s", sku, ref.SKU)
	}
	if !ref.IsVariant {
		t.Error("Expected IsVariant to be true when parent SKU is present")
	}
	if ref.ParentSKU != parentSKU {
		t.Errorf("Expected ParentSKU %s, got %s", parentSKU, ref.ParentSKU)
	}
	if ref.ParentName != parentName {
		t.Errorf("Expected ParentName %s, got %s", parentName, ref.ParentName)
	}
}

func TestNewVariantRefWithoutParent(t *testing.T) {
	// IsVariant deve ser verdadeiro se e somente se o SKU pai é não-vazio
	ref := NewVariantRef("VAR01", "Produto", "", "")
	if ref.IsVariant {
		t.Error("Expected IsVariant to be false when parent SKU is empty")
	}
}

func TestNewStandaloneRef(t *testing.T) {
	ref := NewStandaloneRef("IND01", "Produto Individual")

	if ref.IsVariant {
		t.Error("Expected IsVariant to be false")
	}
	if ref.ParentSKU != "" {
		t.Errorf("Expected empty ParentSKU, got %s", ref.ParentSKU)
	}
}

func TestStockFindingKey(t *testing.T) {
	// Arrange
	finding := StockFinding{
		Warehouse: WarehouseFull,
		Product:   NewVariantRef("VAR01", "Camiseta P", "PAI01", "Camiseta"),
		Quantity:  0,
	}

	// Act
	key := finding.Key()

	// Assert: a chave usa o SKU da variação, nunca o do pai
	if key.SKU != "VAR01" {
		t.Errorf("Expected key SKU VAR01, got %s", key.SKU)
	}
	if key.Warehouse != WarehouseFull {
		t.Errorf("Expected key warehouse %s, got %s", WarehouseFull, key.Warehouse)
	}
}

func TestDedupKeyString(t *testing.T) {
	key := DedupKey{Warehouse: WarehousePrincipal, SKU: "IND01"}

	if key.String() != "IND01_Depósito Principal" {
		t.Errorf("Unexpected key string: %s", key.String())
	}
}

func TestAlertBundleKeys(t *testing.T) {
	// Arrange
	now := time.Now()
	bundle := &AlertBundle{
		ID:          "bundle-1",
		GeneratedAt: now,
		Sections: []WarehouseSection{
			{
				Warehouse: WarehouseFull,
				Parents: []ParentGroup{
					{
						ParentSKU:  "PAI01",
						ParentName: "Camiseta",
						Variants: []StockFinding{
							{Warehouse: WarehouseFull, Product: NewVariantRef("VAR01", "Camiseta P", "PAI01", "Camiseta")},
						},
					},
				},
				Standalones: []StockFinding{
					{Warehouse: WarehouseFull, Product: NewStandaloneRef("IND01", "Produto")},
				},
			},
		},
	}

	// Act
	keys := bundle.Keys()

	// Assert
	if len(keys) != 2 {
		t.Fatalf("Expected 2 keys, got %d", len(keys))
	}
	if keys[0].SKU != "VAR01" || keys[1].SKU != "IND01" {
		t.Errorf("Unexpected keys: %v", keys)
	}
	if bundle.Empty() {
		t.Error("Expected bundle not to be empty")
	}
}

func TestAlertBundleEmpty(t *testing.T) {
	bundle := &AlertBundle{ID: "bundle-2", GeneratedAt: time.Now()}

	if !bundle.Empty() {
		t.Error("Expected bundle with no sections to be empty")
	}
	if len(bundle.Keys()) != 0 {
		t.Error("Expected no keys for empty bundle")
	}
}
