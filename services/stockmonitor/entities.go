package main

import (
	"fmt"
	"time"
)

// Warehouse identifica o depósito vinculado ao endpoint que recebeu o webhook
type Warehouse string

// Depósitos monitorados
const (
	WarehouseFull      Warehouse = "Depósito Full"
	WarehousePrincipal Warehouse = "Depósito Principal"
)

// warehouseOrder define a ordem fixa das seções na mensagem de alerta
var warehouseOrder = []Warehouse{WarehouseFull, WarehousePrincipal}

// StockEvent representa uma notificação de estoque normalizada
type StockEvent struct {
	SKU         string    `json:"sku"`
	ParentSKU   string    `json:"parent_sku,omitempty"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Warehouse   Warehouse `json:"warehouse"`
	ReceivedAt  time.Time `json:"received_at"`
}

// ProductRef representa a identidade resolvida de um produto
type ProductRef struct {
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	IsVariant  bool   `json:"is_variant"`
	ParentSKU  string `json:"parent_sku,omitempty"`
	ParentName string `json:"parent_name,omitempty"`
}

// NewStandaloneRef cria um ProductRef sem vínculo com produto pai
func NewStandaloneRef(sku, name string) ProductRef {
	return ProductRef{
		SKU:  sku,
		Name: name,
	}
}

// NewVariantRef cria um ProductRef vinculado a um produto pai.
// IsVariant é verdadeiro se e somente se o SKU pai é não-vazio.
func NewVariantRef(sku, name, parentSKU, parentName string) ProductRef {
	return ProductRef{
		SKU:        sku,
		Name:       name,
		IsVariant:  parentSKU != "",
		ParentSKU:  parentSKU,
		ParentName: parentName,
	}
}

// StockFinding representa uma condição de estoque crítico detectada
type StockFinding struct {
	Warehouse  Warehouse  `json:"warehouse"`
	Product    ProductRef `json:"product"`
	Quantity   int        `json:"quantity"`
	DetectedAt time.Time  `json:"detected_at"`
}

// Key retorna a chave de deduplicação do achado.
// A chave usa sempre o SKU da variação, nunca o do pai.
func (f StockFinding) Key() DedupKey {
	return DedupKey{Warehouse: f.Warehouse, SKU: f.Product.SKU}
}

// ParentGroup agrupa as variações críticas de um mesmo produto pai
type ParentGroup struct {
	ParentSKU  string         `json:"parent_sku"`
	ParentName string         `json:"parent_name"`
	Variants   []StockFinding `json:"variants"`
}

// WarehouseSection agrupa os achados de um depósito para renderização
type WarehouseSection struct {
	Warehouse   Warehouse      `json:"warehouse"`
	Parents     []ParentGroup  `json:"parents"`
	Standalones []StockFinding `json:"standalones"`
}

// AlertBundle representa o conteúdo de uma notificação de alerta
type AlertBundle struct {
	ID          string             `json:"id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Sections    []WarehouseSection `json:"sections"`
}

// Empty indica se o bundle não tem nenhuma entrada para renderizar
func (b *AlertBundle) Empty() bool {
	for _, section := range b.Sections {
		if len(section.Parents) > 0 || len(section.Standalones) > 0 {
			return false
		}
	}
	return true
}

// Keys retorna as chaves de deduplicação de todas as entradas do bundle
func (b *AlertBundle) Keys() []DedupKey {
	var keys []DedupKey
	for _, section := range b.Sections {
		for _, group := range section.Parents {
			for _, variant := range group.Variants {
				keys = append(keys, variant.Key())
			}
		}
		for _, finding := range section.Standalones {
			keys = append(keys, finding.Key())
		}
	}
	return keys
}

// DedupKey identifica um par (depósito, SKU) para fins de supressão
type DedupKey struct {
	Warehouse Warehouse `json:"warehouse"`
	SKU       string    `json:"sku"`
}

func (k DedupKey) String() string {
	return fmt.Sprintf("%s_%s", k.SKU, k.Warehouse)
}
