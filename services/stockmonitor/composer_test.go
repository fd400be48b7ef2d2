package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testBundle() *AlertBundle {
	generatedAt := time.Date(2025, 8, 14, 15, 4, 0, 0, time.UTC)
	return &AlertBundle{
		ID:          "bundle-fixed",
		GeneratedAt: generatedAt,
		Sections: []WarehouseSection{
			{
				Warehouse: WarehouseFull,
				Parents: []ParentGroup{
					{
						ParentSKU:  "PAI01",
						ParentName: "Camiseta Básica",
						Variants: []StockFinding{
							{
								Warehouse:  WarehouseFull,
								Product:    NewVariantRef("VAR01", "Camiseta Básica: P Azul", "PAI01", "Camiseta Básica"),
								Quantity:   0,
								DetectedAt: generatedAt,
							},
						},
					},
				},
			},
			{
				Warehouse: WarehousePrincipal,
				Standalones: []StockFinding{
					{
						Warehouse:  WarehousePrincipal,
						Product:    NewStandaloneRef("IND01", "Produto Avulso"),
						Quantity:   -5,
						DetectedAt: generatedAt,
					},
				},
			},
		},
	}
}

func TestComposeAlertMessageDeterministic(t *testing.T) {
	// A renderização é pura: o mesmo bundle duas vezes gera texto idêntico
	// byte a byte
	bundle := testBundle()

	first := ComposeAlertMessage(bundle)
	second := ComposeAlertMessage(bundle)

	assert.Equal(t, first, second)
}

func TestComposeAlertMessageTemplate(t *testing.T) {
	// Act
	message := ComposeAlertMessage(testBundle())

	// Assert: cabeçalho com timestamp localizado
	assert.Contains(t, message, "🚨 *ALERTA DE ESTOQUE - 14/08/2025 15:04*")
	assert.Contains(t, message, "Produtos com estoque zerado ou negativo:")

	// Seção do Depósito Full com o grupo do pai e a variação crítica
	assert.Contains(t, message, "🏪 *Depósito Full*")
	assert.Contains(t, message, "📦 *Camiseta Básica*\n(SKU PAI: PAI01)")
	assert.Contains(t, message, "*Variações com estoque zerado:* ⚠️")
	assert.Contains(t, message, "   • P Azul (SKU: VAR01)")

	// Seção do Depósito Principal com o avulso e o déficit real, não truncado
	assert.Contains(t, message, "🏪 *Depósito Principal*")
	assert.Contains(t, message, "📦 *Produto Avulso*")
	assert.Contains(t, message, "   SKU: IND01")
	assert.Contains(t, message, "   Estoque: -5")

	// Rodapé informativo
	assert.Contains(t, message, "ℹ️ _Este é um alerta automático do sistema de monitoramento._")
	assert.Contains(t, message, "_Verifique e atualize os estoques conforme necessário._")

	// As seções seguem a ordem fixa do template
	assert.Less(t, strings.Index(message, "Depósito Full"), strings.Index(message, "Depósito Principal"))
}

func TestVariantDisplayName(t *testing.T) {
	cases := []struct {
		fullName   string
		parentName string
		expected   string
	}{
		{"Camiseta Básica: P Azul", "Camiseta Básica", "P Azul"},
		{"Camiseta Básica - M Preta", "Camiseta Básica", "M Preta"},
		{"Camiseta Básica G", "Camiseta Básica", "G"},
		{"Camiseta Básica/GG", "Camiseta Básica", "GG"},
		{"Nome Independente", "", "Nome Independente"},
		{"Camiseta Básica", "Camiseta Básica", "Camiseta Básica"},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, variantDisplayName(c.fullName, c.parentName), "fullName=%q parentName=%q", c.fullName, c.parentName)
	}
}

func TestDisplayNameFallsBackToSKU(t *testing.T) {
	assert.Equal(t, "IND01", displayName("", "IND01"))
	assert.Equal(t, "Produto", displayName("Produto", "IND01"))
}
