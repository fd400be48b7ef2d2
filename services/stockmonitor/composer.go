package main

import (
	"fmt"
	"strings"
)

// variantSeparators são os separadores aparados do início do nome exibido da
// variação depois de remover o nome do pai
var variantSeparators = []string{":", " ", "-", "/", ","}

// ComposeAlertMessage renderiza um AlertBundle no template fixo consumido
// pelo grupo de WhatsApp. A renderização é pura e determinística: bundles
// idênticos produzem texto byte a byte idêntico.
func ComposeAlertMessage(bundle *AlertBundle) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🚨 *ALERTA DE ESTOQUE - %s* \n\n", bundle.GeneratedAt.Format("02/01/2006 15:04"))
	b.WriteString("Produtos com estoque zerado ou negativo:\n")

	for _, section := range bundle.Sections {
		fmt.Fprintf(&b, "\n🏪 *%s*\n", section.Warehouse)

		for _, group := range section.Parents {
			fmt.Fprintf(&b, "\n📦 *%s*\n(SKU PAI: %s)\n\n", displayName(group.ParentName, group.ParentSKU), group.ParentSKU)
			b.WriteString("   *Variações com estoque zerado:* ⚠️\n")
			for _, variant := range group.Variants {
				fmt.Fprintf(&b, "   • %s (SKU: %s)\n", variantDisplayName(variant.Product.Name, group.ParentName), variant.Product.SKU)
			}
			b.WriteString("\n")
		}

		for _, finding := range section.Standalones {
			fmt.Fprintf(&b, "\n📦 *%s*\n", displayName(finding.Product.Name, finding.Product.SKU))
			fmt.Fprintf(&b, "   SKU: %s\n", finding.Product.SKU)
			fmt.Fprintf(&b, "   Estoque: %d\n", finding.Quantity)
		}
	}

	b.WriteString("\nℹ️ _Este é um alerta automático do sistema de monitoramento._\n")
	b.WriteString("_Verifique e atualize os estoques conforme necessário._")

	return b.String()
}

// variantDisplayName extrai a parte distintiva do nome de uma variação
// removendo o nome do pai e aparando o primeiro separador restante
// ("Camiseta Básica: P Azul" -> "P Azul")
func variantDisplayName(fullName, parentName string) string {
	if parentName == "" {
		return fullName
	}

	name := strings.TrimSpace(strings.Replace(fullName, parentName, "", 1))
	for _, sep := range variantSeparators {
		if strings.HasPrefix(name, sep) {
			name = strings.TrimSpace(name[len(sep):])
			break
		}
	}

	if name == "" {
		return fullName
	}
	return name
}

// displayName devolve o nome do produto, caindo para o SKU quando o payload
// não trouxe nome
func displayName(name, sku string) string {
	if name == "" {
		return sku
	}
	return name
}
