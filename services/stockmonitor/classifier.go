package main

// StockClassifier avalia eventos contra o limiar de estoque crítico
type StockClassifier struct {
	// Threshold é o limiar de criticidade: quantidade <= Threshold alerta.
	// O padrão é 0 (estoque zerado ou negativo).
	Threshold int
}

// NewStockClassifier cria uma nova instância de StockClassifier
func NewStockClassifier(threshold int) *StockClassifier {
	return &StockClassifier{Threshold: threshold}
}

// Classify retorna um achado quando a quantidade do evento está no limiar
// crítico ou abaixo dele. Quantidades negativas são preservadas no achado
// para a mensagem refletir o déficit real. O segundo retorno sinaliza
// recuperação: estoque acima do limiar, cuja supressão deve ser limpa para
// que uma nova queda no mesmo dia volte a alertar.
func (c *StockClassifier) Classify(ev StockEvent, ref ProductRef) (*StockFinding, bool) {
	if ev.Quantity > c.Threshold {
		return nil, true
	}

	return &StockFinding{
		Warehouse:  ev.Warehouse,
		Product:    ref,
		Quantity:   ev.Quantity,
		DetectedAt: ev.ReceivedAt,
	}, false
}
