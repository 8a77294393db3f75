package inventory

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultBarcodePrefix prefijo cuando el producto no tiene código de barras propio.
const DefaultBarcodePrefix = "PROD-"

// BaseCode devuelve la base de los códigos de unidad: el código del producto o PROD-{productID}.
func BaseCode(productID, productBarcode string) string {
	if b := strings.TrimSpace(productBarcode); b != "" {
		return b
	}
	return DefaultBarcodePrefix + productID
}

// FormatBarcode arma {base}-{secuencia con 3 dígitos mínimo}.
func FormatBarcode(base string, seq int) string {
	return fmt.Sprintf("%s-%03d", base, seq)
}

// ParseSequence extrae el sufijo numérico tras el último guion. 0 si no hay sufijo válido.
func ParseSequence(barcode string) int {
	i := strings.LastIndex(barcode, "-")
	if i < 0 || i == len(barcode)-1 {
		return 0
	}
	n, err := strconv.Atoi(barcode[i+1:])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// NextBarcodes genera quantity códigos contiguos a partir del sufijo de lastBarcode.
// La secuencia nunca se deriva de un conteo, así se toleran unidades borradas.
func NextBarcodes(base, lastBarcode string, quantity int) []string {
	start := ParseSequence(lastBarcode) + 1
	out := make([]string, 0, quantity)
	for i := 0; i < quantity; i++ {
		out = append(out, FormatBarcode(base, start+i))
	}
	return out
}
