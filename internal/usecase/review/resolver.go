package review

import (
	"strings"

	"almacen-front/internal/domain/product"
)

// resolveLine finds the SKU for one line. An explicit SKU (picked from the
// catalog by the operator) always wins; otherwise the line's free-text
// name is matched against catalog names by bidirectional case-insensitive
// containment. More than one hit resolves to the first and flags the rest.
func resolveLine(idx int, line Line, catalog product.Catalog) Resolution {
	if sku := strings.TrimSpace(line.SKU); sku != "" {
		return Resolution{Index: idx, SKU: sku, Resolved: true}
	}

	hits := catalog.MatchName(line.Name)
	if len(hits) == 0 {
		return Resolution{Index: idx}
	}

	res := Resolution{Index: idx, SKU: hits[0].SKU, Resolved: true}
	if len(hits) > 1 {
		for _, h := range hits[1:] {
			res.Ambiguous = append(res.Ambiguous, h.SKU)
		}
	}
	return res
}

// ResolveLines resolves every line that carries either a SKU or a name;
// lines with neither are skipped (they are dropped at commit).
func ResolveLines(lines []Line, catalog product.Catalog) []Resolution {
	out := make([]Resolution, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line.SKU) == "" && strings.TrimSpace(line.Name) == "" {
			continue
		}
		out = append(out, resolveLine(i, line, catalog))
	}
	return out
}
