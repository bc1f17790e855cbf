package cart

import (
	"encoding/json"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// EncodeLines serialises lines as a JSON array. A nil slice encodes as [].
func EncodeLines(lines []domain.CartLine) ([]byte, error) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return json.Marshal(lines)
}

func DecodeLines(data []byte) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// normalize drops non-positive quantities and merges lines sharing a key,
// keeping the position of the first occurrence.
func normalize(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(lines))
	index := make(map[domain.LineKey]int, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		if i, ok := index[line.Key()]; ok {
			out[i].Quantity += line.Quantity
			continue
		}
		index[line.Key()] = len(out)
		out = append(out, line)
	}
	return out
}
