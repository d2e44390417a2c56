package service

import (
	"bytes"
	"encoding/json"
	"io"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/variantlab/codesim/domain"
)

// reportDecimals is the precision persisted reports round metric values to.
// In-memory values stay at full precision; only serialization rounds.
const reportDecimals = 4

// ComparisonStorageImpl implements the ComparisonStorage interface
type ComparisonStorageImpl struct{}

// NewComparisonStorage creates a new comparison storage service
func NewComparisonStorage() *ComparisonStorageImpl {
	return &ComparisonStorageImpl{}
}

// Save serializes the response in the requested format. Every numeric value
// in the report is rounded to four decimal places.
func (s *ComparisonStorageImpl) Save(response *domain.CompareResponse, format domain.OutputFormat, writer io.Writer) error {
	tree, err := s.roundedTree(response)
	if err != nil {
		return domain.NewOutputError("failed to encode comparison report", err)
	}

	switch format {
	case domain.OutputFormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(tree); err != nil {
			return domain.NewOutputError("failed to write JSON report", err)
		}
	case domain.OutputFormatYAML:
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(2)
		defer encoder.Close()
		if err := encoder.Encode(tree); err != nil {
			return domain.NewOutputError("failed to write YAML report", err)
		}
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
	return nil
}

// roundedTree marshals the response through a generic tree so rounding can be
// applied uniformly, regardless of which bundle produced each number.
func (s *ComparisonStorageImpl) roundedTree(response *domain.CompareResponse) (interface{}, error) {
	encoded, err := json.Marshal(response)
	if err != nil {
		return nil, err
	}

	var tree interface{}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	if err := decoder.Decode(&tree); err != nil {
		return nil, err
	}
	return roundNumbers(tree), nil
}

func roundNumbers(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		for key, entry := range v {
			v[key] = roundNumbers(entry)
		}
		return v
	case []interface{}:
		for i, entry := range v {
			v[i] = roundNumbers(entry)
		}
		return v
	case json.Number:
		// Integers pass through untouched so counts stay exact
		if asInt, err := v.Int64(); err == nil {
			return asInt
		}
		asFloat, err := v.Float64()
		if err != nil {
			return v.String()
		}
		return roundTo(asFloat, reportDecimals)
	default:
		return v
	}
}

func roundTo(value float64, decimals int) float64 {
	shift := math.Pow(10, float64(decimals))
	return math.Round(value*shift) / shift
}
