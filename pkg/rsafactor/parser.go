package rsafactor

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
)

// Challenge is one (N, e, C) decryption job.
type Challenge struct {
	Name string
	N    *big.Int
	E    *big.Int
	C    *big.Int
}

// ChallengeParser defines the interface for loading challenges from
// various sources.
type ChallengeParser interface {
	// ParseChallenges parses challenges from a source and returns them.
	ParseChallenges(source string) ([]*Challenge, error)
}

// JSONParser parses challenges from JSON files.
type JSONParser struct {
	NameField string // Field name for the label (default: "name")
	NField    string // Field name for the modulus (default: "n")
	EField    string // Field name for the exponent (default: "e", missing = 65537)
	CField    string // Field name for the ciphertext (default: "c")
}

// ParseChallenges parses challenges from a JSON file.
//
// Expected format (numbers may be JSON numbers, decimal strings or
// 0x-prefixed hex strings):
//
//	[
//	  {"name": "textbook", "n": 3233, "e": 17, "c": 2790},
//	  {"n": "0x...", "c": "0x..."}
//	]
func (p *JSONParser) ParseChallenges(jsonFile string) ([]*Challenge, error) {
	file, err := os.Open(jsonFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.UseNumber() // Preserve large numbers as json.Number instead of float64

	var items []map[string]interface{}
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	nameField := orDefault(p.NameField, "name")
	nField := orDefault(p.NField, "n")
	eField := orDefault(p.EField, "e")
	cField := orDefault(p.CField, "c")

	challenges := make([]*Challenge, 0, len(items))
	for i, item := range items {
		ch := &Challenge{Name: fmt.Sprintf("challenge-%d", i)}
		if nameVal, ok := item[nameField]; ok {
			ch.Name = fmt.Sprint(nameVal)
		}

		nVal, ok := item[nField]
		if !ok {
			return nil, fmt.Errorf("%s: missing %s field", ch.Name, nField)
		}
		if ch.N, err = parseBigInt(nVal); err != nil {
			return nil, fmt.Errorf("%s: failed to parse n: %w", ch.Name, err)
		}

		cVal, ok := item[cField]
		if !ok {
			return nil, fmt.Errorf("%s: missing %s field", ch.Name, cField)
		}
		if ch.C, err = parseBigInt(cVal); err != nil {
			return nil, fmt.Errorf("%s: failed to parse c: %w", ch.Name, err)
		}

		ch.E = new(big.Int).Set(DefaultPublicExponent)
		if eVal, ok := item[eField]; ok {
			if ch.E, err = parseBigInt(eVal); err != nil {
				return nil, fmt.Errorf("%s: failed to parse e: %w", ch.Name, err)
			}
		}

		challenges = append(challenges, ch)
	}

	return challenges, nil
}

// CSVParser parses challenges from CSV files with a header row.
type CSVParser struct {
	NameCol string // Column name for the label (default: "name", optional)
	NCol    string // Column name for the modulus (default: "n")
	ECol    string // Column name for the exponent (default: "e", optional)
	CCol    string // Column name for the ciphertext (default: "c")
}

// ParseChallenges parses challenges from a CSV file.
func (p *CSVParser) ParseChallenges(csvFile string) ([]*Challenge, error) {
	file, err := os.Open(csvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	nameCol := orDefault(p.NameCol, "name")
	nCol := orDefault(p.NCol, "n")
	eCol := orDefault(p.ECol, "e")
	cCol := orDefault(p.CCol, "c")

	nameIdx, nIdx, eIdx, cIdx := -1, -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case nameCol:
			nameIdx = i
		case nCol:
			nIdx = i
		case eCol:
			eIdx = i
		case cCol:
			cIdx = i
		}
	}

	if nIdx == -1 || cIdx == -1 {
		return nil, fmt.Errorf("missing required columns: %s or %s", nCol, cCol)
	}

	challenges := make([]*Challenge, 0)
	for row := 0; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		ch := &Challenge{Name: fmt.Sprintf("challenge-%d", row)}
		if nameIdx >= 0 && nameIdx < len(record) && record[nameIdx] != "" {
			ch.Name = record[nameIdx]
		}

		if nIdx >= len(record) || cIdx >= len(record) {
			return nil, fmt.Errorf("%s: column index out of range", ch.Name)
		}
		if ch.N, err = parseBigInt(record[nIdx]); err != nil {
			return nil, fmt.Errorf("%s: failed to parse n: %w", ch.Name, err)
		}
		if ch.C, err = parseBigInt(record[cIdx]); err != nil {
			return nil, fmt.Errorf("%s: failed to parse c: %w", ch.Name, err)
		}

		ch.E = new(big.Int).Set(DefaultPublicExponent)
		if eIdx >= 0 && eIdx < len(record) && record[eIdx] != "" {
			if ch.E, err = parseBigInt(record[eIdx]); err != nil {
				return nil, fmt.Errorf("%s: failed to parse e: %w", ch.Name, err)
			}
		}

		challenges = append(challenges, ch)
	}

	return challenges, nil
}

// ParserForFile picks a parser from the file extension (.csv or JSON).
func ParserForFile(path string) ChallengeParser {
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		return &CSVParser{}
	}
	return &JSONParser{}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// ParseBigInt parses a decimal or 0x-prefixed hexadecimal integer string.
func ParseBigInt(s string) (*big.Int, error) {
	return parseBigInt(s)
}

// parseBigInt parses a big integer from a string or a json.Number (the
// decoder runs with UseNumber). Strings are decimal unless they carry a 0x
// prefix or contain hex letters.
func parseBigInt(val interface{}) (*big.Int, error) {
	switch v := val.(type) {
	case string:
		s := strings.TrimSpace(v)
		base := 10
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			s = s[2:]
			base = 16
		} else if strings.ContainsAny(s, "abcdefABCDEF") {
			base = 16
		}
		z := new(big.Int)
		if _, ok := z.SetString(s, base); !ok {
			return nil, fmt.Errorf("invalid number format: %s", v)
		}
		return z, nil

	case json.Number:
		z := new(big.Int)
		if _, ok := z.SetString(string(v), 10); !ok {
			return nil, fmt.Errorf("invalid number format: %s", v)
		}
		return z, nil

	default:
		return nil, fmt.Errorf("unsupported type: %T", val)
	}
}
