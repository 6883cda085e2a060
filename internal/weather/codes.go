package weather

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
)

// UnknownDescription is shown for weather codes missing from the table.
const UnknownDescription = "Unknown"

//go:embed weather.json
var defaultTable []byte

// Info is the description and icon for one code in one branch.
type Info struct {
	Description string `json:"description"`
	Icon        string `json:"image"`
}

type entry struct {
	Day   Info `json:"day"`
	Night Info `json:"night"`
}

// CodeTable maps weather codes to their day and night descriptions and icons.
// It is read-only after loading.
type CodeTable struct {
	entries map[int]entry
}

// DefaultCodeTable parses the table compiled into the binary.
func DefaultCodeTable() (*CodeTable, error) {
	return parseCodeTable(defaultTable)
}

// LoadCodeTable reads a table from r. Keys are stringified codes.
func LoadCodeTable(r io.Reader) (*CodeTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read weather code table: %w", err)
	}
	return parseCodeTable(data)
}

// LoadCodeTableFile reads a table from path.
func LoadCodeTableFile(path string) (*CodeTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open weather code table: %w", err)
	}
	defer f.Close()
	return LoadCodeTable(f)
}

func parseCodeTable(data []byte) (*CodeTable, error) {
	var raw map[string]entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode weather code table: %w", err)
	}

	entries := make(map[int]entry, len(raw))
	for k, v := range raw {
		code, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("weather code table: invalid code %q", k)
		}
		entries[code] = v
	}
	return &CodeTable{entries: entries}, nil
}

// Lookup returns the day or night Info for code. Unknown codes yield
// {"Unknown", ""} and ok == false.
func (t *CodeTable) Lookup(code int, isDay bool) (Info, bool) {
	e, ok := t.entries[code]
	if !ok {
		return Info{Description: UnknownDescription}, false
	}
	if isDay {
		return e.Day, true
	}
	return e.Night, true
}

// DayIcon returns the day icon for code, or "" when unknown.
func (t *CodeTable) DayIcon(code int) string {
	return t.entries[code].Day.Icon
}

// Len returns the number of codes in the table.
func (t *CodeTable) Len() int {
	return len(t.entries)
}
