// Package vecfile reads the flat whitespace-separated vector text format
// the original tool's CLI took as --dataFile/--queryFile (one vector per
// line, space-separated floats), the simplest on-disk shape the corpus
// supports without pulling in a binary fvecs/bvecs reader.
package vecfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/vectorbench/vectorbench/pkg/nnobject"
)

// Load reads path and returns one dense Object per non-blank line, ids
// assigned sequentially starting at 0 in file order.
func Load(path string) (nnobject.ObjectVector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vecfile: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses vectors from r, same format as Load.
func Read(r io.Reader) (nnobject.ObjectVector, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var out nnobject.ObjectVector
	var id uint64
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		vec := make([]float32, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("vecfile: line %d: field %d: %w", lineNo, i, err)
			}
			vec[i] = float32(v)
		}

		out = append(out, nnobject.NewDense(id, vec))
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("vecfile: scan: %w", err)
	}
	return out, nil
}
