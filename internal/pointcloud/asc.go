package pointcloud

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/rigidify/internal/fsutil"
)

// maxLineBytes bounds a single .asc line.
const maxLineBytes = 1 << 20

// ReadASC parses positions from r. Columns after Z are ignored.
func ReadASC(r io.Reader) ([]r3.Vec, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var pts []r3.Vec
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(strings.ReplaceAll(text, ",", " "))
		if len(fields) < 3 {
			return nil, fmt.Errorf("line %d: want at least 3 columns, got %d", line, len(fields))
		}
		var xyz [3]float64
		for i := range xyz {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %d: %w", line, i+1, err)
			}
			xyz[i] = v
		}
		pts = append(pts, r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read asc: %w", err)
	}
	return pts, nil
}

// LoadASC reads the positions stored in path.
func LoadASC(fsys fsutil.FileSystem, path string) ([]r3.Vec, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open point cloud: %w", err)
	}
	defer f.Close()

	pts, err := ReadASC(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("%s: no points", path)
	}
	return pts, nil
}

// PointASC is a position with optional extra columns.
type PointASC struct {
	Position r3.Vec
	Extra    []interface{}
}

// WriteASC writes points to w. Coordinates are written with the shortest
// representation that parses back to the same float64.
func WriteASC(w io.Writer, points []PointASC, extraHeader string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# Exported points\n")
	fmt.Fprintf(bw, "# Format: X Y Z%s\n", extraHeader)
	for _, p := range points {
		bw.WriteString(formatFloat(p.Position.X))
		bw.WriteByte(' ')
		bw.WriteString(formatFloat(p.Position.Y))
		bw.WriteByte(' ')
		bw.WriteString(formatFloat(p.Position.Z))
		for _, col := range p.Extra {
			switch v := col.(type) {
			case int:
				fmt.Fprintf(bw, " %d", v)
			case float64:
				bw.WriteByte(' ')
				bw.WriteString(formatFloat(v))
			case string:
				fmt.Fprintf(bw, " %s", v)
			default:
				fmt.Fprintf(bw, " %v", v)
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
