// Package snapshot reads and writes the text log of recorded lattice states.
//
// A log is a sequence of blocks separated by blank lines:
//
//	Snapshot 0 at time 0.02:
//	Point: (-270, -270, -270), Intensity: 0.5
//	...
//
// Blocks whose first line is not a snapshot header (such as the file preamble)
// are skipped when reading.
package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Preamble is written once at the start of each recording session.
const Preamble = "Cube Snapshots:"

// ErrMalformed is wrapped by every parse failure.
var ErrMalformed = errors.New("malformed snapshot log")

// Sample is one lattice point and its field intensity.
type Sample struct {
	Point     mgl64.Vec3
	Intensity float64
}

// Record is one snapshot block.
type Record struct {
	Index   int
	Time    float64
	Samples []Sample
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WritePreamble starts a new log.
func WritePreamble(w io.Writer) error {
	_, err := io.WriteString(w, Preamble+"\n\n")
	return err
}

// WriteBlockFrom writes one block for points and their intensities, followed by
// the blank separator line. intensities[i] belongs to points[i].
func WriteBlockFrom(w io.Writer, index int, t float64, points []mgl64.Vec3, intensities []float64) error {
	if len(intensities) != len(points) {
		return fmt.Errorf("snapshot %d: %d intensities for %d points", index, len(intensities), len(points))
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Snapshot %d at time %s:\n", index, formatFloat(t))
	for i, p := range points {
		writeSample(bw, p, intensities[i])
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

// writeSample writes one point line. Errors surface at Flush.
func writeSample(w *bufio.Writer, p mgl64.Vec3, intensity float64) {
	w.WriteString("Point: (")
	w.WriteString(formatFloat(p.X()))
	w.WriteString(", ")
	w.WriteString(formatFloat(p.Y()))
	w.WriteString(", ")
	w.WriteString(formatFloat(p.Z()))
	w.WriteString("), Intensity: ")
	w.WriteString(formatFloat(intensity))
	w.WriteByte('\n')
}

// Parse reads every snapshot block from r.
func Parse(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var (
		records []Record
		cur     *Record
		inBlock bool
		lineNo  int
	)
	flush := func() {
		if cur != nil {
			records = append(records, *cur)
			cur = nil
		}
	}
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			flush()
			inBlock = false
			continue
		}
		if !inBlock {
			inBlock = true
			idx, t, ok, err := parseHeader(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if ok {
				cur = &Record{Index: idx, Time: t}
			}
			continue
		}
		if cur == nil || !strings.HasPrefix(line, "Point") {
			continue
		}
		s, err := parseSample(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		cur.Samples = append(cur.Samples, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading snapshot log: %w", err)
	}
	flush()
	return records, nil
}

// ReadFile parses the log at path.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// parseHeader reports ok=false for blocks that are not snapshots.
func parseHeader(line string) (int, float64, bool, error) {
	if !strings.HasPrefix(line, "Snapshot ") {
		return 0, 0, false, nil
	}
	rest := strings.TrimPrefix(line, "Snapshot ")
	idxStr, timeStr, found := strings.Cut(rest, " at time ")
	if !found {
		return 0, 0, false, nil
	}
	idx, err := strconv.Atoi(strings.TrimSpace(idxStr))
	if err != nil {
		return 0, 0, false, fmt.Errorf("%w: snapshot index %q", ErrMalformed, idxStr)
	}
	timeStr = strings.TrimSuffix(strings.TrimSpace(timeStr), ":")
	t, err := strconv.ParseFloat(timeStr, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("%w: snapshot time %q", ErrMalformed, timeStr)
	}
	return idx, t, true, nil
}

func parseSample(line string) (Sample, error) {
	open := strings.IndexByte(line, '(')
	closing := strings.IndexByte(line, ')')
	if open < 0 || closing < open {
		return Sample{}, fmt.Errorf("%w: point line %q", ErrMalformed, line)
	}
	coords := strings.Split(line[open+1:closing], ",")
	if len(coords) != 3 {
		return Sample{}, fmt.Errorf("%w: point line %q needs 3 coordinates", ErrMalformed, line)
	}
	var p mgl64.Vec3
	for i, c := range coords {
		v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return Sample{}, fmt.Errorf("%w: coordinate %q", ErrMalformed, c)
		}
		p[i] = v
	}
	_, value, found := strings.Cut(line[closing+1:], "Intensity:")
	if !found {
		return Sample{}, fmt.Errorf("%w: point line %q has no intensity", ErrMalformed, line)
	}
	intensity, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return Sample{}, fmt.Errorf("%w: intensity %q", ErrMalformed, value)
	}
	return Sample{Point: p, Intensity: intensity}, nil
}
