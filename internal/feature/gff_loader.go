package feature

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// GFFLoader loads features from GFF3 files into a Set.
type GFFLoader struct {
	path   string
	logger *zap.Logger
}

// NewGFFLoader creates a new GFF3 loader.
func NewGFFLoader(path string) *GFFLoader {
	return &GFFLoader{path: path, logger: zap.NewNop()}
}

// SetLogger sets the logger for warning messages about skipped lines.
func (l *GFFLoader) SetLogger(lg *zap.Logger) {
	l.logger = lg
}

// Load reads the whole file into the set. Gzipped files are detected
// by their .gz extension.
func (l *GFFLoader) Load(s *Set) error {
	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("open GFF file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(l.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return l.Parse(reader, s)
}

// Parse reads GFF3 records from r and adds them to the set.
// ##sequence-region pragmas lock the index of not-yet-seen sequences
// to the declared length; malformed feature lines are skipped with a
// warning rather than aborting the load.
func (l *GFFLoader) Parse(r io.Reader, s *Set) error {
	scanner := bufio.NewScanner(r)
	// Attribute columns can get long in annotation dumps
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if strings.HasPrefix(line, "##sequence-region") {
				l.applySequenceRegion(line, s)
			}
			continue
		}

		f, err := parseLine(line)
		if err != nil {
			l.logger.Warn("skipping malformed GFF line",
				zap.Int("line", lineNum),
				zap.Error(err))
			continue
		}

		if err := s.Add(f); err != nil {
			l.logger.Warn("skipping feature",
				zap.Int("line", lineNum),
				zap.String("feature", f.String()),
				zap.Error(err))
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan GFF: %w", err)
	}
	return nil
}

// applySequenceRegion handles "##sequence-region seqid start end". The
// pragma is advisory; it only takes effect for sequences without
// features yet, and a bad pragma is ignored.
func (l *GFFLoader) applySequenceRegion(line string, s *Set) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return
	}
	end, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil || end <= 0 {
		return
	}
	if err := s.DeclareSeq(fields[1], end); err != nil {
		l.logger.Warn("ignoring sequence-region pragma",
			zap.String("seqid", fields[1]),
			zap.Error(err))
	}
}

// parseLine parses one tab-separated GFF3 feature line. GFF3 uses
// 1-based inclusive coordinates; they are converted to the zero-based
// half-open form used everywhere else.
func parseLine(line string) (*Feature, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 9 {
		return nil, fmt.Errorf("expected 9 columns, got %d", len(fields))
	}

	start, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}
	end, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}
	if start < 1 || end < start {
		return nil, fmt.Errorf("bad coordinate pair %d-%d", start, end)
	}

	return &Feature{
		SeqID:      fields[0],
		Source:     fields[1],
		Type:       fields[2],
		Start:      start - 1,
		End:        end,
		Score:      fields[5],
		Strand:     fields[6],
		Attributes: parseAttributes(fields[8]),
	}, nil
}

// parseAttributes parses the key=value;key=value attribute column.
func parseAttributes(s string) map[string]string {
	attrs := make(map[string]string)
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" || pair == "." {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		attrs[key] = value
	}
	return attrs
}
