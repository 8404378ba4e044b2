package dump

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

// Chunk describes one sharded history dump file, decoded from its name.
// Example: enwiki-20180301-pages-meta-history1.xml-p10p2115.csv.gz
type Chunk struct {
	Lang        string
	Date        time.Time
	HistoryNo   int
	FirstPageID int64
	LastPageID  int64
	Ext         string
}

var (
	chunkRE = regexp.MustCompile(
		`^([a-z]{2,3})wiki-(\d{8})-pages-meta-history(\d{1,2})?\.xml-p(\d+)p(\d+)\.(.+)$`)
	dumpDateRE = regexp.MustCompile(`wiki-(\d{8})-pages-meta-history`)
)

// ParseChunk decodes a dump chunk filename. The path may carry leading
// directories; only the base name matters.
func ParseChunk(path string) (*Chunk, error) {
	name := filepath.Base(path)
	m := chunkRE.FindStringSubmatch(name)
	if m == nil {
		return nil, fmt.Errorf("not a dump chunk filename: %s", name)
	}

	date, err := time.Parse("20060102", m[2])
	if err != nil {
		return nil, fmt.Errorf("bad date in chunk filename %s: %w", name, err)
	}

	historyNo := 0
	if m[3] != "" {
		historyNo, _ = strconv.Atoi(m[3])
	}
	first, _ := strconv.ParseInt(m[4], 10, 64)
	last, _ := strconv.ParseInt(m[5], 10, 64)

	return &Chunk{
		Lang:        m[1],
		Date:        date,
		HistoryNo:   historyNo,
		FirstPageID: first,
		LastPageID:  last,
		Ext:         m[6],
	}, nil
}

// DumpDate extracts the dump's embedded date from any filename carrying
// the standard wiki-YYYYMMDD-pages-meta-history marker. It is the
// fallback source for the snapshot range bound when no explicit last
// date is configured.
func DumpDate(path string) (time.Time, bool) {
	m := dumpDateRE.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return time.Time{}, false
	}
	date, err := time.Parse("20060102", m[1])
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
