package analytics

import (
	"encoding/json"
	"sort"
)

// TopQueryLimit is the number of queries reported by Summarize.
const TopQueryLimit = 5

// FileStat is the metadata kept for one ingested file.
type FileStat struct {
	Filename string `json:"filename"`
	Words    int    `json:"words"`
	Pages    int    `json:"pages"`
}

// Record is a user's analytics: one entry per filename plus the raw query log.
type Record struct {
	Files   []FileStat `json:"files"`
	Queries []string   `json:"queries"`
}

// QueryCount is one ranked query. It serializes as [query, count].
type QueryCount struct {
	Query string
	Count int
}

// MarshalJSON encodes the pair as a two-element array.
func (q QueryCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{q.Query, q.Count})
}

// Summary is the derived view served by /analytics.
type Summary struct {
	TotalFiles int          `json:"total_files"`
	TotalWords int          `json:"total_words"`
	TotalPages int          `json:"total_pages"`
	TopQueries []QueryCount `json:"top_queries"`
}

// withFile returns files with any entry for f.Filename removed and f appended.
func withFile(files []FileStat, f FileStat) []FileStat {
	out := make([]FileStat, 0, len(files)+1)
	for _, existing := range files {
		if existing.Filename != f.Filename {
			out = append(out, existing)
		}
	}
	return append(out, f)
}

func summarize(rec Record) Summary {
	s := Summary{TotalFiles: len(rec.Files)}
	for _, f := range rec.Files {
		s.TotalWords += f.Words
		s.TotalPages += f.Pages
	}
	s.TopQueries = topQueries(rec.Queries, TopQueryLimit)
	return s
}

// topQueries ranks by frequency; equally frequent queries keep first-seen order.
func topQueries(queries []string, limit int) []QueryCount {
	counts := make(map[string]int, len(queries))
	ranked := make([]QueryCount, 0)
	for _, q := range queries {
		if _, seen := counts[q]; !seen {
			ranked = append(ranked, QueryCount{Query: q})
		}
		counts[q]++
	}
	for i := range ranked {
		ranked[i].Count = counts[ranked[i].Query]
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
