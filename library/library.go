// Package library 加载静态候选库：推荐宇宙的全部候选曲目。
// 候选库在构建期离线产出为 CSV，请求期只读；进程内只加载一次。
package library

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/chrisJoyceDS/SongSuggest/core"
)

// Loader 把候选库 CSV 加载为只读 TrackTable。
// 并发请求下用 singleflight 保证文件只读取一次，之后命中进程内缓存。
type Loader struct {
	Path string

	group  singleflight.Group
	mu     sync.RWMutex
	cached *core.TrackTable
}

func NewLoader(path string) *Loader {
	return &Loader{Path: path}
}

// Load 返回候选库表。首次调用读文件，之后返回缓存（无写路径，读不加锁竞争）。
func (l *Loader) Load() (*core.TrackTable, error) {
	l.mu.RLock()
	if l.cached != nil {
		defer l.mu.RUnlock()
		return l.cached, nil
	}
	l.mu.RUnlock()

	v, err, _ := l.group.Do("library", func() (any, error) {
		f, err := os.Open(l.Path)
		if err != nil {
			return nil, fmt.Errorf("open candidate library: %w", err)
		}
		defer f.Close()

		table, err := ReadCSV(f)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cached = table
		l.mu.Unlock()
		return table, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.TrackTable), nil
}

// ReadCSV 解析候选库 CSV。
//
// 要求表头含 id/track_name/artist 与全部模型列（顺序不限，按表头定位）；release_year 非法的行
// 被跳过（质量闸），id 重复的行只保留首个。
func ReadCSV(r io.Reader) (*core.TrackTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read library header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range append([]string{"id", "track_name", "artist"}, core.ModelColumns...) {
		if _, ok := col[required]; !ok {
			return nil, core.NewDomainError(core.ModuleLibrary, core.ErrorCodeSchemaMismatch,
				"candidate library: missing column "+required)
		}
	}

	table := core.NewTrackTable(256)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read library row %d: %w", line, err)
		}

		get := func(name string) string {
			idx, ok := col[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}
		num := func(name string) (float64, bool) {
			v, err := strconv.ParseFloat(get(name), 64)
			if err != nil {
				return 0, false
			}
			return v, true
		}

		year, ok := num("release_year")
		if !ok || int(year) <= 0 {
			continue
		}

		tr := core.Track{
			ID:          get("id"),
			TrackName:   get("track_name"),
			Artist:      get("artist"),
			ArtistURI:   get("artist_uri"),
			AlbumURI:    get("album_uri"),
			Album:       get("album"),
			ReleaseDate: get("release_date"),
			ReleaseYear: int(year),
			Genres:      parseGenres(get("genres")),
		}
		if pop, ok := num("popularity"); ok {
			tr.Popularity = int(pop)
		}
		if exp, ok := num("explicit"); ok {
			tr.Explicit = exp
		}

		features := [...]struct {
			name string
			dst  *float64
		}{
			{"danceability", &tr.Features.Danceability},
			{"energy", &tr.Features.Energy},
			{"key", &tr.Features.Key},
			{"loudness", &tr.Features.Loudness},
			{"mode", &tr.Features.Mode},
			{"speechiness", &tr.Features.Speechiness},
			{"acousticness", &tr.Features.Acousticness},
			{"instrumentalness", &tr.Features.Instrumentalness},
			{"liveness", &tr.Features.Liveness},
			{"valence", &tr.Features.Valence},
			{"tempo", &tr.Features.Tempo},
			{"duration_ms", &tr.Features.DurationMS},
			{"time_signature", &tr.Features.TimeSignature},
		}
		usable := true
		for _, f := range features {
			v, ok := num(f.name)
			if !ok {
				usable = false
				break
			}
			*f.dst = v
		}
		if !usable {
			continue
		}

		table.Append(tr)
	}

	if table.Len() == 0 {
		return nil, core.NewDomainError(core.ModuleLibrary, core.ErrorCodeEmptyInput,
			"candidate library: no usable rows")
	}
	return table, nil
}

// parseGenres 宽松解析流派列：兼容 "a;b"、"a, b" 与 pandas 导出的
// "['a', 'b']" 三种形态。
func parseGenres(raw string) []string {
	raw = strings.Trim(raw, "[]")
	if raw == "" {
		return []string{}
	}
	sep := ","
	if strings.Contains(raw, ";") {
		sep = ";"
	}
	parts := strings.Split(raw, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `'"`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
