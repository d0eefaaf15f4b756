package dataprocessing

import (
	"fmt"
	"sort"
	"time"

	"econviz/pkg/contracts/domain"
)

// Table is the read-only observation store shared by every request.
// It is built once by NewTable and never mutated afterwards.
type Table struct {
	rows     []domain.Observation
	bySeries map[string][]int
	byParent map[string][]int
	byType   map[domain.SeriesType][]int
	series   map[string]domain.SeriesInfo
	children map[string][]string
	first    time.Time
	last     time.Time
}

type seriesDate struct {
	series string
	date   time.Time
}

// NewTable validates observations and indexes them by series, parent and type.
// Rows are ordered by series id then date.
func NewTable(observations []domain.Observation) (*Table, error) {
	rows := make([]domain.Observation, len(observations))
	copy(rows, observations)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].SeriesID != rows[j].SeriesID {
			return rows[i].SeriesID < rows[j].SeriesID
		}
		return rows[i].Date.Before(rows[j].Date)
	})

	t := &Table{
		rows:     rows,
		bySeries: make(map[string][]int),
		byParent: make(map[string][]int),
		byType:   make(map[domain.SeriesType][]int),
		series:   make(map[string]domain.SeriesInfo),
		children: make(map[string][]string),
	}

	seen := make(map[seriesDate]struct{}, len(rows))
	for i, row := range rows {
		if row.SeriesID == "" {
			return nil, fmt.Errorf("%w: row %d has no series id", ErrInvalidSnapshot, i)
		}
		if _, ok := domain.ParseSeriesType(string(row.Type)); !ok {
			return nil, fmt.Errorf("%w: series %s has unknown type %q", ErrInvalidSnapshot, row.SeriesID, row.Type)
		}

		key := seriesDate{series: row.SeriesID, date: row.Date}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: series %s on %s", ErrDuplicateRow, row.SeriesID, row.Date.Format(time.DateOnly))
		}
		seen[key] = struct{}{}

		info, known := t.series[row.SeriesID]
		if !known {
			info = domain.SeriesInfo{
				SeriesID:       row.SeriesID,
				Category:       row.Category,
				ParentSeriesID: row.ParentSeriesID,
				Type:           row.Type,
				Bucket:         row.Bucket,
				Leaf:           row.Leaf,
				FirstDate:      row.Date,
			}
		} else if info.Category != row.Category {
			return nil, fmt.Errorf("%w: series %s has %q and %q", ErrCategoryChanged, row.SeriesID, info.Category, row.Category)
		}
		info.LastDate = row.Date
		info.Observations++
		t.series[row.SeriesID] = info

		t.bySeries[row.SeriesID] = append(t.bySeries[row.SeriesID], i)
		t.byType[row.Type] = append(t.byType[row.Type], i)
		if row.HasParent() {
			t.byParent[row.ParentSeriesID] = append(t.byParent[row.ParentSeriesID], i)
		}

		if t.first.IsZero() || row.Date.Before(t.first) {
			t.first = row.Date
		}
		if row.Date.After(t.last) {
			t.last = row.Date
		}
	}

	for id, info := range t.series {
		if !info.HasParentSeries() {
			continue
		}
		if _, ok := t.series[info.ParentSeriesID]; !ok {
			return nil, fmt.Errorf("%w: %s references %s", ErrUnknownParent, id, info.ParentSeriesID)
		}
		t.children[info.ParentSeriesID] = append(t.children[info.ParentSeriesID], id)
	}
	for parent := range t.children {
		sort.Strings(t.children[parent])
	}

	return t, nil
}

// Len returns the number of observations
func (t *Table) Len() int {
	return len(t.rows)
}

// SeriesCount returns the number of distinct series
func (t *Table) SeriesCount() int {
	return len(t.series)
}

// DateRange returns the earliest and latest observation dates
func (t *Table) DateRange() (time.Time, time.Time) {
	return t.first, t.last
}

// Series looks up catalog information for one series
func (t *Table) Series(id string) (domain.SeriesInfo, bool) {
	info, ok := t.series[id]
	return info, ok
}

// Catalog returns every series ordered by type then category
func (t *Table) Catalog() []domain.SeriesInfo {
	out := make([]domain.SeriesInfo, 0, len(t.series))
	for _, info := range t.series {
		out = append(out, info)
	}
	sortCatalog(out)
	return out
}

// Children returns the direct children of a series ordered by category
func (t *Table) Children(id string) []domain.SeriesInfo {
	ids := t.children[id]
	out := make([]domain.SeriesInfo, 0, len(ids))
	for _, child := range ids {
		out = append(out, t.series[child])
	}
	sortCatalog(out)
	return out
}

// Observations returns a copy of the rows of one series
func (t *Table) Observations(id string) []domain.Observation {
	return t.collect(t.bySeries[id])
}

func (t *Table) rowsForParent(parent string) []domain.Observation {
	return t.collect(t.byParent[parent])
}

func (t *Table) rowsForType(typ domain.SeriesType, keep func(domain.Observation) bool) []domain.Observation {
	idx := t.byType[typ]
	out := make([]domain.Observation, 0, len(idx))
	for _, i := range idx {
		if keep == nil || keep(t.rows[i]) {
			out = append(out, t.rows[i])
		}
	}
	return out
}

func (t *Table) collect(idx []int) []domain.Observation {
	out := make([]domain.Observation, len(idx))
	for n, i := range idx {
		out[n] = t.rows[i]
	}
	return out
}

func sortCatalog(infos []domain.SeriesInfo) {
	order := make(map[domain.SeriesType]int, len(domain.SeriesTypes))
	for i, typ := range domain.SeriesTypes {
		order[typ] = i
	}
	sort.Slice(infos, func(i, j int) bool {
		a, b := infos[i], infos[j]
		if order[a.Type] != order[b.Type] {
			return order[a.Type] < order[b.Type]
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.SeriesID < b.SeriesID
	})
}
