// Package directory indexes the employees of the latest roster for name lookup.
package directory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/dutyroster/internal/models"
)

// employeeDoc is the indexed form of one roster entry.
type employeeDoc struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Label      string `json:"label"`
	Category   string `json:"category"`
	Date       string `json:"date"`
	Active     bool   `json:"active"`
}

// Index is a Bleve index of roster employees.
type Index struct {
	index     bleve.Index
	fuzziness int

	mu    sync.RWMutex
	names []string
}

// NewIndex opens the index at path, creating it if needed. An empty path keeps
// the index in memory.
func NewIndex(path string) (*Index, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)
	docMapping.AddFieldMappingsAt("label", nameFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("department", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("category", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("date", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("active", bleve.NewBooleanFieldMapping())
	im.AddDocumentMapping("employee", docMapping)
	im.DefaultType = "employee"
	im.DefaultMapping = docMapping

	if path == "" {
		index, err := bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory Bleve index: %w", err)
		}
		return &Index{index: index, fuzziness: 2}, nil
	}

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		d := &Index{index: index, fuzziness: 2}
		if err := d.loadNames(); err != nil {
			_ = index.Close()
			return nil, err
		}
		return d, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &Index{index: index, fuzziness: 2}, nil
}

// Replace swaps the indexed employees for those of roster.
func (d *Index) Replace(ctx context.Context, roster *models.Roster) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	existing, err := d.allIDs(ctx)
	if err != nil {
		return err
	}

	batch := d.index.NewBatch()
	for _, id := range existing {
		batch.Delete(id)
	}
	var names []string
	if roster != nil {
		date := roster.DateKey()
		for di, dept := range roster.Departments {
			n := 0
			dept.Buckets.Each(func(c models.Category, entries []models.Entry) {
				for _, e := range entries {
					doc := employeeDoc{
						Name:       e.Name,
						Department: dept.Name,
						Label:      e.Label,
						Category:   c.String(),
						Date:       date,
						Active:     c == roster.ActiveCategory,
					}
					if err := batch.Index(fmt.Sprintf("%s/%03d/%04d", date, di, n), doc); err != nil {
						continue
					}
					names = append(names, e.Name)
					n++
				}
			})
		}
	}
	if err := d.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to update Bleve index: %w", err)
	}

	d.mu.Lock()
	d.names = dedupe(names)
	d.mu.Unlock()
	return nil
}

// Search finds employees by name.
func (d *Index) Search(ctx context.Context, q models.EmployeeQuery) ([]models.EmployeeHit, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var nameQuery blevequery.Query
	if q.Fuzzy {
		nameQuery = d.buildFuzzyQuery(q.Query, "name")
	} else {
		mq := bleve.NewMatchQuery(q.Query)
		mq.SetField("name")
		mq.SetOperator(blevequery.MatchQueryOperatorAnd)
		nameQuery = mq
	}
	if q.Department != "" {
		tq := bleve.NewTermQuery(q.Department)
		tq.SetField("department")
		nameQuery = bleve.NewConjunctionQuery(nameQuery, tq)
	}

	req := bleve.NewSearchRequest(nameQuery)
	req.Size = q.Limit
	req.Fields = []string{"*"}
	results, err := d.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}

	out := make([]models.EmployeeHit, 0, len(results.Hits))
	for _, hit := range results.Hits {
		category, _ := models.ParseCategory(field(hit.Fields, "category"))
		out = append(out, models.EmployeeHit{
			Name:       field(hit.Fields, "name"),
			Department: field(hit.Fields, "department"),
			Label:      field(hit.Fields, "label"),
			Category:   category,
			Date:       field(hit.Fields, "date"),
			Score:      hit.Score,
		})
	}
	return out, nil
}

// DocCount returns the number of indexed entries.
func (d *Index) DocCount() (uint64, error) {
	return d.index.DocCount()
}

// Close closes the index.
func (d *Index) Close() error {
	return d.index.Close()
}

func (d *Index) buildFuzzyQuery(queryStr, field string) blevequery.Query {
	terms := tokenizeQuery(queryStr)
	if len(terms) == 0 {
		mq := bleve.NewMatchQuery(queryStr)
		mq.SetField(field)
		return mq
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(d.fuzziness)
		fq.SetField(field)
		queries = append(queries, fq)
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewDisjunctionQuery(queries...)
}

func (d *Index) allIDs(ctx context.Context) ([]string, error) {
	count, err := d.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("failed to get doc count: %w", err)
	}
	if count == 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(count)
	results, err := d.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	ids := make([]string, len(results.Hits))
	for i, hit := range results.Hits {
		ids[i] = hit.ID
	}
	return ids, nil
}

func (d *Index) loadNames() error {
	count, err := d.index.DocCount()
	if err != nil || count == 0 {
		return err
	}
	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(count)
	req.Fields = []string{"name"}
	results, err := d.index.Search(req)
	if err != nil {
		return fmt.Errorf("Bleve search failed: %w", err)
	}
	names := make([]string, 0, len(results.Hits))
	for _, hit := range results.Hits {
		names = append(names, field(hit.Fields, "name"))
	}
	d.names = dedupe(names)
	return nil
}

func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

func field(fields map[string]interface{}, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok || n == "" {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
