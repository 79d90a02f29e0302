package query

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/arzan03/DevCamper/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
)

// Source is the read side of a collection that can serve a Query.
type Source[T any] interface {
	Find(ctx context.Context, q Query) ([]T, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
}

type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// Result is the advanced-results envelope. Count is the size of this page.
type Result[T any] struct {
	Success    bool       `json:"success"`
	Count      int        `json:"count"`
	Pagination Pagination `json:"pagination"`
	Data       []T        `json:"data"`

	fields []string
}

type envelope[D any] struct {
	Success    bool       `json:"success"`
	Count      int        `json:"count"`
	Pagination Pagination `json:"pagination"`
	Data       D          `json:"data"`
}

// MarshalJSON drops every attribute of Data not named by `select`.
func (r *Result[T]) MarshalJSON() ([]byte, error) {
	if len(r.fields) == 0 {
		return json.Marshal(envelope[[]T]{r.Success, r.Count, r.Pagination, r.Data})
	}

	keep := map[string]bool{"id": true}
	for _, f := range r.fields {
		if i := strings.IndexByte(f, '.'); i > 0 {
			f = f[:i]
		}
		keep[f] = true
	}

	items := make([]map[string]json.RawMessage, 0, len(r.Data))
	for _, d := range r.Data {
		raw, err := json.Marshal(d)
		if err != nil {
			return nil, err
		}
		var m map[string]json.RawMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		for k := range m {
			if !keep[k] {
				delete(m, k)
			}
		}
		items = append(items, m)
	}

	return json.Marshal(envelope[[]map[string]json.RawMessage]{r.Success, r.Count, r.Pagination, items})
}

// Run executes q against src, fetching the page and the total in parallel.
func Run[T any](ctx context.Context, src Source[T], q Query) (*Result[T], error) {
	var (
		data  []T
		total int64
	)
	err := utils.RunParallelTasks(ctx,
		func(ctx context.Context) (err error) {
			data, err = src.Find(ctx, q)
			return err
		},
		func(ctx context.Context) (err error) {
			total, err = src.Count(ctx, q.Filter)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []T{}
	}

	return &Result[T]{
		Success:    true,
		Count:      len(data),
		Pagination: Paginate(q.Page, q.Limit, total),
		Data:       data,
		fields:     selected(q),
	}, nil
}

// Paginate reports the neighbouring pages that hold data.
func Paginate(page, limit int, total int64) Pagination {
	var p Pagination
	start := int64(page-1) * int64(limit)
	end := start + int64(limit)
	if end < total {
		p.Next = &PageRef{Page: page + 1, Limit: limit}
	}
	if start > 0 {
		p.Prev = &PageRef{Page: page - 1, Limit: limit}
	}
	return p
}

// selected keeps populated paths visible alongside the selected fields.
func selected(q Query) []string {
	if len(q.Select) == 0 {
		return nil
	}
	fields := append([]string{}, q.Select...)
	for _, p := range q.Populate {
		fields = append(fields, p.Path)
	}
	return fields
}
