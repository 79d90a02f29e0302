package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arzan03/DevCamper/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memCollection keeps documents as bson.M so filters built for Mongo can be
// evaluated unchanged. Supported operators: $gt $gte $lt $lte $in $ne.
type memCollection[T any] struct {
	mu     sync.RWMutex
	name   string
	docs   []bson.M
	unique [][]string
}

func newMemCollection[T any](name string, unique ...[]string) *memCollection[T] {
	return &memCollection[T]{name: name, unique: unique}
}

func toDoc(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	err = bson.Unmarshal(raw, &m)
	return m, err
}

func fromDoc[T any](m bson.M) (*T, error) {
	raw, err := bson.Marshal(m)
	if err != nil {
		return nil, err
	}
	var v T
	if err := bson.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *memCollection[T]) decodeAll(docs []bson.M) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := fromDoc[T](d)
		if err != nil {
			return nil, fmt.Errorf("%s: decode: %w", c.name, err)
		}
		out = append(out, *v)
	}
	return out, nil
}

func (c *memCollection[T]) indexOf(id primitive.ObjectID) int {
	for i, d := range c.docs {
		if d["_id"] == id {
			return i
		}
	}
	return -1
}

// checkUnique must be called with the write lock held.
func (c *memCollection[T]) checkUnique(doc bson.M) error {
	for _, fields := range c.unique {
		for _, other := range c.docs {
			if other["_id"] == doc["_id"] {
				continue
			}
			same := true
			for _, f := range fields {
				a, okA := lookupPath(doc, f)
				b, okB := lookupPath(other, f)
				if !okA || !okB || !equal(a, b) {
					same = false
					break
				}
			}
			if same {
				return fmt.Errorf("%s: %w on %s", c.name, ErrDuplicate, strings.Join(fields, ","))
			}
		}
	}
	return nil
}

func (c *memCollection[T]) Insert(_ context.Context, v *T) error {
	doc, err := toDoc(v)
	if err != nil {
		return err
	}
	if _, ok := doc["_id"]; !ok {
		return fmt.Errorf("%s: insert without _id", c.name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkUnique(doc); err != nil {
		return err
	}
	c.docs = append(c.docs, doc)
	return nil
}

func (c *memCollection[T]) Replace(_ context.Context, id primitive.ObjectID, v *T) error {
	doc, err := toDoc(v)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	if err := c.checkUnique(doc); err != nil {
		return err
	}
	c.docs[i] = doc
	return nil
}

func (c *memCollection[T]) Update(_ context.Context, id primitive.ObjectID, set bson.M, unset ...string) (*T, error) {
	patch, err := toDoc(set)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}

	next := bson.M{}
	for k, v := range c.docs[i] {
		next[k] = v
	}
	for k, v := range patch {
		next[k] = v
	}
	for _, k := range unset {
		delete(next, k)
	}
	if err := c.checkUnique(next); err != nil {
		return nil, err
	}
	c.docs[i] = next
	return fromDoc[T](next)
}

func (c *memCollection[T]) Delete(_ context.Context, id primitive.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	c.docs = append(c.docs[:i], c.docs[i+1:]...)
	return nil
}

func (c *memCollection[T]) DeleteMany(_ context.Context, filter bson.M) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.docs[:0]
	for _, d := range c.docs {
		if !matches(d, filter) {
			kept = append(kept, d)
		}
	}
	c.docs = kept
	return nil
}

func (c *memCollection[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	docs, err := c.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return &docs[0], nil
}

func (c *memCollection[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return c.FindOne(ctx, bson.M{"_id": id})
}

func (c *memCollection[T]) FindAll(ctx context.Context, filter bson.M) ([]T, error) {
	return c.Find(ctx, query.Query{Filter: filter})
}

// Find ignores q.Select and q.Populate; projection happens when the result
// is rendered and population is done by the typed repositories.
func (c *memCollection[T]) Find(_ context.Context, q query.Query) ([]T, error) {
	c.mu.RLock()
	var hits []bson.M
	for _, d := range c.docs {
		if matches(d, q.Filter) {
			hits = append(hits, d)
		}
	}
	c.mu.RUnlock()

	order := q.Sort
	if len(order) == 0 {
		order = query.DefaultSort
	}
	sort.SliceStable(hits, func(i, j int) bool {
		for _, key := range order {
			a, _ := lookupPath(hits[i], key.Key)
			b, _ := lookupPath(hits[j], key.Key)
			cmp, _ := compare(a, b)
			if cmp == 0 {
				continue
			}
			if dir, _ := key.Value.(int); dir < 0 {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})

	if q.Limit > 0 {
		skip := q.Skip()
		if skip < 0 {
			skip = 0
		}
		if skip > int64(len(hits)) {
			skip = int64(len(hits))
		}
		start := int(skip)
		end := len(hits)
		if q.Limit < end-start {
			end = start + q.Limit
		}
		hits = hits[start:end]
	}
	return c.decodeAll(hits)
}

func (c *memCollection[T]) Count(_ context.Context, filter bson.M) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var n int64
	for _, d := range c.docs {
		if matches(d, filter) {
			n++
		}
	}
	return n, nil
}

func (c *memCollection[T]) Average(_ context.Context, match bson.M, field string) (float64, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var sum float64
	var n int
	for _, d := range c.docs {
		if !matches(d, match) {
			continue
		}
		v, ok := lookupPath(d, field)
		if !ok {
			continue
		}
		if f, isNum := number(v); isNum {
			sum += f
			n++
		}
	}
	if n == 0 {
		return 0, false, nil
	}
	return sum / float64(n), true, nil
}

func lookupPath(doc bson.M, path string) (interface{}, bool) {
	var cur interface{} = doc
	for _, part := range strings.Split(path, ".") {
		switch m := cur.(type) {
		case bson.M:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			cur = v
		case bson.D:
			v, ok := m.Map()[part]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, true
}

func matches(doc bson.M, filter bson.M) bool {
	for key, cond := range filter {
		val, found := lookupPath(doc, key)
		if ops, ok := cond.(bson.M); ok && isOperators(ops) {
			for op, arg := range ops {
				if !apply(op, val, found, arg) {
					return false
				}
			}
			continue
		}
		if !found || !anyElem(val, func(v interface{}) bool { return equal(v, cond) }) {
			return false
		}
	}
	return true
}

func isOperators(m bson.M) bool {
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return len(m) > 0
}

func apply(op string, val interface{}, found bool, arg interface{}) bool {
	switch op {
	case "$eq":
		return found && anyElem(val, func(v interface{}) bool { return equal(v, arg) })
	case "$ne":
		return !found || !anyElem(val, func(v interface{}) bool { return equal(v, arg) })
	case "$in":
		if !found {
			return false
		}
		list, _ := arg.(bson.A)
		return anyElem(val, func(v interface{}) bool {
			for _, want := range list {
				if equal(v, want) {
					return true
				}
			}
			return false
		})
	case "$gt", "$gte", "$lt", "$lte":
		if !found {
			return false
		}
		return anyElem(val, func(v interface{}) bool {
			cmp, ok := compare(v, arg)
			if !ok {
				return false
			}
			switch op {
			case "$gt":
				return cmp > 0
			case "$gte":
				return cmp >= 0
			case "$lt":
				return cmp < 0
			}
			return cmp <= 0
		})
	}
	return false
}

// anyElem applies fn to v, or to each element when v is an array.
func anyElem(v interface{}, fn func(interface{}) bool) bool {
	if arr, ok := v.(bson.A); ok {
		for _, e := range arr {
			if fn(e) {
				return true
			}
		}
		return false
	}
	return fn(v)
}

func equal(a, b interface{}) bool {
	cmp, ok := compare(a, b)
	return ok && cmp == 0
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case primitive.DateTime:
		return float64(n), true
	case time.Time:
		return float64(n.UnixMilli()), true
	}
	return 0, false
}

// compare orders two scalars of compatible kinds; ok is false otherwise.
func compare(a, b interface{}) (int, bool) {
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}

	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if x == y {
			return 0, true
		}
		if !x {
			return -1, true
		}
		return 1, true
	case primitive.ObjectID:
		y, ok := b.(primitive.ObjectID)
		if !ok {
			return 0, false
		}
		return strings.Compare(x.Hex(), y.Hex()), true
	case nil:
		if b == nil {
			return 0, true
		}
		return -1, true
	}
	if b == nil {
		return 1, true
	}
	return 0, false
}
