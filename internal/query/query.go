// Package query turns a request query string into a filtered, projected,
// sorted and paginated read against a collection.
package query

import (
	"math"
	"strconv"
	"strings"

	"github.com/arzan03/DevCamper/internal/common"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// maxSkip bounds (page-1)*limit so offsets stay representable everywhere.
	maxSkip = math.MaxInt32
)

var reserved = map[string]bool{"select": true, "sort": true, "limit": true, "page": true}

var operators = map[string]string{
	"gt":  "$gt",
	"gte": "$gte",
	"lt":  "$lt",
	"lte": "$lte",
	"in":  "$in",
}

// DefaultSort orders newest first.
var DefaultSort = bson.D{{Key: "createdAt", Value: -1}}

// Populate embeds related documents into Path.
type Populate struct {
	Path         string
	From         string
	LocalField   string
	ForeignField string
	Select       []string
	One          bool
}

type Query struct {
	Filter   bson.M
	Select   []string
	Sort     bson.D
	Page     int
	Limit    int
	Populate []Populate
}

func (q Query) Skip() int64 {
	return int64(q.Page-1) * int64(q.Limit)
}

// Parse builds a Query from raw query-string pairs. Keys take the form
// `field` or `field[op]` where op is one of gt, gte, lt, lte, in.
func Parse(params map[string]string) (Query, error) {
	q := Query{
		Filter: bson.M{},
		Sort:   DefaultSort,
		Page:   positive(params["page"], DefaultPage),
		Limit:  positive(params["limit"], DefaultLimit),
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if int64(q.Page-1) > maxSkip/int64(q.Limit) {
		return Query{}, common.BadRequest("Page %s is out of range", params["page"])
	}

	if s := params["select"]; s != "" {
		q.Select = splitList(s)
	}
	if s := params["sort"]; s != "" {
		q.Sort = parseSort(s)
	}

	for key, raw := range params {
		if reserved[key] {
			continue
		}
		field, op, err := splitKey(key)
		if err != nil {
			return Query{}, err
		}
		cond, merged := q.Filter[field].(bson.M)
		if op == "" {
			if merged {
				cond["$eq"] = coerce(raw)
			} else {
				q.Filter[field] = coerce(raw)
			}
			continue
		}

		if !merged {
			cond = bson.M{}
			// An equality seen earlier for the same field joins the operators.
			if v, seen := q.Filter[field]; seen {
				cond["$eq"] = v
			}
			q.Filter[field] = cond
		}
		if op == "$in" {
			values := bson.A{}
			for _, v := range splitList(raw) {
				values = append(values, coerce(v))
			}
			cond[op] = values
		} else {
			cond[op] = coerce(raw)
		}
	}

	return q, nil
}

func splitKey(key string) (field, op string, err error) {
	field = key
	if i := strings.IndexByte(key, '['); i >= 0 {
		if !strings.HasSuffix(key, "]") {
			return "", "", common.BadRequest("Invalid query parameter %s", key)
		}
		field = key[:i]
		name := key[i+1 : len(key)-1]
		mapped, ok := operators[name]
		if !ok {
			return "", "", common.BadRequest("Unsupported query operator %s", name)
		}
		op = mapped
	}
	if field == "" || strings.HasPrefix(field, "$") {
		return "", "", common.BadRequest("Invalid query parameter %s", key)
	}
	return field, op, nil
}

func parseSort(s string) bson.D {
	sort := bson.D{}
	for _, f := range splitList(s) {
		dir := 1
		if strings.HasPrefix(f, "-") {
			dir = -1
			f = f[1:]
		}
		if f == "" {
			continue
		}
		sort = append(sort, bson.E{Key: f, Value: dir})
	}
	if len(sort) == 0 {
		return DefaultSort
	}
	return sort
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func positive(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// coerce gives query-string values the type they most likely have in the
// store: object ids, numbers and booleans. Values with a leading zero stay
// strings so zipcodes and phone numbers compare as stored.
func coerce(v string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(v); err == nil {
		return oid
	}
	if v == "true" || v == "false" {
		return v == "true"
	}
	if len(v) > 1 && v[0] == '0' && v[1] != '.' {
		return v
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
