package docstore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store. Documents are kept as bson trees so that
// struct tags, field paths and array semantics behave as they do in Mongo.
// It is safe for concurrent use.
type Memory struct {
	mu   sync.Mutex
	cols map[string]map[string]*memDoc
	seq  int64

	// BeforeWrite, when set, runs at the start of every Update and Delete
	// without the lock held. Tests use it to interleave a competing writer
	// between a repository's read and its conditional write.
	BeforeWrite func(coll, id string)
}

type memDoc struct {
	seq  int64
	tree bson.M
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{cols: make(map[string]map[string]*memDoc)}
}

func (s *Memory) Get(ctx context.Context, coll, id string, out any) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.cols[coll][id]
	if !ok {
		return ErrNotFound
	}
	return decode(d.tree, out)
}

func (s *Memory) Insert(ctx context.Context, coll, id string, doc any) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	v, err := toTree(doc)
	if err != nil {
		return err
	}
	tree, ok := v.(bson.M)
	if !ok {
		return fmt.Errorf("docstore: %T is not a document", doc)
	}
	tree["_id"] = id

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cols[coll]
	if c == nil {
		c = make(map[string]*memDoc)
		s.cols[coll] = c
	}
	if _, exists := c[id]; exists {
		return fmt.Errorf("%w: %s/%s", ErrDuplicate, coll, id)
	}
	s.seq++
	c[id] = &memDoc{seq: s.seq, tree: tree}
	return nil
}

func (s *Memory) Update(ctx context.Context, coll, id string, version int64, u Update) error {
	if s.BeforeWrite != nil {
		s.BeforeWrite(coll, id)
	}
	if err := ctxErr(ctx); err != nil {
		return err
	}

	// Normalise values outside the lock; bson encoding can be slow.
	ops, err := normaliseUpdate(u)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.cols[coll][id]
	if !ok {
		return ErrNotFound
	}
	if asInt64(d.tree[VersionField]) != version {
		return ErrVersionMismatch
	}

	// Work on a copy so a failing update leaves the document untouched.
	next, _ := deepCopy(d.tree).(bson.M)
	if err := ops.apply(next); err != nil {
		return err
	}
	next[VersionField] = version + 1
	d.tree = next
	return nil
}

func (s *Memory) Delete(ctx context.Context, coll, id string, version int64) error {
	if s.BeforeWrite != nil {
		s.BeforeWrite(coll, id)
	}
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.cols[coll][id]
	if !ok {
		return ErrNotFound
	}
	if asInt64(d.tree[VersionField]) != version {
		return ErrVersionMismatch
	}
	delete(s.cols[coll], id)
	return nil
}

func (s *Memory) FindContains(ctx context.Context, coll, field string, value any, out any, opts ...FindOption) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	want, err := toTree(value)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("docstore: FindContains needs a pointer to a slice, got %T", out)
	}

	// Trees are replaced, never mutated, by Update, so copies of the
	// memDoc values can be read after the lock is released.
	s.mu.Lock()
	var matched []memDoc
	for _, d := range s.cols[coll] {
		got, ok := lookup(d.tree, strings.Split(field, "."))
		if ok && matches(got, want) {
			matched = append(matched, *d)
		}
	}
	s.mu.Unlock()

	o := findOptions(opts)
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if o.SortField != "" {
			av, _ := lookup(a.tree, strings.Split(o.SortField, "."))
			bv, _ := lookup(b.tree, strings.Split(o.SortField, "."))
			if c := compare(av, bv); c != 0 {
				if o.SortDesc {
					return c > 0
				}
				return c < 0
			}
		}
		if o.SortDesc {
			return a.seq > b.seq
		}
		return a.seq < b.seq
	})

	slice := reflect.MakeSlice(rv.Elem().Type(), 0, len(matched))
	elemType := rv.Elem().Type().Elem()
	for _, d := range matched {
		ep := reflect.New(elemType)
		if err := decode(d.tree, ep.Interface()); err != nil {
			return err
		}
		slice = reflect.Append(slice, ep.Elem())
	}
	rv.Elem().Set(slice)
	return nil
}

/* ------------------------------ update ops ------------------------------ */

type normField struct {
	path  []string
	value any
}

type normOps struct {
	set, addToSet, pull, push []normField
	elem                      *ElemMatch
	elemValue                 any
}

func normaliseUpdate(u Update) (normOps, error) {
	ops := normOps{elem: u.Elem}
	conv := func(in []Field) ([]normField, error) {
		out := make([]normField, 0, len(in))
		for _, f := range in {
			v, err := toTree(f.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, normField{path: strings.Split(f.Path, "."), value: v})
		}
		return out, nil
	}
	var err error
	if ops.set, err = conv(u.Set); err != nil {
		return ops, err
	}
	if ops.addToSet, err = conv(u.AddToSet); err != nil {
		return ops, err
	}
	if ops.pull, err = conv(u.Pull); err != nil {
		return ops, err
	}
	if ops.push, err = conv(u.Push); err != nil {
		return ops, err
	}
	if u.Elem != nil {
		if ops.elemValue, err = toTree(u.Elem.Value); err != nil {
			return ops, err
		}
	}
	return ops, nil
}

func (o normOps) apply(doc bson.M) error {
	// Resolve the "$" positional segment once, against the pre-update state.
	pos := -1
	if o.elem != nil {
		arr, _ := doc[o.elem.Array].(bson.A)
		for i, el := range arr {
			if m, ok := el.(bson.M); ok && reflect.DeepEqual(m[o.elem.Key], o.elemValue) {
				pos = i
				break
			}
		}
		if pos < 0 {
			return ErrVersionMismatch
		}
	}

	for _, f := range o.set {
		if err := setPath(doc, f.path, pos, f.value); err != nil {
			return err
		}
	}
	for _, f := range o.addToSet {
		arr, err := arrayAt(doc, f.path, pos)
		if err != nil {
			return err
		}
		if !contains(arr, f.value) {
			arr = append(arr, f.value)
		}
		if err := setPath(doc, f.path, pos, arr); err != nil {
			return err
		}
	}
	for _, f := range o.pull {
		arr, err := arrayAt(doc, f.path, pos)
		if err != nil {
			return err
		}
		kept := make(bson.A, 0, len(arr))
		for _, el := range arr {
			if !pullMatches(el, f.value) {
				kept = append(kept, el)
			}
		}
		if err := setPath(doc, f.path, pos, kept); err != nil {
			return err
		}
	}
	for _, f := range o.push {
		arr, err := arrayAt(doc, f.path, pos)
		if err != nil {
			return err
		}
		if err := setPath(doc, f.path, pos, append(arr, f.value)); err != nil {
			return err
		}
	}
	return nil
}

// arrayAt returns the array stored at path; a missing or null field is an
// empty array.
func arrayAt(doc bson.M, path []string, pos int) (bson.A, error) {
	v, _ := lookupPos(doc, path, pos)
	switch t := v.(type) {
	case nil:
		return bson.A{}, nil
	case bson.A:
		return append(bson.A{}, t...), nil
	default:
		return nil, fmt.Errorf("docstore: field %q is not an array", strings.Join(path, "."))
	}
}

// setPath assigns v at path, creating intermediate documents as needed.
func setPath(doc bson.M, path []string, pos int, v any) error {
	var cur any = doc
	for i, seg := range path {
		last := i == len(path)-1
		switch c := cur.(type) {
		case bson.M:
			if last {
				c[seg] = v
				return nil
			}
			next := c[seg]
			if next == nil {
				next = bson.M{}
				c[seg] = next
			}
			cur = next
		case bson.A:
			idx, err := index(seg, pos, len(c))
			if err != nil {
				return err
			}
			if last {
				c[idx] = v
				return nil
			}
			if c[idx] == nil {
				c[idx] = bson.M{}
			}
			cur = c[idx]
		default:
			return fmt.Errorf("docstore: cannot descend into %q", strings.Join(path[:i+1], "."))
		}
	}
	return nil
}

func lookup(doc bson.M, path []string) (any, bool) {
	return lookupPos(doc, path, -1)
}

func lookupPos(doc bson.M, path []string, pos int) (any, bool) {
	var cur any = doc
	for _, seg := range path {
		switch c := cur.(type) {
		case bson.M:
			v, ok := c[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case bson.A:
			idx, err := index(seg, pos, len(c))
			if err != nil {
				return nil, false
			}
			cur = c[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

func index(seg string, pos, n int) (int, error) {
	idx := pos
	if seg != "$" {
		var err error
		if idx, err = strconv.Atoi(seg); err != nil {
			return 0, fmt.Errorf("docstore: %q is not an array index", seg)
		}
	}
	if idx < 0 || idx >= n {
		return 0, fmt.Errorf("docstore: array index %d out of range", idx)
	}
	return idx, nil
}

/* ------------------------------- helpers -------------------------------- */

func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// toTree converts any bson-encodable value into plain bson.M / bson.A trees.
func toTree(v any) (any, error) {
	data, err := bson.Marshal(bson.M{"v": v})
	if err != nil {
		return nil, err
	}
	var wrap bson.M
	if err := bson.Unmarshal(data, &wrap); err != nil {
		return nil, err
	}
	return normalise(wrap["v"]), nil
}

func normalise(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(bson.M, len(t))
		for k, x := range t {
			out[k] = normalise(x)
		}
		return out
	case map[string]any:
		out := make(bson.M, len(t))
		for k, x := range t {
			out[k] = normalise(x)
		}
		return out
	case bson.D:
		out := make(bson.M, len(t))
		for _, e := range t {
			out[e.Key] = normalise(e.Value)
		}
		return out
	case bson.A:
		out := make(bson.A, len(t))
		for i, x := range t {
			out[i] = normalise(x)
		}
		return out
	case []any:
		out := make(bson.A, len(t))
		for i, x := range t {
			out[i] = normalise(x)
		}
		return out
	default:
		return v
	}
}

func deepCopy(v any) any { return normalise(v) }

func decode(tree bson.M, out any) error {
	data, err := bson.Marshal(tree)
	if err != nil {
		return err
	}
	return bson.Unmarshal(data, out)
}

func matches(got, want any) bool {
	if arr, ok := got.(bson.A); ok {
		if _, wantArr := want.(bson.A); !wantArr {
			return contains(arr, want)
		}
	}
	return reflect.DeepEqual(got, want)
}

// pullMatches follows $pull: a document value is a condition on the
// fields it names, anything else must be equal.
func pullMatches(el, cond any) bool {
	c, ok := cond.(bson.M)
	if !ok {
		return reflect.DeepEqual(el, cond)
	}
	m, ok := el.(bson.M)
	if !ok {
		return false
	}
	for k, want := range c {
		if !reflect.DeepEqual(m[k], want) {
			return false
		}
	}
	return true
}

func contains(arr bson.A, v any) bool {
	for _, el := range arr {
		if reflect.DeepEqual(el, v) {
			return true
		}
	}
	return false
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

// compare orders the scalar types the repositories sort on.
func compare(a, b any) int {
	switch x := a.(type) {
	case primitive.DateTime:
		if y, ok := b.(primitive.DateTime); ok {
			return cmpInt(int64(x), int64(y))
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case int64, int32, int:
		return cmpInt(asInt64(a), asInt64(b))
	}
	return 0
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
