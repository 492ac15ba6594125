package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Resource is a generic handle on a Canvas object nested under a course.
// It carries the raw field bag Canvas returned together with everything
// needed to address and write the object back: the route segment, the name
// of its id field, and the wrap key used for update request envelopes.
//
// The id is absent exactly until the object has been created on Canvas;
// after any successful create or update it reflects the server-assigned
// value, and the object's URL is derived from it on demand.
type Resource struct {
	client  *Client
	parent  *Resource
	route   string
	idField string
	wrapKey string
	data    map[string]any
}

// NewResource builds a child resource under parent. The id field defaults
// to "id" and the wrap key to the route with a trailing "s" removed. The
// client is always taken from the parent, so a child never holds a
// different token than the resource that owns it.
func NewResource(parent *Resource, route string, data map[string]any, idField, wrapKey string) *Resource {
	if idField == "" {
		idField = "id"
	}
	if wrapKey == "" {
		wrapKey = strings.TrimSuffix(route, "s")
	}
	if data == nil {
		data = make(map[string]any)
	}
	return &Resource{
		client:  parent.client,
		parent:  parent,
		route:   route,
		idField: idField,
		wrapKey: wrapKey,
		data:    data,
	}
}

// ID returns the object's identifier, or nil when it has never been
// created on Canvas. Identifiers are numeric for most resources but
// string slugs for wiki pages.
func (r *Resource) ID() any {
	v, ok := r.data[r.idField]
	if !ok || v == nil {
		return nil
	}
	return v
}

// IntID returns the numeric id, or 0 when the resource has none.
func (r *Resource) IntID() int64 {
	return Int64(r.ID())
}

// Field reads a field of the held data. No network call is made.
func (r *Resource) Field(name string) any {
	return r.data[name]
}

// SetField updates the held data in place. No network call is made.
func (r *Resource) SetField(name string, value any) {
	r.data[name] = value
}

// Data returns the held field bag.
func (r *Resource) Data() map[string]any {
	return r.data
}

// baseURL is the API path covering this kind of object under its parent.
func (r *Resource) baseURL() string {
	if r.parent == nil {
		return "/" + r.route
	}
	return r.parent.URL() + "/" + r.route
}

// URL is the API path of this particular object, recomputed from the
// current id so it stays correct after a create.
func (r *Resource) URL() string {
	return r.baseURL() + "/" + idSegment(r.ID())
}

// Course walks the parent chain to the owning course.
func (r *Resource) Course() *Course {
	cur := r
	for cur.parent != nil {
		cur = cur.parent
	}
	return &Course{Resource: cur}
}

// Update pushes data to Canvas, replacing the held data first when one is
// given. A resource that already has an id is updated with a PUT under its
// wrap key; one without is created with a POST under its route name (the
// two envelopes differ on Canvas). On success the held data is replaced by
// the server's response, so the id and URL reflect what the server
// assigned; on failure the identifier is left exactly as it was.
func (r *Resource) Update(ctx context.Context, data map[string]any) (*Resource, error) {
	if data != nil {
		r.data = data
	}

	var (
		resp map[string]any
		err  error
	)
	if r.ID() != nil {
		resp, err = r.client.Put(ctx, r.URL(), map[string]any{r.wrapKey: r.data})
	} else {
		resp, err = r.client.Post(ctx, r.baseURL(), map[string]any{r.route: r.data})
	}
	if err != nil {
		return nil, err
	}
	if resp != nil {
		r.data = resp
	}
	return r, nil
}

func idSegment(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Int64 coerces a decoded JSON value to int64, returning 0 for null or
// anything that is not a number.
func Int64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	default:
		return 0
	}
}

// Float64 coerces a decoded JSON value to float64, returning 0 for null or
// anything that is not a number.
func Float64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	default:
		return 0
	}
}

// String coerces a decoded JSON value to a string, returning "" for
// anything else.
func String(v any) string {
	s, _ := v.(string)
	return s
}
