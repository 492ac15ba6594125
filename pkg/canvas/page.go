package canvas

// Page wraps a course wiki page. Pages are addressed by their URL slug
// rather than a numeric id.
type Page struct {
	*Resource
}

func newPage(course *Course, data map[string]any) *Page {
	return &Page{Resource: NewResource(course.Resource, "pages", data, "url", "wiki_page")}
}
