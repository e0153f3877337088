package domain

// Document represents a document in the database
type Document map[string]interface{}

// Copy returns a shallow copy of the document. Mutation paths copy the old
// document before applying updates so indexes can diff old against new.
func (d Document) Copy() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// ID returns the document's identifier, or "" if it has none yet.
func (d Document) ID() string {
	id, _ := d["_id"].(string)
	return id
}

// Collection represents a collection of documents keyed by ID
type Collection struct {
	Name      string              `json:"name"`
	Documents map[string]Document `json:"documents"`
}

// NewCollection creates a new collection
func NewCollection(name string) *Collection {
	return &Collection{
		Name:      name,
		Documents: make(map[string]Document),
	}
}
