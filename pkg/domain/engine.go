package domain

// IndexStats summarizes one index for observability endpoints
type IndexStats struct {
	EntryCount    int  `json:"entry_count"`    // distinct indexed values
	DocumentCount int  `json:"document_count"` // documents present in the index
	Unique        bool `json:"unique"`
}

// StorageEngine defines the interface for storage operations
// This is the core business interface that implementations must conform to
type StorageEngine interface {
	Insert(collName string, doc Document) (string, error)
	GetById(collName, docId string) (Document, error)
	UpdateById(collName, docId string, updates Document) error
	ReplaceById(collName, docId string, doc Document) error
	DeleteById(collName, docId string) error

	Find(collName string, query map[string]interface{}, options *PaginationOptions) (*PaginationResult, error)
	FindOne(collName string, query map[string]interface{}) (Document, error)
	UpdateMany(collName string, query map[string]interface{}, updates Document) (int, error)
	DeleteMany(collName string, query map[string]interface{}) (int, error)
	Upsert(collName string, query map[string]interface{}, doc Document) (string, error)
	Count(collName string, query map[string]interface{}) (int, error)
	Distinct(collName, fieldPath string, query map[string]interface{}) ([]interface{}, error)

	CreateCollection(collName string) error
	CreateIndex(collName, fieldPath string, unique bool) error
	DropIndex(collName, fieldPath string) error
	IndexStats(collName string) (map[string]IndexStats, error)

	SaveToFile(filename string) error
	LoadFromFile(filename string) error
	GetMemoryStats() map[string]interface{}
	StartBackgroundWorkers()
	StopBackgroundWorkers()
}
