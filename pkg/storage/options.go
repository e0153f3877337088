package storage

import "time"

type StorageOption func(*StorageEngine)

// WithDataFile sets the file used by background saves and SaveDB.
func WithDataFile(filename string) StorageOption {
	return func(engine *StorageEngine) {
		engine.dataFile = filename
	}
}

// WithBackgroundSave enables periodic saves of dirty state to the data file.
func WithBackgroundSave(interval time.Duration) StorageOption {
	return func(engine *StorageEngine) {
		engine.backgroundSave = true
		engine.saveInterval = interval
	}
}
