package storage

import (
	"log"
	"runtime"
	"time"
)

// GetMemoryStats returns current memory usage statistics
func (se *StorageEngine) GetMemoryStats() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	se.mu.RLock()
	collections := len(se.collections)
	documents := 0
	for _, collection := range se.collections {
		documents += len(collection.Documents)
	}
	se.mu.RUnlock()

	return map[string]interface{}{
		"alloc_mb":       m.Alloc / 1024 / 1024,
		"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
		"sys_mb":         m.Sys / 1024 / 1024,
		"num_goroutines": runtime.NumGoroutine(),
		"collections":    collections,
		"documents":      documents,
	}
}

// StartBackgroundWorkers starts the periodic save worker, if enabled.
func (se *StorageEngine) StartBackgroundWorkers() {
	if !se.backgroundSave || se.dataFile == "" {
		return
	}

	se.backgroundWg.Add(1)
	go func() {
		defer se.backgroundWg.Done()
		ticker := time.NewTicker(se.saveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				se.saveIfDirty()
			case <-se.stopChan:
				return
			}
		}
	}()
}

// StopBackgroundWorkers stops background workers
func (se *StorageEngine) StopBackgroundWorkers() {
	select {
	case <-se.stopChan:
		// Channel already closed, do nothing
	default:
		close(se.stopChan)
	}
	se.backgroundWg.Wait()
}

func (se *StorageEngine) saveIfDirty() {
	se.mu.RLock()
	dirty := se.dirty
	se.mu.RUnlock()
	if !dirty {
		return
	}
	if err := se.SaveToFile(se.dataFile); err != nil {
		log.Printf("ERROR: Background save to %s failed: %v", se.dataFile, err)
	}
}
