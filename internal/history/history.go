// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package history

// History is the ordered list of executed queries, oldest first
type History struct {
	records []QueryRecord
}

func (h *History) Append(record QueryRecord) {
	h.records = append(h.records, record)
}

// Clear drops every record
func (h *History) Clear() {
	h.records = nil
}

func (h *History) Len() int {
	return len(h.records)
}

// Latest returns the record offset positions from the end; 0 is the newest.
// ok is false if the history is empty or the offset is out of range
func (h *History) Latest(offset int) (QueryRecord, bool) {
	if offset < 0 || offset >= len(h.records) {
		return QueryRecord{}, false
	}
	return h.records[len(h.records)-1-offset], true
}

// IDs returns the id of every record in execution order
func (h *History) IDs() []string {
	ids := make([]string, 0, len(h.records))
	for _, record := range h.records {
		ids = append(ids, record.ID)
	}
	return ids
}

// Records returns a copy of all records in execution order
func (h *History) Records() []QueryRecord {
	copied := make([]QueryRecord, len(h.records))
	copy(copied, h.records)
	return copied
}
