package vectorstore

import (
	"encoding/json"
	"fmt"

	"github.com/arvencloud/vectorstore/backend"
)

// encodeColumns maps N row-oriented documents and their embeddings into the
// four parallel columnar slices batch inserts require, preserving input
// order. Beyond float64→float32 narrowing of the embeddings, no row-level
// transformation happens here.
func encodeColumns(docs []Document, embeddings [][]float64) *backend.ColumnarBatch {
	batch := &backend.ColumnarBatch{
		IDs:        make([]string, 0, len(docs)),
		Contents:   make([]string, 0, len(docs)),
		Metadata:   make([]map[string]any, 0, len(docs)),
		Embeddings: make([][]float32, 0, len(docs)),
	}

	for i, doc := range docs {
		metadata := doc.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}

		batch.IDs = append(batch.IDs, doc.ID)
		batch.Contents = append(batch.Contents, doc.Content)
		batch.Metadata = append(batch.Metadata, metadata)
		batch.Embeddings = append(batch.Embeddings, narrowVector(embeddings[i]))
	}

	return batch
}

// decodeRow is the inverse mapping: it rebuilds a Document from a search
// row's named fields. The native distance is not part of the row fields;
// it travels separately on the hit and is merged into metadata by the
// search path.
func decodeRow(fields map[string]string) (Document, error) {
	id, ok := fields[FieldID]
	if !ok || id == "" {
		return Document{}, fmt.Errorf("search row is missing the %s field", FieldID)
	}

	doc := Document{ID: id, Content: fields[FieldContent]}

	if raw := fields[FieldMetadata]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &doc.Metadata); err != nil {
			return Document{}, fmt.Errorf("decode metadata of %s: %w", id, err)
		}
	}

	return doc, nil
}

// narrowVector converts an embedding from provider precision (float64) to
// the float32 wire precision backends index.
func narrowVector(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
