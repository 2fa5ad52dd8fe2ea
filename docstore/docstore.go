// Package docstore keeps each uploaded document's extracted text retrievable
// for the agents. Every document gets its own vector collection; small
// documents are served whole, large ones as the most relevant excerpts.
package docstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"rfp-agent/config"
	"rfp-agent/llmclient"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

const (
	// BGE-class embedding models handle ~512 tokens. ~4 chars per token,
	// with safety margin.
	maxChunkChars = 1000
)

type Store struct {
	cfg      *config.Config
	db       *chromem.DB
	embedder chromem.EmbeddingFunc
	logger   *zap.Logger
	splitter SentenceSplitter

	mu       sync.RWMutex
	fullText map[string]string

	contextMaxChars int
}

func New(cfg *config.Config, client *llmclient.Client, logger *zap.Logger) *Store {
	embedder := func(ctx context.Context, doc string) ([]float32, error) {
		return client.Embed(ctx, doc)
	}

	contextMax := cfg.ContextLength * 4
	if contextMax <= 0 {
		contextMax = 12000
	}

	return &Store{
		cfg:             cfg,
		db:              chromem.NewDB(),
		embedder:        embedder,
		logger:          logger,
		splitter:        NewBidTextSplitter(),
		fullText:        make(map[string]string),
		contextMaxChars: contextMax,
	}
}

func collectionName(docID string) string {
	return "doc-" + docID
}

// Ingest replaces any prior content for docID with text, chunked and embedded.
func (s *Store) Ingest(ctx context.Context, docID, text string) error {
	s.mu.Lock()
	s.fullText[docID] = text
	s.mu.Unlock()

	name := collectionName(docID)
	if err := s.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("reset collection for %s: %w", docID, err)
	}

	collection, err := s.db.GetOrCreateCollection(name, nil, s.embedder)
	if err != nil {
		return fmt.Errorf("create collection for %s: %w", docID, err)
	}

	chunks := s.chunk(text)
	docs := make([]chromem.Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, chromem.Document{
			ID:      uuid.NewString(),
			Content: chunk,
			Metadata: map[string]string{
				"doc_id": docID,
				"chunk":  fmt.Sprintf("%d", i),
			},
		})
	}
	if len(docs) == 0 {
		return nil
	}

	if err := collection.AddDocuments(ctx, docs, 2); err != nil {
		return fmt.Errorf("add documents for %s: %w", docID, err)
	}

	s.logger.Info("Document ingested",
		zap.String("doc_id", docID),
		zap.Int("chunks", len(docs)),
		zap.Int("characters", len(text)))
	return nil
}

// Context returns text for docID suitable for a prompt: the full document when
// it fits, otherwise the excerpts most relevant to query.
func (s *Store) Context(ctx context.Context, docID, query string) (string, error) {
	s.mu.RLock()
	full, ok := s.fullText[docID]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("document %s not ingested", docID)
	}

	if len(full) <= s.contextMaxChars {
		return full, nil
	}

	collection := s.db.GetCollection(collectionName(docID), s.embedder)
	if collection == nil {
		return "", fmt.Errorf("collection for %s not found", docID)
	}

	k := s.cfg.RetrievalResults
	if k <= 0 {
		k = 10
	}
	if count := collection.Count(); k > count {
		k = count
	}

	results, err := collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return "", fmt.Errorf("query collection for %s: %w", docID, err)
	}

	var out strings.Builder
	for _, res := range results {
		out.WriteString(res.Content)
		out.WriteString("\n\n")
	}
	s.logger.Debug("Serving retrieved excerpts",
		zap.String("doc_id", docID),
		zap.Int("excerpts", len(results)))
	return strings.TrimSpace(out.String()), nil
}

// FullText returns the raw extracted text for docID, if ingested.
func (s *Store) FullText(docID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.fullText[docID]
	return text, ok
}

// Forget drops the document's text and collection.
func (s *Store) Forget(docID string) {
	s.mu.Lock()
	delete(s.fullText, docID)
	s.mu.Unlock()
	if err := s.db.DeleteCollection(collectionName(docID)); err != nil {
		s.logger.Warn("Failed to delete collection", zap.String("doc_id", docID), zap.Error(err))
	}
}

// chunk groups sentences into pieces no longer than maxChunkChars. A single
// sentence longer than the cap is hard-split.
func (s *Store) chunk(text string) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, strings.TrimSpace(current.String()))
		current.Reset()
	}

	for _, sentence := range s.splitter.Split(text) {
		if len(sentence) > maxChunkChars {
			flush()
			runes := []rune(sentence)
			for len(runes) > 0 {
				n := maxChunkChars
				if n > len(runes) {
					n = len(runes)
				}
				chunks = append(chunks, string(runes[:n]))
				runes = runes[n:]
			}
			continue
		}
		if current.Len()+len(sentence)+1 > maxChunkChars {
			flush()
		}
		current.WriteString(sentence)
		current.WriteString(" ")
	}
	flush()
	return chunks
}
