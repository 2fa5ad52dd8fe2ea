package agents

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"rfp-agent/bidform"
	"rfp-agent/prompts"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// Discovery finds the structure of the bid form inside a document. Results
// are cached by content hash so re-uploads of the same document do not pay
// for a second completion.
type Discovery struct {
	completer Completer
	cache     *lru.Cache
	logger    *zap.Logger
}

func NewDiscovery(completer Completer, cacheSize int, logger *zap.Logger) (*Discovery, error) {
	if cacheSize <= 0 {
		cacheSize = 64
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Discovery{completer: completer, cache: cache, logger: logger}, nil
}

// Discover returns the form schema found in content. It never fails: when no
// usable form can be located, or the collaborator misbehaves, it degrades to
// an empty-rows schema with the default vendor columns. Callers must treat an
// empty-rows schema as lump sum, with no line-item comparison possible.
func (d *Discovery) Discover(ctx context.Context, content, fallbackTitle string) *bidform.FormSchema {
	if content == "" {
		d.logger.Warn("No document content for form discovery, using fallback schema")
		fb := bidform.FallbackSchema(fallbackTitle)
		return &fb
	}

	key := contentHash(content)
	if cached, ok := d.cache.Get(key); ok {
		d.logger.Debug("Form schema served from cache", zap.String("hash", key[:12]))
		return cached.(*bidform.FormSchema)
	}

	var schema bidform.FormSchema
	if err := d.completer.CompleteJSON(ctx, prompts.FormDiscovery(), content, temp(0.2), &schema); err != nil {
		d.logger.Warn("Form discovery completion failed, using fallback schema", zap.Error(err))
		fb := bidform.FallbackSchema(fallbackTitle)
		return &fb
	}

	if schema.Title == "" {
		schema.Title = fallbackTitle
	}
	if len(schema.VendorColumns) == 0 {
		schema.VendorColumns = append([]string(nil), bidform.DefaultVendorColumns...)
	}

	if err := bidform.ValidateSchema(&schema); err != nil {
		d.logger.Warn("Discovered schema failed validation, using fallback schema",
			zap.Error(err),
			zap.Int("rows", len(schema.Rows)))
		fb := bidform.FallbackSchema(fallbackTitle)
		return &fb
	}

	d.cache.Add(key, &schema)
	d.logger.Info("Form schema discovered",
		zap.String("title", schema.Title),
		zap.Int("rows", len(schema.Rows)),
		zap.Strings("vendor_columns", schema.VendorColumns))
	return &schema
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
