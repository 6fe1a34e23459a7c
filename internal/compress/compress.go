// Package compress rewrites finished PDF documents with compressed streams and
// object streams. Compression is best effort: it never fails the caller.
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/filter"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ErrNotSmaller is reported when the rewrite produced a larger file.
var ErrNotSmaller = errors.New("compress: rewrite is larger than input")

var disableConfigDir sync.Once

// Result is the outcome of a compression pass. Data is always usable: it is
// either the rewritten document or the untouched input.
type Result struct {
	Data       []byte
	Compressed bool
	// Fallback explains why the input was returned unchanged.
	Fallback error
}

// Compressor performs structural recompression with pdfcpu.
type Compressor struct{}

// New returns a Compressor. pdfcpu is kept from touching the user's config
// directory so the pass has no filesystem side effects.
func New() *Compressor {
	disableConfigDir.Do(api.DisableConfigDir)
	return &Compressor{}
}

func configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = true
	conf.WriteXRefStream = true
	return conf
}

// Compress returns doc rewritten with Flate-compressed streams and object
// streams, or doc itself if anything goes wrong or nothing is gained.
func (c *Compressor) Compress(doc []byte) Result {
	out, err := c.rewrite(doc)
	if err != nil {
		return Result{Data: doc, Fallback: err}
	}
	if len(out) > len(doc) {
		return Result{Data: doc, Fallback: ErrNotSmaller}
	}
	return Result{Data: out, Compressed: true}
}

func (c *Compressor) rewrite(doc []byte) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("compress: pdfcpu panicked: %v", r)
		}
	}()

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(doc), configuration())
	if err != nil {
		return nil, fmt.Errorf("compress: read: %w", err)
	}
	if err := flateStreams(ctx.XRefTable); err != nil {
		return nil, fmt.Errorf("compress: encode: %w", err)
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("compress: write: %w", err)
	}
	return buf.Bytes(), nil
}

// flateStreams adds a FlateDecode filter to every stream that has none.
// Streams that are already filtered (images, fonts) are left alone.
func flateStreams(xRefTable *model.XRefTable) error {
	for objNr, entry := range xRefTable.Table {
		if entry == nil || entry.Free || entry.Object == nil {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok || len(sd.FilterPipeline) > 0 {
			continue
		}
		if sd.Content == nil {
			if sd.Raw == nil {
				continue
			}
			sd.Content = sd.Raw
		}
		sd.InsertName("Filter", filter.Flate)
		sd.FilterPipeline = []types.PDFFilter{{Name: filter.Flate}}
		if err := sd.Encode(); err != nil {
			return fmt.Errorf("object %d: %w", objNr, err)
		}
		entry.Object = sd
	}
	return nil
}
