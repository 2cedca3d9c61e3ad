package values

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/cameronsjo/kuberender/internal/ui"
)

var (
	// ErrConfigNotFound indicates a values file does not exist.
	ErrConfigNotFound = errors.New("values file not found")

	// ErrConfigParse indicates a values file is not a YAML mapping.
	ErrConfigParse = errors.New("values file is not a valid YAML mapping")

	// ErrConfigDecrypt indicates a SOPS-encrypted values file could not be decrypted.
	ErrConfigDecrypt = errors.New("values file could not be decrypted")
)

// Context is the merged key-value mapping handed to templates.
type Context map[string]any

// Keys returns the top-level keys in sorted order.
func (c Context) Keys() []string {
	keys := lo.Keys(c)
	sort.Strings(keys)
	return keys
}

// Reader loads values files and applies environment overrides.
type Reader struct {
	logger    *ui.Logger
	lookup    LookupFunc
	decryptor Decryptor
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithLookup replaces the environment lookup used for overrides.
func WithLookup(lookup LookupFunc) ReaderOption {
	return func(r *Reader) { r.lookup = lookup }
}

// WithDecryptor replaces the decryptor used for SOPS-encrypted files.
func WithDecryptor(d Decryptor) ReaderOption {
	return func(r *Reader) { r.decryptor = d }
}

// NewReader creates a Reader that overrides from the process environment.
func NewReader(logger *ui.Logger, opts ...ReaderOption) *Reader {
	r := &Reader{
		logger:    logger,
		lookup:    os.LookupEnv,
		decryptor: NewSOPSDecryptor(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read loads a single values file and applies environment overrides.
func (r *Reader) Read(path string) (Context, error) {
	return r.ReadAll(path)
}

// ReadAll loads the first path as the base document and merges each further
// path over it in order. Environment overrides are applied once, against the
// top-level keys of the merged result.
func (r *Reader) ReadAll(paths ...string) (Context, error) {
	if len(paths) == 0 {
		return nil, errors.New("no values file given")
	}

	var merged map[string]any
	for _, path := range paths {
		doc, err := r.load(path)
		if err != nil {
			return nil, err
		}
		if merged == nil {
			merged = doc
		} else {
			merged = DeepMerge(merged, doc)
		}
		r.logger.Debug("Loaded values from %s (%d keys)", path, len(doc))
	}

	ctx, overridden := Overlay(Context(merged), r.lookup)
	for _, key := range overridden {
		r.logger.Debug("Value %q overridden from environment", key)
	}
	r.logger.Debug("Values available to templates: %s", strings.Join(ctx.Keys(), ", "))

	return ctx, nil
}

func (r *Reader) load(path string) (map[string]any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read values file %s: %w", path, err)
	}

	doc, err := parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigParse, path, err)
	}

	if isEncrypted(doc) {
		if r.decryptor == nil {
			return nil, fmt.Errorf("%w: %s: no decryptor configured", ErrConfigDecrypt, path)
		}
		plain, err := r.decryptor.Decrypt(content)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrConfigDecrypt, path, err)
		}
		doc, err = parse(plain)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrConfigParse, path, err)
		}
	}

	return doc, nil
}

// parse decodes a YAML mapping. An empty document yields an empty map.
func parse(content []byte) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = make(map[string]any)
	}
	return doc, nil
}
