package audit

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/singleflight"

	"mawbaudit/pkg/contracts/domain"
)

// DefaultCacheSize is the number of memoized audit results kept when the
// caller does not choose a size.
const DefaultCacheSize = 16

// Request is one complete audit invocation: the uploaded workbook bytes,
// the filter text and the margin band. Memoization is keyed on these
// values, never on object identity, because the same bytes are routinely
// resubmitted with different filter text.
type Request struct {
	Billing       []byte
	ETA           []byte
	FilterText    string
	LowThreshold  float64
	HighThreshold float64
}

// Fingerprint returns the content hash identifying this request.
func (r Request) Fingerprint() string {
	h := sha256.New()
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(r.Billing)))
	h.Write(n[:])
	h.Write(r.Billing)
	binary.BigEndian.PutUint64(n[:], uint64(len(r.ETA)))
	h.Write(n[:])
	h.Write(r.ETA)
	h.Write([]byte(r.FilterText))
	binary.BigEndian.PutUint64(n[:], math.Float64bits(r.LowThreshold))
	h.Write(n[:])
	binary.BigEndian.PutUint64(n[:], math.Float64bits(r.HighThreshold))
	h.Write(n[:])
	return hex.EncodeToString(h.Sum(nil))
}

// Runner executes audit requests end to end (parse workbooks, run the
// aggregator) with value-keyed memoization. Repeated identical requests
// return the already-computed result, and concurrent identical requests
// collapse into a single computation via singleflight. Results are
// immutable after construction, so sharing one across callers is safe.
type Runner struct {
	logger *slog.Logger
	agg    *Aggregator
	policy Policy
	cache  *lru.Cache[string, *domain.AuditResult]
	group  singleflight.Group
}

// NewRunner creates a runner with an LRU of cacheSize memoized results.
func NewRunner(logger *slog.Logger, policy Policy, cacheSize int) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *domain.AuditResult](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create result cache: %w", err)
	}
	return &Runner{
		logger: logger.With(slog.String("component", "audit_runner")),
		agg:    NewAggregator(logger, policy),
		policy: policy,
		cache:  cache,
	}, nil
}

// Run parses the request's workbooks and executes the audit, serving
// repeats from the cache.
func (r *Runner) Run(ctx context.Context, req Request) (*domain.AuditResult, error) {
	key := req.Fingerprint()
	if cached, ok := r.cache.Get(key); ok {
		r.logger.DebugContext(ctx, "audit cache hit", slog.String("fingerprint", key[:12]))
		return cached, nil
	}

	v, err, shared := r.group.Do(key, func() (interface{}, error) {
		result, err := r.run(ctx, req)
		if err != nil {
			return nil, err
		}
		r.cache.Add(key, result)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.logger.DebugContext(ctx, "audit computation shared", slog.String("fingerprint", key[:12]))
	}
	return v.(*domain.AuditResult), nil
}

func (r *Runner) run(ctx context.Context, req Request) (*domain.AuditResult, error) {
	billingBook, err := excelize.OpenReader(bytes.NewReader(req.Billing))
	if err != nil {
		return nil, fmt.Errorf("open billing workbook: %w", err)
	}
	defer billingBook.Close()

	lines, err := ParseBilling(billingBook, r.logger, r.policy)
	if err != nil {
		return nil, err
	}

	var etas domain.ETAMapping
	var note string
	if len(req.ETA) > 0 {
		etaBook, err := excelize.OpenReader(bytes.NewReader(req.ETA))
		if err != nil {
			return nil, fmt.Errorf("open eta workbook: %w", err)
		}
		defer etaBook.Close()

		etas, note, err = ParseETAMapping(etaBook, r.logger)
		if err != nil {
			return nil, err
		}
	}

	return r.agg.Run(ctx, Input{
		Lines:         lines,
		ETAs:          etas,
		ETAParseNote:  note,
		Filter:        ParseMAWBList(req.FilterText),
		LowThreshold:  req.LowThreshold,
		HighThreshold: req.HighThreshold,
	})
}
